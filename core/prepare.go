package core

import (
	"github.com/ascension-protocol/ibft-validator/messages"
)

// ValidatePrepare validates a SignedPrepare against a fixed expected round
// identifier and the digest of the proposal it is meant to endorse. It
// accepts iff:
//   - the sender is a member of the validator set,
//   - the sender is NOT the proposer for the round (the proposer implicitly
//     prepares by proposing; an explicit prepare from the proposer is
//     rejected to prevent it double-counting toward quorum),
//   - the payload's round identifier matches the expected one, and
//   - the payload's digest matches the expected proposal's block hash.
func ValidatePrepare(ctx ValidationContext, msg *messages.SignedPrepare, expected messages.ConsensusRoundIdentifier, expectedDigest messages.Digest) error {
	validators, _ := ctx.validatorsAndQuorum(expected.Sequence)

	sender, err := msg.Sender(ctx.Recoverer)
	if err != nil {
		return err
	}

	if !ctx.isValidator(sender, validators) {
		return messages.Errf(messages.UnknownSigner, "prepare sender %s is not a validator at height %d", sender, expected.Sequence)
	}

	if proposer := ctx.Proposer(expected, validators); sender == proposer {
		return messages.Errf(messages.WrongProposer, "prepare sender %s is the proposer for %+v", sender, expected)
	}

	if !msg.Payload.RoundIdentifier.Equal(expected) {
		return messages.Errf(messages.EmbeddedMismatch, "prepare round %+v does not match expected %+v", msg.Payload.RoundIdentifier, expected)
	}

	if msg.Payload.ProposalDigest != expectedDigest {
		return messages.Errf(messages.EmbeddedMismatch, "prepare digest %s does not match expected proposal digest %s", msg.Payload.ProposalDigest, expectedDigest)
	}

	return nil
}
