package core

import (
	"github.com/ascension-protocol/ibft-validator/messages"
)

// ValidateCommit validates a SignedCommit against a fixed expected round
// identifier and the digest/committed-seal-hash of the proposal it commits.
// It accepts iff:
//   - the sender is a member of the validator set,
//   - the payload's round identifier matches the expected one,
//   - the payload's digest matches the expected proposal's block hash, and
//   - the commit seal is a valid signature by the sender over the block's
//     committed-seal hash.
func ValidateCommit(ctx ValidationContext, msg *messages.SignedCommit, expected messages.ConsensusRoundIdentifier, expectedDigest, committedSealHash messages.Digest) error {
	validators, _ := ctx.validatorsAndQuorum(expected.Sequence)

	sender, err := msg.Sender(ctx.Recoverer)
	if err != nil {
		return err
	}

	if !ctx.isValidator(sender, validators) {
		return messages.Errf(messages.UnknownSigner, "commit sender %s is not a validator at height %d", sender, expected.Sequence)
	}

	if !msg.Payload.RoundIdentifier.Equal(expected) {
		return messages.Errf(messages.EmbeddedMismatch, "commit round %+v does not match expected %+v", msg.Payload.RoundIdentifier, expected)
	}

	if msg.Payload.ProposalDigest != expectedDigest {
		return messages.Errf(messages.EmbeddedMismatch, "commit digest %s does not match expected proposal digest %s", msg.Payload.ProposalDigest, expectedDigest)
	}

	sealSigner, err := ctx.Recoverer.RecoverSigner(committedSealHash[:], msg.Payload.CommitSeal)
	if err != nil {
		return messages.Wrap(messages.InvalidSignature, err, "recover committed seal signer")
	}
	if sealSigner != sender {
		return messages.Errf(messages.InvalidSignature, "committed seal signed by %s, expected sender %s", sealSigner, sender)
	}

	return nil
}
