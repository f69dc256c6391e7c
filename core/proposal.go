package core

import (
	"github.com/ascension-protocol/ibft-validator/messages"
)

// ValidateProposal validates a SignedProposal against a fixed expected
// round identifier. It accepts iff:
//   - the sender is a member of the validator set at the expected height,
//   - the sender is the expected proposer for the round,
//   - the payload's own round identifier matches the expected one, and
//   - the block's header number equals the expected sequence number.
//
// Additional domain checks on the block (state transition, parent linkage)
// are delegated to an external block importer and are out of scope here.
func ValidateProposal(ctx ValidationContext, msg *messages.SignedProposal, expected messages.ConsensusRoundIdentifier) error {
	validators, _ := ctx.validatorsAndQuorum(expected.Sequence)

	sender, err := msg.Sender(ctx.Recoverer)
	if err != nil {
		return err
	}

	if !ctx.isValidator(sender, validators) {
		return messages.Errf(messages.UnknownSigner, "proposal sender %s is not a validator at height %d", sender, expected.Sequence)
	}

	proposer := ctx.Proposer(expected, validators)
	if sender != proposer {
		return messages.Errf(messages.WrongProposer, "proposal sender %s, expected proposer %s for %+v", sender, proposer, expected)
	}

	if !msg.Payload.RoundIdentifier.Equal(expected) {
		return messages.Errf(messages.EmbeddedMismatch, "proposal round %+v does not match expected %+v", msg.Payload.RoundIdentifier, expected)
	}

	if msg.Payload.Block == nil {
		return messages.Errf(messages.MalformedFrame, "proposal carries no block")
	}

	if msg.Payload.Block.Number() != expected.Sequence {
		return messages.Errf(messages.WrongHeight, "proposal block number %d does not match sequence %d", msg.Payload.Block.Number(), expected.Sequence)
	}

	return nil
}
