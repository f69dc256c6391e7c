package core

import (
	"github.com/ascension-protocol/ibft-validator/messages"
)

// ValidateRoundChange validates a SignedRoundChange against a target
// round identifier, and, if present, the embedded PreparedCertificate:
//
//  1. sender is a member of the validator set.
//  2. payload.RoundChangeIdentifier equals target.
//  3. If PreparedCertificate is absent, accept.
//  4. Otherwise the certificate must show a block prepared at a strictly
//     earlier round of the same height, by a quorum of distinct
//     validators excluding the proposer (who prepares implicitly by
//     proposing), and the embedded proposal must itself validate under
//     its own (earlier) round with the proposer recomputed for that round.
func ValidateRoundChange(ctx ValidationContext, msg *messages.SignedRoundChange, target messages.ConsensusRoundIdentifier) error {
	validators, quorum := ctx.validatorsAndQuorum(target.Sequence)

	sender, err := msg.Sender(ctx.Recoverer)
	if err != nil {
		return err
	}

	if !ctx.isValidator(sender, validators) {
		return messages.Errf(messages.UnknownSigner, "round-change sender %s is not a validator at height %d", sender, target.Sequence)
	}

	if !msg.Payload.RoundChangeIdentifier.Equal(target) {
		return messages.Errf(messages.EmbeddedMismatch, "round-change target %+v does not match expected %+v", msg.Payload.RoundChangeIdentifier, target)
	}

	pc := msg.Payload.PreparedCertificate
	if pc == nil {
		return nil
	}

	return validatePreparedCertificate(ctx, pc, target, quorum)
}

// validatePreparedCertificate validates a PreparedCertificate embedded in a
// RoundChangePayload against the round it is being offered as evidence for.
func validatePreparedCertificate(ctx ValidationContext, pc *messages.PreparedCertificate, target messages.ConsensusRoundIdentifier, quorum int) error {
	if pc.Proposal == nil {
		return messages.Errf(messages.PreparedCertificateInvalid, "prepared certificate has no proposal")
	}

	earlierRound := pc.Proposal.Payload.RoundIdentifier

	if earlierRound.Sequence != target.Sequence {
		return messages.Errf(messages.PreparedCertificateInvalid,
			"prepared certificate proposal sequence %d does not match target sequence %d", earlierRound.Sequence, target.Sequence)
	}
	if earlierRound.Round >= target.Round {
		return messages.Errf(messages.PreparedCertificateInvalid,
			"prepared certificate proposal round %d is not strictly before target round %d", earlierRound.Round, target.Round)
	}

	if err := ValidateProposal(ctx, pc.Proposal, earlierRound); err != nil {
		return messages.Wrap(messages.PreparedCertificateInvalid, err, "prepared certificate proposal invalid")
	}

	if len(pc.Prepares) > ctx.Limits.MaxPreparedCertificatePrepares && ctx.Limits.MaxPreparedCertificatePrepares > 0 {
		return messages.Errf(messages.OversizedMessage, "prepared certificate carries %d prepares, cap is %d", len(pc.Prepares), ctx.Limits.MaxPreparedCertificatePrepares)
	}

	if len(pc.Prepares) < quorum-1 {
		return messages.Errf(messages.InsufficientQuorum, "prepared certificate has %d prepares, need at least %d", len(pc.Prepares), quorum-1)
	}

	digest := pc.Proposal.Payload.Block.Hash()

	// ValidatePrepare already rejects a prepare signed by the round's
	// proposer, which gives us "distinct from the proposer" for free; we
	// still need to check the senders among themselves for duplicates.
	senders := make([]messages.Address, 0, len(pc.Prepares))
	for _, prepare := range pc.Prepares {
		if prepare == nil {
			return messages.Errf(messages.PreparedCertificateInvalid, "prepared certificate contains a nil prepare")
		}

		if err := ValidatePrepare(ctx, prepare, earlierRound, digest); err != nil {
			return messages.Wrap(messages.PreparedCertificateInvalid, err, "prepared certificate prepare invalid")
		}

		prepareSender, err := prepare.Sender(ctx.Recoverer)
		if err != nil {
			return err
		}

		senders = append(senders, prepareSender)
	}

	if !messages.HasUniqueSenders(senders) {
		return messages.Errf(messages.InconsistentCertificate, "prepared certificate prepares have duplicate senders")
	}

	return nil
}
