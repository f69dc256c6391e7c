package core

import (
	"github.com/ascension-protocol/ibft-validator/messages"
)

// ValidateNewRound is the composite root validator. It validates a
// SignedNewRound together with its embedded proposal and its round-change
// certificate, enforcing the "the proposed block matches the latest
// prepared block" rule. Checks are short-circuited in a fixed order so
// that the returned error kind uniquely identifies the earliest failing
// clause.
func ValidateNewRound(ctx ValidationContext, msg *messages.SignedNewRound) error {
	height := ctx.Backend.LocalChainHeight()
	validators := ctx.Backend.ValidatorsAt(height)
	quorum := ctx.Backend.QuorumSizeAt(height)

	sender, err := msg.Sender(ctx.Recoverer)
	if err != nil {
		return err
	}

	identifier := msg.Payload.RoundChangeIdentifier

	// 1. Proposer origin.
	proposer := ctx.Proposer(identifier, validators)
	if sender != proposer {
		return messages.Errf(messages.WrongProposer, "new-round sender %s, expected proposer %s for %+v", sender, proposer, identifier)
	}

	// 2. Height binding.
	if identifier.Sequence != height {
		return messages.Errf(messages.WrongHeight, "new-round targets sequence %d, local chain height is %d", identifier.Sequence, height)
	}

	// 3. Non-trivial round.
	if identifier.Round == 0 {
		return messages.Errf(messages.IllegalRoundZero, "new-round targets round 0")
	}

	if msg.Payload.Proposal == nil {
		return messages.Errf(messages.EmbeddedMismatch, "new-round carries no proposal")
	}

	// 4. Embedded proposal origin.
	proposalSender, err := msg.Payload.Proposal.Sender(ctx.Recoverer)
	if err != nil {
		return err
	}
	if proposalSender != sender {
		return messages.Errf(messages.EmbeddedMismatch, "embedded proposal signed by %s, outer message signed by %s", proposalSender, sender)
	}

	// 5. Embedded proposal round.
	if !msg.Payload.Proposal.Payload.RoundIdentifier.Equal(identifier) {
		return messages.Errf(messages.EmbeddedMismatch, "embedded proposal round %+v does not match round-change identifier %+v",
			msg.Payload.Proposal.Payload.RoundIdentifier, identifier)
	}

	if err := ValidateProposal(ctx, msg.Payload.Proposal, identifier); err != nil {
		return err
	}

	// 6. Round-change certificate.
	cert := msg.Payload.Certificate
	if len(cert.Payloads) > ctx.Limits.MaxRoundChangeCertificateSize && ctx.Limits.MaxRoundChangeCertificateSize > 0 {
		return messages.Errf(messages.OversizedMessage, "round-change certificate carries %d payloads, cap is %d", len(cert.Payloads), ctx.Limits.MaxRoundChangeCertificateSize)
	}
	if len(cert.Payloads) < quorum {
		return messages.Errf(messages.InsufficientQuorum, "round-change certificate has %d payloads, need at least %d", len(cert.Payloads), quorum)
	}

	senders := make([]messages.Address, 0, len(cert.Payloads))
	for _, rc := range cert.Payloads {
		if rc == nil {
			return messages.Errf(messages.InconsistentCertificate, "round-change certificate contains a nil payload")
		}

		if !rc.Payload.RoundChangeIdentifier.Equal(identifier) {
			return messages.Errf(messages.InconsistentCertificate, "round-change payload targets %+v, certificate is for %+v",
				rc.Payload.RoundChangeIdentifier, identifier)
		}

		if err := ValidateRoundChange(ctx, rc, identifier); err != nil {
			return err
		}

		rcSender, err := rc.Sender(ctx.Recoverer)
		if err != nil {
			return err
		}
		senders = append(senders, rcSender)
	}

	if !messages.HasUniqueSenders(senders) {
		return messages.Errf(messages.InconsistentCertificate, "round-change certificate has duplicate senders")
	}

	// 7. Block matches latest prepared.
	latest, hasAny, err := latestPreparedCertificate(ctx, cert)
	if err != nil {
		return err
	}
	if !hasAny {
		return nil
	}

	proposedHash := msg.Payload.Proposal.Payload.Block.Hash()
	latestHash := latest.Proposal.Payload.Block.Hash()
	if latestHash != proposedHash {
		return messages.Errf(messages.BlockMismatchWithLatestPrepared,
			"proposed block %s does not match latest prepared block %s at round %d",
			proposedHash, latestHash, latest.Proposal.Payload.RoundIdentifier.Round)
	}

	return nil
}

// latestPreparedCertificate selects, among the round-change payloads in
// cert that carry a PreparedCertificate, the one whose proposal has the
// highest round number, breaking ties by ascending sender address of the
// prepared certificate's proposer. It returns (nil, false, nil) if no
// round-change in the certificate carries a PreparedCertificate.
func latestPreparedCertificate(ctx ValidationContext, cert messages.RoundChangeCertificate) (*messages.PreparedCertificate, bool, error) {
	var (
		best       *messages.PreparedCertificate
		bestSender messages.Address
		found      bool
	)

	for _, rc := range cert.Payloads {
		if rc == nil || rc.Payload.PreparedCertificate == nil {
			continue
		}

		pc := rc.Payload.PreparedCertificate
		candidateRound := pc.Proposal.Payload.RoundIdentifier.Round

		candidateSender, err := pc.Proposal.Sender(ctx.Recoverer)
		if err != nil {
			return nil, false, err
		}

		if !found {
			best, bestSender, found = pc, candidateSender, true
			continue
		}

		bestRound := best.Proposal.Payload.RoundIdentifier.Round
		switch {
		case candidateRound > bestRound:
			best, bestSender = pc, candidateSender
		case candidateRound == bestRound && lexLess(candidateSender, bestSender):
			best, bestSender = pc, candidateSender
		}
	}

	return best, found, nil
}

func lexLess(a, b messages.Address) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
