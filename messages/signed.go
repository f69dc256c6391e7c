package messages

import (
	"github.com/ethereum/go-ethereum/rlp"
)

// SignerRecoverer abstracts recover_signer(payload_bytes, signature) ->
// address. Key management and signature primitives live outside
// this module; callers supply a concrete implementation (e.g. one backed
// by secp256k1 ECDSA recovery).
type SignerRecoverer interface {
	RecoverSigner(payloadBytes []byte, signature [65]byte) (Address, error)
}

// sender is shared plumbing for every SignedX.Sender method: RLP-encode the
// payload canonically and recover the signer over it. Two equal
// (payload, signature) pairs always yield the same address, since the
// encoding and the recovery function are both pure.
func sender(r SignerRecoverer, payload interface{}, signature [65]byte) (Address, error) {
	encoded, err := rlp.EncodeToBytes(payload)
	if err != nil {
		return Address{}, Wrap(MalformedFrame, err, "encode payload for signer recovery")
	}

	addr, err := r.RecoverSigner(encoded, signature)
	if err != nil {
		return Address{}, Wrap(InvalidSignature, err, "recover signer")
	}

	return addr, nil
}

// SignedProposal is a ProposalPayload together with the proposer's signature.
type SignedProposal struct {
	Payload   ProposalPayload
	Signature [65]byte
}

// Sender recovers the address that signed this proposal.
func (s *SignedProposal) Sender(r SignerRecoverer) (Address, error) {
	return sender(r, s.Payload, s.Signature)
}

// SignedPrepare is a PreparePayload together with the voting validator's signature.
type SignedPrepare struct {
	Payload   PreparePayload
	Signature [65]byte
}

// Sender recovers the address that signed this prepare vote.
func (s *SignedPrepare) Sender(r SignerRecoverer) (Address, error) {
	return sender(r, s.Payload, s.Signature)
}

// SignedCommit is a CommitPayload together with the voting validator's signature.
type SignedCommit struct {
	Payload   CommitPayload
	Signature [65]byte
}

// Sender recovers the address that signed this commit vote.
func (s *SignedCommit) Sender(r SignerRecoverer) (Address, error) {
	return sender(r, s.Payload, s.Signature)
}

// SignedRoundChange is a RoundChangePayload together with the requesting validator's signature.
type SignedRoundChange struct {
	Payload   RoundChangePayload
	Signature [65]byte
}

// Sender recovers the address that signed this round-change request.
func (s *SignedRoundChange) Sender(r SignerRecoverer) (Address, error) {
	return sender(r, s.Payload, s.Signature)
}

// SignedNewRound is a NewRoundPayload together with the new round's proposer's signature.
type SignedNewRound struct {
	Payload   NewRoundPayload
	Signature [65]byte
}

// Sender recovers the address that signed this new-round announcement.
func (s *SignedNewRound) Sender(r SignerRecoverer) (Address, error) {
	return sender(r, s.Payload, s.Signature)
}
