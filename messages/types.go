// Package messages defines the IBFT 2.0 wire payloads, the signed envelope
// that wraps them, and the codec that moves them to and from bytes.
//
// Field order in every payload struct is fixed and deliberate: the wire
// codec (wire.go) relies on Go's struct-field order for RLP framing.
package messages

import (
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// Address identifies a validator. It is exactly common.Address: 20 bytes,
// recovered from a signature over a payload's canonical encoding.
type Address = common.Address

// Digest is a 32-byte content hash, used for block hashes and the
// committed-seal hash a commit seal signs over.
type Digest = common.Hash

// ConsensusRoundIdentifier pins a message to a specific height and round.
// Sequence is the target block height; Round is the IBFT round number
// within that height. Ordered lexicographically by (Sequence, Round).
type ConsensusRoundIdentifier struct {
	Sequence uint64
	Round    uint64
}

// Equal reports whether two identifiers name the same (height, round).
func (r ConsensusRoundIdentifier) Equal(o ConsensusRoundIdentifier) bool {
	return r.Sequence == o.Sequence && r.Round == o.Round
}

// Cmp returns -1, 0, or +1 as r is less than, equal to, or greater than o,
// ordering lexicographically by (Sequence, Round).
func (r ConsensusRoundIdentifier) Cmp(o ConsensusRoundIdentifier) int {
	if r.Sequence != o.Sequence {
		if r.Sequence < o.Sequence {
			return -1
		}
		return 1
	}
	switch {
	case r.Round < o.Round:
		return -1
	case r.Round > o.Round:
		return 1
	default:
		return 0
	}
}

// Block is the opaque structure the validator inspects. Only Hash and
// Number are consumed here; state transition and parent linkage are
// delegated to an external block importer.
type Block interface {
	// Hash returns the deterministic 32-byte digest of the block.
	Hash() Digest
	// Number returns the block's header number, expected to equal the
	// sequence number of the round that proposed it.
	Number() uint64
	// CommittedSealHash returns the digest a commit seal signs over.
	CommittedSealHash() Digest
}

// BasicBlock is the concrete Block carried over the wire. The validator
// never inspects block contents beyond hash/number/seal-hash, so
// the codec only needs to round-trip that summary, not a full block body;
// callers working against a real chain implement Block themselves (e.g. by
// wrapping *types.Block) and convert to/from BasicBlock at the boundary.
type BasicBlock struct {
	BlockHash   Digest
	BlockNumber uint64
	SealHash    Digest
}

func (b *BasicBlock) Hash() Digest              { return b.BlockHash }
func (b *BasicBlock) Number() uint64            { return b.BlockNumber }
func (b *BasicBlock) CommittedSealHash() Digest { return b.SealHash }

var _ Block = (*BasicBlock)(nil)

// ProposalPayload is broadcast by the round's proposer to advance to a new
// round with a candidate block.
type ProposalPayload struct {
	RoundIdentifier ConsensusRoundIdentifier
	Block           Block
}

// proposalPayloadRLP mirrors ProposalPayload with a concrete Block so RLP's
// reflection-based decoder has something it can allocate into; Block is an
// interface and can't be decoded directly (the same problem go-ethereum's
// istanbul.Preprepare.DecodeRLP solves for its Proposal field).
type proposalPayloadRLP struct {
	RoundIdentifier ConsensusRoundIdentifier
	Block           *BasicBlock
}

// EncodeRLP serializes the payload in canonical field order.
func (p ProposalPayload) EncodeRLP(w io.Writer) error {
	block, ok := p.Block.(*BasicBlock)
	if !ok && p.Block != nil {
		block = &BasicBlock{
			BlockHash:   p.Block.Hash(),
			BlockNumber: p.Block.Number(),
			SealHash:    p.Block.CommittedSealHash(),
		}
	}
	return rlp.Encode(w, proposalPayloadRLP{RoundIdentifier: p.RoundIdentifier, Block: block})
}

// DecodeRLP reconstructs a ProposalPayload, materializing its Block as a *BasicBlock.
func (p *ProposalPayload) DecodeRLP(s *rlp.Stream) error {
	var decoded proposalPayloadRLP
	if err := s.Decode(&decoded); err != nil {
		return err
	}
	p.RoundIdentifier = decoded.RoundIdentifier
	p.Block = decoded.Block
	return nil
}

// PreparePayload is a validator's vote that it has seen a well-formed
// proposal whose block hashes to Digest.
type PreparePayload struct {
	RoundIdentifier ConsensusRoundIdentifier
	ProposalDigest  Digest
}

// CommitPayload is a validator's final vote binding a block to a round.
type CommitPayload struct {
	RoundIdentifier ConsensusRoundIdentifier
	ProposalDigest  Digest
	CommitSeal      [65]byte
}

// PreparedCertificate is evidence that a block was prepared (a quorum of
// prepares observed the proposal) at some earlier round.
type PreparedCertificate struct {
	Proposal *SignedProposal
	Prepares []*SignedPrepare
}

// RoundChangePayload is a validator's request to abandon the current round
// and adopt RoundChangeIdentifier, optionally carrying evidence that it
// already prepared a block at an earlier round.
type RoundChangePayload struct {
	RoundChangeIdentifier ConsensusRoundIdentifier
	PreparedCertificate   *PreparedCertificate `rlp:"nil"` // nil when absent, never a sentinel instance
}

// RoundChangeCertificate is the collected justification for switching to a
// new round: a set of signed round-change votes.
type RoundChangeCertificate struct {
	Payloads []*SignedRoundChange
}

// NewRoundPayload is sent by the proposer of a new round to announce the
// round it is moving to, the evidence justifying the move, and its
// proposal for that round.
type NewRoundPayload struct {
	RoundChangeIdentifier ConsensusRoundIdentifier
	Certificate           RoundChangeCertificate
	Proposal              *SignedProposal
}
