package messages_test

import (
	"crypto/ecdsa"
	"testing"

	"github.com/ascension-protocol/ibft-validator/messages"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// realRecoverer exercises the actual secp256k1 recovery path (the same
// primitive core.ECRecoverer uses), kept local here to avoid a package
// import cycle between messages and core's test binary.
type realRecoverer struct{}

func (realRecoverer) RecoverSigner(payloadBytes []byte, signature [65]byte) (messages.Address, error) {
	digest := crypto.Keccak256(payloadBytes)
	pub, err := crypto.SigToPub(digest, signature[:])
	if err != nil {
		return messages.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}

func sign(t *testing.T, key *ecdsa.PrivateKey, payload interface{}) [65]byte {
	t.Helper()
	encoded, err := rlp.EncodeToBytes(payload)
	require.NoError(t, err)
	digest := crypto.Keccak256(encoded)
	sig, err := crypto.Sign(digest, key)
	require.NoError(t, err)
	var out [65]byte
	copy(out[:], sig)
	return out
}

func TestEncodeDecode_Proposal_RoundTripWithRealSignature(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := crypto.PubkeyToAddress(key.PublicKey)

	block := &messages.BasicBlock{BlockNumber: 10}
	block.BlockHash[31] = 7
	payload := messages.ProposalPayload{
		RoundIdentifier: messages.ConsensusRoundIdentifier{Sequence: 10, Round: 1},
		Block:           block,
	}

	signed := &messages.SignedProposal{Payload: payload, Signature: sign(t, key, payload)}

	frame, err := messages.Encode(messages.TypeProposal, signed)
	require.NoError(t, err)

	tag, decoded, err := messages.Decode(frame, messages.DefaultLimits)
	require.NoError(t, err)
	assert.Equal(t, messages.TypeProposal, tag)

	out, ok := decoded.(*messages.SignedProposal)
	require.True(t, ok)
	assert.Equal(t, payload.RoundIdentifier, out.Payload.RoundIdentifier)
	assert.Equal(t, block.BlockHash, out.Payload.Block.Hash())
	assert.Equal(t, block.BlockNumber, out.Payload.Block.Number())

	recovered, err := out.Sender(realRecoverer{})
	require.NoError(t, err)
	assert.Equal(t, signer, recovered)
}

func TestEncodeDecode_RoundChange_NilCertificateRoundTripsAsNil(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	payload := messages.RoundChangePayload{
		RoundChangeIdentifier: messages.ConsensusRoundIdentifier{Sequence: 5, Round: 2},
		PreparedCertificate:   nil,
	}
	signed := &messages.SignedRoundChange{Payload: payload, Signature: sign(t, key, payload)}

	frame, err := messages.Encode(messages.TypeRoundChange, signed)
	require.NoError(t, err)

	_, decoded, err := messages.Decode(frame, messages.DefaultLimits)
	require.NoError(t, err)

	out := decoded.(*messages.SignedRoundChange)
	assert.Nil(t, out.Payload.PreparedCertificate, "absent prepared certificate must decode as nil, not a zero-value instance")
}

func TestDecode_EmptyFrameIsMalformed(t *testing.T) {
	_, _, err := messages.Decode(nil, messages.DefaultLimits)
	requireKind(t, err, messages.MalformedFrame)
}

func TestDecode_UnknownMessageType(t *testing.T) {
	frame := []byte{0xFF, 0x01, 0x02}
	_, _, err := messages.Decode(frame, messages.DefaultLimits)
	requireKind(t, err, messages.UnknownMessageType)
}

func TestDecode_TruncatedBodyIsMalformed(t *testing.T) {
	frame := []byte{byte(messages.TypeProposal), 0xC0, 0xFF}
	_, _, err := messages.Decode(frame, messages.DefaultLimits)
	requireKind(t, err, messages.MalformedFrame)
}

func TestDecode_OversizedFrame(t *testing.T) {
	limits := messages.Limits{MaxFrameBytes: 4}
	frame := make([]byte, 5)
	_, _, err := messages.Decode(frame, limits)
	requireKind(t, err, messages.OversizedMessage)
}

func TestDecode_OversizedPreparedCertificateInRoundChange(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	prepares := make([]*messages.SignedPrepare, 3)
	for i := range prepares {
		p := messages.PreparePayload{RoundIdentifier: messages.ConsensusRoundIdentifier{Sequence: 1, Round: 0}}
		prepares[i] = &messages.SignedPrepare{Payload: p, Signature: sign(t, key, p)}
	}

	proposalPayload := messages.ProposalPayload{
		RoundIdentifier: messages.ConsensusRoundIdentifier{Sequence: 1, Round: 0},
		Block:           &messages.BasicBlock{BlockNumber: 1},
	}
	proposal := &messages.SignedProposal{Payload: proposalPayload, Signature: sign(t, key, proposalPayload)}

	pc := &messages.PreparedCertificate{Proposal: proposal, Prepares: prepares}
	rcPayload := messages.RoundChangePayload{
		RoundChangeIdentifier: messages.ConsensusRoundIdentifier{Sequence: 1, Round: 1},
		PreparedCertificate:   pc,
	}
	signed := &messages.SignedRoundChange{Payload: rcPayload, Signature: sign(t, key, rcPayload)}

	frame, err := messages.Encode(messages.TypeRoundChange, signed)
	require.NoError(t, err)

	limits := messages.DefaultLimits
	limits.MaxPreparedCertificatePrepares = 2
	_, _, err = messages.Decode(frame, limits)
	requireKind(t, err, messages.OversizedMessage)
}

// TestRoundTrip_ConsensusRoundIdentifier exercises decode(encode(x)) == x for
// arbitrary round identifiers embedded in a prepare payload, the simplest
// payload shape that carries one directly.
func TestRoundTrip_ConsensusRoundIdentifier(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		id := messages.ConsensusRoundIdentifier{
			Sequence: rapid.Uint64().Draw(t, "sequence"),
			Round:    rapid.Uint64().Draw(t, "round"),
		}
		var digest messages.Digest
		for i := range digest {
			digest[i] = byte(rapid.IntRange(0, 255).Draw(t, "digest_byte"))
		}

		payload := messages.PreparePayload{RoundIdentifier: id, ProposalDigest: digest}
		signed := &messages.SignedPrepare{Payload: payload}

		frame, err := messages.Encode(messages.TypePrepare, signed)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}

		_, decoded, err := messages.Decode(frame, messages.DefaultLimits)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}

		out := decoded.(*messages.SignedPrepare)
		if !out.Payload.RoundIdentifier.Equal(id) {
			t.Fatalf("round identifier did not round-trip: got %+v, want %+v", out.Payload.RoundIdentifier, id)
		}
		if out.Payload.ProposalDigest != digest {
			t.Fatalf("digest did not round-trip: got %x, want %x", out.Payload.ProposalDigest, digest)
		}
	})
}

func requireKind(t *testing.T, err error, kind messages.Kind) {
	t.Helper()
	require.Error(t, err)
	ve, ok := err.(*messages.ValidationError)
	require.True(t, ok, "expected *messages.ValidationError, got %T", err)
	assert.Equal(t, kind, ve.Kind)
}
