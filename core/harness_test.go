package core

import (
	"errors"
	"testing"

	"github.com/ascension-protocol/ibft-validator/messages"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

// fakeRecoverer is a deterministic stand-in for recover_signer:
// the "signature" is simply the signer's address, left-padded into the
// 65-byte signature slot. This keeps validator-logic tests focused on the
// IBFT rules themselves rather than on ECDSA recovery, which is exercised
// separately in messages/wire_test.go against the real secp256k1 path.
type fakeRecoverer struct{}

func (fakeRecoverer) RecoverSigner(_ []byte, signature [65]byte) (common.Address, error) {
	var addr common.Address
	copy(addr[:], signature[:20])
	return addr, nil
}

func sigFor(addr common.Address) [65]byte {
	var sig [65]byte
	copy(sig[:20], addr[:])
	return sig
}

// fakeBackend is a fixed, in-memory ChainBackend used throughout the core
// tests: validators V = [A, B, C, D], quorum 3, local chain height fixed
// per test.
type fakeBackend struct {
	validators []common.Address
	quorum     int
	height     uint64
}

func (b *fakeBackend) ValidatorsAt(uint64) []common.Address { return b.validators }
func (b *fakeBackend) QuorumSizeAt(uint64) int               { return b.quorum }
func (b *fakeBackend) LocalChainHeight() uint64              { return b.height }

var (
	addrA = common.HexToAddress("0x0000000000000000000000000000000000000A")
	addrB = common.HexToAddress("0x0000000000000000000000000000000000000B")
	addrC = common.HexToAddress("0x0000000000000000000000000000000000000C")
	addrD = common.HexToAddress("0x0000000000000000000000000000000000000D")
)

// testBlock is a trivial messages.Block used across tests.
type testBlock struct {
	hash   messages.Digest
	number uint64
	seal   messages.Digest
}

func (b *testBlock) Hash() messages.Digest              { return b.hash }
func (b *testBlock) Number() uint64                     { return b.number }
func (b *testBlock) CommittedSealHash() messages.Digest { return b.seal }

func blockNamed(name byte, number uint64) *testBlock {
	var h messages.Digest
	h[31] = name
	return &testBlock{hash: h, number: number}
}

func newTestContext(validators []common.Address, quorum int, height uint64) ValidationContext {
	backend := &fakeBackend{validators: validators, quorum: quorum, height: height}
	return ValidationContext{
		Backend:   backend,
		Recoverer: fakeRecoverer{},
		Proposer:  ProposerFor,
		Limits:    messages.DefaultLimits,
		Log:       NopLogger{},
	}
}

func signedProposal(id messages.ConsensusRoundIdentifier, block messages.Block, signer common.Address) *messages.SignedProposal {
	return &messages.SignedProposal{
		Payload:   messages.ProposalPayload{RoundIdentifier: id, Block: block},
		Signature: sigFor(signer),
	}
}

func signedPrepare(id messages.ConsensusRoundIdentifier, digest messages.Digest, signer common.Address) *messages.SignedPrepare {
	return &messages.SignedPrepare{
		Payload:   messages.PreparePayload{RoundIdentifier: id, ProposalDigest: digest},
		Signature: sigFor(signer),
	}
}

func signedRoundChange(id messages.ConsensusRoundIdentifier, pc *messages.PreparedCertificate, signer common.Address) *messages.SignedRoundChange {
	return &messages.SignedRoundChange{
		Payload:   messages.RoundChangePayload{RoundChangeIdentifier: id, PreparedCertificate: pc},
		Signature: sigFor(signer),
	}
}

// assertKind fails the test unless err is a *messages.ValidationError of
// the given kind, found anywhere in its Unwrap chain.
func assertKind(t *testing.T, err error, kind messages.Kind) {
	t.Helper()
	if !assert.Error(t, err) {
		return
	}
	var target *messages.ValidationError
	if !errors.As(err, &target) {
		t.Fatalf("expected *messages.ValidationError, got %T: %v", err, err)
		return
	}
	assert.Equal(t, kind, target.Kind, "unexpected error kind for %v", err)
}
