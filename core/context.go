// Package core implements the IBFT 2.0 per-message validators: the
// Proposer Selector, the Proposal/Prepare/Commit validators, the
// RoundChange validator, and the NewRound validator that composes them.
//
// Validation is pure and stateless: every exported function takes an
// immutable ValidationContext plus the message under review and returns
// either nil or a *messages.ValidationError. There is no mutable state and
// no global logger; the core is safe to call concurrently
// from multiple goroutines.
package core

import (
	"github.com/ascension-protocol/ibft-validator/messages"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Logger is the logging seam the core never reaches for on its own;
// callers that want a rejection logged do so themselves using the returned
// *messages.ValidationError.
type Logger interface {
	Info(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// NopLogger discards everything. Useful as a default for callers that have
// no logging library wired up yet.
type NopLogger struct{}

func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Error(string, ...interface{}) {}

// ChainBackend is the set of read-only collaborators the validators
// consume: the validator set and quorum size at a given height,
// and the locally tracked chain height. The validator set and quorum table
// are read-only per height and may be cached by the implementation;
// invalidation across height boundaries is the caller's concern.
type ChainBackend interface {
	ValidatorsAt(height uint64) []common.Address
	QuorumSizeAt(height uint64) int
	LocalChainHeight() uint64
}

// ProposerFunc selects the validator entitled to propose for a given round
// identifier, given the ordered validator set for that height.
type ProposerFunc func(id messages.ConsensusRoundIdentifier, validators []common.Address) common.Address

// ValidationContext is the small immutable bundle every validator function
// takes, in place of a stateful factory: since recursion into nested
// certificates always happens with the context unchanged, there is no
// circular dependency to break, just direct function calls that terminate
// because each nested certificate strictly reduces in depth (a
// RoundChange's PreparedCertificate cannot itself carry a
// RoundChangeCertificate).
type ValidationContext struct {
	Backend   ChainBackend
	Recoverer messages.SignerRecoverer
	Proposer  ProposerFunc
	Limits    messages.Limits
	Log       Logger
}

// NewValidationContext builds a ValidationContext with the default
// round-robin proposer selector, DefaultLimits, and a NopLogger, which
// callers can override individually.
func NewValidationContext(backend ChainBackend, recoverer messages.SignerRecoverer) ValidationContext {
	return ValidationContext{
		Backend:   backend,
		Recoverer: recoverer,
		Proposer:  ProposerFor,
		Limits:    messages.DefaultLimits,
		Log:       NopLogger{},
	}
}

// validatorsAndQuorum is a small convenience bundling the two
// height-scoped collaborator calls validators need together.
func (ctx ValidationContext) validatorsAndQuorum(height uint64) ([]common.Address, int) {
	return ctx.Backend.ValidatorsAt(height), ctx.Backend.QuorumSizeAt(height)
}

func (ctx ValidationContext) isValidator(addr common.Address, validators []common.Address) bool {
	for _, v := range validators {
		if v == addr {
			return true
		}
	}
	return false
}

func (ctx ValidationContext) log() Logger {
	if ctx.Log != nil {
		return ctx.Log
	}
	return NopLogger{}
}

// ECRecoverer implements messages.SignerRecoverer using secp256k1 ECDSA
// recovery over Keccak256, the same primitive (crypto.SigToPub /
// crypto.PubkeyToAddress) a sibling consensus engine in the retrieval pack
// (nhbchain's BFT engine) uses for the same purpose.
type ECRecoverer struct{}

// RecoverSigner implements messages.SignerRecoverer.
func (ECRecoverer) RecoverSigner(payloadBytes []byte, signature [65]byte) (common.Address, error) {
	digest := crypto.Keccak256(payloadBytes)

	pub, err := crypto.SigToPub(digest, signature[:])
	if err != nil {
		return common.Address{}, err
	}

	return crypto.PubkeyToAddress(*pub), nil
}

var _ messages.SignerRecoverer = ECRecoverer{}
