package core

import (
	"github.com/ascension-protocol/ibft-validator/messages"
	"github.com/ethereum/go-ethereum/common"
)

// ProposerFor is the default proposer selector: a pure, deterministic
// round-robin over the ordered validator set. The validator set is fixed
// for a given sequence number; no mid-height reconfiguration happens
// within this core.
//
// It returns the zero address if validators is empty — callers are
// expected to treat an empty validator set as a configuration error before
// ever reaching a validator function.
func ProposerFor(id messages.ConsensusRoundIdentifier, validators []common.Address) common.Address {
	n := len(validators)
	if n == 0 {
		return common.Address{}
	}

	index := (id.Sequence + id.Round) % uint64(n)

	return validators[index]
}
