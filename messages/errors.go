package messages

import "fmt"

// Kind is the flat, exhaustive taxonomy of reasons a message can be
// rejected by the wire codec or by a validator. Every check in this
// module returns one of these kinds; nothing propagates as a panic.
type Kind int

const (
	// MalformedFrame means the wire codec could not parse the input bytes.
	MalformedFrame Kind = iota
	// UnknownMessageType means the leading type-tag byte was not recognized.
	UnknownMessageType
	// OversizedMessage means a decoded message exceeds the configured caps.
	OversizedMessage
	// InvalidSignature means signer recovery failed.
	InvalidSignature
	// UnknownSigner means the recovered address is not in the validator set.
	UnknownSigner
	// WrongProposer means the sender is not the expected proposer for the round.
	WrongProposer
	// WrongHeight means the sequence number mismatches the local chain height.
	WrongHeight
	// IllegalRoundZero means a NewRound message targets round 0.
	IllegalRoundZero
	// EmbeddedMismatch means an embedded proposal/round mismatches the outer payload.
	EmbeddedMismatch
	// InsufficientQuorum means a certificate has fewer than quorum payloads.
	InsufficientQuorum
	// InconsistentCertificate means round-change payloads disagree on the
	// target round, or a certificate contains duplicate senders.
	InconsistentCertificate
	// PreparedCertificateInvalid means a prepared certificate is internally inconsistent.
	PreparedCertificateInvalid
	// BlockMismatchWithLatestPrepared means the proposed block hash does not
	// match the block hash of the latest prepared certificate.
	BlockMismatchWithLatestPrepared
)

var kindNames = map[Kind]string{
	MalformedFrame:                  "malformed_frame",
	UnknownMessageType:              "unknown_message_type",
	OversizedMessage:                "oversized_message",
	InvalidSignature:                "invalid_signature",
	UnknownSigner:                   "unknown_signer",
	WrongProposer:                   "wrong_proposer",
	WrongHeight:                     "wrong_height",
	IllegalRoundZero:                "illegal_round_zero",
	EmbeddedMismatch:                "embedded_mismatch",
	InsufficientQuorum:              "insufficient_quorum",
	InconsistentCertificate:         "inconsistent_certificate",
	PreparedCertificateInvalid:      "prepared_certificate_invalid",
	BlockMismatchWithLatestPrepared: "block_mismatch_with_latest_prepared",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown_kind"
}

// ValidationError is returned by every decode/validate operation in this
// module. It carries the failing Kind plus a human-readable detail, and
// wraps an optional underlying cause for errors.Unwrap/errors.Is chains.
type ValidationError struct {
	Kind   Kind
	Detail string
	Cause  error
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a *ValidationError with the same Kind,
// letting callers write errors.Is(err, &ValidationError{Kind: WrongProposer}).
func (e *ValidationError) Is(target error) bool {
	other, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

// Errf builds a *ValidationError of the given kind with a formatted detail.
func Errf(kind Kind, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap builds a *ValidationError of the given kind wrapping cause.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Kind: kind, Detail: fmt.Sprintf(format, args...), Cause: cause}
}
