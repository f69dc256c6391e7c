package messages

import (
	"github.com/ethereum/go-ethereum/rlp"
)

// Type is the one-byte wire tag identifying a payload's shape, preserved as
// the first byte of every encoded envelope.
type Type byte

const (
	TypeProposal Type = iota
	TypePrepare
	TypeCommit
	TypeRoundChange
	TypeNewRound
)

func (t Type) String() string {
	switch t {
	case TypeProposal:
		return "proposal"
	case TypePrepare:
		return "prepare"
	case TypeCommit:
		return "commit"
	case TypeRoundChange:
		return "round_change"
	case TypeNewRound:
		return "new_round"
	default:
		return "unknown"
	}
}

// Limits bounds decoded messages before they reach validation.
// MaxFrameBytes caps the byte length of any frame; the other two fields cap
// cardinality: the number of round-change payloads in a NewRound's
// certificate, and the number of prepares in a prepared certificate (in a
// RoundChange or nested in a NewRound). A zero or negative field disables
// that cap.
type Limits struct {
	MaxRoundChangeCertificateSize  int
	MaxPreparedCertificatePrepares int
	MaxFrameBytes                  int
}

// DefaultLimits is generous relative to any realistic validator set size,
// while still bounding worst-case decode/validate cost.
var DefaultLimits = Limits{
	MaxRoundChangeCertificateSize:  4096,
	MaxPreparedCertificatePrepares: 4096,
	MaxFrameBytes:                  10 << 20, // 10 MiB
}

// Decode parses a wire frame into its type tag and signed payload. The
// first byte is the type tag; the remainder is the RLP encoding of the
// corresponding SignedX struct.
func Decode(frame []byte, limits Limits) (Type, interface{}, error) {
	if limits.MaxFrameBytes > 0 && len(frame) > limits.MaxFrameBytes {
		return 0, nil, Errf(OversizedMessage, "frame of %d bytes exceeds cap of %d", len(frame), limits.MaxFrameBytes)
	}
	if len(frame) < 1 {
		return 0, nil, Errf(MalformedFrame, "empty frame")
	}

	tag := Type(frame[0])
	body := frame[1:]

	switch tag {
	case TypeProposal:
		var m SignedProposal
		if err := rlp.DecodeBytes(body, &m); err != nil {
			return 0, nil, Wrap(MalformedFrame, err, "decode proposal")
		}
		return tag, &m, nil
	case TypePrepare:
		var m SignedPrepare
		if err := rlp.DecodeBytes(body, &m); err != nil {
			return 0, nil, Wrap(MalformedFrame, err, "decode prepare")
		}
		return tag, &m, nil
	case TypeCommit:
		var m SignedCommit
		if err := rlp.DecodeBytes(body, &m); err != nil {
			return 0, nil, Wrap(MalformedFrame, err, "decode commit")
		}
		return tag, &m, nil
	case TypeRoundChange:
		var m SignedRoundChange
		if err := rlp.DecodeBytes(body, &m); err != nil {
			return 0, nil, Wrap(MalformedFrame, err, "decode round change")
		}
		if err := checkRoundChangeCertificateSize(m.Payload.PreparedCertificate, limits); err != nil {
			return 0, nil, err
		}
		return tag, &m, nil
	case TypeNewRound:
		var m SignedNewRound
		if err := rlp.DecodeBytes(body, &m); err != nil {
			return 0, nil, Wrap(MalformedFrame, err, "decode new round")
		}
		if err := checkNewRoundSize(&m, limits); err != nil {
			return 0, nil, err
		}
		return tag, &m, nil
	default:
		return 0, nil, Errf(UnknownMessageType, "tag %d", byte(tag))
	}
}

// Encode serializes a signed payload into its wire frame: a one-byte type
// tag followed by the RLP encoding of the payload.
func Encode(tag Type, signed interface{}) ([]byte, error) {
	body, err := rlp.EncodeToBytes(signed)
	if err != nil {
		return nil, Wrap(MalformedFrame, err, "encode %s", tag)
	}
	return append([]byte{byte(tag)}, body...), nil
}

func checkRoundChangeCertificateSize(pc *PreparedCertificate, limits Limits) error {
	if pc == nil {
		return nil
	}
	if limits.MaxPreparedCertificatePrepares > 0 && len(pc.Prepares) > limits.MaxPreparedCertificatePrepares {
		return Errf(OversizedMessage, "prepared certificate carries %d prepares, cap is %d",
			len(pc.Prepares), limits.MaxPreparedCertificatePrepares)
	}
	return nil
}

func checkNewRoundSize(m *SignedNewRound, limits Limits) error {
	if limits.MaxRoundChangeCertificateSize > 0 && len(m.Payload.Certificate.Payloads) > limits.MaxRoundChangeCertificateSize {
		return Errf(OversizedMessage, "round-change certificate carries %d payloads, cap is %d",
			len(m.Payload.Certificate.Payloads), limits.MaxRoundChangeCertificateSize)
	}
	for _, rc := range m.Payload.Certificate.Payloads {
		if rc == nil {
			continue
		}
		if err := checkRoundChangeCertificateSize(rc.Payload.PreparedCertificate, limits); err != nil {
			return err
		}
	}
	return nil
}
