package protocol

import "bytes"

// Validation errors for decoded frames.
var (
	ErrUnknownType    = Error("unknown message type")
	ErrLengthMismatch = Error("declared payload length disagrees with actual length")
	ErrOversize       = Error("payload exceeds maximum size")
)

// Error is a simple error type for protocol errors, allowing sentinel
// errors to be declared as constants.
type Error string

func (e Error) Error() string { return string(e) }

// Validate checks a decoded message against the frame invariants: the
// type must not be the parse-failure sentinel, the declared length must
// equal the actual payload length, and the payload must not exceed
// MaxPayloadSize.
func Validate(m Message) error {
	if m.Type == TypeUnknown {
		return ErrUnknownType
	}
	if int(m.Len) != len(m.Payload) {
		return ErrLengthMismatch
	}
	if len(m.Payload) > MaxPayloadSize {
		return ErrOversize
	}
	return nil
}

// Extract drains all complete frames from buf, leaving any trailing
// partial frame in place for the next call. Each line up to a
// terminator is decoded and validated; frames that fail validation are
// dropped (counted, never fatal) so a corrupted frame cannot take down
// the stream. Valid messages are returned in encounter order.
//
// Feeding the same byte stream through Extract in arbitrary chunks
// produces the same message sequence as feeding it whole.
func Extract(buf *bytes.Buffer) (msgs []Message, dropped int) {
	for {
		data := buf.Bytes()
		i := bytes.IndexByte(data, Terminator)
		if i < 0 {
			return msgs, dropped
		}

		line := make([]byte, i)
		copy(line, data[:i])
		buf.Next(i + 1)

		// Tolerate CRLF producers.
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		if len(line) == 0 {
			continue
		}

		m := Decode(line)
		if Validate(m) != nil {
			dropped++
			continue
		}
		msgs = append(msgs, m)
	}
}

// RequiresAuth reports whether a message type is subject to the
// authentication gate. Registration, login, heartbeats and disconnect
// notices are the only requests a fresh connection may issue.
func RequiresAuth(t MessageType) bool {
	switch t {
	case TypeRegisterRequest, TypeLoginRequest, TypeHeartbeatRequest, TypeDisconnectNotification:
		return false
	default:
		return true
	}
}
