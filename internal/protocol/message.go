// Package protocol implements the line-framed wire protocol spoken
// between the server and its clients.
//
// One frame per line, ASCII decimal header fields:
//
//	<type>|<length>|<sequence>|<payload>\n
//
// The newline terminator is reserved and must never appear inside a
// payload; the '|' delimiter is only significant in the first three
// positions, so payloads may contain it freely.
package protocol

import (
	"bytes"
	"errors"
	"strconv"
)

// MessageType is the numeric tag identifying a request, response or
// notification. Codes are grouped by concern in blocks of 0x100.
type MessageType uint16

const (
	// Authentication and account management (0x01xx)
	TypeRegisterRequest MessageType = 0x0101
	TypeRegisterSuccess MessageType = 0x0102
	TypeRegisterFailed  MessageType = 0x0103

	TypeLoginRequest MessageType = 0x0111
	TypeLoginSuccess MessageType = 0x0112
	TypeLoginFailed  MessageType = 0x0113

	TypeLogoutRequest MessageType = 0x0121
	TypeLogoutSuccess MessageType = 0x0122

	// Study setup (0x02xx)
	TypeSetLevelRequest MessageType = 0x0201
	TypeSetLevelSuccess MessageType = 0x0202
	TypeSetLevelFailed  MessageType = 0x0203

	// Content access (0x03xx)
	TypeLessonListRequest  MessageType = 0x0301
	TypeLessonListResponse MessageType = 0x0302

	TypeLessonContentRequest  MessageType = 0x0311
	TypeLessonContentResponse MessageType = 0x0312

	// Exercises and tests (0x04xx)
	TypeSubmitQuizRequest  MessageType = 0x0401
	TypeSubmitQuizResponse MessageType = 0x0402

	TypeSubmitExerciseRequest  MessageType = 0x0411
	TypeSubmitExerciseResponse MessageType = 0x0412

	// Games (0x05xx)
	TypeGameStartRequest  MessageType = 0x0501
	TypeGameStartResponse MessageType = 0x0502

	TypeGameMoveRequest  MessageType = 0x0511
	TypeGameMoveResponse MessageType = 0x0512

	TypeGameEndNotification MessageType = 0x0521

	// Feedback and assessment (0x06xx)
	TypeScoreRequest  MessageType = 0x0601
	TypeScoreResponse MessageType = 0x0602

	TypeFeedbackRequest  MessageType = 0x0611
	TypeFeedbackResponse MessageType = 0x0612

	TypeSendFeedbackRequest MessageType = 0x0621
	TypeSendFeedbackSuccess MessageType = 0x0622

	// Communication (0x07xx)
	TypeChatMessage    MessageType = 0x0701
	TypeChatMessageAck MessageType = 0x0702

	TypeVoiceCallRequest MessageType = 0x0711
	TypeVoiceCallAccept  MessageType = 0x0712
	TypeVoiceCallReject  MessageType = 0x0713
	TypeVoiceCallEnd     MessageType = 0x0714

	// Admin operations (0x08xx)
	TypeAddGameItemRequest MessageType = 0x0801
	TypeAddGameItemSuccess MessageType = 0x0802
	TypeAddGameItemFailed  MessageType = 0x0803

	// System messages (0x09xx)
	TypeHeartbeatRequest  MessageType = 0x0901
	TypeHeartbeatResponse MessageType = 0x0902

	TypeError MessageType = 0x0911

	TypeDisconnectNotification MessageType = 0x0921

	// TypeUnknown is the sentinel produced when a frame's header cannot
	// be parsed. It never appears on the wire in a valid frame.
	TypeUnknown MessageType = 0xFFFF
)

// MaxPayloadSize is the largest payload accepted on either side of the
// connection, in bytes.
const MaxPayloadSize = 8192

// Terminator delimits frames on the wire. Payloads must not contain it;
// the protocol has no escaping mechanism.
const Terminator = '\n'

// fieldDelimiter separates the three header fields and the payload.
const fieldDelimiter = '|'

// Message is one protocol frame. Len carries the declared payload
// length from the wire header; for locally built messages NewMessage
// keeps it consistent with the payload. A message is immutable once
// built.
type Message struct {
	Type    MessageType
	Len     uint16
	Seq     uint32
	Payload string
}

// NewMessage builds a message with a consistent length header.
func NewMessage(t MessageType, seq uint32, payload string) Message {
	return Message{Type: t, Len: uint16(len(payload)), Seq: seq, Payload: payload}
}

// Encoding errors. Frames violating these constraints are
// unrepresentable on the wire and are rejected before sending.
var (
	ErrPayloadTerminator = errors.New("payload contains the frame terminator")
	ErrPayloadTooLarge   = errors.New("payload exceeds maximum size")
)

// Encode serializes the message into its wire form, including the
// trailing terminator. The length header is taken from the actual
// payload, not from m.Len.
func (m Message) Encode() ([]byte, error) {
	if bytes.IndexByte([]byte(m.Payload), Terminator) >= 0 {
		return nil, ErrPayloadTerminator
	}
	if len(m.Payload) > MaxPayloadSize {
		return nil, ErrPayloadTooLarge
	}

	buf := make([]byte, 0, len(m.Payload)+24)
	buf = strconv.AppendUint(buf, uint64(m.Type), 10)
	buf = append(buf, fieldDelimiter)
	buf = strconv.AppendUint(buf, uint64(len(m.Payload)), 10)
	buf = append(buf, fieldDelimiter)
	buf = strconv.AppendUint(buf, uint64(m.Seq), 10)
	buf = append(buf, fieldDelimiter)
	buf = append(buf, m.Payload...)
	buf = append(buf, Terminator)
	return buf, nil
}

// Decode parses a single frame line (without the terminator). Parse
// failures in the three numeric header fields, or a missing delimiter,
// yield a message with TypeUnknown rather than an error; everything
// after the third delimiter is payload and may itself contain '|'.
func Decode(line []byte) Message {
	unknown := Message{Type: TypeUnknown}

	p1 := bytes.IndexByte(line, fieldDelimiter)
	if p1 < 0 {
		return unknown
	}
	p2 := bytes.IndexByte(line[p1+1:], fieldDelimiter)
	if p2 < 0 {
		return unknown
	}
	p2 += p1 + 1
	p3 := bytes.IndexByte(line[p2+1:], fieldDelimiter)
	if p3 < 0 {
		return unknown
	}
	p3 += p2 + 1

	t, err := strconv.ParseUint(string(line[:p1]), 10, 16)
	if err != nil {
		return unknown
	}
	length, err := strconv.ParseUint(string(line[p1+1:p2]), 10, 16)
	if err != nil {
		return unknown
	}
	seq, err := strconv.ParseUint(string(line[p2+1:p3]), 10, 32)
	if err != nil {
		return unknown
	}

	return Message{
		Type:    MessageType(t),
		Len:     uint16(length),
		Seq:     uint32(seq),
		Payload: string(line[p3+1:]),
	}
}
