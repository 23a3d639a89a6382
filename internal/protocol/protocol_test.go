package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []Message{
		NewMessage(TypeLoginRequest, 1, "alice|pass1234"),
		NewMessage(TypeHeartbeatRequest, 42, "ping"),
		NewMessage(TypeLoginSuccess, 7, "1|1|0"),
		NewMessage(TypeChatMessage, 0, "bob|hello | with pipes ||"),
		NewMessage(TypeLessonListResponse, 4294967295, ""),
		NewMessage(TypeError, 9, "5|not authenticated"),
	}

	for _, m := range cases {
		wire, err := m.Encode()
		require.NoError(t, err)
		require.Equal(t, byte(Terminator), wire[len(wire)-1])

		got := Decode(wire[:len(wire)-1])
		assert.Equal(t, m, got)
		assert.NoError(t, Validate(got))
	}
}

func TestEncodeRejectsUnrepresentableFrames(t *testing.T) {
	_, err := NewMessage(TypeChatMessage, 1, "bob|line1\nline2").Encode()
	assert.ErrorIs(t, err, ErrPayloadTerminator)

	big := make([]byte, MaxPayloadSize+1)
	for i := range big {
		big[i] = 'a'
	}
	_, err = NewMessage(TypeChatMessage, 1, string(big)).Encode()
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestDecodeParseFailuresYieldUnknown(t *testing.T) {
	cases := []string{
		"",
		"no delimiters at all",
		"257|5",
		"257|5|1",
		"abc|5|1|hello",
		"257|xyz|1|hello",
		"257|5|xyz|hello",
		"-1|5|1|hello",
		"99999|5|1|hello", // type overflows uint16
	}

	for _, c := range cases {
		m := Decode([]byte(c))
		assert.Equal(t, TypeUnknown, m.Type, "input %q", c)
		assert.ErrorIs(t, Validate(m), ErrUnknownType, "input %q", c)
	}
}

func TestDecodePayloadMayContainDelimiter(t *testing.T) {
	m := Decode([]byte("1793|9|3|bob|hello"))
	assert.Equal(t, TypeChatMessage, m.Type)
	assert.Equal(t, "bob|hello", m.Payload)
	assert.Equal(t, uint32(3), m.Seq)
}

func TestValidateRejections(t *testing.T) {
	mismatch := Message{Type: TypeHeartbeatRequest, Len: 99, Seq: 1, Payload: "ping"}
	assert.ErrorIs(t, Validate(mismatch), ErrLengthMismatch)

	big := make([]byte, MaxPayloadSize+1)
	oversize := Message{Type: TypeChatMessage, Len: uint16(len(big)), Seq: 1, Payload: string(big)}
	assert.ErrorIs(t, Validate(oversize), ErrOversize)

	assert.ErrorIs(t, Validate(Message{Type: TypeUnknown}), ErrUnknownType)
}

func encodeAll(t *testing.T, msgs []Message) []byte {
	t.Helper()
	var stream []byte
	for _, m := range msgs {
		wire, err := m.Encode()
		require.NoError(t, err)
		stream = append(stream, wire...)
	}
	return stream
}

func TestExtractWholeStream(t *testing.T) {
	msgs := []Message{
		NewMessage(TypeRegisterRequest, 1, "alice|pass1234|1"),
		NewMessage(TypeLoginRequest, 2, "alice|pass1234"),
		NewMessage(TypeHeartbeatRequest, 3, "ping"),
	}

	buf := bytes.NewBuffer(encodeAll(t, msgs))
	got, dropped := Extract(buf)

	assert.Equal(t, msgs, got)
	assert.Zero(t, dropped)
	assert.Zero(t, buf.Len())
}

func TestExtractChunkingInvariance(t *testing.T) {
	msgs := []Message{
		NewMessage(TypeLoginRequest, 1, "alice|pass1234"),
		NewMessage(TypeChatMessage, 2, "bob|hi there"),
		NewMessage(TypeScoreRequest, 3, ""),
		NewMessage(TypeLessonContentRequest, 4, "lesson_i2"),
	}
	stream := encodeAll(t, msgs)

	// Feed the stream one chunk at a time for every chunk size from a
	// single byte up to the whole stream; the extracted sequence must
	// not depend on where the chunk boundaries fall.
	for size := 1; size <= len(stream); size++ {
		var buf bytes.Buffer
		var got []Message
		for off := 0; off < len(stream); off += size {
			end := off + size
			if end > len(stream) {
				end = len(stream)
			}
			buf.Write(stream[off:end])
			part, dropped := Extract(&buf)
			assert.Zero(t, dropped)
			got = append(got, part...)
		}
		require.Equal(t, msgs, got, "chunk size %d", size)
		require.Zero(t, buf.Len(), "chunk size %d", size)
	}
}

func TestExtractKeepsTrailingPartialFrame(t *testing.T) {
	whole, err := NewMessage(TypeHeartbeatRequest, 1, "ping").Encode()
	require.NoError(t, err)

	var buf bytes.Buffer
	buf.Write(whole)
	buf.WriteString("2305|4|2|po") // partial second frame

	msgs, dropped := Extract(&buf)
	require.Len(t, msgs, 1)
	assert.Zero(t, dropped)
	assert.Equal(t, "2305|4|2|po", buf.String())

	// Completing the frame yields the second message.
	buf.WriteString("ng\n")
	msgs, dropped = Extract(&buf)
	require.Len(t, msgs, 1)
	assert.Zero(t, dropped)
	assert.Equal(t, "pong", msgs[0].Payload)
	assert.Zero(t, buf.Len())
}

func TestExtractDropsInvalidFramesAndContinues(t *testing.T) {
	good, err := NewMessage(TypeHeartbeatRequest, 2, "ping").Encode()
	require.NoError(t, err)

	var buf bytes.Buffer
	buf.WriteString("2305|9999|1|ping\n") // corrupted length field
	buf.WriteString("garbage line\n")
	buf.Write(good)

	msgs, dropped := Extract(&buf)
	require.Len(t, msgs, 1)
	assert.Equal(t, 2, dropped)
	assert.Equal(t, TypeHeartbeatRequest, msgs[0].Type)
	assert.Zero(t, buf.Len())
}

func TestExtractStripsCarriageReturn(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("2305|4|1|ping\r\n")

	msgs, dropped := Extract(&buf)
	require.Len(t, msgs, 1)
	assert.Zero(t, dropped)
	assert.Equal(t, "ping", msgs[0].Payload)
}

func TestRequiresAuth(t *testing.T) {
	exempt := []MessageType{
		TypeRegisterRequest,
		TypeLoginRequest,
		TypeHeartbeatRequest,
		TypeDisconnectNotification,
	}
	for _, mt := range exempt {
		assert.False(t, RequiresAuth(mt), "type %#x", uint16(mt))
	}

	gated := []MessageType{
		TypeLogoutRequest,
		TypeSetLevelRequest,
		TypeLessonListRequest,
		TypeSubmitQuizRequest,
		TypeSendFeedbackRequest,
		TypeAddGameItemRequest,
		TypeChatMessage,
		TypeVoiceCallRequest,
	}
	for _, mt := range gated {
		assert.True(t, RequiresAuth(mt), "type %#x", uint16(mt))
	}
}

func TestErrorPayloadRoundTrip(t *testing.T) {
	p := ErrorPayload(CodeNotAuthenticated, "authentication required")
	code, desc := ParseErrorPayload(p)
	assert.Equal(t, CodeNotAuthenticated, code)
	assert.Equal(t, "authentication required", desc)

	code, desc = ParseErrorPayload("not an error payload")
	assert.Equal(t, CodeInternal, code)
	assert.Equal(t, "not an error payload", desc)
}

func TestPayloadHelpers(t *testing.T) {
	user, pass, role, err := ParseRegister(BuildRegister("alice", "pass1234", 1))
	require.NoError(t, err)
	assert.Equal(t, "alice", user)
	assert.Equal(t, "pass1234", pass)
	assert.Equal(t, uint8(1), role)

	_, _, _, err = ParseRegister("alice|pass1234")
	assert.ErrorIs(t, err, ErrBadPayload)

	u, p, err := ParseLogin(BuildLogin("bob", "hunter22"))
	require.NoError(t, err)
	assert.Equal(t, "bob", u)
	assert.Equal(t, "hunter22", p)

	lvl, err := ParseSetLevel(" 2 ")
	require.NoError(t, err)
	assert.Equal(t, uint8(2), lvl)
	_, err = ParseSetLevel("two")
	assert.ErrorIs(t, err, ErrBadPayload)

	r, l, s, err := ParseLoginData(BuildLoginData(1, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, uint8(1), r)
	assert.Equal(t, uint8(1), l)
	assert.Equal(t, 0, s)

	rcpt, text, err := ParseChat(BuildChat("bob", "hi|there"))
	require.NoError(t, err)
	assert.Equal(t, "bob", rcpt)
	assert.Equal(t, "hi|there", text)
	_, _, err = ParseChat("no delimiter")
	assert.ErrorIs(t, err, ErrBadPayload)

	target, ex, text, err := ParseFeedback(BuildFeedback("alice", "ex1", "good work"))
	require.NoError(t, err)
	assert.Equal(t, "alice", target)
	assert.Equal(t, "ex1", ex)
	assert.Equal(t, "good work", text)

	id, answers, err := ParseSubmission("quiz1|a;b;c")
	require.NoError(t, err)
	assert.Equal(t, "quiz1", id)
	assert.Equal(t, "a;b;c", answers)
	_, _, err = ParseSubmission("quiz1")
	assert.ErrorIs(t, err, ErrBadPayload)
}
