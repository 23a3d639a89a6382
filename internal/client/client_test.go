package client

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguahub/internal/protocol"
	"linguahub/internal/server"
	"linguahub/internal/store"
	"linguahub/pkg/types"
)

func startBackend(t *testing.T) (*server.Server, *store.Store) {
	t.Helper()

	st := store.New(store.Options{})
	srv, err := server.New(server.Options{Host: "127.0.0.1", Port: 0, Store: st})
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)
	return srv, st
}

func dialBackend(t *testing.T, srv *server.Server) *Client {
	t.Helper()
	c, err := Dial(Options{Addr: srv.Addr(), CallTimeout: 2 * time.Second, PollInterval: 10 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClientEndToEnd(t *testing.T) {
	srv, _ := startBackend(t)
	c := dialBackend(t, srv)

	require.NoError(t, c.Heartbeat())
	require.NoError(t, c.Register("alice", "pass1234", types.RoleStudent))

	info, err := c.Login("alice", "pass1234")
	require.NoError(t, err)
	assert.Equal(t, types.RoleStudent, info.Role)
	assert.Equal(t, types.LevelBeginner, info.Level)
	assert.Zero(t, info.Score)

	require.NoError(t, c.SetLevel(types.LevelIntermediate))

	lessons, err := c.LessonList()
	require.NoError(t, err)
	require.Len(t, lessons, 3)
	assert.Equal(t, "lesson_i1", lessons[0].ID)
	assert.Equal(t, "Travel and Transportation", lessons[0].Title)

	content, err := c.LessonContent("lesson_i2")
	require.NoError(t, err)
	assert.Contains(t, content, "Food and Cooking")

	result, err := c.SubmitQuiz("quiz1", "a;b;c")
	require.NoError(t, err)
	assert.Equal(t, "10|Correct answers: 1/1", result)

	result, err = c.SubmitExercise("ex1", "my essay")
	require.NoError(t, err)
	assert.Equal(t, "5", result)

	score, err := c.Score()
	require.NoError(t, err)
	assert.Equal(t, 15, score)

	require.NoError(t, c.Logout())
}

func TestServerRejectionsAreServerErrors(t *testing.T) {
	srv, st := startBackend(t)
	require.NoError(t, st.CreateUser("alice", "pass1234", types.RoleStudent))
	c := dialBackend(t, srv)

	// Duplicate registration.
	err := c.Register("alice", "pass1234", types.RoleStudent)
	var serr *ServerError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, protocol.CodeUserExists, serr.Code)

	// Gated request before login.
	_, err = c.Score()
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, protocol.CodeNotAuthenticated, serr.Code)

	// Wrong password.
	_, err = c.Login("alice", "wrongpass")
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, protocol.CodeInvalidCredentials, serr.Code)
}

func TestFeedbackRoundTrip(t *testing.T) {
	srv, st := startBackend(t)
	require.NoError(t, st.CreateUser("alice", "pass1234", types.RoleStudent))

	teacher := dialBackend(t, srv)
	_, err := teacher.Login("teacher1", "teacher123")
	require.NoError(t, err)
	require.NoError(t, teacher.SendFeedback("alice", "ex1", "well done"))

	student := dialBackend(t, srv)
	_, err = student.Login("alice", "pass1234")
	require.NoError(t, err)

	entries, err := student.Feedback()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Exercise: ex1 | From: teacher1 | well done", entries[0])

	// Students cannot file feedback.
	var serr *ServerError
	err = student.SendFeedback("teacher1", "ex1", "nope")
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, protocol.CodePermissionDenied, serr.Code)
}

func TestGameFlow(t *testing.T) {
	srv, _ := startBackend(t)

	admin := dialBackend(t, srv)
	_, err := admin.Login("admin", "admin123")
	require.NoError(t, err)
	require.NoError(t, admin.AddGameItem("word_match", "cat:chat"))
	require.NoError(t, admin.AddGameItem("word_match", "dog:chien"))

	gameID, items, err := admin.StartGame("word_match")
	require.NoError(t, err)
	assert.NotEmpty(t, gameID)
	assert.Equal(t, []string{"cat:chat", "dog:chien"}, items)

	ack, err := admin.GameMove("guess:chat")
	require.NoError(t, err)
	assert.Equal(t, "move_accepted", ack)
}

func TestChatAndVoice(t *testing.T) {
	srv, st := startBackend(t)
	require.NoError(t, st.CreateUser("alice", "pass1234", types.RoleStudent))

	c := dialBackend(t, srv)
	_, err := c.Login("alice", "pass1234")
	require.NoError(t, err)

	require.NoError(t, c.Chat("teacher1", "bonjour"))

	callID, err := c.VoiceCall("teacher1")
	require.NoError(t, err)
	assert.Contains(t, callID, "call_")
}

func TestPollOnQuietWire(t *testing.T) {
	srv, _ := startBackend(t)
	c := dialBackend(t, srv)

	m, ok, err := c.Poll()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, m.Type)
}

func TestCallTimeoutIsLocalError(t *testing.T) {
	// A listener that accepts and never answers.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	c, err := Dial(Options{Addr: ln.Addr().String(), CallTimeout: 200 * time.Millisecond, PollInterval: 10 * time.Millisecond})
	require.NoError(t, err)
	defer c.conn.Close()

	start := time.Now()
	_, err = c.Call(protocol.TypeHeartbeatRequest, "ping")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)

	var serr *ServerError
	assert.False(t, errors.As(err, &serr), "local timeout must not look like a server error")
}

func TestUseAfterClose(t *testing.T) {
	srv, _ := startBackend(t)
	c := dialBackend(t, srv)

	require.NoError(t, c.Close())
	_, err := c.Send(protocol.TypeHeartbeatRequest, "ping")
	assert.ErrorIs(t, err, ErrNotConnected)
	_, _, err = c.Poll()
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, c.Close())
}
