// Package dispatch turns one incoming request frame into exactly one
// response frame. A Dispatcher is bound 1:1 to a connection for its
// lifetime and holds only that connection's authentication state; all
// shared state lives behind the Store interface.
package dispatch

import (
	"io"
	"log/slog"

	"linguahub/internal/protocol"
	"linguahub/pkg/types"
)

// Store is the slice of the shared store the dispatcher consumes.
type Store interface {
	CreateUser(username, password string, role types.Role) error
	Authenticate(username, password string) (types.UserRecord, error)
	CreateSession(username, connectionID string) (types.Session, error)
	RemoveSessionByConn(connectionID string) (string, bool)
	SetLevel(username string, level types.Level) error
	AddScore(username string, points int) (int, error)
	Score(username string) (int, error)
	Lessons(level types.Level) []types.LessonEntry
	LessonContent(id string) (string, error)
	AddFeedback(entry types.FeedbackEntry)
	FeedbackFor(username string) []types.FeedbackEntry
	AddGameItem(category, data string)
	GameItems(category string) []types.GameItem
}

// Points awarded for accepted submissions.
const (
	quizPoints     = 10
	exercisePoints = 5
)

type handlerFunc func(protocol.Message) protocol.Message

// Dispatcher is the per-connection request state machine. It is driven
// by a single goroutine (the server's event loop) and needs no locking
// of its own.
type Dispatcher struct {
	store  Store
	log    *slog.Logger
	connID string

	authenticated bool
	username      string
	role          types.Role
	level         types.Level

	handlers map[protocol.MessageType]handlerFunc
}

// New creates a dispatcher for one connection.
func New(st Store, log *slog.Logger, connectionID string) *Dispatcher {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	d := &Dispatcher{store: st, log: log, connID: connectionID}
	d.handlers = map[protocol.MessageType]handlerFunc{
		protocol.TypeRegisterRequest:        d.handleRegister,
		protocol.TypeLoginRequest:           d.handleLogin,
		protocol.TypeLogoutRequest:          d.handleLogout,
		protocol.TypeSetLevelRequest:        d.handleSetLevel,
		protocol.TypeLessonListRequest:      d.handleLessonList,
		protocol.TypeLessonContentRequest:   d.handleLessonContent,
		protocol.TypeSubmitQuizRequest:      d.handleSubmitQuiz,
		protocol.TypeSubmitExerciseRequest:  d.handleSubmitExercise,
		protocol.TypeGameStartRequest:       d.handleGameStart,
		protocol.TypeGameMoveRequest:        d.handleGameMove,
		protocol.TypeScoreRequest:           d.handleScore,
		protocol.TypeFeedbackRequest:        d.handleFeedback,
		protocol.TypeSendFeedbackRequest:    d.handleSendFeedback,
		protocol.TypeChatMessage:            d.handleChat,
		protocol.TypeVoiceCallRequest:       d.handleVoiceCall,
		protocol.TypeAddGameItemRequest:     d.handleAddGameItem,
		protocol.TypeHeartbeatRequest:       d.handleHeartbeat,
		protocol.TypeDisconnectNotification: d.handleDisconnect,
	}
	return d
}

// Authenticated reports whether the connection has a bound session.
func (d *Dispatcher) Authenticated() bool { return d.authenticated }

// Username returns the bound session's username, or "" before login.
func (d *Dispatcher) Username() string { return d.username }

// Dispatch produces the single response for a validated request frame.
// The authentication gate runs before any handler: a gated request on
// an unauthenticated connection is answered with a not-authenticated
// error and never reaches the store. Responses echo the request's
// sequence number.
func (d *Dispatcher) Dispatch(m protocol.Message) protocol.Message {
	var resp protocol.Message

	switch {
	case protocol.RequiresAuth(m.Type) && !d.authenticated:
		resp = errorResponse(protocol.CodeNotAuthenticated, "authentication required")
	default:
		h, ok := d.handlers[m.Type]
		if !ok {
			resp = errorResponse(protocol.CodeInvalidFormat, "unknown message type")
		} else {
			resp = h(m)
		}
	}

	resp.Seq = m.Seq
	return resp
}

// Release drops the session bound to this connection, if any. Called on
// connection teardown; removing by connection identity means an evicted
// session (same user logged in elsewhere) is left alone.
func (d *Dispatcher) Release() {
	if username, ok := d.store.RemoveSessionByConn(d.connID); ok {
		d.log.Info("session released", "username", username, "connection_id", d.connID)
	}
	d.authenticated = false
	d.username = ""
}

func errorResponse(code protocol.ErrorCode, description string) protocol.Message {
	return protocol.NewMessage(protocol.TypeError, 0, protocol.ErrorPayload(code, description))
}

func response(t protocol.MessageType, payload string) protocol.Message {
	return protocol.NewMessage(t, 0, payload)
}
