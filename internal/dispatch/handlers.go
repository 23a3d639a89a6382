package dispatch

import (
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"linguahub/internal/protocol"
	"linguahub/internal/store"
	"linguahub/pkg/types"
)

func (d *Dispatcher) handleRegister(m protocol.Message) protocol.Message {
	username, password, role, err := protocol.ParseRegister(m.Payload)
	if err != nil {
		return errorResponse(protocol.CodeInvalidFormat, "invalid registration data")
	}
	if !types.IsValidUsername(username) || !types.IsValidPassword(password) {
		return errorResponse(protocol.CodeInvalidFormat, "invalid registration data")
	}

	switch err := d.store.CreateUser(username, password, types.Role(role)); {
	case err == nil:
		d.log.Info("user registered", "username", username)
		return response(protocol.TypeRegisterSuccess, protocol.SuccessPayload())
	case errors.Is(err, store.ErrUserExists):
		return response(protocol.TypeRegisterFailed,
			protocol.ErrorPayload(protocol.CodeUserExists, "username already exists"))
	case errors.Is(err, types.ErrInvalidRole):
		return errorResponse(protocol.CodeInvalidFormat, "invalid registration data")
	default:
		return errorResponse(protocol.CodeDatabase, "failed to create user")
	}
}

func (d *Dispatcher) handleLogin(m protocol.Message) protocol.Message {
	username, password, err := protocol.ParseLogin(m.Payload)
	if err != nil || !types.IsValidUsername(username) || !types.IsValidPassword(password) {
		return errorResponse(protocol.CodeInvalidFormat, "invalid login data")
	}

	user, err := d.store.Authenticate(username, password)
	if err != nil {
		d.log.Warn("failed login attempt", "username", username)
		return response(protocol.TypeLoginFailed,
			protocol.ErrorPayload(protocol.CodeInvalidCredentials, "invalid username or password"))
	}

	// Re-login on an already-authenticated connection drops the old
	// binding first so the connection never owns two sessions.
	if d.authenticated {
		d.store.RemoveSessionByConn(d.connID)
	}

	if _, err := d.store.CreateSession(username, d.connID); err != nil {
		if errors.Is(err, store.ErrSessionExists) {
			return response(protocol.TypeLoginFailed,
				protocol.ErrorPayload(protocol.CodePermissionDenied, "user already logged in"))
		}
		return errorResponse(protocol.CodeDatabase, "failed to create session")
	}

	d.authenticated = true
	d.username = user.Username
	d.role = user.Role
	d.level = user.Level

	d.log.Info("user logged in", "username", username, "connection_id", d.connID)
	return response(protocol.TypeLoginSuccess,
		protocol.BuildLoginData(uint8(user.Role), uint8(user.Level), user.Score))
}

func (d *Dispatcher) handleLogout(protocol.Message) protocol.Message {
	d.store.RemoveSessionByConn(d.connID)
	d.log.Info("user logged out", "username", d.username)

	d.authenticated = false
	d.username = ""
	return response(protocol.TypeLogoutSuccess, protocol.SuccessPayload())
}

func (d *Dispatcher) handleSetLevel(m protocol.Message) protocol.Message {
	raw, err := protocol.ParseSetLevel(m.Payload)
	level := types.Level(raw)
	if err != nil || !level.Valid() {
		return errorResponse(protocol.CodeInvalidParameter, "invalid level")
	}

	if err := d.store.SetLevel(d.username, level); err != nil {
		return response(protocol.TypeSetLevelFailed,
			protocol.ErrorPayload(protocol.CodeDatabase, "failed to update level"))
	}
	d.level = level
	return response(protocol.TypeSetLevelSuccess, protocol.SuccessPayload())
}

func (d *Dispatcher) handleLessonList(protocol.Message) protocol.Message {
	entries := d.store.Lessons(d.level)

	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, e.ID+":"+e.Title)
	}
	return response(protocol.TypeLessonListResponse, strings.Join(parts, ";"))
}

func (d *Dispatcher) handleLessonContent(m protocol.Message) protocol.Message {
	content, err := d.store.LessonContent(strings.TrimSpace(m.Payload))
	if err != nil {
		return errorResponse(protocol.CodeNotFound, "lesson not found")
	}
	return response(protocol.TypeLessonContentResponse, content)
}

func (d *Dispatcher) handleSubmitQuiz(m protocol.Message) protocol.Message {
	quizID, _, err := protocol.ParseSubmission(m.Payload)
	if err != nil {
		return errorResponse(protocol.CodeInvalidFormat, "invalid quiz submission")
	}

	if _, err := d.store.AddScore(d.username, quizPoints); err != nil {
		return errorResponse(protocol.CodeDatabase, "failed to save score")
	}
	d.log.Info("quiz submitted", "username", d.username, "quiz_id", quizID, "points", quizPoints)
	return response(protocol.TypeSubmitQuizResponse,
		strconv.Itoa(quizPoints)+"|Correct answers: 1/1")
}

func (d *Dispatcher) handleSubmitExercise(m protocol.Message) protocol.Message {
	exerciseID, _, err := protocol.ParseSubmission(m.Payload)
	if err != nil {
		return errorResponse(protocol.CodeInvalidFormat, "invalid exercise submission")
	}

	if _, err := d.store.AddScore(d.username, exercisePoints); err != nil {
		return errorResponse(protocol.CodeDatabase, "failed to save score")
	}
	d.log.Info("exercise submitted", "username", d.username, "exercise_id", exerciseID, "points", exercisePoints)
	return response(protocol.TypeSubmitExerciseResponse, strconv.Itoa(exercisePoints))
}

func (d *Dispatcher) handleGameStart(m protocol.Message) protocol.Message {
	category := strings.TrimSpace(m.Payload)
	items := d.store.GameItems(category)

	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.Data)
	}
	gameID := uuid.NewString()
	return response(protocol.TypeGameStartResponse, gameID+"|"+strings.Join(parts, ";"))
}

func (d *Dispatcher) handleGameMove(m protocol.Message) protocol.Message {
	// Moves are acknowledged, not judged; game logic lives client-side.
	return response(protocol.TypeGameMoveResponse, "move_accepted")
}

func (d *Dispatcher) handleScore(protocol.Message) protocol.Message {
	score, err := d.store.Score(d.username)
	if err != nil {
		return errorResponse(protocol.CodeDatabase, "failed to retrieve score")
	}
	return response(protocol.TypeScoreResponse, strconv.Itoa(score))
}

func (d *Dispatcher) handleFeedback(protocol.Message) protocol.Message {
	entries := d.store.FeedbackFor(d.username)

	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, "Exercise: "+e.ExerciseID+" | From: "+e.Author+" | "+e.Text)
	}
	return response(protocol.TypeFeedbackResponse, strings.Join(parts, ";"))
}

func (d *Dispatcher) handleSendFeedback(m protocol.Message) protocol.Message {
	if d.role != types.RoleTeacher && d.role != types.RoleAdmin {
		return errorResponse(protocol.CodePermissionDenied, "only teachers can send feedback")
	}

	target, exerciseID, text, err := protocol.ParseFeedback(m.Payload)
	if err != nil {
		return errorResponse(protocol.CodeInvalidFormat, "invalid feedback format")
	}

	d.store.AddFeedback(types.FeedbackEntry{
		Recipient:  target,
		ExerciseID: exerciseID,
		Author:     d.username,
		Text:       text,
	})
	return response(protocol.TypeSendFeedbackSuccess, protocol.SuccessPayload())
}

func (d *Dispatcher) handleChat(m protocol.Message) protocol.Message {
	recipient, text, err := protocol.ParseChat(m.Payload)
	if err != nil {
		return errorResponse(protocol.CodeInvalidFormat, "invalid chat message")
	}

	// Acknowledged only: there is no delivery path to the recipient.
	d.log.Info("chat message", "from", d.username, "to", recipient, "bytes", len(text))
	return response(protocol.TypeChatMessageAck, protocol.SuccessDataPayload("message sent"))
}

func (d *Dispatcher) handleVoiceCall(m protocol.Message) protocol.Message {
	target := strings.TrimSpace(m.Payload)
	if target == "" {
		return errorResponse(protocol.CodeInvalidFormat, "invalid call target")
	}

	// Acknowledged only: no media channel is ever established.
	d.log.Info("voice call requested", "from", d.username, "to", target)
	return response(protocol.TypeVoiceCallAccept, "call_"+uuid.NewString())
}

func (d *Dispatcher) handleAddGameItem(m protocol.Message) protocol.Message {
	if d.role != types.RoleAdmin {
		return response(protocol.TypeAddGameItemFailed,
			protocol.ErrorPayload(protocol.CodePermissionDenied, "admin access required"))
	}

	category, data, err := protocol.ParseGameItem(m.Payload)
	if err != nil || category == "" {
		return response(protocol.TypeAddGameItemFailed,
			protocol.ErrorPayload(protocol.CodeInvalidFormat, "invalid game item format"))
	}

	d.store.AddGameItem(category, data)
	return response(protocol.TypeAddGameItemSuccess, protocol.SuccessPayload())
}

func (d *Dispatcher) handleHeartbeat(protocol.Message) protocol.Message {
	return response(protocol.TypeHeartbeatResponse, "pong")
}

func (d *Dispatcher) handleDisconnect(protocol.Message) protocol.Message {
	// The server tears the connection down after this response; the
	// session is released through Release on teardown.
	return response(protocol.TypeDisconnectNotification, protocol.SuccessPayload())
}
