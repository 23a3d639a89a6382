package client

import (
	"fmt"
	"strconv"
	"strings"

	"linguahub/internal/protocol"
	"linguahub/pkg/types"
)

// LoginInfo is the account state returned by a successful login.
type LoginInfo struct {
	Role  types.Role
	Level types.Level
	Score int
}

// Register creates an account.
func (c *Client) Register(username, password string, role types.Role) error {
	_, err := c.call(protocol.TypeRegisterRequest,
		protocol.BuildRegister(username, password, uint8(role)))
	return err
}

// Login authenticates and returns the account's role, level and score.
func (c *Client) Login(username, password string) (LoginInfo, error) {
	m, err := c.call(protocol.TypeLoginRequest, protocol.BuildLogin(username, password))
	if err != nil {
		return LoginInfo{}, err
	}

	role, level, score, err := protocol.ParseLoginData(m.Payload)
	if err != nil {
		return LoginInfo{}, err
	}
	return LoginInfo{Role: types.Role(role), Level: types.Level(level), Score: score}, nil
}

// Logout ends the session but keeps the connection open.
func (c *Client) Logout() error {
	_, err := c.call(protocol.TypeLogoutRequest, "")
	return err
}

// SetLevel changes the account's proficiency level.
func (c *Client) SetLevel(level types.Level) error {
	_, err := c.call(protocol.TypeSetLevelRequest, protocol.BuildSetLevel(uint8(level)))
	return err
}

// LessonList fetches the catalogue for the account's current level.
func (c *Client) LessonList() ([]types.LessonEntry, error) {
	m, err := c.call(protocol.TypeLessonListRequest, "")
	if err != nil {
		return nil, err
	}
	if m.Payload == "" {
		return nil, nil
	}

	var entries []types.LessonEntry
	for _, part := range strings.Split(m.Payload, ";") {
		id, title, _ := strings.Cut(part, ":")
		entries = append(entries, types.LessonEntry{ID: id, Title: title})
	}
	return entries, nil
}

// LessonContent fetches one lesson's content body.
func (c *Client) LessonContent(id string) (string, error) {
	m, err := c.call(protocol.TypeLessonContentRequest, id)
	if err != nil {
		return "", err
	}
	return m.Payload, nil
}

// SubmitQuiz submits quiz answers and returns the server's result line.
func (c *Client) SubmitQuiz(quizID, answers string) (string, error) {
	m, err := c.call(protocol.TypeSubmitQuizRequest, quizID+"|"+answers)
	if err != nil {
		return "", err
	}
	return m.Payload, nil
}

// SubmitExercise submits exercise content and returns the result line.
func (c *Client) SubmitExercise(exerciseID, content string) (string, error) {
	m, err := c.call(protocol.TypeSubmitExerciseRequest, exerciseID+"|"+content)
	if err != nil {
		return "", err
	}
	return m.Payload, nil
}

// StartGame begins a game round, returning the round id and its items.
func (c *Client) StartGame(category string) (string, []string, error) {
	m, err := c.call(protocol.TypeGameStartRequest, category)
	if err != nil {
		return "", nil, err
	}

	gameID, rest, _ := strings.Cut(m.Payload, "|")
	if rest == "" {
		return gameID, nil, nil
	}
	return gameID, strings.Split(rest, ";"), nil
}

// GameMove submits one move and returns the server's acknowledgement.
func (c *Client) GameMove(move string) (string, error) {
	m, err := c.call(protocol.TypeGameMoveRequest, move)
	if err != nil {
		return "", err
	}
	return m.Payload, nil
}

// Score fetches the account's aggregate score.
func (c *Client) Score() (int, error) {
	m, err := c.call(protocol.TypeScoreRequest, "")
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(m.Payload)
}

// Feedback fetches the feedback entries addressed to the account.
func (c *Client) Feedback() ([]string, error) {
	m, err := c.call(protocol.TypeFeedbackRequest, "")
	if err != nil {
		return nil, err
	}
	if m.Payload == "" {
		return nil, nil
	}
	return strings.Split(m.Payload, ";"), nil
}

// SendFeedback files feedback for a student. Teacher or admin only.
func (c *Client) SendFeedback(target, exerciseID, text string) error {
	_, err := c.call(protocol.TypeSendFeedbackRequest,
		protocol.BuildFeedback(target, exerciseID, text))
	return err
}

// Chat sends a chat message. The server only acknowledges receipt.
func (c *Client) Chat(recipient, text string) error {
	_, err := c.call(protocol.TypeChatMessage, protocol.BuildChat(recipient, text))
	return err
}

// VoiceCall requests a call and returns the assigned call id.
func (c *Client) VoiceCall(target string) (string, error) {
	m, err := c.call(protocol.TypeVoiceCallRequest, target)
	if err != nil {
		return "", err
	}
	return m.Payload, nil
}

// AddGameItem adds an item to a game category. Admin only.
func (c *Client) AddGameItem(category, data string) error {
	_, err := c.call(protocol.TypeAddGameItemRequest, protocol.BuildGameItem(category, data))
	return err
}

// Heartbeat checks liveness end to end.
func (c *Client) Heartbeat() error {
	m, err := c.call(protocol.TypeHeartbeatRequest, "ping")
	if err != nil {
		return err
	}
	if m.Payload != "pong" {
		return fmt.Errorf("unexpected heartbeat response %q", m.Payload)
	}
	return nil
}
