package protocol

import (
	"strconv"
	"strings"
)

// Payload builders and parsers for the request/response bodies. The
// numeric role and level fields stay as raw uint8 values here; mapping
// them onto domain types is the caller's concern, keeping this package
// dependency-free.

// ErrBadPayload reports a payload whose field count or shape does not
// match the message type.
var ErrBadPayload = Error("malformed payload")

// BuildRegister builds a registration payload: "username|password|role".
func BuildRegister(username, password string, role uint8) string {
	return username + "|" + password + "|" + strconv.Itoa(int(role))
}

// ParseRegister splits a registration payload into its three fields.
func ParseRegister(payload string) (username, password string, role uint8, err error) {
	parts := strings.SplitN(payload, "|", 3)
	if len(parts) < 3 {
		return "", "", 0, ErrBadPayload
	}
	r, convErr := strconv.ParseUint(strings.TrimSpace(parts[2]), 10, 8)
	if convErr != nil {
		return "", "", 0, ErrBadPayload
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), uint8(r), nil
}

// BuildLogin builds a login payload: "username|password".
func BuildLogin(username, password string) string {
	return username + "|" + password
}

// ParseLogin splits a login payload into username and password.
func ParseLogin(payload string) (username, password string, err error) {
	parts := strings.SplitN(payload, "|", 2)
	if len(parts) < 2 {
		return "", "", ErrBadPayload
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

// BuildSetLevel builds a set-level payload: the level as a decimal.
func BuildSetLevel(level uint8) string {
	return strconv.Itoa(int(level))
}

// ParseSetLevel parses a set-level payload.
func ParseSetLevel(payload string) (uint8, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(payload), 10, 8)
	if err != nil {
		return 0, ErrBadPayload
	}
	return uint8(n), nil
}

// BuildLoginData builds the LOGIN_SUCCESS payload: "role|level|score".
func BuildLoginData(role, level uint8, score int) string {
	return strconv.Itoa(int(role)) + "|" + strconv.Itoa(int(level)) + "|" + strconv.Itoa(score)
}

// ParseLoginData parses a LOGIN_SUCCESS payload.
func ParseLoginData(payload string) (role, level uint8, score int, err error) {
	parts := strings.SplitN(payload, "|", 3)
	if len(parts) < 3 {
		return 0, 0, 0, ErrBadPayload
	}
	r, err1 := strconv.ParseUint(parts[0], 10, 8)
	l, err2 := strconv.ParseUint(parts[1], 10, 8)
	s, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, ErrBadPayload
	}
	return uint8(r), uint8(l), s, nil
}

// BuildChat builds a chat payload: "recipient|text". The text may
// contain further '|' characters.
func BuildChat(recipient, text string) string {
	return recipient + "|" + text
}

// ParseChat splits a chat payload into recipient and text.
func ParseChat(payload string) (recipient, text string, err error) {
	recipient, text, ok := strings.Cut(payload, "|")
	recipient = strings.TrimSpace(recipient)
	if !ok || recipient == "" || text == "" {
		return "", "", ErrBadPayload
	}
	return recipient, text, nil
}

// BuildFeedback builds a send-feedback payload:
// "target|exerciseId|text".
func BuildFeedback(target, exerciseID, text string) string {
	return target + "|" + exerciseID + "|" + text
}

// ParseFeedback splits a send-feedback payload into its three fields.
func ParseFeedback(payload string) (target, exerciseID, text string, err error) {
	parts := strings.SplitN(payload, "|", 3)
	if len(parts) < 3 {
		return "", "", "", ErrBadPayload
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), parts[2], nil
}

// BuildGameItem builds an add-game-item payload: "category|data".
func BuildGameItem(category, data string) string {
	return category + "|" + data
}

// ParseGameItem splits an add-game-item payload.
func ParseGameItem(payload string) (category, data string, err error) {
	category, data, ok := strings.Cut(payload, "|")
	if !ok {
		return "", "", ErrBadPayload
	}
	return strings.TrimSpace(category), data, nil
}

// ParseSubmission splits a quiz or exercise submission payload:
// "id|answers". Answers may contain further '|' characters.
func ParseSubmission(payload string) (id, answers string, err error) {
	id, answers, ok := strings.Cut(payload, "|")
	if !ok {
		return "", "", ErrBadPayload
	}
	return strings.TrimSpace(id), answers, nil
}
