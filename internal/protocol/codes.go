package protocol

import (
	"strconv"
	"strings"
)

// ErrorCode identifies an application-level failure carried in an error
// or *_FAILED response payload as "<code>|<description>".
type ErrorCode uint16

const (
	CodeSuccess            ErrorCode = 0
	CodeInvalidFormat      ErrorCode = 1
	CodeInvalidCredentials ErrorCode = 2
	CodeUserExists         ErrorCode = 3
	CodeUserNotFound       ErrorCode = 4
	CodeNotAuthenticated   ErrorCode = 5
	CodePermissionDenied   ErrorCode = 6
	CodeNotFound           ErrorCode = 7
	CodeInternal           ErrorCode = 8
	CodeDatabase           ErrorCode = 9
	CodeInvalidParameter   ErrorCode = 10
)

func (c ErrorCode) String() string {
	switch c {
	case CodeSuccess:
		return "success"
	case CodeInvalidFormat:
		return "invalid format"
	case CodeInvalidCredentials:
		return "invalid credentials"
	case CodeUserExists:
		return "user already exists"
	case CodeUserNotFound:
		return "user not found"
	case CodeNotAuthenticated:
		return "not authenticated"
	case CodePermissionDenied:
		return "permission denied"
	case CodeNotFound:
		return "resource not found"
	case CodeInternal:
		return "internal error"
	case CodeDatabase:
		return "database error"
	case CodeInvalidParameter:
		return "invalid parameter"
	default:
		return "unknown error"
	}
}

// ErrorPayload builds the payload of an error response.
func ErrorPayload(code ErrorCode, description string) string {
	return strconv.Itoa(int(code)) + "|" + description
}

// ParseErrorPayload splits an error payload into code and description.
// A payload that does not follow the "<code>|<description>" form is
// reported as CodeInternal with the raw payload as description.
func ParseErrorPayload(payload string) (ErrorCode, string) {
	code, desc, ok := strings.Cut(payload, "|")
	if !ok {
		return CodeInternal, payload
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return CodeInternal, payload
	}
	return ErrorCode(n), desc
}

// SuccessPayload is the payload of a success response with no data: the
// success code alone.
func SuccessPayload() string {
	return strconv.Itoa(int(CodeSuccess))
}

// SuccessDataPayload is the payload of a success response carrying
// additional data after the success code.
func SuccessDataPayload(data string) string {
	if data == "" {
		return SuccessPayload()
	}
	return strconv.Itoa(int(CodeSuccess)) + "|" + data
}
