package client

import (
	"errors"
	"fmt"

	"linguahub/internal/protocol"
)

// Local transport failures. These never describe a server-side
// rejection; those arrive as a *ServerError.
var (
	ErrTimeout      = errors.New("call timed out waiting for response")
	ErrClosed       = errors.New("connection closed")
	ErrNotConnected = errors.New("client is not connected")
)

// ServerError is a rejection the server answered with: either an error
// frame or an operation-specific failure frame.
type ServerError struct {
	Code        protocol.ErrorCode
	Description string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d (%s): %s", uint16(e.Code), e.Code, e.Description)
}

// failureTypes are operation-specific rejection frames that carry an
// error payload just like the generic error frame does.
var failureTypes = map[protocol.MessageType]bool{
	protocol.TypeError:             true,
	protocol.TypeRegisterFailed:    true,
	protocol.TypeLoginFailed:       true,
	protocol.TypeSetLevelFailed:    true,
	protocol.TypeAddGameItemFailed: true,
}

// asServerError converts a rejection frame into a *ServerError, or
// returns nil for success frames.
func asServerError(m protocol.Message) error {
	if !failureTypes[m.Type] {
		return nil
	}
	code, desc := protocol.ParseErrorPayload(m.Payload)
	return &ServerError{Code: code, Description: desc}
}
