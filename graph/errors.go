package graph

import (
	"fmt"
	"log/slog"
)

// Error codes for configuration problems the engine degrades around
// rather than failing on.
const (
	CodeParentNotFound      = "PARENT_NOT_FOUND"
	CodeGraphCycle          = "GRAPH_CYCLE"
	CodeNodeNotFound        = "NODE_NOT_FOUND"
	CodeHandleNotFound      = "HANDLE_NOT_FOUND"
	CodeEdgeEndpointMissing = "EDGE_ENDPOINT_MISSING"
)

// CanvasError is a structured configuration error. Gesture-local errors
// are reported through an ErrorFunc and never thrown across a gesture
// boundary: the gesture continues with degraded geometry.
type CanvasError struct {
	Code     string
	Message  string
	NodeID   NodeID
	HandleID string
}

func (e *CanvasError) Error() string {
	context := ""
	if e.NodeID != "" {
		context = fmt.Sprintf(" (node: %s)", e.NodeID)
	}
	if e.HandleID != "" {
		context += fmt.Sprintf(" (handle: %s)", e.HandleID)
	}
	return fmt.Sprintf("%s: %s%s", e.Code, e.Message, context)
}

// ErrorFunc receives configuration errors as they are detected.
type ErrorFunc func(*CanvasError)

// LogErrors is the default ErrorFunc; it forwards errors to slog as
// warnings since none of them are fatal.
func LogErrors(e *CanvasError) {
	slog.Warn(e.Message,
		"code", e.Code,
		"node", string(e.NodeID),
		"handle", e.HandleID)
}

// errorf builds a CanvasError for the given node.
func errorf(code string, id NodeID, format string, args ...interface{}) *CanvasError {
	return &CanvasError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		NodeID:  id,
	}
}
