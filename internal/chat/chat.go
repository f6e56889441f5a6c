package chat

import "errors"

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Turn is one prior exchange supplied by the caller. History is never
// persisted server-side; it only exists to linearize into the prompt.
type Turn struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type Request struct {
	CompanyID string
	UserID    string
	Question  string
	History   []Turn
	SessionID string
}

var (
	// ErrUnsafeQuery marks a candidate that failed the read-only/scoping
	// allow-list. The candidate text is logged server-side only.
	ErrUnsafeQuery = errors.New("unsafe query")

	// ErrGeneration marks a failed generative-model round trip.
	ErrGeneration = errors.New("generation failed")

	// ErrExecution marks a failed execution of a validated query.
	ErrExecution = errors.New("query execution failed")
)
