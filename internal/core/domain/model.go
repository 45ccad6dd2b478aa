package domain

type ExecutionEventType string

const (
	ExecutionStarted ExecutionEventType = "execution_started"
	Executed         ExecutionEventType = "executed"
	ExecutionError   ExecutionEventType = "execution_error"
)

// ExecutionEvent is pushed to host sessions subscribed to the progress
// channel, once per invocation state change.
type ExecutionEvent struct {
	Type   ExecutionEventType `json:"type"`
	ExecID string             `json:"exec_id"`
	Node   string             `json:"node"`
	Info   string             `json:"info,omitempty"`
	Error  string             `json:"error,omitempty"`
}
