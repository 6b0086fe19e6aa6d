package worker

import (
	"encoding/json"

	srvErrors "github.com/kubev2v/offload-agent/pkg/errors"
)

const (
	KindUnknownFunction = "UnknownFunction"
	KindTaskExecution   = "TaskExecutionError"
)

// TaskMessage is what the dispatcher posts to a unit.
type TaskMessage struct {
	FunctionName string          `json:"functionName"`
	Arguments    json.RawMessage `json:"arguments"`
}

// ResultMessage is the single reply a unit produces for a TaskMessage.
// Exactly one of Value or Error is meaningful, selected by OK.
type ResultMessage struct {
	OK    bool             `json:"ok"`
	Value json.RawMessage  `json:"value,omitempty"`
	Error *ErrorDescriptor `json:"error,omitempty"`
}

type ErrorDescriptor struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Reply correlates a ResultMessage with the unit that produced it.
type Reply struct {
	UnitID string
	Result ResultMessage
}

func Success(value json.RawMessage) ResultMessage {
	return ResultMessage{OK: true, Value: value}
}

func Failure(kind, message string) ResultMessage {
	return ResultMessage{OK: false, Error: &ErrorDescriptor{Kind: kind, Message: message}}
}

// Err rebuilds the typed error carried by the descriptor.
func (d *ErrorDescriptor) Err(function string) error {
	if d == nil {
		return srvErrors.NewTaskExecutionError(function, "no error descriptor")
	}
	switch d.Kind {
	case KindUnknownFunction:
		return srvErrors.NewUnknownFunctionError(function)
	default:
		return srvErrors.NewTaskExecutionError(function, d.Message)
	}
}
