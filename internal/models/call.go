package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type CallStatus string

const (
	CallStatusQueued     CallStatus = "queued"
	CallStatusProcessing CallStatus = "processing"
	CallStatusSucceeded  CallStatus = "succeeded"
	CallStatusFailed     CallStatus = "failed"
)

func ParseCallStatus(s string) (CallStatus, error) {
	switch CallStatus(s) {
	case CallStatusQueued, CallStatusProcessing, CallStatusSucceeded, CallStatusFailed:
		return CallStatus(s), nil
	default:
		return "", fmt.Errorf("invalid call status: %s", s)
	}
}

func (s CallStatus) Done() bool {
	return s == CallStatusSucceeded || s == CallStatusFailed
}

// CallRecord is the journal entry of a submitted call.
type CallRecord struct {
	ID           string
	FunctionName string
	Arguments    json.RawMessage
	Status       CallStatus
	// Slot is the pool slot that ran the call, nil while queued.
	Slot      *int
	Result    json.RawMessage
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
