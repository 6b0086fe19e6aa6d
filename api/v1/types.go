package v1

import (
	"encoding/json"
	"time"
)

type Slot struct {
	Index  int    `json:"index"`
	UnitId string `json:"unitId"`
	Status string `json:"status"`
}

type PoolStatus struct {
	Size     int    `json:"size"`
	InFlight int    `json:"inFlight"`
	Queued   int    `json:"queued"`
	Slots    []Slot `json:"slots"`
}

type PoolUpdate struct {
	Size int `json:"size" binding:"required,min=1"`
}

type CallRequest struct {
	FunctionName string          `json:"functionName" binding:"required"`
	Arguments    json.RawMessage `json:"arguments"`
}

type CallAccepted struct {
	Id string `json:"id"`
}

type CallOutcome struct {
	Id    string          `json:"id"`
	Ok    bool            `json:"ok"`
	Value json.RawMessage `json:"value,omitempty"`
	Error *string         `json:"error,omitempty"`
}

type Call struct {
	Id           string          `json:"id"`
	FunctionName string          `json:"functionName"`
	Arguments    json.RawMessage `json:"arguments,omitempty"`
	Status       string          `json:"status"`
	Slot         *int            `json:"slot,omitempty"`
	Result       json.RawMessage `json:"result,omitempty"`
	Error        *string         `json:"error,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type CallListResponse struct {
	Page      int    `json:"page"`
	PageCount int    `json:"pageCount"`
	Total     int    `json:"total"`
	Calls     []Call `json:"calls"`
}

type GetCallsParams struct {
	FunctionName []string `form:"functionName"`
	Status       []string `form:"status"`
	Page         int      `form:"page"`
	PageSize     int      `form:"pageSize"`
}
