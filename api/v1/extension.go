package v1

import (
	"encoding/json"

	"github.com/kubev2v/offload-agent/internal/models"
	"github.com/kubev2v/offload-agent/internal/util"
)

func (p *PoolStatus) FromModel(m models.PoolStatus) {
	p.Size = m.Size
	p.InFlight = m.InFlight
	p.Queued = m.Queued
	p.Slots = make([]Slot, 0, len(m.Slots))
	for _, s := range m.Slots {
		p.Slots = append(p.Slots, Slot{
			Index:  s.Index,
			UnitId: s.UnitID,
			Status: string(s.Status),
		})
	}
}

// NewCallFromModel converts a journal record to an API call.
func NewCallFromModel(rec models.CallRecord) Call {
	c := Call{
		Id:           rec.ID,
		FunctionName: rec.FunctionName,
		Status:       string(rec.Status),
		Slot:         rec.Slot,
		Error:        util.StringPtr(rec.Error),
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
	if json.Valid(rec.Arguments) {
		c.Arguments = rec.Arguments
	}
	if rec.Status == models.CallStatusSucceeded && json.Valid(rec.Result) {
		c.Result = rec.Result
	}
	return c
}

func NewCallOutcome(id string, r models.Result[json.RawMessage]) CallOutcome {
	if r.Err != nil {
		return CallOutcome{Id: id, Ok: false, Error: util.StringPtr(r.Err.Error())}
	}
	return CallOutcome{Id: id, Ok: true, Value: r.Data}
}
