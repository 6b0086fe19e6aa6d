package scheduler

import (
	"github.com/kubev2v/offload-agent/pkg/worker"

	srvErrors "github.com/kubev2v/offload-agent/pkg/errors"
)

type slot struct {
	index  int
	unit   worker.Unit
	status SlotStatus
}

// registry is the fixed-size set of slots. Only the dispatcher goroutine
// touches it.
type registry struct {
	slots []*slot
}

// initialize replaces the pool with size fresh units, all ready. If any
// spawn fails, the units already spawned are terminated and the registry
// is left empty.
func (r *registry) initialize(size int, spawn func(index int) (worker.Unit, error)) error {
	r.teardown()

	slots := make([]*slot, 0, size)
	for i := range size {
		u, err := spawn(i)
		if err != nil {
			for _, s := range slots {
				s.unit.Terminate()
			}
			return srvErrors.NewSpawnFailureError(i, err)
		}
		slots = append(slots, &slot{index: i, unit: u, status: SlotReady})
	}

	r.slots = slots
	return nil
}

// teardown terminates every unit regardless of status. Returns how many
// units were disposed.
func (r *registry) teardown() int {
	n := len(r.slots)
	for _, s := range r.slots {
		s.unit.Terminate()
	}
	r.slots = nil
	return n
}

// findReady returns the lowest-index ready slot, or nil.
func (r *registry) findReady() *slot {
	for _, s := range r.slots {
		if s.status == SlotReady {
			return s
		}
	}
	return nil
}

func (r *registry) snapshot() []SlotInfo {
	infos := make([]SlotInfo, 0, len(r.slots))
	for _, s := range r.slots {
		infos = append(infos, SlotInfo{Index: s.index, UnitID: s.unit.ID(), Status: s.status})
	}
	return infos
}
