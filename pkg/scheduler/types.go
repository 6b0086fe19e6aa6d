package scheduler

import (
	"encoding/json"
	"time"

	"github.com/kubev2v/offload-agent/pkg/worker"
)

type SlotStatus string

const (
	SlotReady      SlotStatus = "ready"
	SlotProcessing SlotStatus = "processing"
)

// Call is a request to run FunctionName with Arguments on the pool.
// Exactly one of OnSuccess or OnError is invoked once the call completes.
type Call struct {
	// ID is assigned by Submit when empty.
	ID           string
	FunctionName string
	// Arguments must be JSON-encodable. A json.RawMessage is sent as is.
	Arguments any
	OnSuccess func(value json.RawMessage)
	OnError   func(err error)
}

type SlotInfo struct {
	Index  int
	UnitID string
	Status SlotStatus
}

// PoolStatus is a point-in-time snapshot of the pool and its queue.
type PoolStatus struct {
	Slots    []SlotInfo
	InFlight int
	Queued   int
}

func (p PoolStatus) Size() int { return len(p.Slots) }

func (p PoolStatus) Ready() int {
	n := 0
	for _, s := range p.Slots {
		if s.Status == SlotReady {
			n++
		}
	}
	return n
}

// Observer is notified when a call leaves the queue for a slot. It runs on the
// delivery goroutine, ordered with the call callbacks.
type Observer interface {
	CallDispatched(callID string, slot int)
}

type Option func(s *Scheduler)

// WithMaxQueueSize bounds the task queue. Zero keeps it unbounded.
func WithMaxQueueSize(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxQueueSize = n
		}
	}
}

// WithSpawnAttempts sets how many times spawning a single unit is tried
// before pool initialization fails.
func WithSpawnAttempts(n uint) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.spawnAttempts = n
		}
	}
}

func WithSpawnBackoff(initial time.Duration) Option {
	return func(s *Scheduler) {
		s.spawnInterval = initial
	}
}

func WithObserver(o Observer) Option {
	return func(s *Scheduler) {
		s.observer = o
	}
}

// pendingCall is the immutable form of a Call once it is accepted.
type pendingCall struct {
	id           string
	functionName string
	arguments    json.RawMessage
	onSuccess    func(value json.RawMessage)
	onError      func(err error)
}

func (c *pendingCall) message() worker.TaskMessage {
	return worker.TaskMessage{FunctionName: c.functionName, Arguments: c.arguments}
}

func (c *pendingCall) succeed(value json.RawMessage) {
	if c.onSuccess != nil {
		c.onSuccess(value)
	}
}

func (c *pendingCall) fail(err error) {
	if c.onError != nil {
		c.onError(err)
	}
}

// binding ties a processing slot to the call it is running.
type binding struct {
	slot *slot
	call *pendingCall
}
