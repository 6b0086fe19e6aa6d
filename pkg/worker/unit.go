package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUnitBusy       = errors.New("worker unit is busy")
	ErrUnitTerminated = errors.New("worker unit is terminated")
)

// Unit is an isolated execution context. It accepts one TaskMessage at a
// time and answers each one with exactly one Reply.
type Unit interface {
	ID() string
	// Post hands a task to the unit. It never blocks: a unit that still owes
	// a reply returns ErrUnitBusy.
	Post(msg TaskMessage) error
	// Terminate disposes the unit. A task body already running is abandoned
	// and its reply is dropped. Safe to call more than once.
	Terminate()
}

// Spawner creates units that send their replies on replies.
type Spawner interface {
	Spawn(replies chan<- Reply) (Unit, error)
}

type SpawnerFunc func(replies chan<- Reply) (Unit, error)

func (f SpawnerFunc) Spawn(replies chan<- Reply) (Unit, error) {
	return f(replies)
}

// LocalSpawner runs each unit on its own goroutine backed by a shared task registry.
type LocalSpawner struct {
	tasks *Registry
}

func NewLocalSpawner(tasks *Registry) *LocalSpawner {
	return &LocalSpawner{tasks: tasks}
}

func (s *LocalSpawner) Spawn(replies chan<- Reply) (Unit, error) {
	if s.tasks == nil {
		return nil, errors.New("no task registry")
	}
	return newLocalUnit(s.tasks, replies), nil
}

type localUnit struct {
	id      string
	tasks   *Registry
	inbox   chan TaskMessage
	replies chan<- Reply
	ctx     context.Context
	cancel  context.CancelFunc
	busy    atomic.Bool
	once    sync.Once
}

func newLocalUnit(tasks *Registry, replies chan<- Reply) *localUnit {
	ctx, cancel := context.WithCancel(context.Background())
	u := &localUnit{
		id:      uuid.NewString(),
		tasks:   tasks,
		inbox:   make(chan TaskMessage, 1),
		replies: replies,
		ctx:     ctx,
		cancel:  cancel,
	}
	go u.run()
	return u
}

func (u *localUnit) ID() string { return u.id }

func (u *localUnit) Post(msg TaskMessage) error {
	if u.ctx.Err() != nil {
		return ErrUnitTerminated
	}
	if !u.busy.CompareAndSwap(false, true) {
		return ErrUnitBusy
	}
	u.inbox <- msg
	return nil
}

func (u *localUnit) Terminate() {
	u.once.Do(u.cancel)
}

func (u *localUnit) run() {
	for {
		select {
		case <-u.ctx.Done():
			return
		case msg := <-u.inbox:
			r := Reply{UnitID: u.id, Result: u.handle(msg)}
			// cleared before sending so the dispatcher can post again as soon as it reads the reply
			u.busy.Store(false)
			select {
			case u.replies <- r:
			case <-u.ctx.Done():
				return
			}
		}
	}
}

func (u *localUnit) handle(msg TaskMessage) ResultMessage {
	task, ok := u.tasks.Lookup(msg.FunctionName)
	if !ok {
		return Failure(KindUnknownFunction, fmt.Sprintf("unknown function: %q", msg.FunctionName))
	}

	value, err := u.execute(task, msg.Arguments)
	if err != nil {
		zap.S().Named("worker").Debugw("task failed", "unit", u.id, "function", msg.FunctionName, "error", err)
		return Failure(KindTaskExecution, err.Error())
	}

	data, err := json.Marshal(value)
	if err != nil {
		return Failure(KindTaskExecution, fmt.Sprintf("failed to encode result: %v", err))
	}
	return Success(data)
}

func (u *localUnit) execute(task Task, args json.RawMessage) (v any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("task panicked: %v", rec)
		}
	}()
	return task(u.ctx, args)
}
