package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/eapache/queue"
	"github.com/google/uuid"
	"go.uber.org/zap"

	srvErrors "github.com/kubev2v/offload-agent/pkg/errors"
	"github.com/kubev2v/offload-agent/pkg/worker"
)

type submission struct {
	call *pendingCall
	ack  chan error
}

type Scheduler struct {
	spawner       worker.Spawner
	observer      Observer
	maxQueueSize  int
	spawnAttempts uint
	spawnInterval time.Duration

	// owned by the run goroutine
	pool     registry
	queue    *taskQueue
	inFlight map[string]*binding
	pending  *queue.Queue

	work       chan submission
	replies    chan worker.Reply
	control    chan func()
	deliver    chan func()
	close      chan any
	done       chan any
	mainCtx    context.Context
	mainCancel context.CancelFunc
	once       sync.Once
}

// NewScheduler returns a scheduler with an empty pool. Calls submitted
// before Start stay queued.
func NewScheduler(spawner worker.Spawner, opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		spawner:       spawner,
		spawnAttempts: 1,
		spawnInterval: 100 * time.Millisecond,
		inFlight:      make(map[string]*binding),
		pending:       queue.New(),
		work:          make(chan submission),
		replies:       make(chan worker.Reply),
		control:       make(chan func()),
		deliver:       make(chan func()),
		close:         make(chan any),
		done:          make(chan any),
		mainCtx:       ctx,
		mainCancel:    cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.queue = newTaskQueue(s.maxQueueSize)

	go s.run()
	go s.deliveries()
	return s
}

// Start initializes the pool with size units, replacing any existing pool.
func (s *Scheduler) Start(ctx context.Context, size int) error {
	if size < 1 {
		return srvErrors.NewInvalidPoolSizeError(size)
	}

	var err error
	if doErr := s.do(ctx, func() { err = s.initialize(ctx, size) }); doErr != nil {
		return doErr
	}
	return err
}

// Stop tears the pool down. In-flight calls are abandoned and queued calls
// wait for the next Start. Calling Stop on an empty or closed pool is a no-op.
func (s *Scheduler) Stop(ctx context.Context) error {
	err := s.do(ctx, s.teardown)
	if srvErrors.IsSchedulerClosedError(err) {
		return nil
	}
	return err
}

// Submit queues the call and returns its ID. It does not wait for a worker.
func (s *Scheduler) Submit(c Call) (string, error) {
	args, err := encodeArguments(c.Arguments)
	if err != nil {
		return "", fmt.Errorf("failed to encode arguments of %q: %w", c.FunctionName, err)
	}

	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}

	sub := submission{
		call: &pendingCall{
			id:           id,
			functionName: c.FunctionName,
			arguments:    args,
			onSuccess:    c.OnSuccess,
			onError:      c.OnError,
		},
		ack: make(chan error, 1),
	}

	select {
	case <-s.mainCtx.Done():
		return "", srvErrors.NewSchedulerClosedError()
	case s.work <- sub:
	}

	if err := <-sub.ack; err != nil {
		return "", err
	}
	return id, nil
}

func (s *Scheduler) Status(ctx context.Context) (PoolStatus, error) {
	var st PoolStatus
	err := s.do(ctx, func() {
		st = PoolStatus{
			Slots:    s.pool.snapshot(),
			InFlight: len(s.inFlight),
			Queued:   s.queue.Len(),
		}
	})
	return st, err
}

// Close tears down the pool, fails every queued call with a
// SchedulerClosedError and waits for pending callbacks to run.
// It must not be called from a call callback.
func (s *Scheduler) Close() {
	s.once.Do(func() {
		s.mainCancel()
		s.close <- struct{}{}
		<-s.done
	})
}

// do runs fn on the dispatcher goroutine and waits for it to return.
func (s *Scheduler) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	req := func() {
		defer close(done)
		fn()
	}

	select {
	case <-s.mainCtx.Done():
		return srvErrors.NewSchedulerClosedError()
	case <-ctx.Done():
		return ctx.Err()
	case s.control <- req:
	}

	<-done
	return nil
}

func (s *Scheduler) run() {
	defer close(s.deliver)
	for {
		// deliver stays nil, and never ready, while nothing is pending
		var deliver chan func()
		var next func()
		if s.pending.Length() > 0 {
			deliver = s.deliver
			next = s.pending.Peek().(func())
		}

		select {
		case sub := <-s.work:
			sub.ack <- s.queue.Enqueue(sub.call)
			s.dispatch()
		case r := <-s.replies:
			s.complete(r)
			s.dispatch()
		case fn := <-s.control:
			fn()
			s.dispatch()
		case deliver <- next:
			s.pending.Remove()
		case <-s.close:
			s.shutdown()
			return
		}
	}
}

func (s *Scheduler) deliveries() {
	defer close(s.done)
	for fn := range s.deliver {
		fn()
	}
}

// dispatch re-evaluates the scheduling rule until nothing more can move.
// Each pass moves at most one call from the queue head to the lowest-index
// ready slot.
func (s *Scheduler) dispatch() {
	for s.dispatchOne() {
	}
}

func (s *Scheduler) dispatchOne() bool {
	if s.queue.Len() == 0 {
		return false
	}
	sl := s.pool.findReady()
	if sl == nil {
		return false
	}

	call := s.queue.DequeueHead()
	sl.status = SlotProcessing

	if err := sl.unit.Post(call.message()); err != nil {
		sl.status = SlotReady
		zap.S().Named("scheduler").Errorw("failed to post call", "call", call.id, "slot", sl.index, "error", err)
		s.emit(func() { call.fail(fmt.Errorf("failed to post call to worker %d: %w", sl.index, err)) })
		return true
	}

	s.inFlight[sl.unit.ID()] = &binding{slot: sl, call: call}
	zap.S().Named("scheduler").Debugw("call dispatched", "call", call.id, "function", call.functionName, "slot", sl.index)

	if s.observer != nil {
		id, index := call.id, sl.index
		s.emit(func() { s.observer.CallDispatched(id, index) })
	}
	return true
}

func (s *Scheduler) complete(r worker.Reply) {
	b, ok := s.inFlight[r.UnitID]
	if !ok {
		zap.S().Named("scheduler").Debugw("dropping reply from unbound unit", "unit", r.UnitID)
		return
	}
	delete(s.inFlight, r.UnitID)
	b.slot.status = SlotReady

	call := b.call
	if r.Result.OK {
		value := r.Result.Value
		s.emit(func() { call.succeed(value) })
		return
	}

	err := r.Result.Error.Err(call.functionName)
	zap.S().Named("scheduler").Debugw("call failed", "call", call.id, "error", err)
	s.emit(func() { call.fail(err) })
}

func (s *Scheduler) initialize(ctx context.Context, size int) error {
	s.teardown()

	err := s.pool.initialize(size, func(index int) (worker.Unit, error) {
		return backoff.Retry[worker.Unit](ctx, func() (worker.Unit, error) {
			u, err := s.spawner.Spawn(s.replies)
			if err != nil {
				zap.S().Named("scheduler").Warnw("failed to spawn worker", "slot", index, "error", err)
			}
			return u, err
		}, backoff.WithBackOff(s.spawnBackOff()), backoff.WithMaxTries(s.spawnAttempts))
	})
	if err != nil {
		zap.S().Named("scheduler").Errorw("failed to initialize pool", "size", size, "error", err)
		return err
	}

	zap.S().Named("scheduler").Infow("pool initialized", "size", size)
	return nil
}

func (s *Scheduler) spawnBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.spawnInterval
	return b
}

func (s *Scheduler) teardown() {
	n := s.pool.teardown()
	abandoned := len(s.inFlight)
	clear(s.inFlight)

	if n > 0 {
		zap.S().Named("scheduler").Infow("pool torn down", "workers", n, "abandoned", abandoned)
	}
}

func (s *Scheduler) shutdown() {
	s.teardown()

	for _, call := range s.queue.drain() {
		c := call
		s.emit(func() { c.fail(srvErrors.NewSchedulerClosedError()) })
	}

	for s.pending.Length() > 0 {
		s.deliver <- s.pending.Remove().(func())
	}
}

func (s *Scheduler) emit(fn func()) {
	s.pending.Add(fn)
}

func encodeArguments(args any) (json.RawMessage, error) {
	if raw, ok := args.(json.RawMessage); ok && len(raw) > 0 {
		if !json.Valid(raw) {
			return nil, fmt.Errorf("invalid JSON arguments")
		}
		return append(json.RawMessage(nil), raw...), nil
	}
	return json.Marshal(args)
}
