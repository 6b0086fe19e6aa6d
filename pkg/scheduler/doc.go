// Package scheduler dispatches calls to a fixed pool of worker units.
//
// Calls are submitted with Submit and queued in FIFO order. A single
// dispatcher goroutine pairs the queue head with the lowest-index ready
// slot, posts the task to that slot's unit and reports the outcome through
// the call's OnSuccess or OnError callback, exactly once.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────────┐
//	│                           Scheduler                                 │
//	│                                                                     │
//	│  ┌──────────────┐      ┌──────────────┐      ┌──────────────┐       │
//	│  │   Slot 0     │      │   Slot 1     │      │   Slot N-1   │       │
//	│  │ unit, status │      │ unit, status │      │ unit, status │       │
//	│  └──────────────┘      └──────────────┘      └──────────────┘       │
//	│     ▲      │              ▲      │              ▲      │            │
//	│ Post│      │reply     Post│      │reply     Post│      │reply       │
//	│     │      └──────────────┼──────┴──────────────┼──────┘            │
//	│     └─────────────────────┤                     │                   │
//	│                    ┌──────┴──────┐       ┌──────┴──────┐            │
//	│                    │ dispatch()  │       │ inFlight    │            │
//	│                    └──────┬──────┘       │ unitID→call │            │
//	│                           │              └─────────────┘            │
//	│  ┌────────────────────────┴────────────────────────────────┐        │
//	│  │                      Task Queue                         │        │
//	│  │  [call1] [call2] [call3] ...                            │        │
//	│  └─────────────────────────────────────────────────────────┘        │
//	│                               ▲                                     │
//	│                        Submit(call)                                 │
//	└─────────────────────────────────────────────────────────────────────┘
//
// # Slot Lifecycle
//
//	┌───────────┐     dispatch()      ┌────────────┐
//	│  Ready    │ ──────────────────► │ Processing │
//	│           │                     │            │
//	└───────────┘                     └─────┬──────┘
//	      ▲                                 │
//	      │     reply (ok or error)         │
//	      └─────────────────────────────────┘
//
// There is no error state: a failed call frees its slot like a successful one.
// A slot is Processing iff the correlation table holds a binding for its unit.
//
// # Event Loop (run method)
//
//	for {
//	    select {
//	    case sub := <-s.work:      // Submit
//	        s.queue.Enqueue(sub.call)
//	    case r := <-s.replies:     // a unit answered
//	        s.complete(r)          // slot → Ready, queue the callback
//	    case fn := <-s.control:    // Start, Stop, Status
//	        fn()
//	    case deliver <- next:      // hand a callback to the delivery goroutine
//	    case <-s.close:
//	        s.shutdown()
//	        return
//	    }
//	    s.dispatch()
//	}
//
// dispatch() moves one call per pass and repeats until the queue is empty or
// no slot is ready, so at most N calls are ever in flight.
//
// # Callbacks
//
// Callbacks and Observer notifications run on a separate delivery goroutine,
// in the order the dispatcher produced them. A callback may call Submit,
// Status, Start or Stop. It must not call Close.
//
// Completion order across slots is not defined.
//
// # Lifecycle
//
//   - NewScheduler: empty pool, loops running
//   - Start(ctx, n): tears down the current pool, spawns n units. A spawn
//     failure terminates the units spawned so far and leaves the pool empty.
//   - Stop(ctx): terminates every unit. In-flight calls are abandoned and
//     never call back; queued calls wait for the next Start.
//   - Close(): Stop, fail queued calls with SchedulerClosedError, flush
//     callbacks, exit. Idempotent.
//
// # Usage Example
//
//	sched := scheduler.NewScheduler(worker.NewLocalSpawner(worker.DefaultRegistry()))
//	defer sched.Close()
//
//	if err := sched.Start(ctx, 2); err != nil {
//	    return err
//	}
//
//	_, err := sched.Submit(scheduler.SumCall([]float64{1, 2, 3},
//	    func(total float64) { log.Printf("total: %v", total) },
//	    func(err error) { log.Printf("sum failed: %v", err) },
//	))
package scheduler
