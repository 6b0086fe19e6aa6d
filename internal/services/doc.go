// Package services implements the business logic layer for the offload agent.
//
// # Service Dependency Graph
//
//	Handlers (HTTP endpoints)
//	    │
//	    ▼
//	OffloadService ──► Scheduler (pkg/scheduler) ──► worker units
//	    │
//	    └────────────► Store (call journal)
//
// # OffloadService
//
// OffloadService owns the scheduler and keeps the journal in step with it.
//
// Call journal states:
//
//	┌────────┐ dispatched ┌────────────┐   ok    ┌───────────┐
//	│ Queued │──────────► │ Processing │───────► │ Succeeded │
//	└────────┘            └────────────┘         └───────────┘
//	    │                       │      error     ┌───────────┐
//	    │                       └──────────────► │  Failed   │
//	    │        rejected (queue full, closed)   └───────────┘
//	    └───────────────────────────────────────────────▲
//
// The row is created before the call reaches the scheduler, so dispatch and
// completion updates always find it. Dispatch is reported through the
// scheduler Observer hook; completion through the call callbacks. Both run
// on the scheduler's delivery goroutine, so journal writes for a call happen
// in order.
//
// Calls abandoned by Stop keep their processing row.
//
// Usage:
//
//	srv := services.NewOffloadService(st, worker.NewLocalSpawner(worker.DefaultRegistry()))
//	defer srv.Close()
//
//	if err := srv.Start(ctx, 2); err != nil {
//	    return err
//	}
//
//	id, future, err := srv.Run(ctx, "sum", json.RawMessage(`[1,2,3]`))
//	result := <-future.C()
package services
