// Package handlers implements the HTTP API layer for the offload agent.
//
// Handlers validate requests, delegate to OffloadService and convert models
// to the API types of api/v1.
//
// # API Endpoints
//
// Pool Endpoints (pool.go):
//
//	┌────────┬──────────┬─────────────────────────────────────────────┐
//	│ Method │ Endpoint │ Description                                 │
//	├────────┼──────────┼─────────────────────────────────────────────┤
//	│ GET    │ /pool    │ Slots, in-flight count, queue depth         │
//	│ PUT    │ /pool    │ (Re)initialize the pool: { "size": 4 }      │
//	│ DELETE │ /pool    │ Tear the pool down                          │
//	└────────┴──────────┴─────────────────────────────────────────────┘
//
// Call Endpoints (calls.go):
//
//	┌────────┬─────────────┬──────────────────────────────────────────┐
//	│ Method │ Endpoint    │ Description                              │
//	├────────┼─────────────┼──────────────────────────────────────────┤
//	│ POST   │ /calls      │ Queue a call, 202 { "id": ... }          │
//	│ GET    │ /calls      │ List journaled calls                     │
//	│ GET    │ /calls/{id} │ Get one journaled call                   │
//	└────────┴─────────────┴──────────────────────────────────────────┘
//
// POST /calls request:
//
//	{ "functionName": "sum", "arguments": [1, 2, 3] }
//
// With ?wait=true the handler waits for the outcome and answers 200:
//
//	{ "id": "...", "ok": true, "value": 6 }
//	{ "id": "...", "ok": false, "error": "unknown function: \"frobnicate\"" }
//
// A failed call is still a 200: the request itself succeeded.
//
// GET /calls query parameters: functionName, status (repeatable),
// page (default 1), pageSize (default 20, max 100).
//
// # Error Handling
//
//	┌─────────────────────────────┬────────┬──────────────────────────────┐
//	│ Error Type                  │ Status │ When                         │
//	├─────────────────────────────┼────────┼──────────────────────────────┤
//	│ Validation error            │ 400    │ Invalid body or query        │
//	│ InvalidPoolSizeError        │ 400    │ size < 1                     │
//	│ ResourceNotFoundError       │ 404    │ Unknown call id              │
//	│ QueueFullError              │ 429    │ Bounded queue is full        │
//	│ SchedulerClosedError        │ 503    │ Agent shutting down          │
//	│ Internal error              │ 500    │ Spawn failure, store errors  │
//	└─────────────────────────────┴────────┴──────────────────────────────┘
package handlers
