// Package store implements the call journal of the offload agent.
//
// The journal is an audit trail: every call accepted by the API is recorded
// with its arguments, the slot that ran it and its outcome. It is never
// replayed; queued calls are not restored after a restart.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                         Store (facade)                          │
//	├─────────────────────────────────────────────────────────────────┤
//	│                          CallStore                              │
//	│                             ▼                                   │
//	│                           calls                                 │
//	├─────────────────────────────────────────────────────────────────┤
//	│                  QueryInterceptor (debug logs)                  │
//	├─────────────────────────────────────────────────────────────────┤
//	│                     DuckDB (file or memory)                     │
//	└─────────────────────────────────────────────────────────────────┘
//
// # Tables
//
//	┌────────────────────┬─────────────────────────────────────────────┐
//	│  Table             │  Purpose                                    │
//	├────────────────────┼─────────────────────────────────────────────┤
//	│  calls             │  One row per submitted call                 │
//	│  schema_migrations │  Migration version tracking                 │
//	└────────────────────┴─────────────────────────────────────────────┘
//
// Schema:
//
//	calls (
//	    id VARCHAR PRIMARY KEY,
//	    function_name VARCHAR NOT NULL,
//	    arguments VARCHAR,            -- JSON text
//	    status VARCHAR NOT NULL,      -- queued|processing|succeeded|failed
//	    slot INTEGER,                 -- set on dispatch
//	    result VARCHAR,               -- JSON text, success only
//	    error VARCHAR,                -- failure only
//	    created_at TIMESTAMP,
//	    updated_at TIMESTAMP
//	)
//
// # Call Lifecycle
//
//	Create ──► MarkProcessing ──► MarkSucceeded
//	                        └───► MarkFailed
//
// MarkProcessing only applies to queued rows, so a late notification never
// rewinds a completed call.
//
// # List Options
//
// CallStore.List uses the functional options pattern. Each ListOption
// modifies a squirrel.SelectBuilder:
//
//	calls, err := store.Calls().List(ctx,
//	    store.ByFunction("sum"),
//	    store.ByStatus(models.CallStatusFailed),
//	    store.WithDefaultSort(),
//	    store.WithLimit(50),
//	    store.WithOffset(0),
//	)
//
// # Migrations
//
// SQL files under migrations/sql are embedded and applied in version order.
// Applied versions are recorded in schema_migrations, so Migrate is
// idempotent.
package store
