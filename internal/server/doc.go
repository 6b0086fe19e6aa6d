// Package server provides the HTTP server for the offload agent.
//
// # Architecture Overview
//
//	┌───────────────────────────────────────────────────────────────┐
//	│                    HTTP Server :HTTPPort                      │
//	├───────────────────────────────────────────────────────────────┤
//	│                       Middleware Stack                        │
//	│  ┌─────────────────────────────────────────────────────────┐  │
//	│  │  ginzap.Ginzap (request logging, "http" logger)         │  │
//	│  │  ginzap.RecoveryWithZap (panic → 500)                   │  │
//	│  └─────────────────────────────────────────────────────────┘  │
//	├───────────────────────────────────────────────────────────────┤
//	│                       Router (/api/v1)                        │
//	│  ┌─────────────────────────────────────────────────────────┐  │
//	│  │  Handlers (registered via callback)                     │  │
//	│  └─────────────────────────────────────────────────────────┘  │
//	└───────────────────────────────────────────────────────────────┘
//
// ServerMode "prod" runs gin in release mode, anything else in debug mode.
// Unknown routes answer a JSON 404.
//
// # Server Lifecycle
//
//	srv, err := server.NewServer(cfg, func(router *gin.RouterGroup) {
//	    handlers.RegisterHandlers(router, h)
//	})
//
//	// Blocks until ctx is cancelled, then shuts down gracefully.
//	err = srv.Start(ctx)
package server
