// Package main implements the battler engine's HTTP/WebSocket daemon: the
// control surface in goldbox-rpg/pkg/server, wrapping the Effect Dispatch
// Core in goldbox-rpg/pkg/battle.
//
// # Startup Sequence
//
// 1. Load configuration from environment variables with secure defaults
// 2. Configure logging based on BATTLER_LOG_LEVEL
// 3. Start listening for HTTP/WebSocket connections
// 4. Handle shutdown signals gracefully
//
// # Usage
//
//	./server
//	BATTLER_PORT=9000 BATTLER_LOG_LEVEL=debug ./server
//
// # Graceful Shutdown
//
// SIGINT/SIGTERM stop the listener and let in-flight requests finish
// before exiting, within a 30-second timeout.
package main
