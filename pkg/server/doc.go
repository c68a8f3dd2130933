// Package server implements the battle engine's control surface: the
// HTTP/WebSocket boundary spec.md §6/§7 describes as "a battle request
// interface" wrapping the Effect Dispatch Core in pkg/battle.
//
// # Server Architecture
//
// Server is the main entry point, coordinating:
//
//   - Battle lifecycle (creation, per-battle session lookup, teardown)
//   - Choice submission, validated against battle.ValidateChoice and
//     resolved via battle.RunTurn
//   - WebSocket streaming of each battle's log as it grows
//   - Request validation, rate limiting, circuit breaking, and metrics
//
//	cfg, _ := config.Load()
//	srv := server.NewServer(cfg)
//	http.ListenAndServe(fmt.Sprintf(":%d", cfg.ServerPort), srv.Handler())
//
// # Session Management
//
// BattleSession pairs one in-memory *battle.Battle with the set of
// players allowed to submit choices against it, plus the WebSocket
// connections currently following its log. PlayerSession tracks one
// connected client across requests (spec.md doesn't mandate cookie-based
// auth; this control surface uses the same pattern the rest of this
// codebase's HTTP servers do).
//
// # Operational Features
//
//   - Health checks at /health, /ready, /live
//   - Prometheus metrics at /metrics
//   - Request rate limiting with configurable thresholds
//   - Circuit breakers around the data-catalog file-system loader
//
// # Thread Safety
//
// All server operations are mutex-protected for safe concurrent access;
// a BattleSession serializes RunTurn calls against its Battle so two
// concurrently submitted choices for the same battle never race.
package server
