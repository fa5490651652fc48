// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// # Port Interfaces
//
//   - [Dialer]: opens the outbound byte stream
//   - [Logger]: structured logging abstraction
//   - [SendRecorder]: observes per-write latency
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// implementations (TCP, zerolog, etc.).
package ports
