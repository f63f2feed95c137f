// Package unix implements a transport layer for the key/value provider's
// RPC system using Unix domain sockets, for processes running on the
// same machine.
//
// This package extends the base transport layer with Unix socket-specific
// connectors while inheriting all core functionality like connection
// pooling, request routing, and error handling from the base package.
//
// Key Components:
//
//   - clientConnector: Establishes connections using Unix domain sockets
//
//   - serverConnector: Creates Unix socket listeners and accepts connections
//
// Default buffer size: 64 KB, sized for local communication patterns.
package unix
