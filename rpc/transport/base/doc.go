// Package base provides a foundation for transport layers in the
// key/value provider's RPC system, implementing core functionality for
// RPC communication independent of the specific network protocol (TCP,
// Unix sockets, etc.). It serves as a base layer that can be extended
// with protocol-specific connectors.
//
// The package focuses on:
//   - Protocol-agnostic client and server transport implementations
//   - Performance optimization through connection pooling and buffer reuse
//   - Frame-based message protocol with requestID correlation
//   - Automatic request routing and response correlation
//   - Robust error handling with retries and reconnection logic
//
// Key Components:
//
//   - IClientConnector/IServerConnector: Interfaces for protocol-specific
//     operations that allow extending the base transport with different
//     network protocols.
//
//   - clientTransport: Core client implementation that manages multiple
//     connections with round-robin load balancing. Supports multiple
//     connections per endpoint for improved throughput.
//
//   - serverTransport: Core server implementation that accepts connections
//     and dispatches every request to a single registered handler; the
//     Message envelope itself carries the target database name.
//
// Thread Safety:
//
//	All public methods are thread-safe. The client transport uses atomic
//	operations and mutexes to ensure concurrent access safety, while the
//	server creates a dedicated goroutine for each connection.
package base
