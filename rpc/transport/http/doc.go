// Package http implements an HTTP-based transport layer for RPC
// communication with a key/value provider. It provides concrete
// implementations of the transport interfaces defined in the parent
// package.
//
// The package focuses on:
//   - Client-side HTTP transport for sending RPC requests to servers
//   - Server-side HTTP transport for receiving and handling RPC requests
//   - Round-robin load balancing across multiple server endpoints
//
// Key Components:
//
//   - httpClientTransport: Implements IRPCClientTransport, managing
//     connections to server endpoints and implementing retry mechanisms
//     with round-robin selection across multiple server endpoints.
//
//   - httpServerTransport: Implements IRPCServerTransport, setting up an
//     HTTP server that hands every POST body to the registered handler;
//     the Message envelope inside the body carries the target database.
//
// Thread Safety:
//
//	The client transport is thread-safe. It uses atomic operations for
//	the round-robin counter when selecting server endpoints.
package http
