// Package server implements the RPC server side of the provider system:
// it decodes incoming Messages, dispatches them either to the
// provider's admin surface (open/close/destroy/list databases, read
// back a stored config) or to a resolved database's backend, and
// encodes the result back into a response Message.
//
// The package focuses on:
//   - A single dispatch table keyed by MessageType, replacing a
//     shard-ID lookup with a name/UUID lookup into a provider.Provider
//   - Token-gating every admin operation via Provider.CheckToken
//   - Per-operation call and latency metrics recorded through the
//     provider's OperationMetrics
//
// Key Components:
//
//   - NewRPCServer: Factory function creating a configured server from a
//     provider.Provider plus the transport and serializer to use.
//
// Usage Example:
//
//	p, err := provider.Load(configBytes)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	s := server.NewRPCServer(
//		config,
//		p,
//		tcp.NewTCPServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		log.Fatalf("Server error: %v", err)
//	}
//
// Thread Safety:
//
//	The server implementation is thread-safe and can handle concurrent
//	requests across multiple connections. Each request is dispatched
//	independently against the provider's own concurrency-safe database
//	table. The Listen call blocks and should be made only once.
package server
