// Package client implements the RPC client for the provider system: a
// thin wrapper that turns backend.Backend-shaped calls and provider
// admin operations into Messages, sends them over a transport, and
// unpacks the response.
//
// The package focuses on:
//   - Transparent RPC access to a named remote database
//   - Integration with the transport and serialization layers
//   - Error handling and conversion between RPC and domain errors
//
// Key Components:
//
//   - Client: addresses one database and exposes Exists/Length/Put/Get/
//     Erase/ListKeys/ListKeyValues plus the provider's admin surface
//     (OpenDatabase/CloseDatabase/DestroyDatabase/ListDatabases/GetConfig).
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  Endpoints:              []string{"localhost:5000"},
//	  TimeoutSecond:          5,
//	  RetryCount:             3,
//	  ConnectionsPerEndpoint: 1,
//	}
//
//	t := tcp.NewTCPClientTransport()
//	if err := t.Connect(config); err != nil {
//	  log.Fatal(err)
//	}
//
//	c := client.New("orders", t, serializer.NewBinarySerializer())
//	err := c.Put(0, [][]byte{[]byte("k")}, [][]byte{[]byte("v")})
//	values, sizes, err := c.Get(0, [][]byte{[]byte("k")})
//
//	admin := c.WithToken("admin-token")
//	names, err := admin.ListDatabases()
//
// Performance Considerations:
//
//   - For applications that frequently send large payloads, increasing
//     ConnectionsPerEndpoint can improve throughput by allowing parallel
//     requests.
//
//   - For small messages, a single connection per endpoint is often more
//     efficient due to reduced connection overhead.
//
//   - The choice of serializer significantly affects performance. The
//     binary serializer provides the best performance and smallest
//     payload size.
//
// Thread Safety:
//
//	Client is safe for concurrent use from multiple goroutines; the
//	underlying transport implementations manage their own connection
//	pools and locking.
package client
