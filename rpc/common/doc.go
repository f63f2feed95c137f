// Package common defines the wire-level Message envelope and the server
// and client configuration structs shared by the transport, serializer,
// and server/client packages.
//
// Key components:
//
//   - Message: a single envelope carrying batched keys/values, scan
//     parameters, or admin requests, addressed at a database by name or
//     UUID. Factory functions build the request/response pair for each
//     MessageType.
//
//   - MessageType: every backend key/value operation (Exists, Length,
//     Put, Get, Erase, ListKeys, ListKeyValues) and provider admin
//     operation (OpenDatabase, CloseDatabase, DestroyDatabase,
//     ListDatabases, GetConfig) the wire protocol supports.
//
//   - ServerConfig / ClientConfig: endpoint, timeout, and logging
//     configuration for server and client processes. Leveled, named
//     logging itself lives in lib/common.
package common
