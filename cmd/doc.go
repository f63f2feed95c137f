// Package cmd implements the command-line interface for the key/value
// storage provider. It provides a hierarchical command structure with
// operations for running the server and interacting with it as a
// client.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for batched key/value operations (put, get, del, has, list)
//   - admin: Commands for provider admin operations (open, close, destroy, list databases)
//   - serve: Commands for starting and configuring the provider server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See kvprovider -help for a list of all commands.
package cmd
