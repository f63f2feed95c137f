package transport

import (
	"github.com/kvprovider/kvprovider/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc processes one decoded request frame and returns the
// response frame to write back. Routing to a particular database happens
// inside the handler, keyed off the Message's own Database field, not the
// transport frame.
type ServerHandleFunc func(req []byte) (resp []byte)

// IRPCServerTransport is the interface for the RPC transport layer.
type IRPCServerTransport interface {
	// RegisterHandler registers the handler called for every request the
	// transport layer receives.
	RegisterHandler(handler ServerHandleFunc)
	// Listen starts the transport layer and listens for incoming requests.
	Listen(config common.ServerConfig) error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the RPC client transport.
type IRPCClientTransport interface {
	// Connect initializes the transport with the given configuration.
	Connect(config common.ClientConfig) error
	// Send sends a request to the server and returns the response.
	Send(req []byte) (resp []byte, err error)
	// Close closes the transport connection.
	Close() error
}
