package tcp

import (
	"net"

	"github.com/kvprovider/kvprovider/rpc/transport"
	"github.com/kvprovider/kvprovider/rpc/transport/base"
)

// clientConnector implements the IClientConnector interface for TCP sockets.
type clientConnector struct{}

func (c *clientConnector) GetName() string {
	return "tcp"
}

func (c *clientConnector) Connect(endpoint string) (net.Conn, error) {
	return net.Dial("tcp", endpoint)
}

// NewTCPClientTransport creates a new TCP client transport.
func NewTCPClientTransport() transport.IRPCClientTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}
