package unix

import (
	"net"

	"github.com/kvprovider/kvprovider/rpc/transport"
	"github.com/kvprovider/kvprovider/rpc/transport/base"
)

// clientConnector implements the IClientConnector interface for Unix sockets.
type clientConnector struct{}

func (c *clientConnector) GetName() string {
	return "unix"
}

func (c *clientConnector) Connect(endpoint string) (net.Conn, error) {
	return net.Dial("unix", endpoint)
}

// NewUnixClientTransport creates a new Unix client transport.
func NewUnixClientTransport() transport.IRPCClientTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}
