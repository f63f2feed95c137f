package unix

import (
	"fmt"
	"net"
	"os"

	"github.com/kvprovider/kvprovider/rpc/common"
	"github.com/kvprovider/kvprovider/rpc/transport"
	"github.com/kvprovider/kvprovider/rpc/transport/base"
)

const defaultBufferSize = 64 * 1024 // 64 KB

// serverConnector implements the IServerConnector interface for Unix sockets.
type serverConnector struct{}

func (c *serverConnector) GetName() string {
	return "unix"
}

func (c *serverConnector) Listen(config common.ServerConfig) (net.Listener, error) {
	socketPath := config.Endpoint

	if err := os.RemoveAll(socketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %v", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create Unix socket: %v", err)
	}

	return listener, nil
}

// NewUnixDefaultServerTransport creates a new Unix server transport with the default buffer size.
func NewUnixDefaultServerTransport() transport.IRPCServerTransport {
	return NewUnixServerTransport(defaultBufferSize)
}

// NewUnixServerTransport creates a new Unix server transport with the given buffer size.
func NewUnixServerTransport(bufferSize int) transport.IRPCServerTransport {
	return base.NewBaseServerTransport(&serverConnector{}, bufferSize)
}
