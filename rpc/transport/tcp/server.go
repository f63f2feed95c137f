package tcp

import (
	"fmt"
	"net"

	"github.com/kvprovider/kvprovider/rpc/common"
	"github.com/kvprovider/kvprovider/rpc/transport"
	"github.com/kvprovider/kvprovider/rpc/transport/base"
)

const defaultBufferSize = 512 * 1024 // 512 KB

// serverConnector implements the IServerConnector interface for TCP sockets.
type serverConnector struct{}

func (c *serverConnector) GetName() string {
	return "tcp"
}

func (c *serverConnector) Listen(config common.ServerConfig) (net.Listener, error) {
	listener, err := net.Listen("tcp", config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create TCP socket: %v", err)
	}

	if l, ok := listener.(*net.TCPListener); ok {
		return &tcpKeepAliveListener{l}, nil
	}
	return listener, nil
}

// tcpKeepAliveListener disables Nagle's algorithm on every accepted
// connection, matching the low-latency single-request-per-frame protocol
// this transport carries.
type tcpKeepAliveListener struct {
	*net.TCPListener
}

func (l *tcpKeepAliveListener) Accept() (net.Conn, error) {
	conn, err := l.TCPListener.AcceptTCP()
	if err != nil {
		return nil, err
	}
	conn.SetNoDelay(true)
	return conn, nil
}

// NewTCPServerTransport creates a new TCP server transport with the default buffer size.
func NewTCPServerTransport() transport.IRPCServerTransport {
	return base.NewBaseServerTransport(&serverConnector{}, defaultBufferSize)
}
