package client

import (
	"encoding/json"

	"github.com/kvprovider/kvprovider/lib/mode"
	rpccommon "github.com/kvprovider/kvprovider/rpc/common"
	"github.com/kvprovider/kvprovider/rpc/serializer"
	"github.com/kvprovider/kvprovider/rpc/transport"
)

// Client is an RPC client for one database exposed by a provider. It
// forwards backend.Backend-shaped calls over the configured transport
// and serializer, and additionally exposes the provider's admin
// surface (open/close/destroy/list databases, read back a config).
//
// Usage:
//
//	t := tcp.NewTCPClientTransport()
//	if err := t.Connect(clientConfig); err != nil {
//		panic(err)
//	}
//	c := client.New("orders", t, serializer.NewBinarySerializer())
//	c.Put(0, [][]byte{[]byte("k")}, [][]byte{[]byte("v")})
type Client struct {
	database   string
	token      string
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// New creates a Client addressing database over an already-connected
// transport.
func New(database string, t transport.IRPCClientTransport, ser serializer.IRPCSerializer) *Client {
	return &Client{database: database, transport: t, serializer: ser}
}

// WithToken returns a copy of c that presents token on admin
// operations.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

func (c *Client) do(req *rpccommon.Message) (*rpccommon.Message, error) {
	return invokeRPCRequest(req, c.transport, c.serializer)
}

// Count reports the number of entries currently stored in the database.
func (c *Client) Count(m mode.Bits) (uint64, error) {
	resp, err := c.do(rpccommon.NewCountRequest(c.database, uint32(m)))
	if err != nil {
		return 0, err
	}
	if len(resp.Sizes) == 0 {
		return 0, nil
	}
	return resp.Sizes[0], nil
}

// Exists reports, for each key, whether it is present in the database.
func (c *Client) Exists(m mode.Bits, keys [][]byte) ([]bool, error) {
	resp, err := c.do(rpccommon.NewExistsRequest(c.database, uint32(m), keys))
	if err != nil {
		return nil, err
	}
	return resp.Flags, nil
}

// Length reports the byte length of each key's stored value.
func (c *Client) Length(m mode.Bits, keys [][]byte) ([]uint64, error) {
	resp, err := c.do(rpccommon.NewLengthRequest(c.database, uint32(m), keys))
	if err != nil {
		return nil, err
	}
	return resp.Sizes, nil
}

// Put stores each key/value pair.
func (c *Client) Put(m mode.Bits, keys, values [][]byte) error {
	_, err := c.do(rpccommon.NewPutRequest(c.database, uint32(m), keys, values))
	return err
}

// Get retrieves the value for each key.
func (c *Client) Get(m mode.Bits, keys [][]byte) (values [][]byte, sizes []uint64, err error) {
	resp, err := c.do(rpccommon.NewGetRequest(c.database, uint32(m), keys))
	if err != nil {
		return nil, nil, err
	}
	return resp.Values, resp.Sizes, nil
}

// Erase removes each key.
func (c *Client) Erase(m mode.Bits, keys [][]byte) error {
	_, err := c.do(rpccommon.NewEraseRequest(c.database, uint32(m), keys))
	return err
}

// ListKeys scans keys starting at fromKey, filtered by filter, up to
// maxRecords results.
func (c *Client) ListKeys(m mode.Bits, fromKey, filter []byte, maxRecords uint64) (keys [][]byte, sizes []uint64, err error) {
	resp, err := c.do(rpccommon.NewListKeysRequest(c.database, uint32(m), fromKey, filter, maxRecords))
	if err != nil {
		return nil, nil, err
	}
	return resp.Keys, resp.Sizes, nil
}

// ListKeyValues scans key/value pairs starting at fromKey, filtered by
// filter, up to maxRecords results.
func (c *Client) ListKeyValues(m mode.Bits, fromKey, filter []byte, maxRecords uint64) (keys, values [][]byte, sizes []uint64, err error) {
	resp, err := c.do(rpccommon.NewListKeyValuesRequest(c.database, uint32(m), fromKey, filter, maxRecords))
	if err != nil {
		return nil, nil, nil, err
	}
	return resp.Keys, resp.Values, resp.Sizes, nil
}

// FindByName resolves name to the UUID of the currently open database
// registered under that name. Requires the client's token to match the
// provider's admin token.
func (c *Client) FindByName(name string) (string, error) {
	resp, err := c.do(rpccommon.NewFindByNameRequest(c.token, name))
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// OpenDatabase asks the provider to open a new database of backendType,
// named name, configured by config. Requires the client's token to
// match the provider's admin token.
func (c *Client) OpenDatabase(backendType, name string, config json.RawMessage) (string, error) {
	resp, err := c.do(rpccommon.NewOpenDatabaseRequest(c.token, backendType, name, config))
	if err != nil {
		return "", err
	}
	return resp.Database, nil
}

// CloseDatabase asks the provider to close c's database without
// destroying its storage.
func (c *Client) CloseDatabase() error {
	_, err := c.do(rpccommon.NewCloseDatabaseRequest(c.token, c.database))
	return err
}

// DestroyDatabase asks the provider to close c's database and erase its
// storage.
func (c *Client) DestroyDatabase() error {
	_, err := c.do(rpccommon.NewDestroyDatabaseRequest(c.token, c.database))
	return err
}

// ListDatabases returns the name of every database the provider has
// open.
func (c *Client) ListDatabases() ([]string, error) {
	resp, err := c.do(rpccommon.NewListDatabasesRequest(c.token))
	if err != nil {
		return nil, err
	}
	return resp.Names, nil
}

// GetConfig returns c's database's stored configuration.
func (c *Client) GetConfig() (json.RawMessage, error) {
	resp, err := c.do(rpccommon.NewGetConfigRequest(c.token, c.database))
	if err != nil {
		return nil, err
	}
	return resp.Config, nil
}
