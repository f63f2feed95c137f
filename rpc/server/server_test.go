package server

import (
	"testing"

	_ "github.com/kvprovider/kvprovider/lib/backend/memory"
	"github.com/kvprovider/kvprovider/lib/provider"
	rpccommon "github.com/kvprovider/kvprovider/rpc/common"
	"github.com/kvprovider/kvprovider/rpc/serializer"
	"github.com/kvprovider/kvprovider/rpc/transport"
)

// loopbackTransport captures the registered handler and calls it directly,
// bypassing any network stack, so dispatch can be exercised without a real
// listener.
type loopbackTransport struct {
	handler transport.ServerHandleFunc
}

func (t *loopbackTransport) RegisterHandler(h transport.ServerHandleFunc) { t.handler = h }
func (t *loopbackTransport) Listen(rpccommon.ServerConfig) error          { return nil }

func newTestServer(t *testing.T, token string) (*loopbackTransport, serializer.IRPCSerializer) {
	t.Helper()
	p := provider.New(token)
	if _, err := p.OpenDatabase("unordered_map", "orders", nil); err != nil {
		t.Fatalf("OpenDatabase: %v", err)
	}
	lb := &loopbackTransport{}
	ser := serializer.NewJSONSerializer()
	s := NewRPCServer(rpccommon.ServerConfig{TimeoutSecond: 1}, p, lb, ser)
	s.registerTransportHandler()
	return lb, ser
}

func roundtrip(t *testing.T, lb *loopbackTransport, ser serializer.IRPCSerializer, req *rpccommon.Message) *rpccommon.Message {
	t.Helper()
	reqBytes, err := ser.Serialize(*req)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	respBytes := lb.handler(reqBytes)
	var resp rpccommon.Message
	if err := ser.Deserialize(respBytes, &resp); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	return &resp
}

func TestDispatchPutGet(t *testing.T) {
	lb, ser := newTestServer(t, "")

	putResp := roundtrip(t, lb, ser, rpccommon.NewPutRequest("orders", 0, [][]byte{[]byte("a")}, [][]byte{[]byte("1")}))
	if putResp.Err != "" {
		t.Fatalf("Put failed: %s", putResp.Err)
	}

	getResp := roundtrip(t, lb, ser, rpccommon.NewGetRequest("orders", 0, [][]byte{[]byte("a")}))
	if getResp.Err != "" {
		t.Fatalf("Get failed: %s", getResp.Err)
	}
	if len(getResp.Values) != 1 || string(getResp.Values[0]) != "1" {
		t.Fatalf("got %v, want [1]", getResp.Values)
	}
}

func TestDispatchUnknownDatabase(t *testing.T) {
	lb, ser := newTestServer(t, "")
	resp := roundtrip(t, lb, ser, rpccommon.NewGetRequest("no-such-db", 0, [][]byte{[]byte("a")}))
	if resp.Err == "" {
		t.Error("expected an error addressing an unknown database")
	}
}

func TestDispatchAdminRequiresToken(t *testing.T) {
	lb, ser := newTestServer(t, "secret")

	resp := roundtrip(t, lb, ser, rpccommon.NewListDatabasesRequest("wrong"))
	if resp.Err == "" {
		t.Fatal("expected ListDatabases to fail without the correct token")
	}

	resp = roundtrip(t, lb, ser, rpccommon.NewListDatabasesRequest("secret"))
	if resp.Err != "" {
		t.Fatalf("ListDatabases with the correct token failed: %s", resp.Err)
	}
	if len(resp.Names) != 1 || resp.Names[0] != "orders" {
		t.Errorf("got %v, want [orders]", resp.Names)
	}
}

func TestDispatchCount(t *testing.T) {
	lb, ser := newTestServer(t, "")

	countResp := roundtrip(t, lb, ser, rpccommon.NewCountRequest("orders", 0))
	if countResp.Err != "" {
		t.Fatalf("Count failed: %s", countResp.Err)
	}
	if len(countResp.Sizes) != 1 || countResp.Sizes[0] != 0 {
		t.Fatalf("got %v, want [0]", countResp.Sizes)
	}

	putResp := roundtrip(t, lb, ser, rpccommon.NewPutRequest("orders", 0, [][]byte{[]byte("a")}, [][]byte{[]byte("1")}))
	if putResp.Err != "" {
		t.Fatalf("Put failed: %s", putResp.Err)
	}

	countResp = roundtrip(t, lb, ser, rpccommon.NewCountRequest("orders", 0))
	if countResp.Err != "" {
		t.Fatalf("Count failed: %s", countResp.Err)
	}
	if len(countResp.Sizes) != 1 || countResp.Sizes[0] != 1 {
		t.Fatalf("got %v, want [1]", countResp.Sizes)
	}
}

func TestDispatchFindByName(t *testing.T) {
	lb, ser := newTestServer(t, "secret")

	resp := roundtrip(t, lb, ser, rpccommon.NewFindByNameRequest("wrong", "orders"))
	if resp.Err == "" {
		t.Fatal("expected FindByName to fail without the correct token")
	}

	resp = roundtrip(t, lb, ser, rpccommon.NewFindByNameRequest("secret", "orders"))
	if resp.Err != "" {
		t.Fatalf("FindByName with the correct token failed: %s", resp.Err)
	}
	if resp.ID == "" {
		t.Error("expected a resolved database id")
	}

	resp = roundtrip(t, lb, ser, rpccommon.NewFindByNameRequest("secret", "no-such-db"))
	if resp.Err == "" {
		t.Error("expected FindByName to fail for an unknown database")
	}
}

func TestDispatchOpenAndDestroyDatabase(t *testing.T) {
	lb, ser := newTestServer(t, "")

	openResp := roundtrip(t, lb, ser, rpccommon.NewOpenDatabaseRequest("", "unordered_map", "customers", nil))
	if openResp.Err != "" {
		t.Fatalf("OpenDatabase failed: %s", openResp.Err)
	}
	if openResp.Database != "customers" {
		t.Fatalf("got database %q, want %q", openResp.Database, "customers")
	}

	destroyResp := roundtrip(t, lb, ser, rpccommon.NewDestroyDatabaseRequest("", "customers"))
	if destroyResp.Err != "" {
		t.Fatalf("DestroyDatabase failed: %s", destroyResp.Err)
	}

	getResp := roundtrip(t, lb, ser, rpccommon.NewGetRequest("customers", 0, [][]byte{[]byte("a")}))
	if getResp.Err == "" {
		t.Error("expected Get against a destroyed database to fail")
	}
}
