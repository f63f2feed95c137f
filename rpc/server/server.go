package server

import (
	"fmt"
	"runtime"
	"os/signal"
	"syscall"
	"time"

	"github.com/kvprovider/kvprovider/lib/bulk"
	"github.com/kvprovider/kvprovider/lib/common"
	"github.com/kvprovider/kvprovider/lib/mode"
	"github.com/kvprovider/kvprovider/lib/provider"
	rpccommon "github.com/kvprovider/kvprovider/rpc/common"
	"github.com/kvprovider/kvprovider/rpc/serializer"
	"github.com/kvprovider/kvprovider/rpc/transport"
)

var Logger = common.GetLogger("rpc/server")

// NewRPCServer creates a new RPC server backed by a provider.Provider. It
// takes a config, transport and serializer as parameters.
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		p,
//		tcp.NewTCPServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config rpccommon.ServerConfig,
	p *provider.Provider,
	tp transport.IRPCServerTransport,
	ser serializer.IRPCSerializer,
) rpcServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	return rpcServer{
		config:     config,
		provider:   p,
		transport:  tp,
		serializer: ser,
		timeout:    time.Duration(config.TimeoutSecond) * time.Second,
	}
}

type rpcServer struct {
	config     rpccommon.ServerConfig
	provider   *provider.Provider
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	timeout    time.Duration
}

func (s *rpcServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(req []byte) []byte {
		var msg rpccommon.Message

		respMsg := func() rpccommon.Message {
			if err := s.serializer.Deserialize(req, &msg); err != nil {
				return *rpccommon.NewErrorResponse(fmt.Sprintf("failed to deserialize request: %s", err))
			}
			return s.dispatch(&msg)
		}()

		val, err := s.serializer.Serialize(respMsg)
		if err != nil {
			val, _ = s.serializer.Serialize(*rpccommon.NewErrorResponse(fmt.Sprintf("failed to serialize response: %s", err)))
		}
		return val
	})
}

// dispatch routes one decoded Message to the provider's admin surface or
// to the addressed database's backend, and packages the outcome back
// into a response Message of the same MsgType.
func (s *rpcServer) dispatch(req *rpccommon.Message) rpccommon.Message {
	switch req.MsgType {
	case rpccommon.MsgTOpenDatabase:
		return s.handleOpenDatabase(req)
	case rpccommon.MsgTCloseDatabase:
		return s.handleCloseDatabase(req)
	case rpccommon.MsgTDestroyDatabase:
		return s.handleDestroyDatabase(req)
	case rpccommon.MsgTListDatabases:
		return s.handleListDatabases(req)
	case rpccommon.MsgTGetConfig:
		return s.handleGetConfig(req)
	case rpccommon.MsgTFindByName:
		return s.handleFindByName(req)
	case rpccommon.MsgTCount:
		return s.handleCount(req)
	case rpccommon.MsgTExists:
		return s.handleExists(req)
	case rpccommon.MsgTLength:
		return s.handleLength(req)
	case rpccommon.MsgTPut:
		return s.handlePut(req)
	case rpccommon.MsgTGet:
		return s.handleGet(req)
	case rpccommon.MsgTErase:
		return s.handleErase(req)
	case rpccommon.MsgTListKeys:
		return s.handleListKeys(req)
	case rpccommon.MsgTListKeyValues:
		return s.handleListKeyValues(req)
	default:
		return *rpccommon.NewErrorResponse(fmt.Sprintf("unsupported message type: %s", req.MsgType))
	}
}

func (s *rpcServer) resolveDatabase(name string) (*provider.Database, error) {
	db, berr := s.provider.FindByName(name)
	if berr != nil {
		return nil, berr
	}
	return db, nil
}

func (s *rpcServer) handleOpenDatabase(req *rpccommon.Message) rpccommon.Message {
	if !s.provider.CheckToken(req.Token) {
		return *rpccommon.NewOpenDatabaseResponse("", fmt.Errorf("invalid token"))
	}
	db, err := s.provider.OpenDatabase(req.BackendType, req.Database, req.Config)
	if err != nil {
		return *rpccommon.NewOpenDatabaseResponse("", err)
	}
	return *rpccommon.NewOpenDatabaseResponse(db.Name, nil)
}

func (s *rpcServer) handleCloseDatabase(req *rpccommon.Message) rpccommon.Message {
	if !s.provider.CheckToken(req.Token) {
		return *rpccommon.NewCloseDatabaseResponse(fmt.Errorf("invalid token"))
	}
	if err := s.provider.CloseDatabase(req.Database); err != nil {
		return *rpccommon.NewCloseDatabaseResponse(err)
	}
	return *rpccommon.NewCloseDatabaseResponse(nil)
}

func (s *rpcServer) handleDestroyDatabase(req *rpccommon.Message) rpccommon.Message {
	if !s.provider.CheckToken(req.Token) {
		return *rpccommon.NewDestroyDatabaseResponse(fmt.Errorf("invalid token"))
	}
	if err := s.provider.DestroyDatabase(req.Database); err != nil {
		return *rpccommon.NewDestroyDatabaseResponse(err)
	}
	return *rpccommon.NewDestroyDatabaseResponse(nil)
}

func (s *rpcServer) handleListDatabases(req *rpccommon.Message) rpccommon.Message {
	if !s.provider.CheckToken(req.Token) {
		return *rpccommon.NewListDatabasesResponse(nil, fmt.Errorf("invalid token"))
	}
	return *rpccommon.NewListDatabasesResponse(s.provider.ListDatabases(), nil)
}

func (s *rpcServer) handleGetConfig(req *rpccommon.Message) rpccommon.Message {
	if !s.provider.CheckToken(req.Token) {
		return *rpccommon.NewGetConfigResponse(nil, fmt.Errorf("invalid token"))
	}
	cfg, err := s.provider.GetConfig(req.Database)
	if err != nil {
		return *rpccommon.NewGetConfigResponse(nil, err)
	}
	return *rpccommon.NewGetConfigResponse(cfg, nil)
}

func (s *rpcServer) handleFindByName(req *rpccommon.Message) rpccommon.Message {
	if !s.provider.CheckToken(req.Token) {
		return *rpccommon.NewFindByNameResponse("", fmt.Errorf("invalid token"))
	}
	db, err := s.provider.FindByName(req.Database)
	if err != nil {
		return *rpccommon.NewFindByNameResponse("", err)
	}
	return *rpccommon.NewFindByNameResponse(db.ID, nil)
}

func (s *rpcServer) handleCount(req *rpccommon.Message) rpccommon.Message {
	db, derr := s.resolveDatabase(req.Database)
	if derr != nil {
		return *rpccommon.NewCountResponse(0, derr)
	}
	start := time.Now()
	count, err := bulk.CountDirect(db, mode.Bits(req.Mode))
	s.provider.Metrics.Observe(req.Database, "count", time.Since(start).Seconds())
	if err != nil {
		return *rpccommon.NewCountResponse(0, err)
	}
	return *rpccommon.NewCountResponse(count, nil)
}

func (s *rpcServer) handleExists(req *rpccommon.Message) rpccommon.Message {
	db, derr := s.resolveDatabase(req.Database)
	if derr != nil {
		return *rpccommon.NewExistsResponse(nil, derr)
	}
	start := time.Now()
	flags, err := bulk.ExistsDirect(db, mode.Bits(req.Mode), req.Keys, s.timeout)
	s.provider.Metrics.Observe(req.Database, "exists", time.Since(start).Seconds())
	if err != nil {
		return *rpccommon.NewExistsResponse(nil, err)
	}
	return *rpccommon.NewExistsResponse(flags, nil)
}

func (s *rpcServer) handleLength(req *rpccommon.Message) rpccommon.Message {
	db, derr := s.resolveDatabase(req.Database)
	if derr != nil {
		return *rpccommon.NewLengthResponse(nil, derr)
	}
	start := time.Now()
	sizes, err := bulk.LengthDirect(db, mode.Bits(req.Mode), req.Keys, s.timeout)
	s.provider.Metrics.Observe(req.Database, "length", time.Since(start).Seconds())
	if err != nil {
		return *rpccommon.NewLengthResponse(nil, err)
	}
	return *rpccommon.NewLengthResponse(sizes, nil)
}

func (s *rpcServer) handlePut(req *rpccommon.Message) rpccommon.Message {
	db, derr := s.resolveDatabase(req.Database)
	if derr != nil {
		return *rpccommon.NewPutResponse(derr)
	}
	start := time.Now()
	err := bulk.PutDirect(db, mode.Bits(req.Mode), req.Keys, req.Values)
	s.provider.Metrics.Observe(req.Database, "put", time.Since(start).Seconds())
	if err != nil {
		return *rpccommon.NewPutResponse(err)
	}
	return *rpccommon.NewPutResponse(nil)
}

func (s *rpcServer) handleGet(req *rpccommon.Message) rpccommon.Message {
	db, derr := s.resolveDatabase(req.Database)
	if derr != nil {
		return *rpccommon.NewGetResponse(nil, nil, derr)
	}
	start := time.Now()
	values, sizes, err := bulk.GetDirect(db, mode.Bits(req.Mode), req.Keys, s.timeout)
	s.provider.Metrics.Observe(req.Database, "get", time.Since(start).Seconds())
	if err != nil {
		return *rpccommon.NewGetResponse(nil, nil, err)
	}
	return *rpccommon.NewGetResponse(values, sizes, nil)
}

func (s *rpcServer) handleErase(req *rpccommon.Message) rpccommon.Message {
	db, derr := s.resolveDatabase(req.Database)
	if derr != nil {
		return *rpccommon.NewEraseResponse(derr)
	}
	start := time.Now()
	err := bulk.EraseDirect(db, mode.Bits(req.Mode), req.Keys, s.timeout)
	s.provider.Metrics.Observe(req.Database, "erase", time.Since(start).Seconds())
	if err != nil {
		return *rpccommon.NewEraseResponse(err)
	}
	return *rpccommon.NewEraseResponse(nil)
}

func (s *rpcServer) handleListKeys(req *rpccommon.Message) rpccommon.Message {
	db, derr := s.resolveDatabase(req.Database)
	if derr != nil {
		return *rpccommon.NewListKeysResponse(nil, nil, derr)
	}
	m := mode.Bits(req.Mode)
	filter := mode.NewFilter(m, req.Filter)
	start := time.Now()
	keys, sizes, err := bulk.ListKeysDirect(db, m, req.FromKey, filter, int(req.MaxRecords))
	s.provider.Metrics.Observe(req.Database, "listKeys", time.Since(start).Seconds())
	if err != nil {
		return *rpccommon.NewListKeysResponse(nil, nil, err)
	}
	return *rpccommon.NewListKeysResponse(keys, sizes, nil)
}

func (s *rpcServer) handleListKeyValues(req *rpccommon.Message) rpccommon.Message {
	db, derr := s.resolveDatabase(req.Database)
	if derr != nil {
		return *rpccommon.NewListKeyValuesResponse(nil, nil, nil, derr)
	}
	m := mode.Bits(req.Mode)
	filter := mode.NewFilter(m, req.Filter)
	start := time.Now()
	keys, values, ksizes, _, err := bulk.ListKeyValuesDirect(db, m, req.FromKey, filter, int(req.MaxRecords))
	s.provider.Metrics.Observe(req.Database, "listKeyValues", time.Since(start).Seconds())
	if err != nil {
		return *rpccommon.NewListKeyValuesResponse(nil, nil, nil, err)
	}
	return *rpccommon.NewListKeyValuesResponse(keys, values, ksizes, nil)
}

// Serve starts the RPC server. It configures the transport handler and
// blocks on the transport's Listen loop.
func (s *rpcServer) Serve() error {
	s.registerTransportHandler()
	return s.transport.Listen(s.config)
}
