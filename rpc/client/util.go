package client

import (
	"fmt"

	"github.com/kvprovider/kvprovider/lib/common"
	rpccommon "github.com/kvprovider/kvprovider/rpc/common"
	"github.com/kvprovider/kvprovider/rpc/serializer"
	"github.com/kvprovider/kvprovider/rpc/transport"
)

var Logger = common.GetLogger("rpc/client")

// invokeRPCRequest serializes req, sends it over transport, and
// deserializes the response, checking that it isn't an error response
// and that its MsgType matches the request's.
func invokeRPCRequest(req *rpccommon.Message, t transport.IRPCClientTransport, ser serializer.IRPCSerializer) (*rpccommon.Message, error) {
	reqBytes, err := ser.Serialize(*req)
	if err != nil {
		return nil, err
	}

	respBytes, err := t.Send(reqBytes)
	if err != nil {
		return nil, err
	}

	resp := &rpccommon.Message{}
	if err := ser.Deserialize(respBytes, resp); err != nil {
		return nil, fmt.Errorf("client: error decoding response: %s", err)
	}

	if resp.MsgType == rpccommon.MsgTError || resp.Err != "" {
		return nil, fmt.Errorf("client: %s", resp.Err)
	}

	if resp.MsgType != req.MsgType {
		return nil, fmt.Errorf("client: unexpected message type: %s, expected %s", resp.MsgType, req.MsgType)
	}

	return resp, nil
}
