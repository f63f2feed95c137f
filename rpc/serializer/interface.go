package serializer

import "github.com/kvprovider/kvprovider/rpc/common"

// IRPCSerializer is the interface for all Message wire codecs.
type IRPCSerializer interface {
	// Serialize serializes a Message into a byte array.
	Serialize(msg common.Message) ([]byte, error)
	// Deserialize deserializes a byte array into a Message.
	Deserialize(b []byte, msg *common.Message) error
}
