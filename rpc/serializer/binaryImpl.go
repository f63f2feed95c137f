package serializer

import (
	"github.com/hashicorp/go-msgpack/codec"
	"github.com/kvprovider/kvprovider/rpc/common"
)

var msgpackHandle = &codec.MsgpackHandle{}

// NewBinarySerializer creates a new serializer using msgpack, a compact
// binary encoding well suited to a Message envelope's mix of scalars and
// batched byte slices.
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using msgpack encoding.
type binarySerializerImpl struct{}

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	var out []byte
	enc := codec.NewEncoderBytes(&out, msgpackHandle)
	if err := enc.Encode(msg); err != nil {
		return nil, err
	}
	return out, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	dec := codec.NewDecoderBytes(data, msgpackHandle)
	return dec.Decode(msg)
}
