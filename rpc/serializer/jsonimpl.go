package serializer

import (
	"encoding/json"

	"github.com/kvprovider/kvprovider/rpc/common"
)

// NewJSONSerializer creates a new serializer using JSON encoding.
func NewJSONSerializer() IRPCSerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the IRPCSerializer interface using JSON encoding.
type jsonSerializerImpl struct{}

func (j jsonSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	return json.Marshal(msg)
}

func (j jsonSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	return json.Unmarshal(b, msg)
}
