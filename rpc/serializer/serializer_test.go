package serializer

import (
	"reflect"
	"testing"

	"github.com/kvprovider/kvprovider/rpc/common"
)

// testSerializers is a map of serializer name to factory function.
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

// testMessages creates a set of test messages with different fields filled.
func testMessages() []common.Message {
	return []common.Message{
		{MsgType: common.MsgTSuccess},

		{
			MsgType:  common.MsgTPut,
			Database: "orders",
			Mode:     1,
			Keys:     [][]byte{[]byte("a"), []byte("b")},
			Values:   [][]byte{[]byte("1"), []byte("2")},
		},

		{
			MsgType:  common.MsgTGet,
			Database: "orders",
			Keys:     [][]byte{[]byte("a")},
			Values:   [][]byte{[]byte("1")},
			Sizes:    []uint64{1},
		},

		{
			MsgType: common.MsgTError,
			Err:     "test error message",
		},

		{
			MsgType:    common.MsgTListKeys,
			Database:   "orders",
			Mode:       2,
			FromKey:    []byte("a"),
			Filter:     []byte("prefix"),
			MaxRecords: 10,
			Keys:       [][]byte{[]byte("a"), []byte("b")},
			Sizes:      []uint64{1, 1},
		},

		{
			MsgType:     common.MsgTOpenDatabase,
			Token:       "secret",
			BackendType: "map",
			Database:    "orders",
			Config:      []byte(`{"use_lock":true}`),
		},
	}
}

// TestSerializerRoundTrip tests that messages can be serialized and
// deserialized correctly.
func TestSerializerRoundTrip(t *testing.T) {
	messages := testMessages()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, msg := range messages {
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message %d: %v", i, err)
					continue
				}

				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message %d: %v", i, err)
					continue
				}

				if !reflect.DeepEqual(msg, result) {
					t.Errorf("Message %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, msg, result)
				}
			}
		})
	}
}

// TestMessageTypes tests each message type with each serializer.
func TestMessageTypes(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for msgType := common.MsgTSuccess; msgType <= common.MsgTGetConfig; msgType++ {
				msg := common.Message{MsgType: msgType}

				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message type %s: %v", msgType.String(), err)
					continue
				}

				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message type %s: %v", msgType.String(), err)
					continue
				}

				if result.MsgType != msgType {
					t.Errorf("Message type doesn't match after round trip: Expected %s, got %s",
						msgType.String(), result.MsgType.String())
				}
			}
		})
	}
}

// TestInvalidBinaryData tests how the binary serializer handles corrupt or invalid data.
func TestInvalidBinaryData(t *testing.T) {
	serializer := NewBinarySerializer()

	testCases := []struct {
		name string
		data []byte
	}{
		{name: "Empty data", data: []byte{}},
		{name: "Truncated data", data: []byte{0x81, 0x01}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var msg common.Message
			if err := serializer.Deserialize(tc.data, &msg); err == nil {
				t.Errorf("Expected error decoding %q but got none", tc.name)
			}
		})
	}
}
