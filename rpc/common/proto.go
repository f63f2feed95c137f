package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses
// against a database's key/value operations, its ordered scans, and the
// provider's admin surface. Which fields are used depends on MsgType.
type Message struct {
	MsgType MessageType `json:"msg_type"`

	// Addressing
	Database string `json:"database,omitempty"` // Name or UUID of the target database
	Token    string `json:"token,omitempty"`    // Admin token, required for admin operations

	// Batch key/value fields, used for Count/Exists/Length/Put/Get/Erase
	Keys   [][]byte `json:"keys,omitempty"`
	Values [][]byte `json:"values,omitempty"`
	Mode   uint32   `json:"mode,omitempty"`

	// Scan fields, used for ListKeys/ListKeyValues
	FromKey    []byte `json:"fromKey,omitempty"`
	Filter     []byte `json:"filter,omitempty"`
	MaxRecords uint64 `json:"maxRecords,omitempty"`

	// Bulk-transfer handle fields. They travel on the wire, but the server
	// does not read them: every operation takes its keys and values from
	// the inline Keys/Values fields above.
	BulkID uint64 `json:"bulkId,omitempty"`
	Offset uint64 `json:"offset,omitempty"`
	Size   uint64 `json:"size,omitempty"`

	// Admin fields, used for OpenDatabase/GetConfig
	BackendType string          `json:"backendType,omitempty"`
	Config      json.RawMessage `json:"config,omitempty"`

	// Response fields
	Flags []bool   `json:"flags,omitempty"` // Exists response
	Sizes []uint64 `json:"sizes,omitempty"` // Count/Length/Get/ListKeys/ListKeyValues response
	Names []string `json:"names,omitempty"` // ListDatabases response
	ID    string   `json:"id,omitempty"`    // FindByName response: the resolved database's UUID
	Err   string   `json:"err,omitempty"`
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

func NewCountRequest(database string, mode uint32) *Message {
	return &Message{MsgType: MsgTCount, Database: database, Mode: mode}
}

func NewCountResponse(count uint64, err error) *Message {
	msg := &Message{MsgType: MsgTCount, Sizes: []uint64{count}}
	setErr(msg, err)
	return msg
}

func NewExistsRequest(database string, mode uint32, keys [][]byte) *Message {
	return &Message{MsgType: MsgTExists, Database: database, Mode: mode, Keys: keys}
}

func NewExistsResponse(flags []bool, err error) *Message {
	msg := &Message{MsgType: MsgTExists, Flags: flags}
	setErr(msg, err)
	return msg
}

func NewLengthRequest(database string, mode uint32, keys [][]byte) *Message {
	return &Message{MsgType: MsgTLength, Database: database, Mode: mode, Keys: keys}
}

func NewLengthResponse(sizes []uint64, err error) *Message {
	msg := &Message{MsgType: MsgTLength, Sizes: sizes}
	setErr(msg, err)
	return msg
}

func NewPutRequest(database string, mode uint32, keys, values [][]byte) *Message {
	return &Message{MsgType: MsgTPut, Database: database, Mode: mode, Keys: keys, Values: values}
}

func NewPutResponse(err error) *Message {
	msg := &Message{MsgType: MsgTPut}
	setErr(msg, err)
	return msg
}

func NewGetRequest(database string, mode uint32, keys [][]byte) *Message {
	return &Message{MsgType: MsgTGet, Database: database, Mode: mode, Keys: keys}
}

func NewGetResponse(values [][]byte, sizes []uint64, err error) *Message {
	msg := &Message{MsgType: MsgTGet, Values: values, Sizes: sizes}
	setErr(msg, err)
	return msg
}

func NewEraseRequest(database string, mode uint32, keys [][]byte) *Message {
	return &Message{MsgType: MsgTErase, Database: database, Mode: mode, Keys: keys}
}

func NewEraseResponse(err error) *Message {
	msg := &Message{MsgType: MsgTErase}
	setErr(msg, err)
	return msg
}

func NewListKeysRequest(database string, mode uint32, fromKey, filter []byte, maxRecords uint64) *Message {
	return &Message{MsgType: MsgTListKeys, Database: database, Mode: mode, FromKey: fromKey, Filter: filter, MaxRecords: maxRecords}
}

func NewListKeysResponse(keys [][]byte, sizes []uint64, err error) *Message {
	msg := &Message{MsgType: MsgTListKeys, Keys: keys, Sizes: sizes}
	setErr(msg, err)
	return msg
}

func NewListKeyValuesRequest(database string, mode uint32, fromKey, filter []byte, maxRecords uint64) *Message {
	return &Message{MsgType: MsgTListKeyValues, Database: database, Mode: mode, FromKey: fromKey, Filter: filter, MaxRecords: maxRecords}
}

func NewListKeyValuesResponse(keys, values [][]byte, sizes []uint64, err error) *Message {
	msg := &Message{MsgType: MsgTListKeyValues, Keys: keys, Values: values, Sizes: sizes}
	setErr(msg, err)
	return msg
}

func NewFindByNameRequest(token, name string) *Message {
	return &Message{MsgType: MsgTFindByName, Token: token, Database: name}
}

func NewFindByNameResponse(id string, err error) *Message {
	msg := &Message{MsgType: MsgTFindByName, ID: id}
	setErr(msg, err)
	return msg
}

func NewOpenDatabaseRequest(token, backendType, name string, config json.RawMessage) *Message {
	return &Message{MsgType: MsgTOpenDatabase, Token: token, BackendType: backendType, Database: name, Config: config}
}

func NewOpenDatabaseResponse(name string, err error) *Message {
	msg := &Message{MsgType: MsgTOpenDatabase, Database: name}
	setErr(msg, err)
	return msg
}

func NewCloseDatabaseRequest(token, database string) *Message {
	return &Message{MsgType: MsgTCloseDatabase, Token: token, Database: database}
}

func NewCloseDatabaseResponse(err error) *Message {
	msg := &Message{MsgType: MsgTCloseDatabase}
	setErr(msg, err)
	return msg
}

func NewDestroyDatabaseRequest(token, database string) *Message {
	return &Message{MsgType: MsgTDestroyDatabase, Token: token, Database: database}
}

func NewDestroyDatabaseResponse(err error) *Message {
	msg := &Message{MsgType: MsgTDestroyDatabase}
	setErr(msg, err)
	return msg
}

func NewListDatabasesRequest(token string) *Message {
	return &Message{MsgType: MsgTListDatabases, Token: token}
}

func NewListDatabasesResponse(names []string, err error) *Message {
	msg := &Message{MsgType: MsgTListDatabases, Names: names}
	setErr(msg, err)
	return msg
}

func NewGetConfigRequest(token, database string) *Message {
	return &Message{MsgType: MsgTGetConfig, Token: token, Database: database}
}

func NewGetConfigResponse(config json.RawMessage, err error) *Message {
	msg := &Message{MsgType: MsgTGetConfig, Config: config}
	setErr(msg, err)
	return msg
}

func NewErrorResponse(err string) *Message {
	return &Message{MsgType: MsgTError, Err: err}
}

func setErr(msg *Message, err error) {
	if err != nil {
		msg.Err = err.Error()
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

var messageTypeNames = map[MessageType]string{
	MsgTUnknown:         "unknown",
	MsgTSuccess:         "success",
	MsgTError:           "error",
	MsgTCount:           "count",
	MsgTExists:          "exists",
	MsgTLength:          "length",
	MsgTPut:             "put",
	MsgTGet:             "get",
	MsgTErase:           "erase",
	MsgTListKeys:        "listKeys",
	MsgTListKeyValues:   "listKeyValues",
	MsgTFindByName:      "findByName",
	MsgTOpenDatabase:    "openDatabase",
	MsgTCloseDatabase:   "closeDatabase",
	MsgTDestroyDatabase: "destroyDatabase",
	MsgTListDatabases:   "listDatabases",
	MsgTGetConfig:       "getConfig",
}

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	if s, ok := messageTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for mt, name := range messageTypeNames {
		if name == s {
			*t = mt
			return nil
		}
	}
	return fmt.Errorf("unknown message type: %s", s)
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	MsgTUnknown MessageType = iota
	MsgTSuccess
	MsgTError

	// Backend key/value operations

	MsgTCount
	MsgTExists
	MsgTLength
	MsgTPut
	MsgTGet
	MsgTErase
	MsgTListKeys
	MsgTListKeyValues

	// Provider admin operations

	MsgTFindByName
	MsgTOpenDatabase
	MsgTCloseDatabase
	MsgTDestroyDatabase
	MsgTListDatabases
	MsgTGetConfig
)
