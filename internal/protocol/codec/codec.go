// Package codec frames lobby messages as protobuf envelopes.
//
// The envelope is a google.protobuf.Struct with a "type" string field, an
// optional "id" request id and an optional "payload" string field carrying the
// JSON-encoded payload.
package codec

import (
	"errors"
	"fmt"

	"github.com/valyala/bytebufferpool"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/palemoky/netsession/internal/protocol"
)

const (
	fieldType    = "type"
	fieldID      = "id"
	fieldPayload = "payload"
)

// ErrMissingType 信封中缺少消息类型
var ErrMissingType = errors.New("codec: envelope has no message type")

// Encode 将消息编码为 Protobuf 字节
func Encode(m *protocol.Message) ([]byte, error) {
	env := &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldType: structpb.NewStringValue(string(m.Type)),
	}}
	if m.ID != "" {
		env.Fields[fieldID] = structpb.NewStringValue(m.ID)
	}
	if len(m.Payload) > 0 {
		env.Fields[fieldPayload] = structpb.NewStringValue(string(m.Payload))
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	out, err := proto.MarshalOptions{Deterministic: true}.MarshalAppend(buf.B[:0], env)
	if err != nil {
		return nil, err
	}
	buf.B = out
	return append([]byte(nil), out...), nil
}

// MustEncode 编码消息，失败时 panic
func MustEncode(m *protocol.Message) []byte {
	data, err := Encode(m)
	if err != nil {
		panic(err)
	}
	return data
}

// Decode 从 Protobuf 字节解码消息
func Decode(data []byte) (*protocol.Message, error) {
	env := getEnvelope()
	defer putEnvelope(env)

	if err := proto.Unmarshal(data, env); err != nil {
		return nil, fmt.Errorf("codec: unmarshal envelope: %w", err)
	}

	fields := env.GetFields()
	msgType := fields[fieldType].GetStringValue()
	if msgType == "" {
		return nil, ErrMissingType
	}

	msg := &protocol.Message{
		Type: protocol.MessageType(msgType),
		ID:   fields[fieldID].GetStringValue(),
	}
	if p, ok := fields[fieldPayload]; ok {
		msg.Payload = []byte(p.GetStringValue())
	}
	return msg, nil
}

// NewEncoded 创建并编码消息
func NewEncoded(msgType protocol.MessageType, payload any) ([]byte, error) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		return nil, err
	}
	return Encode(msg)
}
