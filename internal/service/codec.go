package service

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// jsonCodec carries plain Go structs over the Connect protocol.
// It registers under the "json" name, replacing Connect's protobuf-backed JSON codec.
type jsonCodec struct{}

// Codec returns the codec handlers and clients of LedgerService must share.
func Codec() connect.Codec { return jsonCodec{} }

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", msg, err)
	}
	return b, nil
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}
