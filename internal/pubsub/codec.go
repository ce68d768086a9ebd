package pubsub

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// EncodeEvent serializes an event for the NATS wire as a protobuf Struct
func EncodeEvent(e Event) ([]byte, error) {
	// Round-trip through JSON so typed slices and structs in the payload
	// become the generic values structpb accepts
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("failed to normalize event: %w", err)
	}

	s, err := structpb.NewStruct(generic)
	if err != nil {
		return nil, fmt.Errorf("failed to build event struct: %w", err)
	}
	return proto.Marshal(s)
}

// DecodeEvent parses bytes produced by EncodeEvent. Numbers in the payload
// decode as float64, as with encoding/json.
func DecodeEvent(data []byte) (Event, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	fields := s.GetFields()
	e := Event{
		Type:     fields["type"].GetStringValue(),
		LeagueID: fields["leagueId"].GetStringValue(),
		Version:  int64(fields["version"].GetNumberValue()),
	}
	if e.Type == "" {
		return Event{}, fmt.Errorf("event has no type")
	}
	if p := fields["payload"].GetStructValue(); p != nil {
		e.Payload = p.AsMap()
	}
	return e, nil
}
