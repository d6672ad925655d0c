package jsoncodec

import "encoding/json"

// Codec abstracts JSON serialization so callers can inject their own
// implementation instead of relying on package-level state.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type stdCodec struct{}

// New returns a Codec backed by encoding/json.
func New() Codec { return stdCodec{} }

func (stdCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (stdCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
