package schema

import "github.com/hamba/avro/v2"

// AvroEncodeFn binds an avro schema into the encode callback shape the
// registry-aware serde registers per schema id.
func AvroEncodeFn(s avro.Schema) func(v any) ([]byte, error) {
	return func(v any) ([]byte, error) {
		return avro.Marshal(s, v)
	}
}

// AvroDecodeFn is the decode counterpart of [AvroEncodeFn].
func AvroDecodeFn(s avro.Schema) func([]byte, any) error {
	return func(data []byte, v any) error {
		return avro.Unmarshal(s, data, v)
	}
}
