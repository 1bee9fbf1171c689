package schema

const SignalEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "signals",
	"name": "signal_event",
	"fields" : [
		{"name": "kind", "type": "string"},
		{"name": "user_id", "type": "string"},
		{"name": "sweet_id", "type": "string"},
		{"name": "category", "type": "string"},
		{"name": "price", "type": "double"},
		{"name": "quantity", "type": "int"},
		{"name": "unix_ms", "type": "long"}
	]
}`

// A SignalEventV1 is the wire form of one view or purchase signal.
type SignalEventV1 struct {
	Kind     string  `avro:"kind"`
	UserID   string  `avro:"user_id"`
	SweetID  string  `avro:"sweet_id"`
	Category string  `avro:"category"`
	Price    float64 `avro:"price"`
	Quantity int     `avro:"quantity"`
	UnixMs   int64   `avro:"unix_ms"`
}
