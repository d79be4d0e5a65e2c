// Package callable implements the cluster backend's substitute for
// serializing a closure: a small msgpack-encoded token that the
// subordinate processor resolves against a compile-time registry.
package callable

import "github.com/vmihailenco/msgpack/v5"

// Payload is what gets written to a job's <job-id>.pkl file. It carries
// enough information for the subordinate processor to look the job's
// callable up and know whether to expect an array index argument.
type Payload struct {
	Token   string `msgpack:"token"`
	IsArray bool   `msgpack:"is_array"`
}

// Encode msgpack-encodes a Payload for writing to a .pkl file.
func Encode(p Payload) ([]byte, error) {
	return msgpack.Marshal(p)
}

// Decode reads a Payload back from a .pkl file's contents.
func Decode(data []byte) (Payload, error) {
	var p Payload
	err := msgpack.Unmarshal(data, &p)
	return p, err
}
