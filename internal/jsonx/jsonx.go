// Package jsonx provides JSON serialization backed by Sonic.
//
// Two codecs are exposed: the std-compatible one used for request bodies,
// tool arguments and tool results, and a number-preserving decoder used for
// upstream response bodies so that pass-through values keep their exact
// numeric representation.
package jsonx

import (
	"github.com/bytedance/sonic"
)

var (
	std = sonic.ConfigStd

	preserving = sonic.Config{
		EscapeHTML:  true,
		SortMapKeys: true,
		UseNumber:   true,
	}.Froze()
)

// Marshal returns the JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return std.Marshal(v)
}

// MarshalIndent is like Marshal but applies indentation.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return std.MarshalIndent(v, prefix, indent)
}

// Unmarshal parses data into v. Numbers decode as float64 when v is an
// interface value, matching encoding/json.
func Unmarshal(data []byte, v any) error {
	return std.Unmarshal(data, v)
}

// Decode parses data into a generic JSON value, keeping numbers as
// json.Number so that re-encoding reproduces them verbatim.
func Decode(data []byte) (any, error) {
	var v any
	if err := preserving.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
