// Package relayjson provides JSON request/response helpers built on
// goccy/go-json, the JSON library bolt's buffer-pool code targets,
// rather than the standard library's encoding/json.
package relayjson

import (
	"fmt"

	gojson "github.com/goccy/go-json"

	"github.com/yourusername/relay/http1"
	"github.com/yourusername/relay/memory"
)

// Decode unmarshals req's body into v.
func Decode(req *http1.Request, v interface{}) error {
	if len(req.Body) == 0 {
		return fmt.Errorf("relayjson: empty body")
	}
	return gojson.Unmarshal(req.Body, v)
}

// Response marshals v and copies the encoded bytes into arena, then
// builds a Response with status and a Content-Type: application/json
// header. The copy into arena keeps the body's lifetime tied to the
// owning Session the way every other allocation on the request path
// is, instead of leaving a GC-managed []byte dangling off the
// response.
func Response(arena *memory.Arena, status int, v interface{}) (*http1.Response, error) {
	encoded, err := gojson.Marshal(v)
	if err != nil {
		return nil, err
	}
	body, err := arena.Clone(encoded)
	if err != nil {
		return nil, err
	}
	resp := http1.NewResponse(status, body)
	resp.Headers.Add([]byte("Content-Type"), []byte("application/json"))
	return resp, nil
}
