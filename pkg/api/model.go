package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ModelDecoder turns the object located at a request's ModelKeyPath into a
// typed model. Each model type binds its own decoder; the engine never
// inspects model types at runtime, it only invokes the decoder the caller
// selected on the descriptor.
type ModelDecoder interface {
	DecodeModel(object any) (any, error)
}

// DecoderFunc adapts a plain function to the ModelDecoder interface.
type DecoderFunc func(object any) (any, error)

// DecodeModel implements ModelDecoder.
func (f DecoderFunc) DecodeModel(object any) (any, error) {
	return f(object)
}

// ModelOf returns a decoder that maps the payload object into T through a
// JSON round trip. Shape mismatches surface as a decode error rather than
// silently defaulting fields.
func ModelOf[T any]() ModelDecoder {
	return DecoderFunc(func(object any) (any, error) {
		raw, err := json.Marshal(object)
		if err != nil {
			return nil, fmt.Errorf("encode payload object: %w", err)
		}
		var model T
		if err := json.Unmarshal(raw, &model); err != nil {
			return nil, fmt.Errorf("decode model: %w", err)
		}
		return model, nil
	})
}

// RawModel passes the located payload object through undecoded. Useful for
// generic tooling that renders payloads without a typed model.
var RawModel ModelDecoder = DecoderFunc(func(object any) (any, error) {
	return object, nil
})

// NoContentModel is the sentinel model synthesized for endpoints that
// legitimately return an empty body (e.g. DELETE acknowledgments).
type NoContentModel struct{}

type noContentDecoder struct{}

func (noContentDecoder) DecodeModel(any) (any, error) {
	return NoContentModel{}, nil
}

// NoContent is the designated decoder for empty-body endpoints. It is the
// only decoder for which an empty payload is a success rather than an
// invalid-response failure.
var NoContent ModelDecoder = noContentDecoder{}

// IsNoContent reports whether d is the empty-body sentinel decoder.
func IsNoContent(d ModelDecoder) bool {
	_, ok := d.(noContentDecoder)
	return ok
}

// ResolveKeyPath walks a dotted key path through nested payload maps.
// An empty path resolves to the payload itself.
func ResolveKeyPath(payload map[string]any, keyPath string) (any, bool) {
	if keyPath == "" {
		return payload, true
	}

	var current any = payload
	for _, key := range strings.Split(keyPath, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
