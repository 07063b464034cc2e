package storage

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Bucket is a namespace's worth of key/value pairs, each value held as raw JSON.
type Bucket map[string]json.RawMessage

// Validate satisfies ValidatingSpec.
func (b *Bucket) Validate() error {
	return nil
}

// Set stores v under key after marshalling it to JSON.
func (b *Bucket) Set(key string, v any) error {
	if *b == nil {
		*b = Bucket{}
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal key %q: %w", key, err)
	}

	(*b)[key] = json.RawMessage(raw)
	return nil
}

// Get unmarshals the value at key into out.
// Returns (found=false, nil) if not present.
func (b Bucket) Get(key string, out any) (bool, error) {
	if b == nil {
		return false, nil
	}

	raw, ok := b[key]
	if !ok || len(raw) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("unmarshal key %q: %w", key, err)
	}
	return true, nil
}

func (b Bucket) clone() *Bucket {
	c := Bucket{}
	maps.Copy(c, b)
	return &c
}
