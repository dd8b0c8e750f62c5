package memory

import (
	"encoding/json"
	"fmt"
)

// Buckets lists the snapshot buckets in the order durable backends persist them.
var Buckets = []string{"brands", "colors", "palettes", "slots", "stash", "sequences"}

func (s *Snapshot) bucketTarget(bucket string) (any, bool) {
	switch bucket {
	case "brands":
		return &s.Brands, true
	case "colors":
		return &s.Colors, true
	case "palettes":
		return &s.Palettes, true
	case "slots":
		return &s.Slots, true
	case "stash":
		return &s.Stash, true
	case "sequences":
		return &s.Sequences, true
	}
	return nil, false
}

// EncodeBucket marshals one bucket of the snapshot as JSON.
func (s Snapshot) EncodeBucket(bucket string) ([]byte, error) {
	target, ok := s.bucketTarget(bucket)
	if !ok {
		return nil, fmt.Errorf("unknown bucket %q", bucket)
	}
	data, err := json.Marshal(target)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", bucket, err)
	}
	return data, nil
}

// DecodeBucket unmarshals payload into the named bucket. Unknown buckets are
// ignored so older schemas can be loaded.
func (s *Snapshot) DecodeBucket(bucket string, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	target, ok := s.bucketTarget(bucket)
	if !ok {
		return nil
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("decode %s: %w", bucket, err)
	}
	return nil
}
