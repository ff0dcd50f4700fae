// Package storage persists canonical annotation records in NATS KV.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/c360studio/nidm-annotate/annotation"
	"github.com/nats-io/nats.go/jetstream"
)

// BucketAnnotations holds one entry per annotated descriptor.
const BucketAnnotations = "NIDM_ANNOTATIONS"

// StoredRecord is the value written for each descriptor.
type StoredRecord struct {
	Descriptor annotation.Descriptor `json:"descriptor"`
	Record     annotation.Record     `json:"record"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// Store provides annotation storage operations backed by NATS KV.
type Store struct {
	kv jetstream.KeyValue
}

// NewStore opens the annotations bucket, creating it if it doesn't exist.
func NewStore(ctx context.Context, js jetstream.JetStream) (*Store, error) {
	kv, err := getOrCreateBucket(ctx, js, BucketAnnotations)
	if err != nil {
		return nil, fmt.Errorf("create annotations bucket: %w", err)
	}
	return &Store{kv: kv}, nil
}

// NewStoreWithBucket wraps an already opened bucket.
func NewStoreWithBucket(kv jetstream.KeyValue) *Store {
	return &Store{kv: kv}
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: "NIDM canonical annotation records",
		History:     5,
	})
}

// Put stores rec under d, replacing any earlier revision.
func (s *Store) Put(ctx context.Context, d annotation.Descriptor, rec annotation.Record) error {
	data, err := json.Marshal(StoredRecord{Descriptor: d, Record: rec, UpdatedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("marshal annotation: %w", err)
	}
	if _, err := s.kv.Put(ctx, EncodeKey(d), data); err != nil {
		return fmt.Errorf("store annotation %s: %w", d, err)
	}
	return nil
}

// PutMapping stores every record of m and returns how many were written.
func (s *Store) PutMapping(ctx context.Context, m annotation.Mapping) (int, error) {
	written := 0
	for _, d := range m.Descriptors() {
		if err := s.Put(ctx, d, m[d]); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// Get retrieves the record stored for d. A missing record matches both
// ErrNotFound and annotation.ErrLookup.
func (s *Store) Get(ctx context.Context, d annotation.Descriptor) (annotation.Record, error) {
	entry, err := s.kv.Get(ctx, EncodeKey(d))
	if err != nil {
		if isNotFound(err) {
			return annotation.Record{}, fmt.Errorf("%w: %w: %s", ErrNotFound, annotation.ErrLookup, d)
		}
		return annotation.Record{}, fmt.Errorf("get annotation %s: %w", d, err)
	}

	var stored StoredRecord
	if err := json.Unmarshal(entry.Value(), &stored); err != nil {
		return annotation.Record{}, fmt.Errorf("unmarshal annotation %s: %w", d, err)
	}
	return stored.Record, nil
}

// List returns the stored records of source, or of every source when
// source is empty.
func (s *Store) List(ctx context.Context, source string) (annotation.Mapping, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return annotation.Mapping{}, nil
		}
		return nil, fmt.Errorf("list annotation keys: %w", err)
	}

	prefix := ""
	if source != "" {
		prefix = sourcePrefix(source)
	}

	m := make(annotation.Mapping)
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		d, err := DecodeKey(key)
		if err != nil {
			continue
		}
		rec, err := s.Get(ctx, d)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		m[d] = rec
	}
	return m, nil
}

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "key not found")
}
