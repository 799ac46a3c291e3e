package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrNotFound is returned when the addressed document does not exist.
var ErrNotFound = errors.New("document not found")

// Store is a schemaless document store: named collections of documents keyed by string id.
//
// Documents go in as any BSON-encodable value and come back decoded into out,
// which must be a pointer (to a struct, a map, or for Find a slice).
type Store interface {
	Get(ctx context.Context, collection, id string, out any) error
	Exists(ctx context.Context, collection, id string) (bool, error)

	// Set creates or fully replaces the document.
	Set(ctx context.Context, collection, id string, doc any) error
	// Merge deep-merges fields into the document, creating it when missing.
	// Nested maps update only the keys they name.
	Merge(ctx context.Context, collection, id string, fields map[string]any) error
	// Update overwrites the named top-level fields of an existing document.
	// It returns ErrNotFound when the document does not exist.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// Add inserts doc under a generated id and returns that id.
	Add(ctx context.Context, collection string, doc any) (string, error)
	Delete(ctx context.Context, collection, id string) error

	Find(ctx context.Context, collection string, q Query, out any) error
	Close(ctx context.Context) error
}

// toDocument encodes v through the BSON codec so every backend sees the same
// field names and value types.
func toDocument(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// decode copies doc into out through the BSON codec.
func decode(doc any, out any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return bson.Unmarshal(raw, out)
}
