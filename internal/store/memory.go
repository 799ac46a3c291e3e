package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

type memoryDoc struct {
	seq uint64
	doc bson.M
}

// Memory is an in-process Store used in demo mode and tests. Documents are
// held in encoded form, so callers never share state with the store.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]*memoryDoc
	seq         uint64
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string]*memoryDoc)}
}

func (m *Memory) collection(name string) map[string]*memoryDoc {
	c, ok := m.collections[name]
	if !ok {
		c = make(map[string]*memoryDoc)
		m.collections[name] = c
	}
	return c
}

func (m *Memory) put(collection, id string, doc bson.M) {
	c := m.collection(collection)
	if existing, ok := c[id]; ok {
		existing.doc = doc
		return
	}
	m.seq++
	c[id] = &memoryDoc{seq: m.seq, doc: doc}
}

func (m *Memory) Get(ctx context.Context, collection, id string, out any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	return decode(d.doc, out)
}

func (m *Memory) Exists(ctx context.Context, collection, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.collections[collection][id]
	return ok, nil
}

func (m *Memory) Set(ctx context.Context, collection, id string, doc any) error {
	encoded, err := toDocument(doc)
	if err != nil {
		return err
	}
	encoded["_id"] = id

	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(collection, id, encoded)
	return nil
}

func (m *Memory) Merge(ctx context.Context, collection, id string, fields map[string]any) error {
	encoded, err := toDocument(fields)
	if err != nil {
		return err
	}
	delete(encoded, "_id")

	m.mu.Lock()
	defer m.mu.Unlock()

	var doc bson.M
	if d, ok := m.collections[collection][id]; ok {
		doc = d.doc
	} else {
		doc = bson.M{"_id": id}
	}
	for path, v := range flatten(encoded) {
		setPath(doc, path, v)
	}
	m.put(collection, id, doc)
	return nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	encoded, err := toDocument(fields)
	if err != nil {
		return err
	}
	delete(encoded, "_id")

	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	for path, v := range encoded {
		setPath(d.doc, path, v)
	}
	return nil
}

func (m *Memory) Add(ctx context.Context, collection string, doc any) (string, error) {
	id := uuid.NewString()
	if err := m.Set(ctx, collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.collections[collection], id)
	return nil
}

func (m *Memory) Find(ctx context.Context, collection string, q Query, out any) error {
	slice := reflect.ValueOf(out)
	if slice.Kind() != reflect.Ptr || slice.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("find: out must be a pointer to a slice, got %T", out)
	}

	filters, err := encodeFilters(q.Filters)
	if err != nil {
		return err
	}

	// Update and Merge write documents in place, so the read lock covers the
	// sort and decode as well as the scan.
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*memoryDoc
	for _, d := range m.collections[collection] {
		if matchesAll(d.doc, filters) {
			matched = append(matched, d)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		for _, o := range q.OrderBy {
			a, _ := lookupPath(matched[i].doc, o.Field)
			b, _ := lookupPath(matched[j].doc, o.Field)
			if c := compareValues(a, b); c != 0 {
				if o.Desc {
					return c > 0
				}
				return c < 0
			}
		}
		return matched[i].seq < matched[j].seq
	})
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	// Decode into a fresh slice of the caller's element type, pointer or not.
	elemType := slice.Elem().Type().Elem()
	result := reflect.MakeSlice(slice.Elem().Type(), 0, len(matched))
	for _, d := range matched {
		target := elemType
		if elemType.Kind() == reflect.Ptr {
			target = elemType.Elem()
		}
		item := reflect.New(target)
		if err := decode(d.doc, item.Interface()); err != nil {
			return fmt.Errorf("find %s: %w", collection, err)
		}
		if elemType.Kind() == reflect.Ptr {
			result = reflect.Append(result, item)
		} else {
			result = reflect.Append(result, item.Elem())
		}
	}
	slice.Elem().Set(result)
	return nil
}

func (m *Memory) Close(ctx context.Context) error {
	return nil
}

// encodeFilters passes filter values through the BSON codec so they compare
// equal to stored values of the same logical type.
func encodeFilters(filters []Filter) ([]Filter, error) {
	out := make([]Filter, len(filters))
	for i, f := range filters {
		encoded, err := toDocument(bson.M{"v": f.Value})
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", f.Field, err)
		}
		f.Value = encoded["v"]
		out[i] = f
	}
	return out, nil
}

func matchesAll(doc bson.M, filters []Filter) bool {
	for _, f := range filters {
		if !matches(doc, f) {
			return false
		}
	}
	return true
}

func matches(doc bson.M, f Filter) bool {
	v, ok := lookupPath(doc, f.Field)
	if !ok {
		return false
	}
	switch f.Op {
	case OpEqual:
		return reflect.DeepEqual(v, f.Value)
	case OpArrayContains:
		return containsAny(v, []any{f.Value})
	case OpArrayContainsAny:
		wanted, ok := f.Value.(bson.A)
		return ok && containsAny(v, wanted)
	}
	return false
}

func containsAny(field any, wanted []any) bool {
	arr, ok := field.(bson.A)
	if !ok {
		return false
	}
	for _, have := range arr {
		for _, w := range wanted {
			if reflect.DeepEqual(have, w) {
				return true
			}
		}
	}
	return false
}
