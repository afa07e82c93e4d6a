// Package memory provides an in-memory document store implementing the CRUD
// engine's executor contract. It supports the operator subset the service
// uses ($set, $addToSet, $pull, $regex, equality and array membership) and is
// intended for tests and local development without a MongoDB instance.
package memory

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store holds documents per collection in insertion order.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]bson.M
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{collections: make(map[string][]bson.M)}
}

// InsertOne appends a document to the collection, assigning an ObjectID when
// the document has none.
func (s *Store) InsertOne(_ context.Context, collection string, document any) (primitive.ObjectID, error) {
	doc, err := toMap(document)
	if err != nil {
		return primitive.NilObjectID, err
	}

	oid, ok := doc["_id"].(primitive.ObjectID)
	if !ok || oid.IsZero() {
		oid = primitive.NewObjectID()
		doc["_id"] = oid
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = append(s.collections[collection], doc)
	return oid, nil
}

// FindOne returns the first matching document or mongo.ErrNoDocuments.
func (s *Store) FindOne(_ context.Context, collection string, filter any) (bson.Raw, error) {
	match, err := toMap(filter)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.collections[collection] {
		if matchDoc(doc, match) {
			return marshalDoc(doc)
		}
	}
	return nil, mongo.ErrNoDocuments
}

// FindMany returns matching documents in insertion order, honoring skip and
// limit. A limit of zero means no limit.
func (s *Store) FindMany(_ context.Context, collection string, filter any, skip, limit int64) ([]bson.Raw, error) {
	match, err := toMap(filter)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []bson.Raw
	var seen int64
	for _, doc := range s.collections[collection] {
		if !matchDoc(doc, match) {
			continue
		}
		seen++
		if seen <= skip {
			continue
		}
		raw, err := marshalDoc(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

// UpdateOne applies the update to the first matching document and returns the
// matched count.
func (s *Store) UpdateOne(_ context.Context, collection string, filter, update any) (int64, error) {
	return s.update(collection, filter, update, true)
}

// UpdateMany applies the update to every matching document and returns the
// matched count.
func (s *Store) UpdateMany(_ context.Context, collection string, filter, update any) (int64, error) {
	return s.update(collection, filter, update, false)
}

// DeleteOne removes the first matching document and returns the deleted count.
func (s *Store) DeleteOne(_ context.Context, collection string, filter any) (int64, error) {
	return s.delete(collection, filter, true)
}

// DeleteMany removes every matching document and returns the deleted count.
func (s *Store) DeleteMany(_ context.Context, collection string, filter any) (int64, error) {
	return s.delete(collection, filter, false)
}

// Count returns the number of matching documents.
func (s *Store) Count(_ context.Context, collection string, filter any) (int64, error) {
	match, err := toMap(filter)
	if err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, doc := range s.collections[collection] {
		if matchDoc(doc, match) {
			total++
		}
	}
	return total, nil
}

func (s *Store) update(collection string, filter, update any, single bool) (int64, error) {
	match, err := toMap(filter)
	if err != nil {
		return 0, err
	}
	ops, err := toMap(update)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var matched int64
	for _, doc := range s.collections[collection] {
		if !matchDoc(doc, match) {
			continue
		}
		matched++
		if err := applyUpdate(doc, ops); err != nil {
			return matched, err
		}
		if single {
			break
		}
	}
	return matched, nil
}

func (s *Store) delete(collection string, filter any, single bool) (int64, error) {
	match, err := toMap(filter)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.collections[collection][:0]
	var deleted int64
	for _, doc := range s.collections[collection] {
		if matchDoc(doc, match) && (!single || deleted == 0) {
			deleted++
			continue
		}
		kept = append(kept, doc)
	}
	s.collections[collection] = kept
	return deleted, nil
}

// toMap canonicalizes any filter/document/update through a BSON round-trip so
// that comparisons always see driver-native types.
func toMap(v any) (bson.M, error) {
	if v == nil {
		return bson.M{}, nil
	}
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonicalize document: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("canonicalize document: %w", err)
	}
	return m, nil
}

func marshalDoc(doc bson.M) (bson.Raw, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return bson.Raw(raw), nil
}

func matchDoc(doc, filter bson.M) bool {
	for key, cond := range filter {
		value, exists := doc[key]
		if rx, ok := cond.(primitive.Regex); ok {
			str, isString := value.(string)
			if !exists || !isString || !regexMatch(rx, str) {
				return false
			}
			continue
		}
		if !exists {
			return false
		}
		if valueEqual(value, cond) {
			continue
		}
		// Mongo semantics: {field: v} matches array fields containing v.
		if arr, ok := value.(primitive.A); ok && arrayContains(arr, cond) {
			continue
		}
		return false
	}
	return true
}

func regexMatch(rx primitive.Regex, value string) bool {
	pattern := rx.Pattern
	for _, opt := range rx.Options {
		if opt == 'i' {
			pattern = "(?i)" + pattern
			break
		}
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(value)
}

func valueEqual(a, b any) bool {
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		return bok && af == bf
	}
	switch av := a.(type) {
	case primitive.ObjectID:
		bv, ok := b.(primitive.ObjectID)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case primitive.DateTime:
		bv, ok := b.(primitive.DateTime)
		return ok && av == bv
	case primitive.A:
		bv, ok := b.(primitive.A)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case bson.D:
		bv, ok := b.(bson.D)
		if !ok || len(av) != len(bv) {
			return false
		}
		bm := bv.Map()
		for _, elem := range av {
			other, exists := bm[elem.Key]
			if !exists || !valueEqual(elem.Value, other) {
				return false
			}
		}
		return true
	case nil:
		return b == nil
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func arrayContains(arr primitive.A, v any) bool {
	for _, elem := range arr {
		if valueEqual(elem, v) {
			return true
		}
	}
	return false
}

func applyUpdate(doc bson.M, ops bson.M) error {
	for op, spec := range ops {
		pairs, err := toPairs(spec)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		switch op {
		case "$set":
			for _, pair := range pairs {
				doc[pair.Key] = pair.Value
			}
		case "$addToSet":
			for _, pair := range pairs {
				arr, _ := doc[pair.Key].(primitive.A)
				if !arrayContains(arr, pair.Value) {
					arr = append(arr, pair.Value)
				}
				doc[pair.Key] = arr
			}
		case "$pull":
			for _, pair := range pairs {
				arr, _ := doc[pair.Key].(primitive.A)
				kept := make(primitive.A, 0, len(arr))
				for _, elem := range arr {
					if !valueEqual(elem, pair.Value) {
						kept = append(kept, elem)
					}
				}
				doc[pair.Key] = kept
			}
		default:
			return fmt.Errorf("unsupported update operator %q", op)
		}
	}
	return nil
}

func toPairs(spec any) (bson.D, error) {
	switch v := spec.(type) {
	case bson.D:
		return v, nil
	case bson.M:
		pairs := make(bson.D, 0, len(v))
		for key, value := range v {
			pairs = append(pairs, bson.E{Key: key, Value: value})
		}
		return pairs, nil
	}
	return nil, fmt.Errorf("unexpected operator document type %T", spec)
}
