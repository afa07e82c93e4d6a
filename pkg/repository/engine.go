// Package repository implements the kind-polymorphic CRUD engine on top of
// the entity registry and a document store executor.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/canteiro/canteiro/pkg/domain"
	"github.com/canteiro/canteiro/pkg/observability/logger"
	"github.com/canteiro/canteiro/pkg/registry"
)

// Store is the document store executor contract. The MongoDB adapter
// implements it in production; an in-memory store implements it in tests.
// A missing document on FindOne is reported as mongo.ErrNoDocuments.
type Store interface {
	InsertOne(ctx context.Context, collection string, document any) (primitive.ObjectID, error)
	FindOne(ctx context.Context, collection string, filter any) (bson.Raw, error)
	FindMany(ctx context.Context, collection string, filter any, skip, limit int64) ([]bson.Raw, error)
	UpdateOne(ctx context.Context, collection string, filter, update any) (int64, error)
	UpdateMany(ctx context.Context, collection string, filter, update any) (int64, error)
	DeleteOne(ctx context.Context, collection string, filter any) (int64, error)
	DeleteMany(ctx context.Context, collection string, filter any) (int64, error)
	Count(ctx context.Context, collection string, filter any) (int64, error)
}

// Engine dispatches generic CRUD operations over the registered entity kinds.
type Engine struct {
	registry *registry.Registry
	store    Store
	log      logger.Logger
}

// NewEngine creates a CRUD engine over the given registry and store.
func NewEngine(reg *registry.Registry, store Store, log logger.Logger) (*Engine, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	return &Engine{registry: reg, store: store, log: log}, nil
}

// Store exposes the underlying executor for composed multi-step mutations.
func (e *Engine) Store() Store { return e.store }

// Registry exposes the entity registry.
func (e *Engine) Registry() *registry.Registry { return e.registry }

// List returns all documents of a kind in natural order. Unbounded by design;
// large collections go through Paginate.
func (e *Engine) List(ctx context.Context, kind string) ([]domain.Entity, error) {
	desc, err := e.registry.Lookup(kind)
	if err != nil {
		return nil, err
	}
	raws, err := e.store.FindMany(ctx, desc.Collection, bson.D{}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return e.decodeAll(desc, raws)
}

// Count returns the total number of documents of a kind.
func (e *Engine) Count(ctx context.Context, kind string) (int64, error) {
	desc, err := e.registry.Lookup(kind)
	if err != nil {
		return 0, err
	}
	total, err := e.store.Count(ctx, desc.Collection, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, err)
	}
	return total, nil
}

// Create inserts the payload as a new document and returns the assigned
// identifier in its string form.
func (e *Engine) Create(ctx context.Context, kind string, payload any) (string, error) {
	desc, err := e.registry.Lookup(kind)
	if err != nil {
		return "", err
	}
	id, err := e.store.InsertOne(ctx, desc.Collection, payload)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", kind, err)
	}
	return id.Hex(), nil
}

// FindOne returns the first document of a kind matching the filter, or
// domain.ErrNotFound.
func (e *Engine) FindOne(ctx context.Context, kind string, filter any) (domain.Entity, error) {
	desc, err := e.registry.Lookup(kind)
	if err != nil {
		return nil, err
	}
	raw, err := e.store.FindOne(ctx, desc.Collection, filter)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", kind, err)
	}
	return desc.Decode(raw)
}

// GetByID validates the identifier and fetches the matching document.
func (e *Engine) GetByID(ctx context.Context, kind, id string) (domain.Entity, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}
	return e.FindOne(ctx, kind, bson.M{"_id": oid})
}

// Replace overwrites all base fields of the identified document and returns
// the post-update entity. A matched document that required no modification
// still succeeds; only zero matches report domain.ErrNotFound.
func (e *Engine) Replace(ctx context.Context, kind, id string, payload any) (domain.Entity, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}
	desc, err := e.registry.Lookup(kind)
	if err != nil {
		return nil, err
	}
	matched, err := e.store.UpdateOne(ctx, desc.Collection, bson.M{"_id": oid}, bson.M{"$set": payload})
	if err != nil {
		return nil, fmt.Errorf("replace %s: %w", kind, err)
	}
	if matched == 0 {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind, id)
	}
	return e.FindOne(ctx, kind, bson.M{"_id": oid})
}

// Patch applies only the fields present in the partial payload. An empty
// patch performs no write and returns the current entity.
func (e *Engine) Patch(ctx context.Context, kind, id string, partial any) (domain.Entity, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}
	desc, err := e.registry.Lookup(kind)
	if err != nil {
		return nil, err
	}
	set, err := toDocument(partial)
	if err != nil {
		return nil, fmt.Errorf("patch %s: %w", kind, err)
	}
	if len(set) == 0 {
		return e.FindOne(ctx, kind, bson.M{"_id": oid})
	}
	matched, err := e.store.UpdateOne(ctx, desc.Collection, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("patch %s: %w", kind, err)
	}
	if matched == 0 {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind, id)
	}
	return e.FindOne(ctx, kind, bson.M{"_id": oid})
}

// Delete removes exactly one document or reports domain.ErrNotFound.
func (e *Engine) Delete(ctx context.Context, kind, id string) error {
	oid, err := domain.ParseID(id)
	if err != nil {
		return err
	}
	desc, err := e.registry.Lookup(kind)
	if err != nil {
		return err
	}
	deleted, err := e.store.DeleteOne(ctx, desc.Collection, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if deleted == 0 {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind, id)
	}
	return nil
}

func (e *Engine) decodeAll(desc registry.Descriptor, raws []bson.Raw) ([]domain.Entity, error) {
	entities := make([]domain.Entity, 0, len(raws))
	for _, raw := range raws {
		entity, err := desc.Decode(raw)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// toDocument remarshals a struct into a bson.D so that omitted optional
// fields can be detected before issuing a $set.
func toDocument(v any) (bson.D, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Search implements the partial-field search contract: the field must belong
// to the kind's schema or be the identifier pseudo-field. Identifier searches
// return at most one entity. Other fields try a case-insensitive substring
// match first and fall back to exact integer equality; a term that is not a
// valid integer yields an empty result rather than an error.
func (e *Engine) Search(ctx context.Context, kind, field, term string) ([]domain.Entity, error) {
	desc, err := e.registry.Lookup(kind)
	if err != nil {
		return nil, err
	}
	if field != "id" && !desc.HasField(field) {
		return nil, fmt.Errorf("%w: %s has no field %q", domain.ErrUnknownField, kind, field)
	}

	if field == "id" {
		entity, err := e.GetByID(ctx, kind, term)
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.Entity{}, nil
		}
		if err != nil {
			return nil, err
		}
		return []domain.Entity{entity}, nil
	}

	filter := bson.M{field: primitive.Regex{Pattern: term, Options: "i"}}
	raws, err := e.store.FindMany(ctx, desc.Collection, filter, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", kind, err)
	}
	if len(raws) > 0 {
		return e.decodeAll(desc, raws)
	}

	number, convErr := strconv.Atoi(term)
	if convErr != nil {
		return []domain.Entity{}, nil
	}
	raws, err = e.store.FindMany(ctx, desc.Collection, bson.M{field: number}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", kind, err)
	}
	return e.decodeAll(desc, raws)
}

// Paginate returns one window of documents in natural order together with the
// page count at the time of the call.
func (e *Engine) Paginate(ctx context.Context, kind string, page, limit int64) (*domain.Page, error) {
	if page < 1 || limit < 1 {
		return nil, fmt.Errorf("%w: pagina=%d limite=%d", domain.ErrInvalidPage, page, limit)
	}
	desc, err := e.registry.Lookup(kind)
	if err != nil {
		return nil, err
	}
	skip := (page - 1) * limit
	raws, err := e.store.FindMany(ctx, desc.Collection, bson.D{}, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("paginate %s: %w", kind, err)
	}
	entities, err := e.decodeAll(desc, raws)
	if err != nil {
		return nil, err
	}
	total, err := e.store.Count(ctx, desc.Collection, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("paginate %s: %w", kind, err)
	}
	return &domain.Page{
		Data:         entities,
		PaginaAtual:  page,
		TotalPaginas: (total + limit - 1) / limit,
	}, nil
}
