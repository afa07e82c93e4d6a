// Package registry maps entity kind tags to their backing collection and
// declared schema. It is built once at startup and never mutated afterwards.
package registry

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/canteiro/canteiro/pkg/domain"
)

// Descriptor binds one entity kind to its collection name, field-name set and
// document decoder.
type Descriptor struct {
	Kind       string
	Collection string
	fields     map[string]struct{}
	decode     func(bson.Raw) (domain.Entity, error)
}

// HasField reports whether name is part of the kind's declared schema.
func (d Descriptor) HasField(name string) bool {
	_, ok := d.fields[name]
	return ok
}

// Decode converts a stored document into its public entity shape.
func (d Descriptor) Decode(raw bson.Raw) (domain.Entity, error) {
	return d.decode(raw)
}

// Registry is the closed dispatch table over the four entity kinds.
type Registry struct {
	kinds map[string]Descriptor
}

// New builds the registry with the four entity kinds. Field sets use the wire
// names, which are also the stored BSON names.
func New() *Registry {
	r := &Registry{kinds: make(map[string]Descriptor)}
	register[*domain.Pessoa](r, domain.KindPessoa, "pessoas",
		"nome", "email", "idade", "telefone", "profissao", "terrenos_ids")
	register[*domain.Terreno](r, domain.KindTerreno, "terrenos",
		"largura", "comprimento", "disponivel", "preco", "descricao", "endereco",
		"pessoas_ids", "construcoes_ids")
	register[*domain.Construcao](r, domain.KindConstrucao, "construcoes",
		"nome", "descricao", "custo_total", "tipo", "area", "terreno_id", "obras_ids")
	register[*domain.Obra](r, domain.KindObra, "obras",
		"nome", "descricao", "inicio", "fim", "custo", "construcao_id")
	return r
}

// Lookup returns the descriptor for a kind tag or domain.ErrUnknownKind.
func (r *Registry) Lookup(kind string) (Descriptor, error) {
	d, ok := r.kinds[kind]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	return d, nil
}

// Kinds returns the registered kind tags.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.kinds))
	for kind := range r.kinds {
		kinds = append(kinds, kind)
	}
	return kinds
}

func register[T interface {
	domain.Entity
	*E
}, E any](r *Registry, kind, collection string, fields ...string) {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	r.kinds[kind] = Descriptor{
		Kind:       kind,
		Collection: collection,
		fields:     set,
		decode: func(raw bson.Raw) (domain.Entity, error) {
			var v E
			if err := bson.Unmarshal(raw, &v); err != nil {
				return nil, fmt.Errorf("decode %s document: %w", kind, err)
			}
			entity := T(&v)
			entity.Normalize()
			return entity, nil
		},
	}
}
