package registry

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/canteiro/canteiro/pkg/domain"
)

func TestLookupKnownKinds(t *testing.T) {
	r := New()

	cases := []struct {
		kind       string
		collection string
	}{
		{domain.KindPessoa, "pessoas"},
		{domain.KindTerreno, "terrenos"},
		{domain.KindConstrucao, "construcoes"},
		{domain.KindObra, "obras"},
	}
	for _, tc := range cases {
		desc, err := r.Lookup(tc.kind)
		if err != nil {
			t.Fatalf("Lookup(%q) failed: %v", tc.kind, err)
		}
		if desc.Collection != tc.collection {
			t.Fatalf("Lookup(%q).Collection = %q, want %q", tc.kind, desc.Collection, tc.collection)
		}
	}
}

func TestLookupUnknownKind(t *testing.T) {
	r := New()
	if _, err := r.Lookup("fazenda"); !errors.Is(err, domain.ErrUnknownKind) {
		t.Fatalf("Lookup(fazenda) = %v, want ErrUnknownKind", err)
	}
}

func TestHasField(t *testing.T) {
	r := New()
	desc, err := r.Lookup(domain.KindPessoa)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	for _, field := range []string{"nome", "email", "idade", "telefone", "profissao", "terrenos_ids"} {
		if !desc.HasField(field) {
			t.Errorf("pessoa should declare field %q", field)
		}
	}
	for _, field := range []string{"id", "_id", "largura", "inexistente"} {
		if desc.HasField(field) {
			t.Errorf("pessoa should not declare field %q", field)
		}
	}
}

func TestDecodeNormalizes(t *testing.T) {
	r := New()
	desc, err := r.Lookup(domain.KindTerreno)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	raw, err := bson.Marshal(bson.M{
		"_id":       primitive.NewObjectID(),
		"largura":   10.0,
		"descricao": "lote vazio",
	})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	entity, err := desc.Decode(bson.Raw(raw))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	terreno, ok := entity.(*domain.Terreno)
	if !ok {
		t.Fatalf("Decode returned %T, want *domain.Terreno", entity)
	}
	if terreno.PessoasIDs == nil || terreno.ConstrucoesIDs == nil {
		t.Fatal("Decode should normalize nil reference sets to empty slices")
	}
	if terreno.Largura != 10.0 {
		t.Fatalf("Largura = %v, want 10.0", terreno.Largura)
	}
}
