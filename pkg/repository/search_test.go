package repository

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/canteiro/canteiro/pkg/domain"
)

func TestSearchUnknownField(t *testing.T) {
	engine := newTestEngine(t)
	if _, err := engine.Search(context.Background(), domain.KindPessoa, "altura", "1"); !errors.Is(err, domain.ErrUnknownField) {
		t.Fatalf("Search(altura) = %v, want ErrUnknownField", err)
	}
}

func TestSearchByID(t *testing.T) {
	engine := newTestEngine(t)
	id := createPessoa(t, engine, domain.PessoaBase{Nome: "Lia"})

	results, err := engine.Search(context.Background(), domain.KindPessoa, "id", id)
	if err != nil {
		t.Fatalf("Search(id) failed: %v", err)
	}
	if len(results) != 1 || results[0].EntityID().Hex() != id {
		t.Fatalf("Search(id) = %v, want the single created pessoa", results)
	}
}

func TestSearchByIDMissing(t *testing.T) {
	engine := newTestEngine(t)
	createPessoa(t, engine, domain.PessoaBase{Nome: "Lia"})

	results, err := engine.Search(context.Background(), domain.KindPessoa, "id", primitive.NewObjectID().Hex())
	if err != nil {
		t.Fatalf("Search(missing id) should not error, got %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("Search(missing id) = %v, want empty", results)
	}
}

func TestSearchByIDInvalid(t *testing.T) {
	engine := newTestEngine(t)
	if _, err := engine.Search(context.Background(), domain.KindPessoa, "id", "not-an-id"); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("Search(invalid id) = %v, want ErrInvalidID", err)
	}
}

func TestSearchSubstringCaseInsensitive(t *testing.T) {
	engine := newTestEngine(t)
	createPessoa(t, engine, domain.PessoaBase{Nome: "Maria Silva"})
	createPessoa(t, engine, domain.PessoaBase{Nome: "Carlos Souza"})

	results, err := engine.Search(context.Background(), domain.KindPessoa, "nome", "silva")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search(silva) returned %d results, want 1", len(results))
	}
	if results[0].(*domain.Pessoa).Nome != "Maria Silva" {
		t.Fatalf("Search(silva) matched %q", results[0].(*domain.Pessoa).Nome)
	}
}

func TestSearchIntegerFallback(t *testing.T) {
	engine := newTestEngine(t)
	createPessoa(t, engine, domain.PessoaBase{Nome: "Maria", Idade: 34})
	createPessoa(t, engine, domain.PessoaBase{Nome: "Carlos", Idade: 60})

	results, err := engine.Search(context.Background(), domain.KindPessoa, "idade", "34")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].(*domain.Pessoa).Idade != 34 {
		t.Fatalf("Search(idade=34) = %v, want one pessoa aged 34", results)
	}
}

func TestSearchNonIntegerOnNumericFieldIsEmpty(t *testing.T) {
	engine := newTestEngine(t)
	createPessoa(t, engine, domain.PessoaBase{Nome: "Maria", Idade: 34})

	results, err := engine.Search(context.Background(), domain.KindPessoa, "idade", "trinta")
	if err != nil {
		t.Fatalf("Search with a non-integer term should not error, got %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("Search(idade=trinta) = %v, want empty", results)
	}
}
