package relations

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/canteiro/canteiro/pkg/domain"
	"github.com/canteiro/canteiro/pkg/observability/logger"
	"github.com/canteiro/canteiro/pkg/registry"
	"github.com/canteiro/canteiro/pkg/repository"
	"github.com/canteiro/canteiro/pkg/store/memory"
)

type fixture struct {
	engine  *repository.Engine
	service *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	engine, err := repository.NewEngine(registry.New(), memory.NewStore(), logger.NewNop())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	service, err := NewService(engine, logger.NewNop())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return &fixture{engine: engine, service: service}
}

func (f *fixture) createPessoa(t *testing.T, nome string) string {
	t.Helper()
	pessoa := &domain.Pessoa{PessoaBase: domain.PessoaBase{Nome: nome}}
	pessoa.Normalize()
	id, err := f.engine.Create(context.Background(), domain.KindPessoa, pessoa)
	if err != nil {
		t.Fatalf("create pessoa failed: %v", err)
	}
	return id
}

func (f *fixture) createTerreno(t *testing.T, descricao string) string {
	t.Helper()
	terreno := &domain.Terreno{TerrenoBase: domain.TerrenoBase{Descricao: descricao}}
	terreno.Normalize()
	id, err := f.engine.Create(context.Background(), domain.KindTerreno, terreno)
	if err != nil {
		t.Fatalf("create terreno failed: %v", err)
	}
	return id
}

func (f *fixture) createConstrucao(t *testing.T, terrenoID string, custoTotal float64) string {
	t.Helper()
	id, err := f.service.CreateConstrucao(context.Background(), domain.ConstrucaoBase{
		Nome:       "casa",
		CustoTotal: custoTotal,
		TerrenoID:  terrenoID,
	})
	if err != nil {
		t.Fatalf("CreateConstrucao failed: %v", err)
	}
	return id
}

func (f *fixture) createObra(t *testing.T, construcaoID string, custo float64) string {
	t.Helper()
	id, err := f.service.CreateObra(context.Background(), domain.ObraBase{
		Nome:         "fundacao",
		Custo:        custo,
		ConstrucaoID: construcaoID,
	})
	if err != nil {
		t.Fatalf("CreateObra failed: %v", err)
	}
	return id
}

func (f *fixture) getPessoa(t *testing.T, id string) *domain.Pessoa {
	t.Helper()
	entity, err := f.engine.GetByID(context.Background(), domain.KindPessoa, id)
	if err != nil {
		t.Fatalf("get pessoa failed: %v", err)
	}
	return entity.(*domain.Pessoa)
}

func (f *fixture) getTerreno(t *testing.T, id string) *domain.Terreno {
	t.Helper()
	entity, err := f.engine.GetByID(context.Background(), domain.KindTerreno, id)
	if err != nil {
		t.Fatalf("get terreno failed: %v", err)
	}
	return entity.(*domain.Terreno)
}

func TestLinkPessoaTerrenoIdempotent(t *testing.T) {
	f := newFixture(t)
	pessoaID := f.createPessoa(t, "Maria")
	terrenoID := f.createTerreno(t, "lote 1")

	for i := 0; i < 2; i++ {
		if err := f.service.LinkPessoaTerreno(context.Background(), pessoaID, terrenoID); err != nil {
			t.Fatalf("link %d failed: %v", i+1, err)
		}
	}

	pessoa := f.getPessoa(t, pessoaID)
	if len(pessoa.TerrenosIDs) != 1 {
		t.Fatalf("pessoa holds %d terreno refs, want 1", len(pessoa.TerrenosIDs))
	}
	terreno := f.getTerreno(t, terrenoID)
	if len(terreno.PessoasIDs) != 1 {
		t.Fatalf("terreno holds %d pessoa refs, want 1", len(terreno.PessoasIDs))
	}
}

func TestLinkMissingTerreno(t *testing.T) {
	f := newFixture(t)
	pessoaID := f.createPessoa(t, "Maria")

	err := f.service.LinkPessoaTerreno(context.Background(), pessoaID, primitive.NewObjectID().Hex())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("link to missing terreno = %v, want ErrNotFound", err)
	}
}

func TestLinkInvalidIDs(t *testing.T) {
	f := newFixture(t)
	if err := f.service.LinkPessoaTerreno(context.Background(), "not-an-id", primitive.NewObjectID().Hex()); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("link with invalid pessoa id = %v, want ErrInvalidID", err)
	}
}

func TestCreateConstrucao(t *testing.T) {
	f := newFixture(t)
	terrenoID := f.createTerreno(t, "lote 1")

	id := f.createConstrucao(t, terrenoID, 250000)

	entity, err := f.engine.GetByID(context.Background(), domain.KindConstrucao, id)
	if err != nil {
		t.Fatalf("get construcao failed: %v", err)
	}
	construcao := entity.(*domain.Construcao)
	if construcao.TerrenoID.Hex() != terrenoID {
		t.Fatalf("construcao.TerrenoID = %s, want %s", construcao.TerrenoID.Hex(), terrenoID)
	}
	if construcao.ObrasIDs == nil || len(construcao.ObrasIDs) != 0 {
		t.Fatalf("new construcao should carry an empty obras set, got %v", construcao.ObrasIDs)
	}

	terreno := f.getTerreno(t, terrenoID)
	if len(terreno.ConstrucoesIDs) != 1 || terreno.ConstrucoesIDs[0].Hex() != id {
		t.Fatalf("terreno back-reference = %v, want [%s]", terreno.ConstrucoesIDs, id)
	}
}

func TestCreateConstrucaoMissingTerreno(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.CreateConstrucao(context.Background(), domain.ConstrucaoBase{
		Nome:      "casa",
		TerrenoID: primitive.NewObjectID().Hex(),
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("CreateConstrucao on missing terreno = %v, want ErrNotFound", err)
	}
}

func TestCreateObra(t *testing.T) {
	f := newFixture(t)
	terrenoID := f.createTerreno(t, "lote 1")
	construcaoID := f.createConstrucao(t, terrenoID, 100000)

	obraID := f.createObra(t, construcaoID, 5000)

	entity, err := f.engine.GetByID(context.Background(), domain.KindConstrucao, construcaoID)
	if err != nil {
		t.Fatalf("get construcao failed: %v", err)
	}
	construcao := entity.(*domain.Construcao)
	if len(construcao.ObrasIDs) != 1 || construcao.ObrasIDs[0].Hex() != obraID {
		t.Fatalf("construcao back-reference = %v, want [%s]", construcao.ObrasIDs, obraID)
	}
}

func TestDeletePessoaDetaches(t *testing.T) {
	f := newFixture(t)
	pessoaID := f.createPessoa(t, "Maria")
	terrenoID := f.createTerreno(t, "lote 1")
	if err := f.service.LinkPessoaTerreno(context.Background(), pessoaID, terrenoID); err != nil {
		t.Fatalf("link failed: %v", err)
	}

	if err := f.service.DeletePessoa(context.Background(), pessoaID); err != nil {
		t.Fatalf("DeletePessoa failed: %v", err)
	}

	if _, err := f.engine.GetByID(context.Background(), domain.KindPessoa, pessoaID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("pessoa should be gone, got %v", err)
	}
	terreno := f.getTerreno(t, terrenoID)
	if len(terreno.PessoasIDs) != 0 {
		t.Fatalf("terreno still references the deleted pessoa: %v", terreno.PessoasIDs)
	}
}

func TestDeleteTerrenoCascade(t *testing.T) {
	f := newFixture(t)
	pessoaID := f.createPessoa(t, "Maria")
	terrenoID := f.createTerreno(t, "lote 1")
	if err := f.service.LinkPessoaTerreno(context.Background(), pessoaID, terrenoID); err != nil {
		t.Fatalf("link failed: %v", err)
	}
	c1 := f.createConstrucao(t, terrenoID, 1)
	c2 := f.createConstrucao(t, terrenoID, 2)

	if err := f.service.DeleteTerreno(context.Background(), terrenoID); err != nil {
		t.Fatalf("DeleteTerreno failed: %v", err)
	}

	for _, id := range []string{c1, c2} {
		if _, err := f.engine.GetByID(context.Background(), domain.KindConstrucao, id); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("construcao %s should be gone, got %v", id, err)
		}
	}
	pessoa := f.getPessoa(t, pessoaID)
	if len(pessoa.TerrenosIDs) != 0 {
		t.Fatalf("pessoa still references the deleted terreno: %v", pessoa.TerrenosIDs)
	}
	if _, err := f.engine.GetByID(context.Background(), domain.KindTerreno, terrenoID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("terreno should be gone, got %v", err)
	}
}

func TestDeleteConstrucaoDetaches(t *testing.T) {
	f := newFixture(t)
	terrenoID := f.createTerreno(t, "lote 1")
	construcaoID := f.createConstrucao(t, terrenoID, 1)

	if err := f.service.DeleteConstrucao(context.Background(), construcaoID); err != nil {
		t.Fatalf("DeleteConstrucao failed: %v", err)
	}
	terreno := f.getTerreno(t, terrenoID)
	if len(terreno.ConstrucoesIDs) != 0 {
		t.Fatalf("terreno still references the deleted construcao: %v", terreno.ConstrucoesIDs)
	}
}

func TestDeleteObraDetaches(t *testing.T) {
	f := newFixture(t)
	terrenoID := f.createTerreno(t, "lote 1")
	construcaoID := f.createConstrucao(t, terrenoID, 1)
	obraID := f.createObra(t, construcaoID, 10)

	if err := f.service.DeleteObra(context.Background(), obraID); err != nil {
		t.Fatalf("DeleteObra failed: %v", err)
	}
	entity, err := f.engine.GetByID(context.Background(), domain.KindConstrucao, construcaoID)
	if err != nil {
		t.Fatalf("get construcao failed: %v", err)
	}
	if got := entity.(*domain.Construcao).ObrasIDs; len(got) != 0 {
		t.Fatalf("construcao still references the deleted obra: %v", got)
	}
}

func TestTerrenosDaPessoaSkipsDangling(t *testing.T) {
	f := newFixture(t)
	pessoaID := f.createPessoa(t, "Maria")
	terrenoID := f.createTerreno(t, "lote 1")
	if err := f.service.LinkPessoaTerreno(context.Background(), pessoaID, terrenoID); err != nil {
		t.Fatalf("link failed: %v", err)
	}

	// dangling reference to a terreno that never existed
	pessoaOID, _ := domain.ParseID(pessoaID)
	if _, err := f.engine.Store().UpdateOne(context.Background(), pessoasCollection,
		bson.M{"_id": pessoaOID},
		bson.M{"$addToSet": bson.M{"terrenos_ids": primitive.NewObjectID()}},
	); err != nil {
		t.Fatalf("seed dangling ref failed: %v", err)
	}

	terrenos, err := f.service.TerrenosDaPessoa(context.Background(), pessoaID)
	if err != nil {
		t.Fatalf("TerrenosDaPessoa failed: %v", err)
	}
	if len(terrenos) != 1 {
		t.Fatalf("TerrenosDaPessoa = %d results, want 1 (dangling skipped)", len(terrenos))
	}
}

func TestTotalGastoObrasPessoaSkipsDangling(t *testing.T) {
	f := newFixture(t)
	pessoaID := f.createPessoa(t, "Maria")
	terrenoID := f.createTerreno(t, "lote 1")
	if err := f.service.LinkPessoaTerreno(context.Background(), pessoaID, terrenoID); err != nil {
		t.Fatalf("link failed: %v", err)
	}
	construcaoID := f.createConstrucao(t, terrenoID, 500000)
	f.createObra(t, construcaoID, 60)
	f.createObra(t, construcaoID, 40)

	// dangling obra reference worth nothing
	construcaoOID, _ := domain.ParseID(construcaoID)
	if _, err := f.engine.Store().UpdateOne(context.Background(), construcoesCollection,
		bson.M{"_id": construcaoOID},
		bson.M{"$addToSet": bson.M{"obras_ids": primitive.NewObjectID()}},
	); err != nil {
		t.Fatalf("seed dangling ref failed: %v", err)
	}

	total, err := f.service.TotalGastoObrasPessoa(context.Background(), pessoaID)
	if err != nil {
		t.Fatalf("TotalGastoObrasPessoa failed: %v", err)
	}
	if total != 100 {
		t.Fatalf("total = %v, want 100", total)
	}

	porTerreno, err := f.service.GastosObrasTerreno(context.Background(), terrenoID)
	if err != nil {
		t.Fatalf("GastosObrasTerreno failed: %v", err)
	}
	if porTerreno != 100 {
		t.Fatalf("terreno total = %v, want 100", porTerreno)
	}
}

func TestAggregationMissingPessoa(t *testing.T) {
	f := newFixture(t)
	if _, err := f.service.TotalGastoObrasPessoa(context.Background(), primitive.NewObjectID().Hex()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("aggregation on missing pessoa = %v, want ErrNotFound", err)
	}
}
