// Package relations maintains the cross-collection reference sets and runs
// the fan-out aggregation queries.
//
// Multi-document mutations are short ordered sequences of idempotent store
// operations with no compensating rollback: a failure partway leaves the
// earlier steps committed. Each step failure is logged with the step name so
// operators can tell which writes landed.
package relations

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/canteiro/canteiro/pkg/domain"
	"github.com/canteiro/canteiro/pkg/observability/logger"
	"github.com/canteiro/canteiro/pkg/repository"
)

// Collection names mirror the registry; the service addresses collections
// directly for the reference-set updates that fall outside generic CRUD.
const (
	pessoasCollection     = "pessoas"
	terrenosCollection    = "terrenos"
	construcoesCollection = "construcoes"
)

// Service composes the CRUD engine with direct reference-set updates.
type Service struct {
	engine *repository.Engine
	store  repository.Store
	log    logger.Logger
}

// NewService creates the relationship service on top of a CRUD engine.
func NewService(engine *repository.Engine, log logger.Logger) (*Service, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	return &Service{engine: engine, store: engine.Store(), log: log}, nil
}

// LinkPessoaTerreno adds each identifier to the other's reference set. Both
// entities must exist. $addToSet keeps the link idempotent; the two writes
// are sequential and not rolled back on partial failure.
func (s *Service) LinkPessoaTerreno(ctx context.Context, pessoaID, terrenoID string) error {
	pessoaOID, err := domain.ParseID(pessoaID)
	if err != nil {
		return err
	}
	terrenoOID, err := domain.ParseID(terrenoID)
	if err != nil {
		return err
	}

	if _, err := s.engine.FindOne(ctx, domain.KindTerreno, bson.M{"_id": terrenoOID}); err != nil {
		return err
	}
	if _, err := s.engine.FindOne(ctx, domain.KindPessoa, bson.M{"_id": pessoaOID}); err != nil {
		return err
	}

	if _, err := s.store.UpdateOne(ctx, terrenosCollection,
		bson.M{"_id": terrenoOID},
		bson.M{"$addToSet": bson.M{"pessoas_ids": pessoaOID}},
	); err != nil {
		s.log.WithContext(ctx).Error("link pessoa-terreno failed", "step", "add pessoa to terreno", "error", err)
		return fmt.Errorf("link pessoa %s to terreno %s: %w", pessoaID, terrenoID, err)
	}

	if _, err := s.store.UpdateOne(ctx, pessoasCollection,
		bson.M{"_id": pessoaOID},
		bson.M{"$addToSet": bson.M{"terrenos_ids": terrenoOID}},
	); err != nil {
		s.log.WithContext(ctx).Error("link pessoa-terreno failed", "step", "add terreno to pessoa", "error", err)
		return fmt.Errorf("link terreno %s to pessoa %s: %w", terrenoID, pessoaID, err)
	}
	return nil
}

// TerrenosDaPessoa returns the Terrenos reachable from a Pessoa's reference
// set, silently skipping dangling references.
func (s *Service) TerrenosDaPessoa(ctx context.Context, pessoaID string) ([]domain.Entity, error) {
	pessoa, err := s.fetchPessoa(ctx, pessoaID)
	if err != nil {
		return nil, err
	}
	terrenos := make([]domain.Entity, 0, len(pessoa.TerrenosIDs))
	for _, terrenoOID := range pessoa.TerrenosIDs {
		terreno, err := s.fetchTerreno(ctx, terrenoOID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		terrenos = append(terrenos, terreno)
	}
	return terrenos, nil
}

// CreateConstrucao creates a Construcao owned by an existing Terreno and adds
// the new identifier to the Terreno's reference set.
func (s *Service) CreateConstrucao(ctx context.Context, base domain.ConstrucaoBase) (string, error) {
	terrenoOID, err := domain.ParseID(base.TerrenoID)
	if err != nil {
		return "", err
	}
	if _, err := s.fetchTerreno(ctx, terrenoOID); err != nil {
		return "", err
	}

	id, err := s.engine.Create(ctx, domain.KindConstrucao, &domain.Construcao{
		Nome:       base.Nome,
		Descricao:  base.Descricao,
		CustoTotal: base.CustoTotal,
		Tipo:       base.Tipo,
		Area:       base.Area,
		TerrenoID:  terrenoOID,
		ObrasIDs:   []primitive.ObjectID{},
	})
	if err != nil {
		return "", err
	}
	construcaoOID, err := domain.ParseID(id)
	if err != nil {
		return "", err
	}

	if _, err := s.store.UpdateOne(ctx, terrenosCollection,
		bson.M{"_id": terrenoOID},
		bson.M{"$addToSet": bson.M{"construcoes_ids": construcaoOID}},
	); err != nil {
		s.log.WithContext(ctx).Error("create construcao failed", "step", "add construcao to terreno", "construcao_id", id, "error", err)
		return "", fmt.Errorf("register construcao %s on terreno %s: %w", id, base.TerrenoID, err)
	}
	return id, nil
}

// CreateObra creates an Obra owned by an existing Construcao and adds the new
// identifier to the Construcao's reference set.
func (s *Service) CreateObra(ctx context.Context, base domain.ObraBase) (string, error) {
	construcaoOID, err := domain.ParseID(base.ConstrucaoID)
	if err != nil {
		return "", err
	}
	if _, err := s.engine.FindOne(ctx, domain.KindConstrucao, bson.M{"_id": construcaoOID}); err != nil {
		return "", err
	}

	id, err := s.engine.Create(ctx, domain.KindObra, &domain.Obra{
		Nome:         base.Nome,
		Descricao:    base.Descricao,
		Inicio:       base.Inicio,
		Fim:          base.Fim,
		Custo:        base.Custo,
		ConstrucaoID: construcaoOID,
	})
	if err != nil {
		return "", err
	}
	obraOID, err := domain.ParseID(id)
	if err != nil {
		return "", err
	}

	if _, err := s.store.UpdateOne(ctx, construcoesCollection,
		bson.M{"_id": construcaoOID},
		bson.M{"$addToSet": bson.M{"obras_ids": obraOID}},
	); err != nil {
		s.log.WithContext(ctx).Error("create obra failed", "step", "add obra to construcao", "obra_id", id, "error", err)
		return "", fmt.Errorf("register obra %s on construcao %s: %w", id, base.ConstrucaoID, err)
	}
	return id, nil
}

// DeletePessoa removes the Pessoa's identifier from every Terreno's reference
// set, then deletes the Pessoa document.
func (s *Service) DeletePessoa(ctx context.Context, id string) error {
	oid, err := domain.ParseID(id)
	if err != nil {
		return err
	}
	if _, err := s.store.UpdateMany(ctx, terrenosCollection,
		bson.M{"pessoas_ids": oid},
		bson.M{"$pull": bson.M{"pessoas_ids": oid}},
	); err != nil {
		s.log.WithContext(ctx).Error("delete pessoa failed", "step", "pull pessoa from terrenos", "pessoa_id", id, "error", err)
		return fmt.Errorf("detach pessoa %s from terrenos: %w", id, err)
	}
	return s.engine.Delete(ctx, domain.KindPessoa, id)
}

// DeleteTerreno deletes every Construcao owned by the Terreno, removes the
// Terreno from every Pessoa's reference set, then deletes the Terreno. The
// Construcoes' Obras are intentionally left behind: Construcao deletion does
// not cascade to Obras.
func (s *Service) DeleteTerreno(ctx context.Context, id string) error {
	oid, err := domain.ParseID(id)
	if err != nil {
		return err
	}
	if _, err := s.store.DeleteMany(ctx, construcoesCollection,
		bson.M{"terreno_id": oid},
	); err != nil {
		s.log.WithContext(ctx).Error("delete terreno failed", "step", "delete construcoes", "terreno_id", id, "error", err)
		return fmt.Errorf("delete construcoes of terreno %s: %w", id, err)
	}
	if _, err := s.store.UpdateMany(ctx, pessoasCollection,
		bson.M{"terrenos_ids": oid},
		bson.M{"$pull": bson.M{"terrenos_ids": oid}},
	); err != nil {
		s.log.WithContext(ctx).Error("delete terreno failed", "step", "pull terreno from pessoas", "terreno_id", id, "error", err)
		return fmt.Errorf("detach terreno %s from pessoas: %w", id, err)
	}
	return s.engine.Delete(ctx, domain.KindTerreno, id)
}

// DeleteConstrucao deletes the Construcao document, then pulls its identifier
// from whichever Terreno's reference set currently contains it. The reverse
// set-scan also cleans up documents whose terreno_id was never set.
func (s *Service) DeleteConstrucao(ctx context.Context, id string) error {
	oid, err := domain.ParseID(id)
	if err != nil {
		return err
	}
	if err := s.engine.Delete(ctx, domain.KindConstrucao, id); err != nil {
		return err
	}
	if _, err := s.store.UpdateOne(ctx, terrenosCollection,
		bson.M{"construcoes_ids": oid},
		bson.M{"$pull": bson.M{"construcoes_ids": oid}},
	); err != nil {
		s.log.WithContext(ctx).Error("delete construcao failed", "step", "pull construcao from terreno", "construcao_id", id, "error", err)
		return fmt.Errorf("detach construcao %s from terreno: %w", id, err)
	}
	return nil
}

// DeleteObra deletes the Obra document, then pulls its identifier from the
// owning Construcao's reference set.
func (s *Service) DeleteObra(ctx context.Context, id string) error {
	oid, err := domain.ParseID(id)
	if err != nil {
		return err
	}
	if err := s.engine.Delete(ctx, domain.KindObra, id); err != nil {
		return err
	}
	if _, err := s.store.UpdateOne(ctx, construcoesCollection,
		bson.M{"obras_ids": oid},
		bson.M{"$pull": bson.M{"obras_ids": oid}},
	); err != nil {
		s.log.WithContext(ctx).Error("delete obra failed", "step", "pull obra from construcao", "obra_id", id, "error", err)
		return fmt.Errorf("detach obra %s from construcao: %w", id, err)
	}
	return nil
}

// TotalGastoObrasPessoa walks Pessoa -> Terrenos -> Construcoes -> Obras and
// sums the Obras' custo. Dangling references at any hop are skipped silently.
// One store round-trip per node; acceptable for the service's low volumes.
func (s *Service) TotalGastoObrasPessoa(ctx context.Context, pessoaID string) (float64, error) {
	pessoa, err := s.fetchPessoa(ctx, pessoaID)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, terrenoOID := range pessoa.TerrenosIDs {
		terreno, err := s.fetchTerreno(ctx, terrenoOID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return 0, err
		}
		subtotal, err := s.gastoObrasDoTerreno(ctx, terreno)
		if err != nil {
			return 0, err
		}
		total += subtotal
	}
	return total, nil
}

// GastosObrasTerreno runs the same traversal starting one hop lower, from a
// single Terreno.
func (s *Service) GastosObrasTerreno(ctx context.Context, terrenoID string) (float64, error) {
	oid, err := domain.ParseID(terrenoID)
	if err != nil {
		return 0, err
	}
	terreno, err := s.fetchTerreno(ctx, oid)
	if err != nil {
		return 0, err
	}
	return s.gastoObrasDoTerreno(ctx, terreno)
}

func (s *Service) gastoObrasDoTerreno(ctx context.Context, terreno *domain.Terreno) (float64, error) {
	var total float64
	for _, construcaoOID := range terreno.ConstrucoesIDs {
		entity, err := s.engine.FindOne(ctx, domain.KindConstrucao, bson.M{"_id": construcaoOID})
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return 0, err
		}
		construcao := entity.(*domain.Construcao)
		for _, obraOID := range construcao.ObrasIDs {
			entity, err := s.engine.FindOne(ctx, domain.KindObra, bson.M{"_id": obraOID})
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if err != nil {
				return 0, err
			}
			total += entity.(*domain.Obra).Custo
		}
	}
	return total, nil
}

func (s *Service) fetchPessoa(ctx context.Context, id string) (*domain.Pessoa, error) {
	entity, err := s.engine.GetByID(ctx, domain.KindPessoa, id)
	if err != nil {
		return nil, err
	}
	return entity.(*domain.Pessoa), nil
}

func (s *Service) fetchTerreno(ctx context.Context, oid primitive.ObjectID) (*domain.Terreno, error) {
	entity, err := s.engine.FindOne(ctx, domain.KindTerreno, bson.M{"_id": oid})
	if err != nil {
		return nil, err
	}
	return entity.(*domain.Terreno), nil
}
