// Package api mounts the public HTTP surface: generic CRUD, search and
// pagination per entity kind, plus the relationship and aggregation endpoints.
package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/canteiro/canteiro/pkg/controller"
	"github.com/canteiro/canteiro/pkg/domain"
	"github.com/canteiro/canteiro/pkg/observability/logger"
	"github.com/canteiro/canteiro/pkg/relations"
	"github.com/canteiro/canteiro/pkg/repository"
	"github.com/canteiro/canteiro/pkg/server/router"
)

// API holds the handlers for the public server.
type API struct {
	engine    *repository.Engine
	relations *relations.Service
	log       logger.Logger
}

// NewAPI creates the API handler set.
func NewAPI(engine *repository.Engine, rel *relations.Service, log logger.Logger) (*API, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if rel == nil {
		return nil, fmt.Errorf("relations service is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &API{engine: engine, relations: rel, log: log}, nil
}

// Register mounts all route groups on the router. The /contrucoes prefix
// keeps the public API path of the previous system.
func (a *API) Register(r router.Router) {
	a.registerPessoas(r.Group("/pessoas"))
	a.registerTerrenos(r.Group("/terrenos"))
	a.registerConstrucoes(r.Group("/contrucoes"))
	a.registerObras(r.Group("/obras"))
}

// MsgResponse is the body of delete and link acknowledgements.
type MsgResponse struct {
	Msg string `json:"msg"`
}

// QuantidadeResponse is the body of the count endpoints.
type QuantidadeResponse struct {
	Quantidade int64 `json:"quantidade"`
}

// IDResponse is the body of the create endpoints.
type IDResponse struct {
	ID string `json:"id"`
}

// TotalResponse is the body of the spend aggregation endpoints.
type TotalResponse struct {
	Total float64 `json:"total"`
}

func (a *API) list(kind string) router.HandlerFunc {
	return func(c router.Context) error {
		entities, err := a.engine.List(c.Request().Context(), kind)
		if err != nil {
			return controller.Error(c, err)
		}
		return controller.OK(c, entities)
	}
}

func (a *API) count(kind string) router.HandlerFunc {
	return func(c router.Context) error {
		total, err := a.engine.Count(c.Request().Context(), kind)
		if err != nil {
			return controller.Error(c, err)
		}
		return controller.OK(c, QuantidadeResponse{Quantidade: total})
	}
}

func (a *API) paginate(kind string) router.HandlerFunc {
	return func(c router.Context) error {
		page, err := queryInt(c, "pagina", 1)
		if err != nil {
			return controller.Error(c, err)
		}
		limit, err := queryInt(c, "limite", 10)
		if err != nil {
			return controller.Error(c, err)
		}

		result, err := a.engine.Paginate(c.Request().Context(), kind, page, limit)
		if err != nil {
			return controller.Error(c, err)
		}
		return controller.OK(c, result)
	}
}

func (a *API) search(kind string) router.HandlerFunc {
	return func(c router.Context) error {
		field := c.Query("atributo")
		term := c.Query("busca")

		entities, err := a.engine.Search(c.Request().Context(), kind, field, term)
		if err != nil {
			return controller.Error(c, err)
		}
		return controller.OK(c, entities)
	}
}

func (a *API) deleteByID(kind string, remove func(c router.Context, id string) error) router.HandlerFunc {
	return func(c router.Context) error {
		id := c.Param("id")
		if err := remove(c, id); err != nil {
			return controller.Error(c, err)
		}
		return controller.OK(c, MsgResponse{Msg: "deleted"})
	}
}

func queryInt(c router.Context, name string, fallback int64) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", domain.ErrInvalidPage, name, raw)
	}
	return value, nil
}

func created(c router.Context, id string) error {
	return c.JSON(http.StatusCreated, IDResponse{ID: id})
}
