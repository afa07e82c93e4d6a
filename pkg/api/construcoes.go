package api

import (
	"github.com/canteiro/canteiro/pkg/controller"
	"github.com/canteiro/canteiro/pkg/domain"
	"github.com/canteiro/canteiro/pkg/server/router"
)

func (a *API) registerConstrucoes(r router.Router) {
	r.GET("/", a.list(domain.KindConstrucao))
	r.GET("/quantidade_construcoes", a.count(domain.KindConstrucao))
	r.GET("/paginacao", a.paginate(domain.KindConstrucao))
	r.GET("/filter/", a.search(domain.KindConstrucao))
	r.POST("/", a.createConstrucao)
	r.PUT("/:id", a.replaceConstrucao)
	r.PATCH("/:id", a.patchConstrucao)
	r.DELETE("/:id", a.deleteByID(domain.KindConstrucao, func(c router.Context, id string) error {
		return a.relations.DeleteConstrucao(c.Request().Context(), id)
	}))
}

func (a *API) createConstrucao(c router.Context) error {
	var base domain.ConstrucaoBase
	if err := c.Bind(&base); err != nil {
		return controller.Error(c, controller.BindError(err))
	}

	id, err := a.relations.CreateConstrucao(c.Request().Context(), base)
	if err != nil {
		return controller.Error(c, err)
	}
	return created(c, id)
}

func (a *API) replaceConstrucao(c router.Context) error {
	var base domain.ConstrucaoBase
	if err := c.Bind(&base); err != nil {
		return controller.Error(c, controller.BindError(err))
	}

	entity, err := a.engine.Replace(c.Request().Context(), domain.KindConstrucao, c.Param("id"), base)
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.OK(c, entity)
}

func (a *API) patchConstrucao(c router.Context) error {
	var patch domain.ConstrucaoPatch
	if err := c.Bind(&patch); err != nil {
		return controller.Error(c, controller.BindError(err))
	}

	entity, err := a.engine.Patch(c.Request().Context(), domain.KindConstrucao, c.Param("id"), patch)
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.OK(c, entity)
}
