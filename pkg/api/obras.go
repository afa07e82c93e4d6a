package api

import (
	"github.com/canteiro/canteiro/pkg/controller"
	"github.com/canteiro/canteiro/pkg/domain"
	"github.com/canteiro/canteiro/pkg/server/router"
)

func (a *API) registerObras(r router.Router) {
	r.GET("/", a.list(domain.KindObra))
	r.GET("/quantidade_obras", a.count(domain.KindObra))
	r.GET("/paginacao", a.paginate(domain.KindObra))
	r.GET("/filter/", a.search(domain.KindObra))
	r.POST("/", a.createObra)
	r.PUT("/:id", a.replaceObra)
	r.PATCH("/:id", a.patchObra)
	r.DELETE("/:id", a.deleteByID(domain.KindObra, func(c router.Context, id string) error {
		return a.relations.DeleteObra(c.Request().Context(), id)
	}))
}

func (a *API) createObra(c router.Context) error {
	var base domain.ObraBase
	if err := c.Bind(&base); err != nil {
		return controller.Error(c, controller.BindError(err))
	}

	id, err := a.relations.CreateObra(c.Request().Context(), base)
	if err != nil {
		return controller.Error(c, err)
	}
	return created(c, id)
}

func (a *API) replaceObra(c router.Context) error {
	var base domain.ObraBase
	if err := c.Bind(&base); err != nil {
		return controller.Error(c, controller.BindError(err))
	}

	entity, err := a.engine.Replace(c.Request().Context(), domain.KindObra, c.Param("id"), base)
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.OK(c, entity)
}

func (a *API) patchObra(c router.Context) error {
	var patch domain.ObraPatch
	if err := c.Bind(&patch); err != nil {
		return controller.Error(c, controller.BindError(err))
	}

	entity, err := a.engine.Patch(c.Request().Context(), domain.KindObra, c.Param("id"), patch)
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.OK(c, entity)
}
