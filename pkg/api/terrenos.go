package api

import (
	"github.com/canteiro/canteiro/pkg/controller"
	"github.com/canteiro/canteiro/pkg/domain"
	"github.com/canteiro/canteiro/pkg/server/router"
)

func (a *API) registerTerrenos(r router.Router) {
	r.GET("/", a.list(domain.KindTerreno))
	r.GET("/quantidade_terrenos", a.count(domain.KindTerreno))
	r.GET("/paginacao", a.paginate(domain.KindTerreno))
	r.GET("/filter/", a.search(domain.KindTerreno))
	r.GET("/terreno/gastos_obras/:id", a.gastosObrasTerreno)
	r.POST("/", a.createTerreno)
	r.PUT("/:id", a.replaceTerreno)
	r.PATCH("/:id", a.patchTerreno)
	r.DELETE("/:id", a.deleteByID(domain.KindTerreno, func(c router.Context, id string) error {
		return a.relations.DeleteTerreno(c.Request().Context(), id)
	}))
}

func (a *API) createTerreno(c router.Context) error {
	var base domain.TerrenoBase
	if err := c.Bind(&base); err != nil {
		return controller.Error(c, controller.BindError(err))
	}

	terreno := &domain.Terreno{TerrenoBase: base}
	terreno.Normalize()
	id, err := a.engine.Create(c.Request().Context(), domain.KindTerreno, terreno)
	if err != nil {
		return controller.Error(c, err)
	}
	return created(c, id)
}

func (a *API) replaceTerreno(c router.Context) error {
	var base domain.TerrenoBase
	if err := c.Bind(&base); err != nil {
		return controller.Error(c, controller.BindError(err))
	}

	entity, err := a.engine.Replace(c.Request().Context(), domain.KindTerreno, c.Param("id"), base)
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.OK(c, entity)
}

func (a *API) patchTerreno(c router.Context) error {
	var patch domain.TerrenoPatch
	if err := c.Bind(&patch); err != nil {
		return controller.Error(c, controller.BindError(err))
	}

	entity, err := a.engine.Patch(c.Request().Context(), domain.KindTerreno, c.Param("id"), patch)
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.OK(c, entity)
}

func (a *API) gastosObrasTerreno(c router.Context) error {
	total, err := a.relations.GastosObrasTerreno(c.Request().Context(), c.Param("id"))
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.OK(c, TotalResponse{Total: total})
}
