package api

import (
	"github.com/canteiro/canteiro/pkg/controller"
	"github.com/canteiro/canteiro/pkg/domain"
	"github.com/canteiro/canteiro/pkg/server/router"
)

func (a *API) registerPessoas(r router.Router) {
	r.GET("/", a.list(domain.KindPessoa))
	r.GET("/quantidade_pessoas", a.count(domain.KindPessoa))
	r.GET("/paginacao", a.paginate(domain.KindPessoa))
	r.GET("/filter/", a.search(domain.KindPessoa))
	r.GET("/terrenos/:pessoa_id", a.terrenosDaPessoa)
	r.GET("/total_gasto_obras/:id", a.totalGastoObras)
	r.POST("/", a.createPessoa)
	r.POST("/:pessoa_id/adicionar-terreno/:terreno_id", a.adicionarTerreno)
	r.PUT("/:id", a.replacePessoa)
	r.PATCH("/:id", a.patchPessoa)
	r.DELETE("/:id", a.deleteByID(domain.KindPessoa, func(c router.Context, id string) error {
		return a.relations.DeletePessoa(c.Request().Context(), id)
	}))
}

func (a *API) createPessoa(c router.Context) error {
	var base domain.PessoaBase
	if err := c.Bind(&base); err != nil {
		return controller.Error(c, controller.BindError(err))
	}

	pessoa := &domain.Pessoa{PessoaBase: base}
	pessoa.Normalize()
	id, err := a.engine.Create(c.Request().Context(), domain.KindPessoa, pessoa)
	if err != nil {
		return controller.Error(c, err)
	}
	return created(c, id)
}

func (a *API) replacePessoa(c router.Context) error {
	var base domain.PessoaBase
	if err := c.Bind(&base); err != nil {
		return controller.Error(c, controller.BindError(err))
	}

	entity, err := a.engine.Replace(c.Request().Context(), domain.KindPessoa, c.Param("id"), base)
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.OK(c, entity)
}

func (a *API) patchPessoa(c router.Context) error {
	var patch domain.PessoaPatch
	if err := c.Bind(&patch); err != nil {
		return controller.Error(c, controller.BindError(err))
	}

	entity, err := a.engine.Patch(c.Request().Context(), domain.KindPessoa, c.Param("id"), patch)
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.OK(c, entity)
}

func (a *API) adicionarTerreno(c router.Context) error {
	pessoaID := c.Param("pessoa_id")
	terrenoID := c.Param("terreno_id")

	if err := a.relations.LinkPessoaTerreno(c.Request().Context(), pessoaID, terrenoID); err != nil {
		return controller.Error(c, err)
	}
	return controller.OK(c, MsgResponse{Msg: "Done"})
}

func (a *API) terrenosDaPessoa(c router.Context) error {
	terrenos, err := a.relations.TerrenosDaPessoa(c.Request().Context(), c.Param("pessoa_id"))
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.OK(c, terrenos)
}

func (a *API) totalGastoObras(c router.Context) error {
	total, err := a.relations.TotalGastoObrasPessoa(c.Request().Context(), c.Param("id"))
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.OK(c, TotalResponse{Total: total})
}
