package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Entity kind tags. The registry is closed over exactly these four kinds.
const (
	KindPessoa     = "pessoa"
	KindTerreno    = "terreno"
	KindConstrucao = "construcao"
	KindObra       = "obra"
)

// Entity is the common contract of the four document kinds.
type Entity interface {
	// EntityID returns the store-assigned identifier.
	EntityID() primitive.ObjectID

	// Normalize replaces nil reference sets with empty ones so that the
	// public JSON shape always carries arrays.
	Normalize()
}

// Page is the result of a pagination query. Field names follow the public
// API wire format.
type Page struct {
	Data         []Entity `json:"data"`
	PaginaAtual  int64    `json:"pagina_atual"`
	TotalPaginas int64    `json:"total_paginas"`
}

// Endereco is the nested address of a Terreno.
type Endereco struct {
	Rua       string `bson:"rua" json:"rua"`
	Numero    int    `bson:"numero" json:"numero"`
	Cidade    string `bson:"cidade" json:"cidade"`
	Estado    string `bson:"estado" json:"estado"`
	CEP       string `bson:"cep" json:"cep"`
	Longitude string `bson:"longitude" json:"longitude"`
	Latitude  string `bson:"latitude" json:"latitude"`
}

// PessoaBase is the creatable/replaceable portion of a Pessoa.
type PessoaBase struct {
	Nome      string `bson:"nome" json:"nome"`
	Email     string `bson:"email" json:"email"`
	Idade     int    `bson:"idade" json:"idade"`
	Telefone  string `bson:"telefone" json:"telefone"`
	Profissao string `bson:"profissao" json:"profissao"`
}

// PessoaPatch carries optional fields for partial updates. Absent fields are
// left untouched.
type PessoaPatch struct {
	Nome      *string `bson:"nome,omitempty" json:"nome,omitempty"`
	Email     *string `bson:"email,omitempty" json:"email,omitempty"`
	Idade     *int    `bson:"idade,omitempty" json:"idade,omitempty"`
	Telefone  *string `bson:"telefone,omitempty" json:"telefone,omitempty"`
	Profissao *string `bson:"profissao,omitempty" json:"profissao,omitempty"`
}

// Pessoa owns a reference set of Terrenos (N:N, symmetric with
// Terreno.PessoasIDs).
type Pessoa struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	PessoaBase  `bson:",inline"`
	TerrenosIDs []primitive.ObjectID `bson:"terrenos_ids,omitempty" json:"terrenos_ids"`
}

func (p *Pessoa) EntityID() primitive.ObjectID { return p.ID }

func (p *Pessoa) Normalize() {
	if p.TerrenosIDs == nil {
		p.TerrenosIDs = []primitive.ObjectID{}
	}
}

// TerrenoBase is the creatable/replaceable portion of a Terreno.
type TerrenoBase struct {
	Largura     float64  `bson:"largura" json:"largura"`
	Comprimento float64  `bson:"comprimento" json:"comprimento"`
	Disponivel  bool     `bson:"disponivel" json:"disponivel"`
	Preco       float64  `bson:"preco" json:"preco"`
	Descricao   string   `bson:"descricao" json:"descricao"`
	Endereco    Endereco `bson:"endereco" json:"endereco"`
}

// TerrenoPatch carries optional fields for partial updates.
type TerrenoPatch struct {
	Largura     *float64  `bson:"largura,omitempty" json:"largura,omitempty"`
	Comprimento *float64  `bson:"comprimento,omitempty" json:"comprimento,omitempty"`
	Disponivel  *bool     `bson:"disponivel,omitempty" json:"disponivel,omitempty"`
	Preco       *float64  `bson:"preco,omitempty" json:"preco,omitempty"`
	Descricao   *string   `bson:"descricao,omitempty" json:"descricao,omitempty"`
	Endereco    *Endereco `bson:"endereco,omitempty" json:"endereco,omitempty"`
}

// Terreno carries two reference sets: the owning Pessoas (N:N) and the
// Construcoes built on it.
type Terreno struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	TerrenoBase    `bson:",inline"`
	PessoasIDs     []primitive.ObjectID `bson:"pessoas_ids,omitempty" json:"pessoas_ids"`
	ConstrucoesIDs []primitive.ObjectID `bson:"construcoes_ids,omitempty" json:"construcoes_ids"`
}

func (t *Terreno) EntityID() primitive.ObjectID { return t.ID }

func (t *Terreno) Normalize() {
	if t.PessoasIDs == nil {
		t.PessoasIDs = []primitive.ObjectID{}
	}
	if t.ConstrucoesIDs == nil {
		t.ConstrucoesIDs = []primitive.ObjectID{}
	}
}

// ConstrucaoBase is the creatable/replaceable portion of a Construcao. The
// owning Terreno is supplied as a string identifier at creation time and is
// stored as a native ObjectID; it is not touched by replace or patch.
type ConstrucaoBase struct {
	Nome       string  `bson:"nome" json:"nome"`
	Descricao  string  `bson:"descricao" json:"descricao"`
	CustoTotal float64 `bson:"custo_total" json:"custo_total"`
	Tipo       string  `bson:"tipo" json:"tipo"`
	Area       float64 `bson:"area" json:"area"`
	TerrenoID  string  `bson:"-" json:"terreno_id"`
}

// ConstrucaoPatch carries optional fields for partial updates.
type ConstrucaoPatch struct {
	Nome       *string  `bson:"nome,omitempty" json:"nome,omitempty"`
	Descricao  *string  `bson:"descricao,omitempty" json:"descricao,omitempty"`
	CustoTotal *float64 `bson:"custo_total,omitempty" json:"custo_total,omitempty"`
	Tipo       *string  `bson:"tipo,omitempty" json:"tipo,omitempty"`
	Area       *float64 `bson:"area,omitempty" json:"area,omitempty"`
}

// Construcao always names exactly one owning Terreno and carries the
// reference set of its Obras.
type Construcao struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Nome       string               `bson:"nome" json:"nome"`
	Descricao  string               `bson:"descricao" json:"descricao"`
	CustoTotal float64              `bson:"custo_total" json:"custo_total"`
	Tipo       string               `bson:"tipo" json:"tipo"`
	Area       float64              `bson:"area" json:"area"`
	TerrenoID  primitive.ObjectID   `bson:"terreno_id" json:"terreno_id"`
	ObrasIDs   []primitive.ObjectID `bson:"obras_ids,omitempty" json:"obras_ids"`
}

func (c *Construcao) EntityID() primitive.ObjectID { return c.ID }

func (c *Construcao) Normalize() {
	if c.ObrasIDs == nil {
		c.ObrasIDs = []primitive.ObjectID{}
	}
}

// ObraBase is the creatable/replaceable portion of an Obra. The owning
// Construcao is supplied as a string identifier at creation time.
type ObraBase struct {
	Nome         string     `bson:"nome" json:"nome"`
	Descricao    string     `bson:"descricao" json:"descricao"`
	Inicio       time.Time  `bson:"inicio" json:"inicio"`
	Fim          *time.Time `bson:"fim,omitempty" json:"fim,omitempty"`
	Custo        float64    `bson:"custo" json:"custo"`
	ConstrucaoID string     `bson:"-" json:"construcao_id"`
}

// ObraPatch carries optional fields for partial updates.
type ObraPatch struct {
	Nome      *string    `bson:"nome,omitempty" json:"nome,omitempty"`
	Descricao *string    `bson:"descricao,omitempty" json:"descricao,omitempty"`
	Inicio    *time.Time `bson:"inicio,omitempty" json:"inicio,omitempty"`
	Fim       *time.Time `bson:"fim,omitempty" json:"fim,omitempty"`
	Custo     *float64   `bson:"custo,omitempty" json:"custo,omitempty"`
}

// Obra is a leaf document: it references its owning Construcao and holds no
// reference sets of its own.
type Obra struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Nome         string             `bson:"nome" json:"nome"`
	Descricao    string             `bson:"descricao" json:"descricao"`
	Inicio       time.Time          `bson:"inicio" json:"inicio"`
	Fim          *time.Time         `bson:"fim,omitempty" json:"fim,omitempty"`
	Custo        float64            `bson:"custo" json:"custo"`
	ConstrucaoID primitive.ObjectID `bson:"construcao_id" json:"construcao_id"`
}

func (o *Obra) EntityID() primitive.ObjectID { return o.ID }

func (o *Obra) Normalize() {}
