package domain

import "time"

// Product is a stock item.
type Product struct {
	ID         string    `json:"id"         db:"id"`
	Nome       string    `json:"nome"       db:"nome"`
	Quantidade int       `json:"quantidade" db:"quantidade"`
	IDTipo     string    `json:"idtipo"     db:"idtipo"`
	TipoNome   string    `json:"tipo_nome"  db:"tipo_nome"` // resolved from tipos
	Local      string    `json:"local"      db:"local"`
	Codigo     string    `json:"codigo,omitempty" db:"codigo"`
	Entrada    time.Time `json:"entrada"    db:"entrada"`
}

// ProductType classifies products (table tipos).
type ProductType struct {
	ID   string `json:"id"   db:"id"`
	Nome string `json:"nome" db:"nome"`
}

// ProductInput is the product form.
type ProductInput struct {
	Nome       string `json:"nome"`
	Quantidade int    `json:"quantidade"`
	IDTipo     string `json:"idtipo"`
	Local      string `json:"local"`
	Codigo     string `json:"codigo"`
}
