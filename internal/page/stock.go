package page

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/arturoeanton/controle-estoque/internal/domain"
)

// Sort fields of the stock page.
const (
	SortNome       = "nome"
	SortQuantidade = "quantidade"
	SortTipo       = "tipo"
	SortEntrada    = "entrada"
)

// DefaultSort shows the most recent entries first.
const DefaultSort = SortEntrada + "-desc"

// SortKey is a parsed "<field>-<asc|desc>" sort value.
type SortKey struct {
	Field string
	Desc  bool
}

func (k SortKey) String() string {
	if k.Desc {
		return k.Field + "-desc"
	}
	return k.Field + "-asc"
}

// ParseSort parses values such as "quantidade-desc". Unknown values fall back
// to DefaultSort.
func ParseSort(s string) SortKey {
	field, dir, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "-")
	if !ok || (dir != "asc" && dir != "desc") {
		return SortKey{Field: SortEntrada, Desc: true}
	}
	switch field {
	case SortNome, SortQuantidade, SortTipo, SortEntrada:
		return SortKey{Field: field, Desc: dir == "desc"}
	default:
		return SortKey{Field: SortEntrada, Desc: true}
	}
}

// StockQuery is the filter and ordering of the stock page.
type StockQuery struct {
	Q    string
	Sort SortKey
}

// NewStockQuery builds a query from the raw ?q= and ?sort= values.
func NewStockQuery(q, sort string) StockQuery {
	return StockQuery{Q: strings.TrimSpace(q), Sort: ParseSort(sort)}
}

// Apply filters and orders products into a new slice; the input is not
// modified, so clearing the filter restores the full list.
//
// The filter is a case-folded substring match over name, code and type name.
// Descending order is the exact reverse of ascending order.
func (q StockQuery) Apply(products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	if q.Q == "" {
		out = append(out, products...)
	} else {
		fold := cases.Fold()
		needle := fold.String(q.Q)
		for _, p := range products {
			if strings.Contains(fold.String(p.Nome), needle) ||
				strings.Contains(fold.String(p.Codigo), needle) ||
				strings.Contains(fold.String(p.TipoNome), needle) {
				out = append(out, p)
			}
		}
	}

	// Collators are not safe for concurrent use; one per call.
	col := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
	cmp := func(a, b domain.Product) int {
		var c int
		switch q.Sort.Field {
		case SortNome:
			c = col.CompareString(a.Nome, b.Nome)
		case SortQuantidade:
			c = a.Quantidade - b.Quantidade
		case SortTipo:
			c = col.CompareString(a.TipoNome, b.TipoNome)
		default:
			c = a.Entrada.Compare(b.Entrada)
		}
		if c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	}
	slices.SortStableFunc(out, cmp)
	if q.Sort.Desc {
		slices.Reverse(out)
	}
	return out
}

// StockView is the JSON shape of the stock page.
type StockView struct {
	View[domain.Product]
	Q     string `json:"q"`
	Sort  string `json:"sort"`
	Total int    `json:"total"`
}
