package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/controle-estoque/internal/domain"
	"github.com/arturoeanton/controle-estoque/internal/page"
	"github.com/arturoeanton/controle-estoque/internal/service"
)

const stockPage = "consulta-estoque"

var productMessages = page.Messages{
	Created:      "Produto cadastrado com sucesso!",
	Updated:      "Produto atualizado com sucesso!",
	Deleted:      "Produto excluído com sucesso!",
	LoadFailed:   "Erro ao carregar produtos.",
	SaveFailed:   "Erro ao cadastrar produto. Tente novamente.",
	DeleteFailed: "Erro ao excluir produto.",
}

// ProductHandler serves the product form, product edit and stock pages.
type ProductHandler struct {
	products *service.ProductService
	flash    *Flash
	opts     Options
}

// NewProductHandler creates the product handler.
func NewProductHandler(products *service.ProductService, flash *Flash, opts Options) *ProductHandler {
	return &ProductHandler{products: products, flash: flash, opts: opts}
}

func (h *ProductHandler) controller() *page.ListController[domain.Product, domain.ProductInput] {
	return page.NewListController[domain.Product, domain.ProductInput](h.products, page.Options[domain.Product]{
		SkipFetch: h.opts.SkipFetch,
		IDOf:      func(p domain.Product) string { return p.ID },
		NameOf:    func(p domain.Product) string { return p.Nome },
		Messages:  productMessages,
	})
}

// NewProductPage returns the product types for the form.
func (h *ProductHandler) NewProductPage(c fiber.Ctx) error {
	types, err := h.products.ListTypes(c.Context())
	if err != nil {
		return respondError(c, err, "Erro ao carregar tipos.")
	}
	return c.JSON(fiber.Map{"tipos": nonNil(types)})
}

// Create registers a product and sends the user to the stock page.
func (h *ProductHandler) Create(c fiber.Ctx) error {
	var in domain.ProductInput
	if err := c.Bind().JSON(&in); err != nil {
		return badBody(c)
	}

	ctrl := h.controller()
	p, err := ctrl.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err, productMessages.SaveFailed)
	}
	h.flash.Set(c, stockPage, ctrl.Message())
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"produto":  p,
		"message":  ctrl.Message(),
		"redirect": "/" + stockPage,
	})
}

// EditPage returns the product and the type list.
func (h *ProductHandler) EditPage(c fiber.Ctx) error {
	p, err := h.products.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Produto não encontrado.")
	}
	types, err := h.products.ListTypes(c.Context())
	if err != nil {
		return respondError(c, err, "Erro ao carregar tipos.")
	}
	return c.JSON(fiber.Map{"produto": p, "tipos": nonNil(types)})
}

// Update saves the product edit form.
func (h *ProductHandler) Update(c fiber.Ctx) error {
	var in domain.ProductInput
	if err := c.Bind().JSON(&in); err != nil {
		return badBody(c)
	}

	ctrl := h.controller()
	p, err := ctrl.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err, "Erro ao atualizar produto.")
	}
	h.flash.Set(c, stockPage, ctrl.Message())
	return c.JSON(fiber.Map{
		"produto":  p,
		"message":  ctrl.Message(),
		"redirect": "/" + stockPage,
	})
}

// Stock lists products filtered by ?q= and ordered by ?sort=.
func (h *ProductHandler) Stock(c fiber.Ctx) error {
	ctrl := h.controller()
	q := page.NewStockQuery(c.Query("q"), c.Query("sort"))

	// A failed load is shown as the page error, not as an HTTP failure.
	_ = ctrl.Mount(c.Context())
	ctrl.SetMessage(h.flash.Get(c, stockPage))

	view := ctrl.View()
	all := len(view.Items)
	view.Items = q.Apply(view.Items)
	return c.JSON(page.StockView{
		View:  view,
		Q:     q.Q,
		Sort:  q.Sort.String(),
		Total: all,
	})
}

// Delete removes a product once the request carries ?confirm=true.
func (h *ProductHandler) Delete(c fiber.Ctx) error {
	ctrl := h.controller()
	id := c.Params("id")
	if !confirmed(c) {
		p, err := h.products.Get(c.Context(), id)
		if err != nil {
			return respondError(c, err, productMessages.LoadFailed)
		}
		ctrl.Seed(*p)
	}
	if err := ctrl.Delete(c.Context(), id, confirmed(c)); err != nil {
		return respondError(c, err, productMessages.DeleteFailed)
	}
	h.flash.Set(c, stockPage, ctrl.Message())
	return c.JSON(fiber.Map{"message": ctrl.Message()})
}

const importPrompt = "Tem certeza que deseja importar os produtos?"

// Import stores a batch of products atomically, only on ?confirm=true.
func (h *ProductHandler) Import(c fiber.Ctx) error {
	var body struct {
		Produtos []domain.ProductInput `json:"produtos"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badBody(c)
	}
	if !confirmed(c) {
		return respondError(c, &page.ConfirmationError{Prompt: importPrompt}, "")
	}

	n, err := h.products.Import(c.Context(), body.Produtos)
	if err != nil {
		return respondError(c, err, "Erro ao importar produtos.")
	}
	msg := fmt.Sprintf("%d produtos importados com sucesso!", n)
	h.flash.Set(c, stockPage, msg)
	return c.JSON(fiber.Map{"imported": n, "message": msg})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
