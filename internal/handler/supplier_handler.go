package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/controle-estoque/internal/domain"
	"github.com/arturoeanton/controle-estoque/internal/page"
	"github.com/arturoeanton/controle-estoque/internal/service"
)

const suppliersPage = "fornecedores"

var supplierMessages = page.Messages{
	Created:      "Fornecedor cadastrado com sucesso!",
	Updated:      "Fornecedor atualizado com sucesso!",
	Deleted:      "Fornecedor excluído com sucesso!",
	LoadFailed:   "Falha ao carregar fornecedores",
	SaveFailed:   "Falha ao salvar fornecedor",
	DeleteFailed: "Falha ao excluir fornecedor",
}

// SupplierHandler serves the supplier page: list, create, edit and delete on
// one screen.
type SupplierHandler struct {
	suppliers *service.SupplierService
	flash     *Flash
	opts      Options
}

// NewSupplierHandler creates the supplier handler.
func NewSupplierHandler(suppliers *service.SupplierService, flash *Flash, opts Options) *SupplierHandler {
	return &SupplierHandler{suppliers: suppliers, flash: flash, opts: opts}
}

func (h *SupplierHandler) controller() *page.ListController[domain.Supplier, domain.SupplierInput] {
	return page.NewListController[domain.Supplier, domain.SupplierInput](h.suppliers, page.Options[domain.Supplier]{
		SkipFetch: h.opts.SkipFetch,
		IDOf:      func(f domain.Supplier) string { return f.ID },
		NameOf:    func(f domain.Supplier) string { return f.Nome },
		Messages:  supplierMessages,
	})
}

// List shows the suppliers, with any pending message.
func (h *SupplierHandler) List(c fiber.Ctx) error {
	ctrl := h.controller()
	_ = ctrl.Mount(c.Context())
	ctrl.SetMessage(h.flash.Get(c, suppliersPage))
	return c.JSON(ctrl.View())
}

// Create registers a supplier.
func (h *SupplierHandler) Create(c fiber.Ctx) error {
	var in domain.SupplierInput
	if err := c.Bind().JSON(&in); err != nil {
		return badBody(c)
	}
	ctrl := h.controller()
	f, err := ctrl.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err, supplierMessages.SaveFailed)
	}
	h.flash.Set(c, suppliersPage, ctrl.Message())
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"fornecedor": f, "message": ctrl.Message()})
}

// Update edits a supplier.
func (h *SupplierHandler) Update(c fiber.Ctx) error {
	var in domain.SupplierInput
	if err := c.Bind().JSON(&in); err != nil {
		return badBody(c)
	}
	ctrl := h.controller()
	f, err := ctrl.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err, supplierMessages.SaveFailed)
	}
	h.flash.Set(c, suppliersPage, ctrl.Message())
	return c.JSON(fiber.Map{"fornecedor": f, "message": ctrl.Message()})
}

// Delete removes a supplier once confirmed.
func (h *SupplierHandler) Delete(c fiber.Ctx) error {
	ctrl := h.controller()
	id := c.Params("id")
	if !confirmed(c) {
		f, err := h.suppliers.Get(c.Context(), id)
		if err != nil {
			return respondError(c, err, supplierMessages.LoadFailed)
		}
		ctrl.Seed(*f)
	}
	if err := ctrl.Delete(c.Context(), id, confirmed(c)); err != nil {
		return respondError(c, err, supplierMessages.DeleteFailed)
	}
	h.flash.Set(c, suppliersPage, ctrl.Message())
	return c.JSON(fiber.Map{"message": ctrl.Message()})
}
