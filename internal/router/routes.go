// Package router declares the application's route table and mounts it on a
// Fiber app behind the protected-route gate.
package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/controle-estoque/internal/handler"
	"github.com/arturoeanton/controle-estoque/internal/middleware"
)

// Guard is the access level a route requires.
type Guard int

const (
	// Public routes resolve the session but never block.
	Public Guard = iota
	// Authenticated routes require a signed-in user.
	Authenticated
	// Admin routes require an administrator profile.
	Admin
)

func (g Guard) String() string {
	switch g {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}

// MethodAll matches every HTTP method.
const MethodAll = "*"

// Route maps a method and path to a page handler behind a guard.
type Route struct {
	Method  string
	Path    string
	Guard   Guard
	Handler fiber.Handler
}

// Handlers are the page handlers the table points at.
type Handlers struct {
	Auth      *handler.AuthHandler
	Home      *handler.HomeHandler
	Products  *handler.ProductHandler
	Movements *handler.MovementHandler
	Suppliers *handler.SupplierHandler
	Users     *handler.UserHandler
	Audit     *handler.AuditHandler
	Events    *handler.EventsHandler
}

// Table returns every route of the application. The catch-all comes last.
func Table(h Handlers) []Route {
	return []Route{
		{fiber.MethodGet, "/api/v1/health", Public, h.Home.Health},

		{fiber.MethodGet, "/login", Public, h.Auth.LoginPage},
		{fiber.MethodPost, "/login", Public, h.Auth.Login},
		{fiber.MethodGet, "/register", Public, h.Auth.RegisterPage},
		{fiber.MethodPost, "/register", Public, h.Auth.Register},
		{fiber.MethodPost, "/logout", Authenticated, h.Auth.Logout},
		{fiber.MethodGet, "/perfil", Authenticated, h.Auth.ProfilePage},
		{fiber.MethodPut, "/perfil", Authenticated, h.Auth.UpdateProfile},
		{fiber.MethodGet, "/auth/events", Authenticated, h.Events.Stream},

		{fiber.MethodGet, "/", Authenticated, h.Home.Home},

		{fiber.MethodGet, "/cadastro-produto", Authenticated, h.Products.NewProductPage},
		{fiber.MethodPost, "/cadastro-produto", Authenticated, h.Products.Create},
		{fiber.MethodGet, "/editar-produto/:id", Authenticated, h.Products.EditPage},
		{fiber.MethodPut, "/editar-produto/:id", Authenticated, h.Products.Update},
		{fiber.MethodGet, "/consulta-estoque", Authenticated, h.Products.Stock},
		{fiber.MethodPost, "/consulta-estoque/importar", Authenticated, h.Products.Import},
		{fiber.MethodDelete, "/consulta-estoque/:id", Authenticated, h.Products.Delete},

		{fiber.MethodGet, "/movimentacoes", Authenticated, h.Movements.List},
		{fiber.MethodGet, "/movimentacoes/nova", Authenticated, h.Movements.NewPage},
		{fiber.MethodPost, "/movimentacoes/nova", Authenticated, h.Movements.Create},
		{fiber.MethodGet, "/movimentacoes/editar/:id", Authenticated, h.Movements.EditPage},
		{fiber.MethodPut, "/movimentacoes/editar/:id", Authenticated, h.Movements.Update},
		{fiber.MethodDelete, "/movimentacoes/:id", Authenticated, h.Movements.Delete},

		{fiber.MethodGet, "/fornecedores", Authenticated, h.Suppliers.List},
		{fiber.MethodPost, "/fornecedores", Authenticated, h.Suppliers.Create},
		{fiber.MethodPut, "/fornecedores/:id", Authenticated, h.Suppliers.Update},
		{fiber.MethodDelete, "/fornecedores/:id", Authenticated, h.Suppliers.Delete},

		{fiber.MethodGet, "/usuarios", Admin, h.Users.List},
		{fiber.MethodDelete, "/usuarios/:id", Admin, h.Users.Delete},
		{fiber.MethodGet, "/editar-usuario/:id", Admin, h.Users.EditPage},
		{fiber.MethodPut, "/editar-usuario/:id", Admin, h.Users.Update},
		{fiber.MethodGet, "/auditoria", Admin, h.Audit.ListLogs},

		{MethodAll, "/*", Authenticated, h.Home.NotFound},
	}
}

// Mount registers routes on app in order, each behind the gate matching its
// guard.
func Mount(app fiber.Router, sessions middleware.SessionResolver, routes []Route) {
	var (
		public = middleware.Optional(sessions)
		authed = middleware.Gate(sessions, false)
		admin  = middleware.Gate(sessions, true)
	)

	for _, r := range routes {
		var gate fiber.Handler
		switch r.Guard {
		case Public:
			gate = public
		case Admin:
			gate = admin
		default:
			gate = authed
		}

		if r.Method == MethodAll {
			app.All(r.Path, gate, r.Handler)
			continue
		}
		app.Add([]string{r.Method}, r.Path, gate, r.Handler)
	}
}
