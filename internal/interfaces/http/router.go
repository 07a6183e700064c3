package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-traslados/internal/application/inventory"
	"github.com/jhoicas/inventario-traslados/internal/application/reconcile"
	"github.com/jhoicas/inventario-traslados/internal/application/transfer"
)

// RoleAdmin rol con permiso para disparar la conciliación.
const RoleAdmin = "admin"

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Workflow   *transfer.Workflow
	Slips      *transfer.SlipUseCase
	Relocation *inventory.RelocationUseCase
	Ledger     *inventory.LedgerUseCase
	Reconciler *reconcile.Reconciler
	JWTSecret  string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	transfers := api.Group("/transfers")
	transferHandler := NewTransferHandler(deps.Workflow, deps.Slips)
	transfers.Post("/", transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Post("/:id/approve", transferHandler.Approve)
	transfers.Post("/:id/reject", transferHandler.Reject)
	if deps.Slips != nil {
		transfers.Get("/:id/slip", transferHandler.Slip)
	}

	relocations := api.Group("/relocations")
	relocationHandler := NewRelocationHandler(deps.Relocation)
	relocations.Post("/items", relocationHandler.RelocateItem)
	relocations.Post("/services", relocationHandler.RelocateService)

	ledgerHandler := NewLedgerHandler(deps.Ledger)
	ledger := api.Group("/ledger")
	ledger.Get("/", ledgerHandler.List)
	ledger.Get("/:id", ledgerHandler.GetRow)
	ledger.Post("/:id/reserve", ledgerHandler.Reserve)
	ledger.Post("/:id/release", ledgerHandler.Release)
	api.Get("/services", ledgerHandler.ListServices)
	api.Get("/movements", ledgerHandler.ListMovements)

	if deps.Reconciler != nil {
		reconcileHandler := NewReconcileHandler(deps.Reconciler)
		api.Post("/reconciliations", RequireRole(RoleAdmin), reconcileHandler.Run)
	}
}
