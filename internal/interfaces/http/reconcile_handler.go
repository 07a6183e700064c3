package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-traslados/internal/application/reconcile"
)

// ReconcileHandler dispara la conciliación bajo demanda (solo administradores).
type ReconcileHandler struct {
	reconciler *reconcile.Reconciler
}

// NewReconcileHandler construye el handler.
func NewReconcileHandler(reconciler *reconcile.Reconciler) *ReconcileHandler {
	return &ReconcileHandler{reconciler: reconciler}
}

// Run godoc
// @Summary      Ejecutar conciliación
// @Description  Compara el total maestro de cada ítem con la suma distribuida y ajusta las filas.
// @Tags         reconciliation
// @Security     Bearer
// @Produce      json
// @Param        dry_run  query  bool    false  "calcula sin escribir"
// @Param        item_id  query  string  false  "solo este ítem"
// @Success      200  {object}  reconcile.Report
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/reconciliations [post]
func (h *ReconcileHandler) Run(c *fiber.Ctx) error {
	report, err := h.reconciler.Run(c.UserContext(), reconcile.Options{
		DryRun: c.QueryBool("dry_run", false),
		ItemID: c.Query("item_id"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}
