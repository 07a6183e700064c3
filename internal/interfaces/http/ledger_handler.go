package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-traslados/internal/application/dto"
	"github.com/jhoicas/inventario-traslados/internal/application/inventory"
	"github.com/jhoicas/inventario-traslados/internal/domain"
	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
	"github.com/jhoicas/inventario-traslados/internal/domain/repository"
)

// LedgerHandler consultas del libro, reservas y log de movimientos (protegido).
type LedgerHandler struct {
	uc *inventory.LedgerUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *inventory.LedgerUseCase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// GetRow godoc
// @Summary      Obtener fila del libro
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la fila"
// @Success      200  {object}  dto.LedgerRowResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ledger/{id} [get]
func (h *LedgerHandler) GetRow(c *fiber.Ctx) error {
	row, err := h.uc.GetRow(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToLedgerRowResponse(row))
}

// List godoc
// @Summary      Listar filas del libro
// @Description  Con item_id devuelve la distribución del ítem; sin él, las filas del departamento del token.
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        item_id  query  string  false  "ítem"
// @Param        limit    query  int     false  "máx. 100"
// @Param        offset   query  int     false  "desplazamiento"
// @Success      200  {array}  dto.LedgerRowResponse
// @Router       /api/ledger [get]
func (h *LedgerHandler) List(c *fiber.Ctx) error {
	if itemID := c.Query("item_id"); itemID != "" {
		rows, err := h.uc.ListByItem(c.UserContext(), itemID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(dto.ToLedgerRowResponses(rows))
	}
	departmentID := GetDepartmentID(c)
	if departmentID == "" {
		return unauthorized(c)
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	rows, err := h.uc.ListByDepartment(c.UserContext(), departmentID, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToLedgerRowResponses(rows))
}

// Reserve godoc
// @Summary      Reservar cantidad de una fila
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la fila"
// @Param        body  body  dto.ReservationRequest  true  "cantidad"
// @Success      200   {object}  dto.LedgerRowResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/{id}/reserve [post]
func (h *LedgerHandler) Reserve(c *fiber.Ctx) error {
	return h.reservation(c, h.uc.Reserve)
}

// Release godoc
// @Summary      Liberar reserva de una fila
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la fila"
// @Param        body  body  dto.ReservationRequest  true  "cantidad"
// @Success      200   {object}  dto.LedgerRowResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/{id}/release [post]
func (h *LedgerHandler) Release(c *fiber.Ctx) error {
	return h.reservation(c, h.uc.Release)
}

func (h *LedgerHandler) reservation(c *fiber.Ctx, apply func(context.Context, string, int64) (*entity.LedgerRow, error)) error {
	departmentID := GetDepartmentID(c)
	if departmentID == "" {
		return unauthorized(c)
	}
	var in dto.ReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	rowID := c.Params("id")
	row, err := h.uc.GetRow(c.UserContext(), rowID)
	if err != nil {
		return writeError(c, err)
	}
	// La fila nunca cambia de departamento, basta validarla antes de la transacción.
	if row.DepartmentID != departmentID {
		return writeError(c, fmt.Errorf("%w: la fila pertenece a otro departamento", domain.ErrForbidden))
	}
	row, err = apply(c.UserContext(), rowID, in.Amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToLedgerRowResponse(row))
}

// ListServices godoc
// @Summary      Listar servicios de una ubicación del departamento
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        section_id  query  string  false  "vacío = nivel departamento"
// @Success      200  {array}  dto.ServiceResponse
// @Router       /api/services [get]
func (h *LedgerHandler) ListServices(c *fiber.Ctx) error {
	departmentID := GetDepartmentID(c)
	if departmentID == "" {
		return unauthorized(c)
	}
	list, err := h.uc.ListServices(c.UserContext(), departmentID, c.Query("section_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToServiceResponses(list))
}

// ListMovements godoc
// @Summary      Consultar el log de movimientos
// @Description  Requiere reference, item_id o service_id.
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        reference   query  string  false  "traslado, reubicación o corrida de conciliación"
// @Param        item_id     query  string  false  "ítem"
// @Param        service_id  query  string  false  "servicio"
// @Param        limit       query  int     false  "máx. 100"
// @Param        offset      query  int     false  "desplazamiento"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *LedgerHandler) ListMovements(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 100), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	list, err := h.uc.ListMovements(c.UserContext(), repository.MovementFilter{
		Reference: c.Query("reference"),
		ItemID:    c.Query("item_id"),
		ServiceID: c.Query("service_id"),
		Limit:     page.Limit,
		Offset:    page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToMovementResponses(list))
}
