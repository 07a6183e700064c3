package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-traslados/internal/application/dto"
	"github.com/jhoicas/inventario-traslados/internal/application/inventory"
)

// RelocationHandler reubicaciones dentro del departamento del token (protegido).
type RelocationHandler struct {
	uc *inventory.RelocationUseCase
}

// NewRelocationHandler construye el handler.
func NewRelocationHandler(uc *inventory.RelocationUseCase) *RelocationHandler {
	return &RelocationHandler{uc: uc}
}

// RelocateItem godoc
// @Summary      Reubicar ítem entre secciones
// @Tags         relocations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RelocateItemRequest  true  "ítem, secciones y cantidad"
// @Success      200   {object}  dto.ItemRelocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/relocations/items [post]
func (h *RelocationHandler) RelocateItem(c *fiber.Ctx) error {
	userID, departmentID := GetUserID(c), GetDepartmentID(c)
	if userID == "" || departmentID == "" {
		return unauthorized(c)
	}
	var in dto.RelocateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.RelocateItem(c.UserContext(), inventory.RelocateItemInput{
		ActorID:       userID,
		DepartmentID:  departmentID,
		ItemID:        in.ItemID,
		FromSectionID: in.FromSectionID,
		ToSectionID:   in.ToSectionID,
		Quantity:      in.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ItemRelocationResponse{
		RelocationID: res.RelocationID,
		Source:       dto.ToLedgerRowResponse(res.Source),
		Destination:  dto.ToLedgerRowResponse(res.Destination),
		Movement:     dto.ToMovementResponse(res.Movement),
	})
}

// RelocateService godoc
// @Summary      Reubicar servicio entre secciones
// @Tags         relocations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RelocateServiceRequest  true  "servicio y secciones"
// @Success      200   {object}  dto.ServiceRelocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/relocations/services [post]
func (h *RelocationHandler) RelocateService(c *fiber.Ctx) error {
	userID, departmentID := GetUserID(c), GetDepartmentID(c)
	if userID == "" || departmentID == "" {
		return unauthorized(c)
	}
	var in dto.RelocateServiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.RelocateService(c.UserContext(), inventory.RelocateServiceInput{
		ActorID:       userID,
		DepartmentID:  departmentID,
		ServiceID:     in.ServiceID,
		FromSectionID: in.FromSectionID,
		ToSectionID:   in.ToSectionID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ServiceRelocationResponse{
		RelocationID: res.RelocationID,
		ServiceID:    res.Service.ID,
		DepartmentID: res.Service.DepartmentID,
		SectionID:    res.Service.SectionID,
		Movement:     dto.ToMovementResponse(res.Movement),
	})
}
