package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-traslados/internal/application/dto"
	"github.com/jhoicas/inventario-traslados/internal/application/transfer"
	"github.com/jhoicas/inventario-traslados/internal/domain/repository"
)

// TransferHandler maneja las solicitudes de traslado entre departamentos (protegido).
type TransferHandler struct {
	workflow *transfer.Workflow
	slips    *transfer.SlipUseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(workflow *transfer.Workflow, slips *transfer.SlipUseCase) *TransferHandler {
	return &TransferHandler{workflow: workflow, slips: slips}
}

// Create godoc
// @Summary      Crear solicitud de traslado
// @Description  El origen es el departamento del token. La solicitud queda pendiente hasta que el destino la apruebe.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "destino y líneas"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	userID, departmentID := GetUserID(c), GetDepartmentID(c)
	if userID == "" || departmentID == "" {
		return unauthorized(c)
	}
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	input := transfer.CreateInput{
		ActorID:          userID,
		FromDepartmentID: departmentID,
		ToDepartmentID:   in.ToDepartmentID,
		Lines:            make([]transfer.LineInput, 0, len(in.Lines)),
	}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, transfer.LineInput{
			Kind:          l.Kind,
			ItemID:        l.ItemID,
			ServiceID:     l.ServiceID,
			FromSectionID: l.FromSectionID,
			ToSectionID:   l.ToSectionID,
			Quantity:      l.Quantity,
		})
	}
	t, err := h.workflow.Create(c.UserContext(), input)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToTransferResponse(t))
}

// List godoc
// @Summary      Listar traslados del departamento
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        direction  query  string  false  "in | out | all"
// @Param        status     query  string  false  "pending | completed | rejected"
// @Param        limit      query  int     false  "máx. 100"
// @Param        offset     query  int     false  "desplazamiento"
// @Success      200  {object}  dto.TransferListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	departmentID := GetDepartmentID(c)
	if departmentID == "" {
		return unauthorized(c)
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	if page.Limit > 100 {
		page.Limit = 100
	}
	list, err := h.workflow.List(c.UserContext(), repository.TransferFilter{
		DepartmentID: departmentID,
		Direction:    c.Query("direction"),
		Status:       c.Query("status"),
		Limit:        page.Limit,
		Offset:       page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := dto.TransferListResponse{
		Items: make([]dto.TransferResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, t := range list {
		out.Items = append(out.Items, dto.ToTransferResponse(t))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	departmentID := GetDepartmentID(c)
	if departmentID == "" {
		return unauthorized(c)
	}
	t, err := h.workflow.Get(c.UserContext(), c.Params("id"), departmentID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToTransferResponse(t))
}

// Approve godoc
// @Summary      Aprobar traslado
// @Description  Solo el departamento destino. Ejecuta todas las líneas en una transacción o ninguna.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/approve [post]
func (h *TransferHandler) Approve(c *fiber.Ctx) error {
	userID, departmentID := GetUserID(c), GetDepartmentID(c)
	if userID == "" || departmentID == "" {
		return unauthorized(c)
	}
	t, err := h.workflow.Approve(c.UserContext(), c.Params("id"), departmentID, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToTransferResponse(t))
}

// Reject godoc
// @Summary      Rechazar traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/reject [post]
func (h *TransferHandler) Reject(c *fiber.Ctx) error {
	userID, departmentID := GetUserID(c), GetDepartmentID(c)
	if userID == "" || departmentID == "" {
		return unauthorized(c)
	}
	t, err := h.workflow.Reject(c.UserContext(), c.Params("id"), departmentID, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToTransferResponse(t))
}

// Slip godoc
// @Summary      Acta de traslado en PDF
// @Tags         transfers
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {file}    binary
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/slip [get]
func (h *TransferHandler) Slip(c *fiber.Ctx) error {
	departmentID := GetDepartmentID(c)
	if departmentID == "" {
		return unauthorized(c)
	}
	id := c.Params("id")
	pdf, err := h.slips.Render(c.UserContext(), id, departmentID)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="traslado-`+id+`.pdf"`)
	return c.Send(pdf)
}
