package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/okosten/hallbook/internal/app"
	"github.com/okosten/hallbook/internal/model"
)

type SeatRowHandler struct {
	app *app.App
}

func NewSeatRowHandler(app *app.App) *SeatRowHandler {
	return &SeatRowHandler{
		app: app,
	}
}

type CreateSeatRowRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category" binding:"required"`
	Seats    []uint `json:"seats" binding:"required"`
}

func (h *SeatRowHandler) HandleCreate(ctx *gin.Context) {
	var req CreateSeatRowRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{
			"error":  "Invalid request format",
			"detail": err.Error(),
		})
		return
	}

	view, err := h.app.SeatRowService.CreateRow(ctx.Request.Context(),
		req.Name, model.RowCategory(req.Category), req.Seats)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(201, gin.H{
		"message": "Seat row created",
		"row":     view,
	})
}

func (h *SeatRowHandler) HandleList(ctx *gin.Context) {
	var category *model.RowCategory
	if c := ctx.Query("category"); c != "" {
		rc := model.RowCategory(c)
		category = &rc
	}
	includeHidden := ctx.Query("include_hidden") == "true"

	views, err := h.app.SeatRowService.List(ctx.Request.Context(), category, includeHidden)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, gin.H{"rows": views})
}

type AddSeatRequest struct {
	Number uint `json:"number" binding:"required"`
}

func (h *SeatRowHandler) HandleAddSeat(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	var req AddSeatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{
			"error":  "Invalid request format",
			"detail": err.Error(),
		})
		return
	}

	view, err := h.app.SeatRowService.AddSeat(ctx.Request.Context(), id, req.Number)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, gin.H{
		"message": "Seat added",
		"row":     view,
	})
}

func (h *SeatRowHandler) HandleListAvailable(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	numbers, err := h.app.InventoryService.ListAvailable(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, gin.H{
		"row_id":    id,
		"available": numbers,
	})
}
