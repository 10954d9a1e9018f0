package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/okosten/hallbook/internal/app"
)

type SettingsHandler struct {
	app *app.App
}

func NewSettingsHandler(app *app.App) *SettingsHandler {
	return &SettingsHandler{
		app: app,
	}
}

func (h *SettingsHandler) HandleGetBalcony(ctx *gin.Context) {
	visible, err := h.app.SettingsService.ShowBalcony(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, gin.H{"show_balcony": visible})
}

type SetBalconyRequest struct {
	Visible *bool `json:"visible" binding:"required"`
}

func (h *SettingsHandler) HandleSetBalcony(ctx *gin.Context) {
	var req SetBalconyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{
			"error":  "Invalid request format",
			"detail": err.Error(),
		})
		return
	}
	if err := h.app.SettingsService.SetShowBalcony(ctx.Request.Context(), *req.Visible); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, gin.H{"show_balcony": *req.Visible})
}
