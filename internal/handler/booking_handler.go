package handler

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/okosten/hallbook/internal/app"
	"github.com/okosten/hallbook/internal/service/domain"
)

type BookingHandler struct {
	app *app.App
}

func NewBookingHandler(app *app.App) *BookingHandler {
	return &BookingHandler{
		app: app,
	}
}

type SeatSelectionRequest struct {
	RowID      uint   `json:"row_id" binding:"required"`
	SeatNumber uint   `json:"seat_number" binding:"required"`
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name" binding:"required"`
}

type CreateBookingRequest struct {
	Name  string                 `json:"name" binding:"required"`
	Email string                 `json:"email" binding:"required,email"`
	Phone string                 `json:"phone"`
	Seats []SeatSelectionRequest `json:"seats" binding:"required"`
}

// HandleCreate accepts either a plain JSON body or a multipart form with a
// "payload" JSON part and an optional "receipt" file part.
func (h *BookingHandler) HandleCreate(ctx *gin.Context) {
	var req CreateBookingRequest
	var receipt *domain.ReceiptPayload

	if strings.HasPrefix(ctx.GetHeader("Content-Type"), "multipart/") {
		if err := json.Unmarshal([]byte(ctx.PostForm("payload")), &req); err != nil {
			ctx.JSON(400, gin.H{
				"error":  "Invalid request format",
				"detail": err.Error(),
			})
			return
		}
		if fh, err := ctx.FormFile("receipt"); err == nil {
			data, contentType, err := readUpload(fh)
			if err != nil {
				ctx.JSON(400, gin.H{
					"error":  "Invalid receipt file",
					"detail": err.Error(),
				})
				return
			}
			receipt = &domain.ReceiptPayload{Data: data, ContentType: contentType}
		}
	} else if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{
			"error":  "Invalid request format",
			"detail": err.Error(),
		})
		return
	}

	in := domain.CreateBookingInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Receipt: receipt,
	}
	for _, s := range req.Seats {
		in.Seats = append(in.Seats, domain.SeatSelection{
			RowID:      s.RowID,
			SeatNumber: s.SeatNumber,
			FirstName:  s.FirstName,
			LastName:   s.LastName,
		})
	}

	booking, err := h.app.BookingService.Create(ctx.Request.Context(), in)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(201, gin.H{
		"message": "Booking created",
		"booking": booking,
	})
}

func (h *BookingHandler) HandleGet(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	booking, err := h.app.BookingService.Get(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, gin.H{"booking": booking})
}

func (h *BookingHandler) HandleList(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "20"))

	bookings, hasNext, err := h.app.BookingService.List(ctx.Request.Context(), page, pageSize)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, gin.H{
		"bookings":      bookings,
		"page":          page,
		"has_next_page": hasNext,
	})
}

func (h *BookingHandler) HandleDelete(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	released, err := h.app.BookingService.Delete(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, gin.H{
		"message":        "Booking deleted",
		"released_seats": released,
	})
}

type SetPaidRequest struct {
	Paid *bool `json:"paid" binding:"required"`
}

func (h *BookingHandler) HandleSetPaid(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	var req SetPaidRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{
			"error":  "Invalid request format",
			"detail": err.Error(),
		})
		return
	}

	booking, err := h.app.PaymentWorkflow.SetPaid(ctx.Request.Context(), id, *req.Paid)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, gin.H{
		"message": "Payment status updated",
		"booking": booking,
	})
}

func (h *BookingHandler) HandleUpdateReceipt(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	fh, err := ctx.FormFile("receipt")
	if err != nil {
		ctx.JSON(400, gin.H{
			"error":  "Missing receipt file",
			"detail": err.Error(),
		})
		return
	}
	data, contentType, err := readUpload(fh)
	if err != nil {
		ctx.JSON(400, gin.H{
			"error":  "Invalid receipt file",
			"detail": err.Error(),
		})
		return
	}

	booking, err := h.app.BookingService.UpdateReceipt(ctx.Request.Context(), id,
		domain.ReceiptPayload{Data: data, ContentType: contentType})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, gin.H{
		"message": "Receipt updated",
		"booking": booking,
	})
}

func parseID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(400, gin.H{
			"error":  "Invalid id",
			"detail": err.Error(),
		})
		return 0, false
	}
	return uint(id), true
}
