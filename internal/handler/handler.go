package handler

import (
	"errors"
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/okosten/hallbook/internal/model"
	"github.com/okosten/hallbook/internal/storage"
)

// respondError maps the domain error taxonomy onto HTTP statuses. Anything
// unrecognized is reported generically so internals never leak.
func respondError(ctx *gin.Context, err error) {
	switch {
	case model.IsValidation(err):
		ctx.JSON(400, gin.H{
			"error":   "Invalid request",
			"message": err.Error(),
		})
	case model.IsNotFound(err):
		ctx.JSON(404, gin.H{
			"error":   "Not found",
			"message": err.Error(),
		})
	case model.IsSeatUnavailable(err):
		// the message enumerates every conflicting seat so the UI can
		// prompt a reselect
		ctx.JSON(409, gin.H{
			"error":   "Seats unavailable",
			"message": err.Error(),
		})
	case model.IsConflict(err):
		ctx.JSON(409, gin.H{
			"error":   "Conflict",
			"message": err.Error(),
		})
	case model.IsUpload(err):
		if errors.Is(err, storage.ErrTooLarge) || errors.Is(err, storage.ErrBadMIMEType) {
			ctx.JSON(400, gin.H{
				"error":   "Invalid file",
				"message": err.Error(),
			})
			return
		}
		ctx.JSON(502, gin.H{
			"error":   "Upload failed",
			"message": "Receipt could not be stored, please try again later",
		})
	default:
		ctx.JSON(500, gin.H{
			"error":   "Internal server error",
			"message": "Something went wrong, please try again later",
		})
	}
}

// readUpload pulls the bytes and content type out of a multipart file part.
func readUpload(fh *multipart.FileHeader) ([]byte, string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, storage.MaxBlobSize+1))
	if err != nil {
		return nil, "", err
	}
	return data, fh.Header.Get("Content-Type"), nil
}
