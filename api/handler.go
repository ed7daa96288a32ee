package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"sales_analytics/internal/sales"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// salesHandler holds the sales service and implements HTTP handlers for sales operations.
type salesHandler struct {
	salesService   *sales.Service
	logger         *zap.Logger
	maxUploadBytes int64
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger, maxUploadBytes int64) *salesHandler {
	return &salesHandler{
		salesService:   salesService,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// handleUpload handles the POST /sales/upload endpoint. It accepts either a
// multipart form with a "file" field or a raw CSV body. Either way the
// request body is capped at maxUploadBytes.
func (h *salesHandler) handleUpload(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, h.maxUploadBytes)

	var body io.Reader = ctx.Request.Body
	if strings.HasPrefix(ctx.ContentType(), "multipart/") {
		fh, err := ctx.FormFile("file")
		if err != nil {
			if tooLarge(err) {
				h.writeError(ctx, err)
				return
			}
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
			return
		}
		if !strings.HasSuffix(strings.ToLower(fh.Filename), ".csv") {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "only CSV files are supported"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			h.logger.Error("failed to open uploaded file", zap.String("filename", fh.Filename), zap.Error(err))
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
			return
		}
		defer f.Close()
		body = f
	}

	result, err := h.salesService.Upload(ctx.Request.Context(), body)
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, result)
}

// handleReport handles the GET /report endpoint.
func (h *salesHandler) handleReport(ctx *gin.Context) {
	report, err := h.salesService.BuildReport(ctx.Request.Context())
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, report)
}

// handleForecast handles the GET /forecast endpoint. Insufficient history
// is a normal 200 response with "sufficient": false.
func (h *salesHandler) handleForecast(ctx *gin.Context) {
	fc, err := h.salesService.Forecast(ctx.Request.Context())
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, fc)
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func (h *salesHandler) writeError(ctx *gin.Context, err error) {
	switch {
	case tooLarge(err):
		ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
	case errors.Is(err, sales.ErrSchema),
		errors.Is(err, sales.ErrMalformedCSV),
		errors.Is(err, sales.ErrDateParse),
		errors.Is(err, sales.ErrTypeCoercion),
		errors.Is(err, sales.ErrInvalidProduct),
		errors.Is(err, sales.ErrEmptyBatch):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, sales.ErrBatchTooLarge):
		ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, sales.ErrNoData):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.String("path", ctx.FullPath()), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
