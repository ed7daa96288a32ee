package api

import (
	"net/http"

	"sales_analytics/internal/sales"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// defaultMaxUploadBytes applies when InitRoutes is given no positive limit.
const defaultMaxUploadBytes int64 = 10 << 20

// InitRoutes registers the upload, report and forecast endpoints on the
// given Gin engine, all backed by salesService. Upload bodies larger than
// maxUploadBytes are rejected with 413.
func InitRoutes(e *gin.Engine, salesService *sales.Service, logger *zap.Logger, maxUploadBytes int64) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	salesHandler := NewSalesHandler(salesService, logger, maxUploadBytes)

	e.POST("/sales/upload", salesHandler.handleUpload)
	e.GET("/report", salesHandler.handleReport)
	e.GET("/forecast", salesHandler.handleForecast)

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}
