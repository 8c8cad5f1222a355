// Package api assembles the HTTP surface of the interactive tool.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/macroquant/btcmacro/dataset"
	"github.com/macroquant/btcmacro/internal/api/handlers"
	"github.com/macroquant/btcmacro/internal/api/middleware"
)

// NewRouter builds the gin engine over the loaded dataset: the embedded
// page, the model/predict/chart/export API, and a health check.
func NewRouter(table *dataset.Table) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())

	modelHandler := handlers.NewModelHandler(table)

	router.GET("/", handlers.Page)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/model", modelHandler.GetModel)
		v1.GET("/model/export", modelHandler.Export)
		v1.POST("/predict", modelHandler.Predict)
		v1.GET("/chart", modelHandler.Chart)
	}

	return router
}
