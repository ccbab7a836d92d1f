package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"metoncofit/internal/heatmap"
	"metoncofit/internal/table"
)

// newRouter wires every route against one explorer. The explorer is never
// modified, so handlers share it without locking.
func newRouter(ex *heatmap.Explorer, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	// Disable CORS policy
	router.Use(corsMiddleware())

	router.GET("/healthcheck", healthCheckHandler)
	router.GET("/options", makeOptionsHandler(ex))
	router.GET("/heatmaps", makeHeatmapsHandler(ex))
	router.GET("/heatmaps/:direction", makeHeatmapHandler(ex))
	router.GET("/predictions", makePredictionsHandler(ex.Table()))

	return router
}

// ------------------------------------------------------------------
// Basic Utility & Handlers
// ------------------------------------------------------------------

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)

		start := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// selectionFromQuery reads cancer, target and genes, falling back to the
// explorer's defaults for anything missing.
func selectionFromQuery(c *gin.Context, ex *heatmap.Explorer) (heatmap.Selection, bool) {
	sel := ex.Defaults()
	if cancer := c.Query("cancer"); cancer != "" {
		sel.Cancer = cancer
	}
	if target := c.Query("target"); target != "" {
		sel.Target = target
	}
	if genesStr := c.Query("genes"); genesStr != "" {
		genes, err := strconv.Atoi(genesStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parameter 'genes' must be an integer"})
			return sel, false
		}
		sel.GeneLimit = genes
	}
	return sel, true
}

// ------------------------------------------------------------------
// Heatmaps
// ------------------------------------------------------------------

func makeOptionsHandler(ex *heatmap.Explorer) func(*gin.Context) {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, ex.Options())
	}
}

// makeHeatmapsHandler serves all three partitions for one selection:
//
//	GET /heatmaps?cancer=Glioma&target=Differential%20Expression&genes=25
func makeHeatmapsHandler(ex *heatmap.Explorer) func(*gin.Context) {
	return func(c *gin.Context) {
		sel, ok := selectionFromQuery(c, ex)
		if !ok {
			return
		}

		views, err := ex.RenderAll(c.Request.Context(), sel)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"selection": sel,
			"caption":   heatmap.Caption(sel),
			"heatmaps":  views,
		})
	}
}

func makeHeatmapHandler(ex *heatmap.Explorer) func(*gin.Context) {
	return func(c *gin.Context) {
		dir, err := heatmap.ParseDirection(c.Param("direction"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sel, ok := selectionFromQuery(c, ex)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, ex.Render(dir, sel))
	}
}

// ------------------------------------------------------------------
// makePredictionsHandler
// ------------------------------------------------------------------
//
// Returns the loaded table page by page as {"headers", "data", "totalCount"}.
func makePredictionsHandler(t *table.Table) func(*gin.Context) {
	return func(c *gin.Context) {
		page := 0
		limit := 10000
		if pageStr := c.Query("page"); pageStr != "" {
			if p, err := strconv.Atoi(pageStr); err == nil && p >= 0 {
				page = p
			}
		}
		if limitStr := c.Query("limit"); limitStr != "" {
			if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 10000 {
				limit = l
			}
		}

		rows := t.Page(page*limit, limit)
		data := make([][]interface{}, 0, len(rows))
		for _, r := range rows {
			data = append(data, r.Values())
		}

		c.JSON(http.StatusOK, gin.H{
			"headers":    table.Columns,
			"data":       data,
			"totalCount": t.Len(),
		})
	}
}
