package main

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/postpulse/backend/analyzer"
	"github.com/postpulse/backend/inference"
	"github.com/postpulse/backend/logging"
	"github.com/postpulse/backend/stats"
)

type apiHandler struct {
	engine    *analyzer.Engine
	inference *inference.Service
	storage   *stats.Storage
	usage     *logging.Statistics
	logger    *zap.Logger
	maxSizeMB int
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

func (h *apiHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func (h *apiHandler) statistics(c *gin.Context) {
	result := h.usage.GetStatistics()
	result["monthly"] = h.storage.GetCurrentStats()
	c.JSON(http.StatusOK, result)
}

func (h *apiHandler) cacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.inference.CacheStats())
}

// analyzePost accepts a multipart form with the image file and its
// reported dimensions, runs inference and the scoring engine, and
// returns the full analysis.
func (h *apiHandler) analyzePost(c *gin.Context) {
	start := time.Now()

	width, height, fileSizeMB, ok := h.bindDimensions(c)
	if !ok {
		h.usage.TrackAnalysis("", elapsedMs(start), true)
		return
	}

	image, ok := h.readImage(c)
	if !ok {
		h.usage.TrackAnalysis("", elapsedMs(start), true)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	result, err := h.inference.Describe(ctx, image)
	if err != nil {
		h.respondInferenceError(c, err)
		h.usage.TrackAnalysis("", elapsedMs(start), true)
		return
	}

	analysis := h.engine.Analyze(analyzer.Input{
		Width:          width,
		Height:         height,
		FileSizeMB:     fileSizeMB,
		Caption:        result.Caption,
		Classification: result.Classification,
	})
	h.storage.IncrementStats(0, 0, 0, 1)
	h.usage.TrackAnalysis(analysis.Category, elapsedMs(start), false)

	h.logger.Info("Analysis complete",
		zap.String("category", analysis.Category),
		zap.Int("engagementScore", analysis.Engagement.Score),
		zap.Float64("processMs", elapsedMs(start)),
	)

	c.JSON(http.StatusOK, gin.H{
		"analysis": analysis,
	})
}

// bindDimensions parses and validates the width, height and fileSizeMB
// form fields. On failure it writes the 400 response itself.
func (h *apiHandler) bindDimensions(c *gin.Context) (width, height int, fileSizeMB float64, ok bool) {
	var err error

	width, err = strconv.Atoi(c.PostForm("width"))
	if err != nil || width <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "width must be a positive integer"})
		return 0, 0, 0, false
	}

	height, err = strconv.Atoi(c.PostForm("height"))
	if err != nil || height <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "height must be a positive integer"})
		return 0, 0, 0, false
	}

	fileSizeMB, err = strconv.ParseFloat(c.PostForm("fileSizeMB"), 64)
	if err != nil || fileSizeMB <= 0 || math.IsInf(fileSizeMB, 0) || math.IsNaN(fileSizeMB) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fileSizeMB must be a positive number"})
		return 0, 0, 0, false
	}

	return width, height, fileSizeMB, true
}

// readImage reads and validates the uploaded image. On failure it
// writes the 400 response itself.
func (h *apiHandler) readImage(c *gin.Context) ([]byte, bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return nil, false
	}

	maxBytes := int64(h.maxSizeMB) << 20
	if fileHeader.Size > maxBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image exceeds the maximum allowed size"})
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded image"})
		return nil, false
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded image"})
		return nil, false
	}
	if int64(len(image)) > maxBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image exceeds the maximum allowed size"})
		return nil, false
	}

	if !allowedImageTypes[http.DetectContentType(image)] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported image format, use JPEG, PNG, WebP or GIF"})
		return nil, false
	}

	return image, true
}

func (h *apiHandler) respondInferenceError(c *gin.Context, err error) {
	switch {
	case inference.IsRetryable(err):
		h.logger.Warn("Inference model still loading", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "The captioning model is still loading, try again shortly",
		})
	case errors.Is(err, inference.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported image format"})
	case errors.Is(err, inference.ErrPayloadTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": "image exceeds the maximum allowed size"})
	case errors.Is(err, inference.ErrCaptionUnavailable):
		h.logger.Error("All caption providers failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Image captioning is temporarily unavailable",
		})
	default:
		h.logger.Error("Inference request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to analyze image",
		})
	}
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Milliseconds())
}
