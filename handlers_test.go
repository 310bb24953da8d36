package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/postpulse/backend/analyzer"
	"github.com/postpulse/backend/inference"
	"github.com/postpulse/backend/logging"
	"github.com/postpulse/backend/stats"
)

// Minimal PNG signature, enough for content type sniffing.
var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

type stubCaptioner struct {
	caption string
	err     error
}

func (s *stubCaptioner) Caption(ctx context.Context, image []byte) (string, error) {
	return s.caption, s.err
}

type stubClassifier struct {
	result analyzer.Classification
	err    error
}

func (s *stubClassifier) Classify(ctx context.Context, text string, labels []string) (analyzer.Classification, error) {
	return s.result, s.err
}

func newTestRouter(t *testing.T, captioner inference.Captioner, classifier inference.Classifier) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	storage, err := stats.NewStorage(t.TempDir())
	require.NoError(t, err)

	h := &apiHandler{
		engine:    analyzer.NewEngine(),
		inference: inference.NewService(captioner, nil, classifier, storage),
		storage:   storage,
		usage:     logging.Initialize(t.TempDir()),
		logger:    zap.NewNop(),
		maxSizeMB: 15,
	}

	r := gin.New()
	api := r.Group("/api")
	api.GET("/health", h.health)
	api.POST("/analyze", h.analyzePost)
	api.GET("/statistics", h.statistics)
	api.GET("/cache", h.cacheStats)
	return r
}

func multipartBody(t *testing.T, image []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if image != nil {
		part, err := writer.CreateFormFile("image", "post.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func postAnalyze(t *testing.T, r *gin.Engine, image []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, image, fields)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validFields() map[string]string {
	return map[string]string{
		"width":      "1920",
		"height":     "1080",
		"fileSizeMB": "3.5",
	}
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t, &stubCaptioner{caption: "a dog"}, &stubClassifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAnalyzeEndpoint(t *testing.T) {
	classification := analyzer.Classification{
		Labels: analyzer.CandidateLabels,
		Scores: []float64{0.82, 0.10, 0.08},
	}

	t.Run("Full analysis", func(t *testing.T) {
		r := newTestRouter(t,
			&stubCaptioner{caption: "a stunning beach sunset with vibrant colors"},
			&stubClassifier{result: classification},
		)

		w := postAnalyze(t, r, pngBytes, validFields())
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Analysis analyzer.ContentAnalysis `json:"analysis"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.Equal(t, 95, resp.Analysis.Engagement.Score)
		assert.Equal(t, "Nature", resp.Analysis.Category)
		assert.Equal(t, "16:9", resp.Analysis.Technical.AspectRatio)
		assert.Len(t, resp.Analysis.Pros, 3)
		assert.Len(t, resp.Analysis.Cons, 3)
	})

	t.Run("Missing image", func(t *testing.T) {
		r := newTestRouter(t, &stubCaptioner{caption: "a dog"}, &stubClassifier{result: classification})
		w := postAnalyze(t, r, nil, validFields())
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Invalid dimensions", func(t *testing.T) {
		r := newTestRouter(t, &stubCaptioner{caption: "a dog"}, &stubClassifier{result: classification})

		bad := []map[string]string{
			{"width": "0", "height": "1080", "fileSizeMB": "3.5"},
			{"width": "1920", "height": "0", "fileSizeMB": "3.5"},
			{"width": "-10", "height": "1080", "fileSizeMB": "3.5"},
			{"width": "abc", "height": "1080", "fileSizeMB": "3.5"},
			{"width": "1920", "height": "1080", "fileSizeMB": "0"},
			{"width": "1920", "height": "1080", "fileSizeMB": "-2"},
			{"width": "1920", "height": "1080", "fileSizeMB": "NaN"},
			{"width": "1920", "height": "1080", "fileSizeMB": "+Inf"},
			{"width": "1920", "height": "1080"},
		}
		for _, fields := range bad {
			w := postAnalyze(t, r, pngBytes, fields)
			assert.Equal(t, http.StatusBadRequest, w.Code, "fields %v", fields)
		}
	})

	t.Run("Unsupported content type", func(t *testing.T) {
		r := newTestRouter(t, &stubCaptioner{caption: "a dog"}, &stubClassifier{result: classification})
		w := postAnalyze(t, r, []byte("plain text, not an image"), validFields())
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Cold model answers 503", func(t *testing.T) {
		r := newTestRouter(t, &stubCaptioner{err: inference.ErrModelLoading}, &stubClassifier{})
		w := postAnalyze(t, r, pngBytes, validFields())
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("Caption outage answers 502", func(t *testing.T) {
		r := newTestRouter(t, &stubCaptioner{err: errors.New("boom")}, &stubClassifier{})
		w := postAnalyze(t, r, pngBytes, validFields())
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("Classifier hard failure still analyzes", func(t *testing.T) {
		r := newTestRouter(t,
			&stubCaptioner{caption: "a dog"},
			&stubClassifier{err: errors.New("boom")},
		)
		w := postAnalyze(t, r, pngBytes, validFields())
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Analysis analyzer.ContentAnalysis `json:"analysis"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 50, resp.Analysis.Engagement.Score)
		assert.Equal(t, "unknown (error)", resp.Analysis.Engagement.Prediction)
	})
}

func TestCacheEndpoint(t *testing.T) {
	r := newTestRouter(t,
		&stubCaptioner{caption: "a dog"},
		&stubClassifier{result: analyzer.Classification{
			Labels: analyzer.CandidateLabels,
			Scores: []float64{0.5, 0.3, 0.2},
		}},
	)

	w := postAnalyze(t, r, pngBytes, validFields())
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/cache", nil)
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	var cacheResp struct {
		Entries int `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &cacheResp))
	assert.Equal(t, 1, cacheResp.Entries)
}
