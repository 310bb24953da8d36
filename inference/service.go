// Package inference wraps the external model services the analyzer
// depends on: image captioning (with a two-tier fallback) and zero-shot
// engagement classification. Results are cached by image content so a
// re-uploaded image never pays for a second round of model calls.
package inference

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/postpulse/backend/analyzer"
	"github.com/postpulse/backend/stats"
)

// Captioner produces a natural-language description of an image.
type Captioner interface {
	Caption(ctx context.Context, image []byte) (string, error)
}

// Classifier scores text against a fixed candidate label set.
type Classifier interface {
	Classify(ctx context.Context, text string, labels []string) (analyzer.Classification, error)
}

// Result is everything the upstream services contribute to one analysis.
type Result struct {
	Caption        string
	Classification analyzer.Classification
}

type cacheEntry struct {
	result    Result
	timestamp time.Time
}

// CacheStats summarizes the state of the inference result cache.
type CacheStats struct {
	Entries  int           `json:"entries"`
	Hits     int           `json:"hits"`
	Misses   int           `json:"misses"`
	CacheTTL time.Duration `json:"cacheTTL"`
}

// Service orchestrates caption-then-classify for one image and owns the
// content-keyed result cache.
type Service struct {
	primary    Captioner
	fallback   Captioner
	classifier Classifier

	cache           map[string]cacheEntry
	cacheMutex      sync.RWMutex
	cacheTTL        time.Duration
	maxCacheSize    int
	cleanupInterval time.Duration

	stats *stats.Storage
}

// NewService creates a Service. fallback may be nil, in which case a
// primary captioning failure is terminal.
func NewService(primary, fallback Captioner, classifier Classifier, storage *stats.Storage) *Service {
	s := &Service{
		primary:         primary,
		fallback:        fallback,
		classifier:      classifier,
		cache:           make(map[string]cacheEntry),
		cacheTTL:        30 * time.Minute,
		maxCacheSize:    1000,
		cleanupInterval: 5 * time.Minute,
		stats:           storage,
	}
	go s.periodicCleanup()
	return s
}

// Describe returns the caption and classification for the image,
// consulting the cache first. A retryable upstream error (model cold
// start) propagates as-is so the boundary can answer "try again
// shortly"; a hard classification failure is absorbed into an empty
// Classification, which the engagement adapter turns into its neutral
// default.
func (s *Service) Describe(ctx context.Context, image []byte) (Result, error) {
	key := cacheKey(image)
	s.cacheMutex.RLock()
	if entry, found := s.cache[key]; found && time.Since(entry.timestamp) < s.cacheTTL {
		s.cacheMutex.RUnlock()
		s.stats.IncrementStats(1, 0, 0, 0)
		return entry.result, nil
	}
	s.cacheMutex.RUnlock()
	s.stats.IncrementStats(0, 1, 0, 0)

	caption, err := s.caption(ctx, image)
	if err != nil {
		return Result{}, err
	}

	s.stats.IncrementStats(0, 0, 1, 0)
	cls, err := s.classifier.Classify(ctx, caption, analyzer.CandidateLabels)
	if err != nil {
		if IsRetryable(err) {
			return Result{}, err
		}
		// Absorbed: the adapter degrades a malformed classification to
		// its neutral default, so the caption is still usable.
		result := Result{Caption: caption}
		return result, nil
	}

	result := Result{Caption: caption, Classification: cls}
	s.cacheMutex.Lock()
	s.cache[key] = cacheEntry{result: result, timestamp: time.Now()}
	s.cacheMutex.Unlock()

	return result, nil
}

// caption runs the two-tier fallback: primary first, and on a hard
// failure the fallback model. A cold-starting primary propagates as
// retryable without burning the fallback call.
func (s *Service) caption(ctx context.Context, image []byte) (string, error) {
	caption, err := s.primary.Caption(ctx, image)
	if err == nil {
		return caption, nil
	}
	if IsRetryable(err) {
		return "", err
	}
	if s.fallback == nil {
		return "", fmt.Errorf("%w: %v", ErrCaptionUnavailable, err)
	}
	caption, fbErr := s.fallback.Caption(ctx, image)
	if fbErr != nil {
		return "", fmt.Errorf("%w: primary: %v; fallback: %v", ErrCaptionUnavailable, err, fbErr)
	}
	return caption, nil
}

// IsCached reports whether the image has a live cache entry.
func (s *Service) IsCached(image []byte) bool {
	key := cacheKey(image)
	s.cacheMutex.RLock()
	defer s.cacheMutex.RUnlock()

	entry, found := s.cache[key]
	return found && time.Since(entry.timestamp) < s.cacheTTL
}

// SetCacheTTL sets the result cache TTL.
func (s *Service) SetCacheTTL(ttl time.Duration) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()
	s.cacheTTL = ttl
}

// SetMaxCacheSize sets the maximum number of cached results.
func (s *Service) SetMaxCacheSize(size int) {
	s.cacheMutex.Lock()
	s.maxCacheSize = size
	s.cacheMutex.Unlock()
	s.cleanup()
}

// ClearCache drops all cached results.
func (s *Service) ClearCache() {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()
	s.cache = make(map[string]cacheEntry)
}

// CacheStats returns cache counters for the statistics endpoint.
func (s *Service) CacheStats() CacheStats {
	current := s.stats.GetCurrentStats()

	s.cacheMutex.RLock()
	defer s.cacheMutex.RUnlock()
	return CacheStats{
		Entries:  len(s.cache),
		Hits:     current.CaptionCacheHits,
		Misses:   current.CaptionCacheMisses,
		CacheTTL: s.cacheTTL,
	}
}

func (s *Service) periodicCleanup() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		s.cleanup()
	}
}

// cleanup removes expired entries and, if still over the size limit,
// evicts the oldest entries.
func (s *Service) cleanup() {
	now := time.Now()

	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	for key, entry := range s.cache {
		if now.Sub(entry.timestamp) > s.cacheTTL {
			delete(s.cache, key)
		}
	}

	if len(s.cache) > s.maxCacheSize {
		type aged struct {
			key       string
			timestamp time.Time
		}
		entries := make([]aged, 0, len(s.cache))
		for key, entry := range s.cache {
			entries = append(entries, aged{key, entry.timestamp})
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].timestamp.Before(entries[j].timestamp)
		})
		for i := 0; i < len(entries)-s.maxCacheSize; i++ {
			delete(s.cache, entries[i].key)
		}
	}
}

// cacheKey derives a stable key from the image content.
func cacheKey(image []byte) string {
	hash := md5.Sum(image)
	return hex.EncodeToString(hash[:])
}
