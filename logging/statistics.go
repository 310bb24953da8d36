package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Environment variable name for controlling statistics visibility.
const ENV_DEV_MODE = "DEV_MODE"

// Statistics represents the collected usage statistics.
type Statistics struct {
	UniqueVisitors    map[string]time.Time `json:"uniqueVisitors"`    // IP -> Last Visit Time
	AnalysisRequests  int                  `json:"analysisRequests"`  // Total number of analysis requests
	ErrorCount        int                  `json:"errorCount"`        // Number of errors
	PopularCategories map[string]int       `json:"popularCategories"` // Content category -> Count
	AverageProcessMs  float64              `json:"averageProcessMs"`  // Average processing time in milliseconds
	TotalProcessMs    float64              `json:"-"`                 // Used to calculate average
	RequestCount      int                  `json:"-"`                 // Used to calculate average
	LastPersisted     time.Time            `json:"lastPersisted"`     // Last time stats were saved
	filePath          string
	mutex             sync.RWMutex
}

var (
	usage *Statistics
	once  sync.Once
)

// Initialize creates or loads the usage statistics. dataDir holds the
// persisted JSON file.
func Initialize(dataDir string) *Statistics {
	once.Do(func() {
		usage = &Statistics{
			UniqueVisitors:    make(map[string]time.Time),
			PopularCategories: make(map[string]int),
			LastPersisted:     time.Now(),
			filePath:          filepath.Join(dataDir, "statistics.json"),
		}

		if err := usage.Load(); err != nil {
			fmt.Printf("Could not load existing statistics: %v\n", err)
		}
	})
	return usage
}

// TrackVisitor records a unique visitor.
func (s *Statistics) TrackVisitor(ip string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.UniqueVisitors[ip] = time.Now()
}

// TrackAnalysis records one analysis request and the content category it
// resolved to.
func (s *Statistics) TrackAnalysis(category string, processMs float64, hasError bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.AnalysisRequests++

	if category != "" {
		s.PopularCategories[category]++
	}

	if hasError {
		s.ErrorCount++
	}

	s.TotalProcessMs += processMs
	s.RequestCount++
	s.AverageProcessMs = s.TotalProcessMs / float64(s.RequestCount)
}

// GetUniqueVisitorsCount returns the number of unique visitors in the last 24 hours.
func (s *Statistics) GetUniqueVisitorsCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	count := 0
	cutoff := time.Now().Add(-24 * time.Hour)

	for _, lastVisit := range s.UniqueVisitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}

	return count
}

// GetPopularCategories returns up to n categories with their counts.
func (s *Statistics) GetPopularCategories(n int) map[string]int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := make(map[string]int)
	count := 0

	for category, freq := range s.PopularCategories {
		if count < n {
			result[category] = freq
			count++
		}
	}

	return result
}

// GetErrorRate returns the error rate as a percentage.
func (s *Statistics) GetErrorRate() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.AnalysisRequests == 0 {
		return 0
	}

	return (float64(s.ErrorCount) / float64(s.AnalysisRequests)) * 100
}

// Save persists the statistics to a file.
func (s *Statistics) Save() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.LastPersisted = time.Now()

	file, err := os.Create(s.filePath)
	if err != nil {
		return fmt.Errorf("could not create statistics file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("could not encode statistics: %w", err)
	}

	return nil
}

// Load reads the statistics from a file.
func (s *Statistics) Load() error {
	file, err := os.Open(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Not an error if file doesn't exist yet
		}
		return fmt.Errorf("could not open statistics file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(s); err != nil {
		return fmt.Errorf("could not decode statistics: %w", err)
	}

	return nil
}

// GetStatistics returns a snapshot of the current statistics. Full
// detail, including popular categories, is only returned in dev mode.
func (s *Statistics) GetStatistics() map[string]interface{} {
	visitors := s.GetUniqueVisitorsCount()
	errorRate := s.GetErrorRate()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := map[string]interface{}{
		"uniqueVisitors24h": visitors,
		"totalRequests":     s.AnalysisRequests,
		"errorRate":         errorRate,
		"averageProcessMs":  s.AverageProcessMs,
	}

	if os.Getenv(ENV_DEV_MODE) == "true" {
		popular := make(map[string]int, len(s.PopularCategories))
		for category, freq := range s.PopularCategories {
			popular[category] = freq
		}
		result["popularCategories"] = popular
	}

	return result
}
