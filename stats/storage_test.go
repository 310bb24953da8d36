package stats

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStorage(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "stats-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(tempDir)

	storage, err := NewStorage(tempDir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	t.Run("IncrementStats", func(t *testing.T) {
		storage.IncrementStats(1, 2, 3, 4)
		stats := storage.GetCurrentStats()

		if stats.CaptionCacheHits != 1 {
			t.Errorf("Expected 1 caption hit, got %d", stats.CaptionCacheHits)
		}
		if stats.CaptionCacheMisses != 2 {
			t.Errorf("Expected 2 caption misses, got %d", stats.CaptionCacheMisses)
		}
		if stats.ClassifierCalls != 3 {
			t.Errorf("Expected 3 classifier calls, got %d", stats.ClassifierCalls)
		}
		if stats.EngineRuns != 4 {
			t.Errorf("Expected 4 engine runs, got %d", stats.EngineRuns)
		}
	})

	t.Run("Persistence", func(t *testing.T) {
		storage.requestWrite()
		time.Sleep(100 * time.Millisecond) // Give time for the write to complete

		// Fresh instance pointing at the same directory picks up the file.
		storage2, err := NewStorage(tempDir)
		if err != nil {
			t.Fatalf("Failed to create second storage: %v", err)
		}

		stats := storage2.GetCurrentStats()
		if stats.CaptionCacheHits != 1 {
			t.Errorf("Expected 1 caption hit after reload, got %d", stats.CaptionCacheHits)
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		// Step back from the first of the current month so AddDate never
		// normalizes a month-end date into the retained previous month.
		now := time.Now()
		firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		oldDate := firstOfMonth.AddDate(0, -2, 0)
		oldMonth := oldDate.Format("2006-01")
		storage.stats[oldMonth] = &MonthlyStats{
			CaptionCacheHits: 100,
			LastUpdated:      oldDate,
		}

		previousMonth := firstOfMonth.AddDate(0, -1, 0).Format("2006-01")
		storage.stats[previousMonth] = &MonthlyStats{
			CaptionCacheHits: 50,
			LastUpdated:      firstOfMonth.AddDate(0, -1, 0),
		}

		storage.Cleanup()

		if _, exists := storage.stats[oldMonth]; exists {
			t.Error("Old stats should have been cleaned up")
		}
		if _, exists := storage.stats[previousMonth]; !exists {
			t.Error("Previous month should have been retained")
		}
	})

	t.Run("FileSize", func(t *testing.T) {
		storage.requestWrite()
		time.Sleep(100 * time.Millisecond)

		info, err := os.Stat(filepath.Join(tempDir, "stats.json"))
		if err != nil {
			t.Fatalf("Failed to stat file: %v", err)
		}

		// File should stay small (< 1KB for this test data).
		if info.Size() > 1024 {
			t.Errorf("File size too large: %d bytes", info.Size())
		}
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		before := storage.GetCurrentStats()
		done := make(chan bool)
		for i := 0; i < 10; i++ {
			go func() {
				for j := 0; j < 100; j++ {
					storage.IncrementStats(1, 1, 1, 1)
					storage.GetCurrentStats()
				}
				done <- true
			}()
		}

		for i := 0; i < 10; i++ {
			<-done
		}

		stats := storage.GetCurrentStats()
		expectedCount := 1000 // 10 goroutines * 100 iterations
		total := (stats.CaptionCacheHits - before.CaptionCacheHits) +
			(stats.ClassifierCalls - before.ClassifierCalls)
		if total != expectedCount*2 {
			t.Errorf("Expected %d total increments, got %d", expectedCount*2, total)
		}
	})
}
