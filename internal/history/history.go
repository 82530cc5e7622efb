// Package history stores completed reviews in a bounded, ID-indexed journal
// under the config directory.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/alfred/internal/logging"
)

// maxRecords bounds the journal; saving past the cap drops the oldest.
const maxRecords = 100

// historyFile is the journal filename inside the config directory.
const historyFile = "review_history.json"

// Record is one completed review. Records are immutable once saved.
type Record struct {
	ID        int       `json:"id"`
	Filepath  string    `json:"filepath"`
	Filename  string    `json:"filename"`
	Review    string    `json:"review"`
	Focus     string    `json:"focus"`
	Score     *int      `json:"score"`
	Cost      *float64  `json:"cost"`
	Timestamp time.Time `json:"timestamp"`
	Date      string    `json:"date"`
}

// Stats aggregates the journal.
type Stats struct {
	TotalReviews   int
	AvgScore       float64 // over records that have a score
	TotalCost      float64 // over records that have a cost
	FilesReviewed  int     // distinct filenames
	FocusBreakdown map[string]int
}

// Store is the review journal.
type Store struct {
	path string
}

// NewStore creates a Store writing its journal under dir.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, historyFile)}
}

// Save appends a review and returns its assigned ID. When score is nil it
// is extracted from the review text if a recognizable pattern is present.
// IDs are one past the highest ID ever retained, so no two live records
// share an ID even after deletions.
func (s *Store) Save(path, reviewText, focus string, score *int, cost *float64) (int, error) {
	records := s.load()

	id := 1
	for _, r := range records {
		if r.ID >= id {
			id = r.ID + 1
		}
	}

	if score == nil {
		if n, ok := ExtractScore(reviewText); ok {
			score = &n
		}
	}

	now := time.Now()
	records = append(records, Record{
		ID:        id,
		Filepath:  path,
		Filename:  filepath.Base(path),
		Review:    reviewText,
		Focus:     focus,
		Score:     score,
		Cost:      cost,
		Timestamp: now,
		Date:      now.Format("2006-01-02 15:04"),
	})

	if len(records) > maxRecords {
		records = records[len(records)-maxRecords:]
	}

	if err := s.save(records); err != nil {
		return 0, err
	}
	return id, nil
}

// Get returns the record with the given ID, or false when absent.
func (s *Store) Get(id int) (Record, bool) {
	for _, r := range s.load() {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) []Record {
	records := s.load()
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return reversed(records)
}

// All returns every record, newest first.
func (s *Store) All() []Record {
	return reversed(s.load())
}

// ByFile returns records matching by exact filename or exact full path,
// newest first.
func (s *Store) ByFile(path string) []Record {
	name := filepath.Base(path)
	var matches []Record
	for _, r := range s.load() {
		if r.Filename == name || r.Filepath == path {
			matches = append(matches, r)
		}
	}
	return reversed(matches)
}

// Search returns records whose review text, filename, or focus contains the
// query, case-insensitively, newest first.
func (s *Store) Search(query string) []Record {
	q := strings.ToLower(query)
	var matches []Record
	for _, r := range s.load() {
		if strings.Contains(strings.ToLower(r.Review), q) ||
			strings.Contains(strings.ToLower(r.Filename), q) ||
			strings.Contains(strings.ToLower(r.Focus), q) {
			matches = append(matches, r)
		}
	}
	return reversed(matches)
}

// GetStats aggregates the journal.
func (s *Store) GetStats() Stats {
	records := s.load()
	stats := Stats{
		TotalReviews:   len(records),
		FocusBreakdown: make(map[string]int),
	}
	if len(records) == 0 {
		return stats
	}

	var scoreSum, scoreCount int
	files := make(map[string]struct{})
	for _, r := range records {
		if r.Score != nil {
			scoreSum += *r.Score
			scoreCount++
		}
		if r.Cost != nil {
			stats.TotalCost += *r.Cost
		}
		files[r.Filename] = struct{}{}
		stats.FocusBreakdown[r.Focus]++
	}
	if scoreCount > 0 {
		stats.AvgScore = float64(scoreSum) / float64(scoreCount)
	}
	stats.FilesReviewed = len(files)
	return stats
}

// Delete removes the record with the given ID, reporting whether it existed.
func (s *Store) Delete(id int) (bool, error) {
	records := s.load()
	for i, r := range records {
		if r.ID == id {
			records = append(records[:i], records[i+1:]...)
			if err := s.save(records); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// Clear removes every record and returns how many were removed.
func (s *Store) Clear() (int, error) {
	count := len(s.load())
	if err := s.save([]Record{}); err != nil {
		return 0, err
	}
	return count, nil
}

func reversed(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[len(records)-1-i] = r
	}
	return out
}

func (s *Store) save(records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling review history: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing review history: %w", err)
	}
	return nil
}

// load reads the journal. A missing file is the normal empty state; a file
// that fails to parse degrades to empty with a warning so the user is never
// blocked by a corrupt journal.
func (s *Store) load() []Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.Warn().Err(err).Str("path", s.path).Msg("review history unreadable, treating as empty")
		}
		return nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		logging.Warn().Err(err).Str("path", s.path).Msg("review history corrupt, treating as empty")
		return nil
	}
	return records
}
