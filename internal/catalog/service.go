package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/sehatlabs/labtestdiscovery/backend/internal/domain/entities"
)

// LabSummary describes one canonical lab in the loaded catalog.
type LabSummary struct {
	Name      string `json:"name"`
	TestCount int    `json:"test_count"`
}

// Service owns the in-memory test catalog and the document context. It is
// constructed explicitly and injected into its consumers; there is no ambient
// module-level state. The catalog is read-only after the first load — there
// is no invalidation or refresh path, so a running process never observes
// file updates made after its first load.
type Service struct {
	dataDir string

	mu     sync.RWMutex
	loaded bool

	tests      []entities.TestRecord
	docContext string
}

// NewService creates a catalog service over the given data directory.
// Nothing is read until Load (or the first lazy accessor) runs.
func NewService(dataDir string) *Service {
	return &Service{dataDir: dataDir}
}

// Load populates the catalog and document context from the data directory.
// It is idempotent: after the first successful pass, later calls return
// immediately. An empty directory is a valid (if degraded) state, so Load
// never fails.
func (s *Service) Load(ctx context.Context) {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return
	}

	// Pure function of the directory contents; concurrent warm-up loads are
	// wasteful but safe since every pass computes the same value.
	tests := LoadDirectory(s.dataDir)
	docContext := BuildDocumentContext(s.dataDir)

	s.mu.Lock()
	if !s.loaded {
		s.tests = tests
		s.docContext = docContext
		s.loaded = true
	}
	s.mu.Unlock()
}

// IsReady reports whether the catalog has been loaded.
func (s *Service) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Tests returns every loaded test record, loading lazily on first use.
func (s *Service) Tests(ctx context.Context) []entities.TestRecord {
	s.Load(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tests
}

// DocumentContext returns the concatenated reference-document text used by
// the medical-question path.
func (s *Service) DocumentContext(ctx context.Context) string {
	s.Load(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docContext
}

// Labs returns the canonical labs present in the catalog, sorted by name.
func (s *Service) Labs(ctx context.Context) []LabSummary {
	counts := make(map[string]int)
	for _, t := range s.Tests(ctx) {
		counts[t.LabName]++
	}

	labs := make([]LabSummary, 0, len(counts))
	for name, count := range counts {
		labs = append(labs, LabSummary{Name: name, TestCount: count})
	}
	sort.Slice(labs, func(i, j int) bool { return labs[i].Name < labs[j].Name })
	return labs
}

// TestsByLab returns the tests belonging to the given lab. Matching is
// case-insensitive on the canonical name; an unknown lab yields nil.
func (s *Service) TestsByLab(ctx context.Context, labName string) []entities.TestRecord {
	want := strings.ToLower(strings.TrimSpace(labName))
	if want == "" {
		return nil
	}

	var tests []entities.TestRecord
	for _, t := range s.Tests(ctx) {
		if strings.ToLower(t.LabName) == want {
			tests = append(tests, t)
		}
	}
	return tests
}
