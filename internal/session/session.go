package session

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/eugenenazirov/smartpack/internal/catalog"
	"github.com/eugenenazirov/smartpack/internal/dataset"
	"github.com/eugenenazirov/smartpack/internal/engine"
)

// pcgStream is the fixed PCG stream selector; the seed alone picks the sequence.
const pcgStream = 0x9e3779b97f4a7c15

// newRand builds the per-session randomness source for seed.
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, pcgStream))
}

// Session is one dashboard visit: a dataset generated once, the randomness
// used to build it and to draw impact messages, and the user's points tally.
type Session struct {
	id        string
	seed      uint64
	createdAt time.Time
	data      *dataset.Dataset
	catalog   *catalog.Catalog
	engine    engine.Engine

	mu       sync.Mutex
	rng      *rand.Rand
	lastSeen time.Time
	points   int
	scans    int

	reportOnce sync.Once
	report     engine.Report
}

// ScanResult is the outcome of a scan attempt. Outcome is nil when the code
// did not match any record.
type ScanResult struct {
	Code    string              `json:"code"`
	Found   bool                `json:"found"`
	Outcome *engine.ScanOutcome `json:"outcome,omitempty"`
}

// Stats summarises the activity within a session.
type Stats struct {
	Points   int       `json:"points"`
	Scans    int       `json:"scans"`
	LastSeen time.Time `json:"lastSeen"`
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Seed returns the seed the session's randomness was created from.
func (s *Session) Seed() uint64 { return s.seed }

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Dataset returns the session's immutable dataset.
func (s *Session) Dataset() *dataset.Dataset { return s.data }

// Report returns the administrator report, computed on first use.
func (s *Session) Report() engine.Report {
	s.reportOnce.Do(func() {
		s.report = s.engine.Aggregate(s.data)
	})
	return s.report
}

// Scan resolves code and rewards the match as if scanned in city.
// The city is checked first so an invalid selection is reported even for unknown codes.
func (s *Session) Scan(code, city string) (ScanResult, error) {
	if !s.catalog.HasCity(city) {
		return ScanResult{}, fmt.Errorf("%w: %q", engine.ErrUnknownCity, city)
	}

	res := s.engine.Lookup(s.data, code)
	out := ScanResult{Code: res.Code, Found: res.Found()}
	if !res.Found() {
		return out, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	outcome, err := s.engine.ClassifyIn(res.Record, city, s.rng)
	if err != nil {
		return ScanResult{}, err
	}
	s.points += outcome.Points
	s.scans++
	out.Outcome = &outcome
	return out, nil
}

// Stats returns the current points tally.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{Points: s.points, Scans: s.scans, LastSeen: s.lastSeen}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) lastSeenAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
