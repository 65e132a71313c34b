// Package drafts holds in-flight prediction edits. Drafts are keyed by
// fixture while the user edits, live only in memory, and are lost on restart;
// the server copy is authoritative once saved.
package drafts

import (
	"sort"
	"strconv"
	"sync"

	"github.com/patrickashi/vi-predict/pkg/predictapi"
)

// Entry is one draft prediction. Scores are kept as the raw form strings so a
// half-typed value survives a failed save.
type Entry struct {
	Home   string
	Away   string
	Banker bool
}

// Set is the draft prediction set for one session's current gameweek
type Set struct {
	mu       sync.Mutex
	entries  map[int]Entry
	inFlight bool
}

// NewSet creates an empty draft set
func NewSet() *Set {
	return &Set{entries: make(map[int]Entry)}
}

// SetScore records the score inputs for a fixture
func (s *Set) SetScore(fixtureID int, home, away string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.entries[fixtureID]
	entry.Home = home
	entry.Away = away
	s.entries[fixtureID] = entry
}

// ToggleBanker toggles the banker flag on one fixture. All other banker flags
// are cleared first, so at most one entry carries the flag at any time.
func (s *Set) ToggleBanker(fixtureID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.entries[fixtureID]
	wasSet := target.Banker

	for id, entry := range s.entries {
		if entry.Banker {
			entry.Banker = false
			s.entries[id] = entry
		}
	}

	target.Banker = !wasSet
	s.entries[fixtureID] = target
}

// Entries returns a copy of the current drafts
func (s *Set) Entries() map[int]Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int]Entry, len(s.entries))
	for id, entry := range s.entries {
		out[id] = entry
	}
	return out
}

// BankerFixture returns the fixture currently flagged as banker, if any
func (s *Set) BankerFixture() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entry := range s.entries {
		if entry.Banker {
			return id, true
		}
	}
	return 0, false
}

// Completed counts drafts that have been filled in: both scores entered, or
// the banker flag set.
func (s *Set) Completed() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, entry := range s.entries {
		if (entry.Home != "" && entry.Away != "") || entry.Banker {
			n++
		}
	}
	return n
}

// Payload builds the submission batch covering every fixture of the gameweek,
// in fixture order. Blank or unparseable scores map to 0.
func (s *Set) Payload(fixtureIDs []int) []predictapi.Prediction {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, len(fixtureIDs))
	copy(ids, fixtureIDs)
	sort.Ints(ids)

	batch := make([]predictapi.Prediction, 0, len(ids))
	for _, id := range ids {
		entry := s.entries[id]
		batch = append(batch, predictapi.Prediction{
			Fixture:   id,
			HomeScore: parseScore(entry.Home),
			AwayScore: parseScore(entry.Away),
			IsBanker:  entry.Banker,
		})
	}
	return batch
}

// BeginSubmit marks a save in flight. It returns false when one is already
// running, which is how duplicate submissions are prevented.
func (s *Set) BeginSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return false
	}
	s.inFlight = true
	return true
}

// EndSubmit clears the in-flight marker
func (s *Set) EndSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
}

// ReplaceFromServer reconciles the drafts with the authoritative server copy
// after a successful save.
func (s *Set) ReplaceFromServer(predictions []predictapi.Prediction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[int]Entry, len(predictions))
	for _, p := range predictions {
		s.entries[p.Fixture] = Entry{
			Home:   strconv.Itoa(p.HomeScore),
			Away:   strconv.Itoa(p.AwayScore),
			Banker: p.IsBanker,
		}
	}
}

func parseScore(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Store keeps one draft set per session
type Store struct {
	mu   sync.Mutex
	sets map[string]*Set
}

// NewStore creates an empty draft store
func NewStore() *Store {
	return &Store{sets: make(map[string]*Set)}
}

// ForSession returns the draft set for a session, creating it if needed
func (s *Store) ForSession(sessionID string) *Set {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[sessionID]
	if !ok {
		set = NewSet()
		s.sets[sessionID] = set
	}
	return set
}

// Drop discards a session's drafts (sign-out, session expiry)
func (s *Store) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sets, sessionID)
}
