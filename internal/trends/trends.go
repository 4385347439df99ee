// Package trends serves the trending-topic table used by automation mode.
// The table is static; there is no discovery.
package trends

import (
	"sort"
	"sync"

	"github.com/AngelCh415/revpipe/internal/models"
)

const MaxTopics = 20

func seed() []models.Trend {
	return []models.Trend{
		{
			Keyword:          "AI investment",
			Score:            95,
			CountryRelevance: map[string]int{"USA": 98, "Germany": 85, "UK": 92},
			RevenuePotential: 8500,
			Category:         "finance",
		},
		{
			Keyword:          "cryptocurrency guide",
			Score:            88,
			CountryRelevance: map[string]int{"USA": 95, "Japan": 78, "Korea": 85},
			RevenuePotential: 7200,
			Category:         "finance",
		},
		{
			Keyword:          "health insurance",
			Score:            92,
			CountryRelevance: map[string]int{"USA": 99, "Canada": 87, "Australia": 82},
			RevenuePotential: 9500,
			Category:         "insurance",
		},
	}
}

type Static struct {
	mu     sync.RWMutex
	topics []models.Trend
}

func NewStatic() *Static {
	s := &Static{}
	s.Refresh()
	return s
}

// Refresh reloads the table, ordered by score.
func (s *Static) Refresh() {
	t := seed()
	sort.SliceStable(t, func(i, j int) bool { return t[i].Score > t[j].Score })
	s.mu.Lock()
	s.topics = t
	s.mu.Unlock()
}

// Top returns up to n topics; n <= 0 or above MaxTopics means MaxTopics.
func (s *Static) Top(n int) []models.Trend {
	if n <= 0 || n > MaxTopics {
		n = MaxTopics
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n = min(n, len(s.topics))
	out := make([]models.Trend, n)
	copy(out, s.topics[:n])
	return out
}

// Keywords lists the top n keywords.
func (s *Static) Keywords(n int) []string {
	top := s.Top(n)
	out := make([]string, len(top))
	for i, t := range top {
		out[i] = t.Keyword
	}
	return out
}
