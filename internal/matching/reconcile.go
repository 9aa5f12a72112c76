// internal/matching/reconcile.go
// Validates matcher output against the gig snapshot the prompt was built from

package matching

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/brooklyncreativehub/hub-backend/internal/gigs"
)

// ErrMalformedResponse is returned when the matcher content is not a JSON
// object with a "matches" array
var ErrMalformedResponse = errors.New("malformed matcher response")

// DropReason says why a matcher entry was discarded
type DropReason string

const (
	DropMalformed      DropReason = "malformed"
	DropUnknownGig     DropReason = "unknown_gig"
	DropDuplicate      DropReason = "duplicate"
	DropInvalidScore   DropReason = "invalid_score"
	DropBelowThreshold DropReason = "below_threshold"
)

const defaultClientName = "Client"

type rawResponse struct {
	Matches *[]json.RawMessage `json:"matches"`
}

type rawMatch struct {
	GigID          json.RawMessage `json:"gigId"`
	MatchScore     json.RawMessage `json:"matchScore"`
	Reasons        json.RawMessage `json:"reasons"`
	Recommendation json.RawMessage `json:"recommendation"`
}

// Reconcile parses content and keeps only entries that reference a gig in
// snapshot, carry an integer score in [0, 100] that is at least minScore, and
// have not been seen before. Survivors get a gig summary attached and are
// sorted by score, highest first, preserving matcher order on ties.
// An unparseable document is an error; bad individual entries are not.
func Reconcile(content string, snapshot []*gigs.Gig, minScore int) ([]Match, map[DropReason]int, error) {
	var doc rawResponse
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if doc.Matches == nil {
		return nil, nil, fmt.Errorf("%w: missing matches array", ErrMalformedResponse)
	}

	byID := make(map[string]*gigs.Gig, len(snapshot))
	for _, g := range snapshot {
		byID[g.ID] = g
	}

	dropped := make(map[DropReason]int)
	seen := make(map[string]bool)
	matches := make([]Match, 0, len(*doc.Matches))

	for _, entry := range *doc.Matches {
		var raw rawMatch
		if err := json.Unmarshal(entry, &raw); err != nil {
			dropped[DropMalformed]++
			continue
		}

		var gigID string
		if err := json.Unmarshal(raw.GigID, &gigID); err != nil {
			dropped[DropUnknownGig]++
			continue
		}
		gig, ok := byID[gigID]
		if !ok {
			dropped[DropUnknownGig]++
			continue
		}

		score, ok := parseScore(raw.MatchScore)
		if !ok {
			dropped[DropInvalidScore]++
			continue
		}
		if score < minScore {
			dropped[DropBelowThreshold]++
			continue
		}

		if seen[gigID] {
			dropped[DropDuplicate]++
			continue
		}
		seen[gigID] = true

		matches = append(matches, Match{
			GigID:          gigID,
			MatchScore:     score,
			Reasons:        parseReasons(raw.Reasons),
			Recommendation: parseString(raw.Recommendation),
			Gig:            summarize(gig),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})

	return matches, dropped, nil
}

// parseScore accepts JSON numbers with an integral value between 0 and 100
func parseScore(raw json.RawMessage) (int, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f < 0 || f > 100 {
		return 0, false
	}
	return int(f), true
}

// parseReasons keeps the string entries of a reasons array
func parseReasons(raw json.RawMessage) []string {
	var items []interface{}
	reasons := []string{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return reasons
	}
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			reasons = append(reasons, s)
		}
	}
	return reasons
}

func parseString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func summarize(g *gigs.Gig) *GigSummary {
	clientName := g.ClientName
	if strings.TrimSpace(clientName) == "" {
		clientName = defaultClientName
	}

	return &GigSummary{
		ID:           g.ID,
		Title:        g.Title,
		Description:  g.Description,
		Category:     g.Category,
		Budget:       g.Budget,
		BudgetType:   g.BudgetType,
		Timeline:     g.Timeline,
		Location:     g.Location,
		ClientName:   clientName,
		Neighborhood: g.Neighborhood,
		CreatedAt:    g.CreatedAt,
		Deadline:     g.Deadline,
	}
}
