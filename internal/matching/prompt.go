// internal/matching/prompt.go
// Builds the bounded matching prompt

package matching

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/brooklyncreativehub/hub-backend/internal/artists"
	"github.com/brooklyncreativehub/hub-backend/internal/gigs"
)

// ErrPromptTooLarge is returned when the prompt exceeds the character budget
// even with no portfolio items and no gigs
var ErrPromptTooLarge = errors.New("matching prompt exceeds size limit")

// Limits bound what is sent to the matcher
type Limits struct {
	MaxGigs           int
	MaxPortfolioItems int
	MaxChars          int
}

// Prompt is the rendered request and the exact gig set it describes.
// Reconciliation must resolve ids against Gigs and nothing else.
type Prompt struct {
	Text string
	Gigs []*gigs.Gig
}

const promptTemplate = `You are an AI matching system for a creative marketplace. Analyze this artist's profile and suggest the best matching gigs.

Artist Profile:
%s

Available Gigs:
%s

Please respond in JSON format with the following structure:
{
  "matches": [
    {
      "gigId": "gig_id",
      "matchScore": 85,
      "reasons": ["Specific reason 1", "Specific reason 2"],
      "recommendation": "Brief explanation why this is a good match"
    }
  ]
}

Each gigId must be the id of one of the Available Gigs above. matchScore must be an integer from 0 to 100.

Consider:
1. Skill alignment between artist capabilities and gig requirements
2. Portfolio relevance to the gig category and description
3. Experience level appropriateness
4. Budget compatibility with artist's rate
5. Location proximity (Brooklyn neighborhoods)
6. Timeline feasibility

Rank matches by score (0-100) and include only gigs with score >= %d.
Respond with raw JSON only. Do not include code blocks, markdown, or any other formatting.`

// BuildPrompt renders the prompt for one artist. Candidates are capped at
// MaxGigs, newest first with ties broken by id. Portfolio items are capped at
// MaxPortfolioItems in reader order.
//
// MaxChars is enforced in two steps. Trailing portfolio items are dropped
// until the artist section fits in half of the budget. Gigs then fill what is
// left in recency order, and a gig that does not fit is skipped so one large
// listing cannot crowd out smaller ones behind it.
func BuildPrompt(profile *artists.MatchingProfile, candidates []*gigs.Gig, minScore int, limits Limits) (*Prompt, error) {
	selected := selectGigs(candidates, limits.MaxGigs)

	items := profile.Items
	if limits.MaxPortfolioItems > 0 && len(items) > limits.MaxPortfolioItems {
		items = items[:limits.MaxPortfolioItems]
	}

	if limits.MaxChars <= 0 {
		text, err := renderPrompt(profile.Profile, items, selected, minScore)
		if err != nil {
			return nil, err
		}
		return &Prompt{Text: text, Gigs: selected}, nil
	}

	artistBudget := limits.MaxChars / 2
	for {
		text, err := renderPrompt(profile.Profile, items, nil, minScore)
		if err != nil {
			return nil, err
		}
		n := utf8.RuneCountInString(text)
		if n <= artistBudget || (len(items) == 0 && n <= limits.MaxChars) {
			break
		}
		if len(items) == 0 {
			return nil, ErrPromptTooLarge
		}
		items = items[:len(items)-1]
	}

	kept := make([]*gigs.Gig, 0, len(selected))
	text, err := renderPrompt(profile.Profile, items, kept, minScore)
	if err != nil {
		return nil, err
	}
	for _, g := range selected {
		next, err := renderPrompt(profile.Profile, items, append(kept, g), minScore)
		if err != nil {
			return nil, err
		}
		if utf8.RuneCountInString(next) > limits.MaxChars {
			continue
		}
		kept = append(kept, g)
		text = next
	}

	return &Prompt{Text: text, Gigs: kept}, nil
}

func renderPrompt(p *artists.ArtistProfile, items []*artists.PortfolioItem, list []*gigs.Gig, minScore int) (string, error) {
	artistJSON, err := indentJSON(artistSnapshot(p, items))
	if err != nil {
		return "", fmt.Errorf("failed to encode artist snapshot: %w", err)
	}
	gigsJSON, err := indentJSON(gigSnapshots(list))
	if err != nil {
		return "", fmt.Errorf("failed to encode gig snapshot: %w", err)
	}
	return fmt.Sprintf(promptTemplate, artistJSON, gigsJSON, minScore), nil
}

// selectGigs returns at most max gigs ordered newest first, id ascending on ties
func selectGigs(candidates []*gigs.Gig, max int) []*gigs.Gig {
	sorted := make([]*gigs.Gig, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	if max > 0 && len(sorted) > max {
		sorted = sorted[:max]
	}
	return sorted
}

func artistSnapshot(p *artists.ArtistProfile, items []*artists.PortfolioItem) ArtistSnapshot {
	snap := ArtistSnapshot{
		Skills:          nonNilStrings(p.Skills),
		ExperienceYears: p.ExperienceYears,
		PortfolioItems:  make([]PortfolioSnapshot, 0, len(items)),
		Location:        p.Location,
		HourlyRate:      p.HourlyRate,
	}
	for _, item := range items {
		snap.PortfolioItems = append(snap.PortfolioItems, PortfolioSnapshot{
			Title:       item.Title,
			Description: item.Description,
			Category:    item.Category,
			Tags:        nonNilStrings(item.Tags),
		})
	}
	return snap
}

func gigSnapshots(list []*gigs.Gig) []GigSnapshot {
	out := make([]GigSnapshot, 0, len(list))
	for _, g := range list {
		out = append(out, GigSnapshot{
			ID:           g.ID,
			Title:        g.Title,
			Description:  g.Description,
			Category:     g.Category,
			Budget:       g.Budget,
			Skills:       nonNilStrings(g.Skills),
			Requirements: nonNilStrings(g.Requirements),
			Location:     g.Location,
			Timeline:     g.Timeline,
		})
	}
	return out
}

// indentJSON encodes v with two-space indentation and without HTML escaping
func indentJSON(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
