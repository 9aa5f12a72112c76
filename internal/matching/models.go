// internal/matching/models.go
// Types exchanged with the matcher and returned to the artist

package matching

import (
	"time"

	"github.com/brooklyncreativehub/hub-backend/internal/gigs"
)

// ArtistSnapshot is the artist half of the prompt
type ArtistSnapshot struct {
	Skills          []string            `json:"skills"`
	ExperienceYears *int                `json:"experienceYears"`
	PortfolioItems  []PortfolioSnapshot `json:"portfolioItems"`
	Location        string              `json:"location"`
	HourlyRate      *float64            `json:"hourlyRate"`
}

// PortfolioSnapshot is one flattened portfolio item as shown to the matcher
type PortfolioSnapshot struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

// GigSnapshot is one candidate gig as shown to the matcher
type GigSnapshot struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Category     gigs.Category `json:"category"`
	Budget       float64       `json:"budget"`
	Skills       []string      `json:"skills"`
	Requirements []string      `json:"requirements"`
	Location     string        `json:"location"`
	Timeline     string        `json:"timeline"`
}

// GigSummary is the display-ready gig attached to a surviving match
type GigSummary struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Category     gigs.Category   `json:"category"`
	Budget       float64         `json:"budget"`
	BudgetType   gigs.BudgetType `json:"budgetType"`
	Timeline     string          `json:"timeline"`
	Location     string          `json:"location"`
	ClientName   string          `json:"clientName"`
	Neighborhood *string         `json:"neighborhood"`
	CreatedAt    time.Time       `json:"createdAt"`
	Deadline     *time.Time      `json:"deadline"`
}

// Match is a scored gig recommendation. Matches are built per request and
// never stored.
type Match struct {
	GigID          string      `json:"gigId"`
	MatchScore     int         `json:"matchScore"`
	Reasons        []string    `json:"reasons"`
	Recommendation string      `json:"recommendation"`
	Gig            *GigSummary `json:"gig"`
}

// Result is the response body of POST /api/v1/ai/match-gigs
type Result struct {
	Matches       []Match `json:"matches"`
	TotalAnalyzed int     `json:"totalAnalyzed"`
	ArtistID      string  `json:"artistId"`
}
