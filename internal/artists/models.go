// internal/artists/models.go
// Data models for artist profiles and portfolios

package artists

import (
	"time"

	"github.com/lib/pq"
)

// ArtistProfile is the public face of an ARTIST user
type ArtistProfile struct {
	ID                 string         `json:"id" db:"id"`
	UserID             string         `json:"userId" db:"user_id"`
	DisplayName        string         `json:"displayName" db:"display_name"`
	Bio                string         `json:"bio" db:"bio"`
	Skills             pq.StringArray `json:"skills" db:"skills"`
	ExperienceYears    *int           `json:"experienceYears" db:"experience_years"`
	HourlyRate         *float64       `json:"hourlyRate" db:"hourly_rate"`
	Location           string         `json:"location" db:"location"`
	NeighborhoodID     *string        `json:"neighborhoodId" db:"neighborhood_id"`
	Neighborhood       *string        `json:"neighborhood" db:"neighborhood"`
	IsOpenToWork       bool           `json:"isOpenToWork" db:"is_open_to_work"`
	VerificationStatus string         `json:"verificationStatus" db:"verification_status"`
	CreatedAt          time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time      `json:"updatedAt" db:"updated_at"`
}

// Portfolio groups related work samples
type Portfolio struct {
	ID          string           `json:"id" db:"id"`
	ArtistID    string           `json:"artistId" db:"artist_id"`
	Title       string           `json:"title" db:"title"`
	Description string           `json:"description" db:"description"`
	IsPublic    bool             `json:"isPublic" db:"is_public"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time        `json:"updatedAt" db:"updated_at"`
	Items       []*PortfolioItem `json:"items" db:"-"`
}

// PortfolioItem is a single showcased piece of work
type PortfolioItem struct {
	ID           string         `json:"id" db:"id"`
	PortfolioID  string         `json:"portfolioId" db:"portfolio_id"`
	Title        string         `json:"title" db:"title"`
	Description  string         `json:"description" db:"description"`
	ImageURL     *string        `json:"imageUrl" db:"image_url"`
	Category     string         `json:"category" db:"category"`
	Tags         pq.StringArray `json:"tags" db:"tags"`
	DisplayOrder int            `json:"displayOrder" db:"display_order"`
	CreatedAt    time.Time      `json:"createdAt" db:"created_at"`
}

// MatchingProfile is what the gig matcher knows about an artist: the profile
// and every portfolio item flattened across portfolios
type MatchingProfile struct {
	Profile *ArtistProfile
	Items   []*PortfolioItem
}

// PublicProfile is returned by GET /api/v1/artists/{id}
type PublicProfile struct {
	*ArtistProfile
	Portfolios []*Portfolio `json:"portfolios"`
}

// BrowseFilter narrows the artist directory
type BrowseFilter struct {
	Search       string
	Skill        string
	Neighborhood string
	OpenToWork   *bool
	Limit        int
	Offset       int
}

// Request DTOs

type UpdateProfileRequest struct {
	DisplayName     *string  `json:"displayName,omitempty" validate:"omitempty,min=1,max=200"`
	Bio             *string  `json:"bio,omitempty" validate:"omitempty,max=5000"`
	Skills          []string `json:"skills,omitempty" validate:"omitempty,max=50,dive,min=1,max=100"`
	ExperienceYears *int     `json:"experienceYears,omitempty" validate:"omitempty,gte=0,max=80"`
	HourlyRate      *float64 `json:"hourlyRate,omitempty" validate:"omitempty,gte=0"`
	Location        *string  `json:"location,omitempty" validate:"omitempty,max=255"`
	NeighborhoodID  *string  `json:"neighborhoodId,omitempty" validate:"omitempty,uuid"`
	IsOpenToWork    *bool    `json:"isOpenToWork,omitempty"`
}

type CreatePortfolioRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	IsPublic    *bool  `json:"isPublic,omitempty"`
}

// CreateItemRequest is read from the multipart form of the item upload
type CreateItemRequest struct {
	Title        string   `validate:"required,max=200"`
	Description  string   `validate:"max=5000"`
	Category     string   `validate:"max=50"`
	Tags         []string `validate:"max=30,dive,min=1,max=50"`
	DisplayOrder int      `validate:"gte=0"`
}
