// internal/gigs/models.go
// Data models for gigs and neighborhoods

package gigs

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// Category is the creative discipline a gig needs
type Category string

const (
	CategoryMuralist        Category = "MURALIST"
	CategoryGraphicDesigner Category = "GRAPHIC_DESIGNER"
	CategoryPhotographer    Category = "PHOTOGRAPHER"
	CategoryWebDesigner     Category = "WEB_DESIGNER"
	CategoryIllustrator     Category = "ILLUSTRATOR"
	CategoryVideoEditor     Category = "VIDEO_EDITOR"
	CategoryOther           Category = "OTHER"
)

var categories = []Category{
	CategoryMuralist, CategoryGraphicDesigner, CategoryPhotographer,
	CategoryWebDesigner, CategoryIllustrator, CategoryVideoEditor, CategoryOther,
}

// ParseCategory accepts "GRAPHIC_DESIGNER", "graphic designer" or "graphic-designer"
func ParseCategory(s string) (Category, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for _, c := range categories {
		if Category(norm) == c {
			return c, true
		}
	}
	return "", false
}

// BudgetType says whether Budget is a total or a rate
type BudgetType string

const (
	BudgetFixed  BudgetType = "FIXED"
	BudgetHourly BudgetType = "HOURLY"
)

// ParseBudgetType defaults to FIXED when s is empty
func ParseBudgetType(s string) (BudgetType, bool) {
	switch BudgetType(strings.ToUpper(strings.TrimSpace(s))) {
	case "", BudgetFixed:
		return BudgetFixed, true
	case BudgetHourly:
		return BudgetHourly, true
	}
	return "", false
}

// Status is the gig lifecycle state
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

var transitions = map[Status][]Status{
	StatusOpen:       {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// ParseStatus accepts any letter case and "in-progress"
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_"))
	switch st {
	case StatusOpen, StatusInProgress, StatusCompleted, StatusCancelled:
		return st, true
	}
	return "", false
}

// CanTransition reports whether a gig may move from one status to another
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Gig is a paid job posted by a client
type Gig struct {
	ID             string         `json:"id" db:"id"`
	ClientID       string         `json:"clientId" db:"client_id"`
	ClientUserID   string         `json:"-" db:"client_user_id"`
	ClientName     string         `json:"clientName" db:"client_name"`
	Title          string         `json:"title" db:"title"`
	Description    string         `json:"description" db:"description"`
	Category       Category       `json:"category" db:"category"`
	Budget         float64        `json:"budget" db:"budget"`
	BudgetType     BudgetType     `json:"budgetType" db:"budget_type"`
	Timeline       string         `json:"timeline" db:"timeline"`
	Location       string         `json:"location" db:"location"`
	IsRemote       bool           `json:"isRemote" db:"is_remote"`
	NeighborhoodID *string        `json:"neighborhoodId" db:"neighborhood_id"`
	Neighborhood   *string        `json:"neighborhood" db:"neighborhood"`
	Requirements   pq.StringArray `json:"requirements" db:"requirements"`
	Skills         pq.StringArray `json:"skills" db:"skills"`
	Deadline       *time.Time     `json:"deadline" db:"deadline"`
	Status         Status         `json:"status" db:"status"`
	CreatedAt      time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time      `json:"updatedAt" db:"updated_at"`
}

// Neighborhood is an entry in the Brooklyn neighborhood catalogue
type Neighborhood struct {
	ID        string  `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	Slug      string  `json:"slug" db:"slug"`
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// ListFilter narrows the gig board
type ListFilter struct {
	Search   string
	Category Category
	Status   Status
	Location string
	Remote   *bool
	Limit    int
	Offset   int
}

// Request DTOs

type CreateGigRequest struct {
	Title          string     `json:"title" validate:"required,max=200"`
	Description    string     `json:"description" validate:"required,max=10000"`
	Category       string     `json:"category" validate:"required"`
	Budget         float64    `json:"budget" validate:"gt=0"`
	BudgetType     string     `json:"budgetType"`
	Timeline       string     `json:"timeline" validate:"max=200"`
	Location       string     `json:"location" validate:"max=255"`
	IsRemote       bool       `json:"isRemote"`
	NeighborhoodID *string    `json:"neighborhoodId,omitempty" validate:"omitempty,uuid"`
	Requirements   []string   `json:"requirements" validate:"max=30,dive,min=1,max=500"`
	Skills         []string   `json:"skills" validate:"max=30,dive,min=1,max=100"`
	Deadline       *time.Time `json:"deadline,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
