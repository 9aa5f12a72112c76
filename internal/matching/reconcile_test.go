package matching

import (
	"errors"
	"testing"
	"time"

	"github.com/brooklyncreativehub/hub-backend/internal/gigs"
)

func snapshot() []*gigs.Gig {
	hood := "Bushwick"
	deadline := baseTime.Add(14 * 24 * time.Hour)

	a := testGig("gig-a", 0)
	a.ClientName = "Sunrise Coffee Co"
	a.Neighborhood = &hood
	a.Deadline = &deadline

	b := testGig("gig-b", time.Hour)
	c := testGig("gig-c", 2*time.Hour)
	return []*gigs.Gig{a, b, c}
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantIDs     []string
		wantScores  []int
		wantDropped map[DropReason]int
	}{
		{
			name:    "empty matches",
			content: `{"matches":[]}`,
		},
		{
			name:       "sorted by score with stable ties",
			content:    `{"matches":[{"gigId":"gig-c","matchScore":70},{"gigId":"gig-a","matchScore":90},{"gigId":"gig-b","matchScore":70}]}`,
			wantIDs:    []string{"gig-a", "gig-c", "gig-b"},
			wantScores: []int{90, 70, 70},
		},
		{
			name:        "unknown gig dropped",
			content:     `{"matches":[{"gigId":"invented","matchScore":99},{"gigId":"gig-b","matchScore":75}]}`,
			wantIDs:     []string{"gig-b"},
			wantScores:  []int{75},
			wantDropped: map[DropReason]int{DropUnknownGig: 1},
		},
		{
			name:        "duplicate keeps first",
			content:     `{"matches":[{"gigId":"gig-a","matchScore":65},{"gigId":"gig-a","matchScore":95}]}`,
			wantIDs:     []string{"gig-a"},
			wantScores:  []int{65},
			wantDropped: map[DropReason]int{DropDuplicate: 1},
		},
		{
			name: "invalid scores dropped",
			content: `{"matches":[
				{"gigId":"gig-a","matchScore":-5},
				{"gigId":"gig-a","matchScore":101},
				{"gigId":"gig-a","matchScore":72.5},
				{"gigId":"gig-a","matchScore":"80"},
				{"gigId":"gig-a"},
				{"gigId":"gig-b","matchScore":80.0}]}`,
			wantIDs:     []string{"gig-b"},
			wantScores:  []int{80},
			wantDropped: map[DropReason]int{DropInvalidScore: 5},
		},
		{
			name:        "below threshold dropped",
			content:     `{"matches":[{"gigId":"gig-a","matchScore":59},{"gigId":"gig-b","matchScore":60}]}`,
			wantIDs:     []string{"gig-b"},
			wantScores:  []int{60},
			wantDropped: map[DropReason]int{DropBelowThreshold: 1},
		},
		{
			name:        "malformed entries dropped",
			content:     `{"matches":["gig-a", 7, {"gigId": 12, "matchScore": 90}, {"gigId":"gig-c","matchScore":88}]}`,
			wantIDs:     []string{"gig-c"},
			wantScores:  []int{88},
			wantDropped: map[DropReason]int{DropMalformed: 2, DropUnknownGig: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, dropped, err := Reconcile(tt.content, snapshot(), 60)
			if err != nil {
				t.Fatalf("Reconcile() error: %v", err)
			}
			if matches == nil {
				t.Fatal("matches must be an empty slice, not nil")
			}
			if len(matches) != len(tt.wantIDs) {
				t.Fatalf("got %d matches, want %d", len(matches), len(tt.wantIDs))
			}
			for i, m := range matches {
				if m.GigID != tt.wantIDs[i] || m.MatchScore != tt.wantScores[i] {
					t.Errorf("match %d = %s/%d, want %s/%d", i, m.GigID, m.MatchScore, tt.wantIDs[i], tt.wantScores[i])
				}
				if m.Gig == nil || m.Gig.ID != m.GigID {
					t.Errorf("match %d gig summary = %+v", i, m.Gig)
				}
				if m.Reasons == nil {
					t.Errorf("match %d reasons must not be nil", i)
				}
			}
			for reason, want := range tt.wantDropped {
				if dropped[reason] != want {
					t.Errorf("dropped[%s] = %d, want %d", reason, dropped[reason], want)
				}
			}
		})
	}
}

func TestReconcile_Summary(t *testing.T) {
	content := `{"matches":[
		{"gigId":"gig-a","matchScore":82,"reasons":["Skill alignment", 3, ""],"recommendation":"Good fit"},
		{"gigId":"gig-b","matchScore":61,"reasons":"not a list","recommendation":["x"]}]}`

	matches, _, err := Reconcile(content, snapshot(), 60)
	if err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}

	a := matches[0]
	if len(a.Reasons) != 1 || a.Reasons[0] != "Skill alignment" || a.Recommendation != "Good fit" {
		t.Errorf("match a = %+v", a)
	}
	if a.Gig.ClientName != "Sunrise Coffee Co" || a.Gig.Neighborhood == nil || *a.Gig.Neighborhood != "Bushwick" {
		t.Errorf("summary a = %+v", a.Gig)
	}
	if a.Gig.Deadline == nil || a.Gig.BudgetType != gigs.BudgetFixed {
		t.Errorf("summary a = %+v", a.Gig)
	}

	b := matches[1]
	if len(b.Reasons) != 0 || b.Recommendation != "" {
		t.Errorf("match b = %+v, want empty reasons and recommendation", b)
	}
	if b.Gig.ClientName != "Client" || b.Gig.Neighborhood != nil {
		t.Errorf("summary b = %+v, want placeholder client and null neighborhood", b.Gig)
	}
}

func TestReconcile_Malformed(t *testing.T) {
	for _, content := range []string{
		`not json at all`,
		"```json\n{\"matches\":[]}\n```",
		`{"results":[]}`,
		`{"matches":null}`,
		`{"matches":{"gigId":"gig-a"}}`,
		`[]`,
	} {
		if _, _, err := Reconcile(content, snapshot(), 60); !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("Reconcile(%q) error = %v, want ErrMalformedResponse", content, err)
		}
	}
}
