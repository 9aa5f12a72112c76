// internal/matching/service.go
// The gig matching pipeline

package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/brooklyncreativehub/hub-backend/internal/artists"
	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
	"github.com/brooklyncreativehub/hub-backend/internal/gigs"
)

// ErrMatchFailed wraps every failure that is reported to the caller as a
// generic 500
var ErrMatchFailed = errors.New("failed to generate gig matches")

// ProfileReader loads the artist half of the prompt
type ProfileReader interface {
	GetMatchingProfile(ctx context.Context, userID string) (*artists.MatchingProfile, error)
}

// GigReader loads the candidate gigs
type GigReader interface {
	ListOpen(ctx context.Context) ([]*gigs.Gig, error)
}

// Completer performs one JSON completion call
type Completer interface {
	CompleteJSON(ctx context.Context, prompt string) (string, error)
}

// Config holds pipeline settings
type Config struct {
	Limits   Limits
	MinScore int
}

// Service runs the matching pipeline. It keeps no per-request state.
type Service struct {
	profiles ProfileReader
	gigs     GigReader
	llm      Completer
	config   Config
	log      *logging.Logger
}

// NewService creates a matching service
func NewService(profiles ProfileReader, gigReader GigReader, llm Completer, config Config, log *logging.Logger) *Service {
	return &Service{
		profiles: profiles,
		gigs:     gigReader,
		llm:      llm,
		config:   config,
		log:      log,
	}
}

// MatchGigs reads the artist's profile and the open gigs concurrently, asks
// the matcher to rank them, and reconciles the answer against the gigs that
// were actually sent. It returns artists.ErrProfileNotFound when the user has
// no artist profile and an error wrapping ErrMatchFailed for anything else.
func (s *Service) MatchGigs(ctx context.Context, userID string) (*Result, error) {
	var (
		profile    *artists.MatchingProfile
		candidates []*gigs.Gig
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = s.profiles.GetMatchingProfile(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		candidates, err = s.gigs.ListOpen(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, artists.ErrProfileNotFound) {
			recordOutcome(outcomeProfileNotFound)
			return nil, err
		}
		recordOutcome(outcomeStoreError)
		return nil, fmt.Errorf("%w: loading inputs: %v", ErrMatchFailed, err)
	}

	prompt, err := BuildPrompt(profile, candidates, s.config.MinScore, s.config.Limits)
	if err != nil {
		recordOutcome(outcomeStoreError)
		return nil, fmt.Errorf("%w: building prompt: %v", ErrMatchFailed, err)
	}

	result := &Result{
		Matches:       []Match{},
		TotalAnalyzed: len(prompt.Gigs),
		ArtistID:      profile.Profile.ID,
	}

	if len(prompt.Gigs) == 0 {
		recordOutcome(outcomeNoCandidates)
		return result, nil
	}

	start := time.Now()
	content, err := s.llm.CompleteJSON(ctx, prompt.Text)
	recordUpstream(time.Since(start))
	if err != nil {
		recordOutcome(outcomeUpstreamError)
		return nil, fmt.Errorf("%w: matcher call: %w", ErrMatchFailed, err)
	}

	matches, dropped, err := Reconcile(content, prompt.Gigs, s.config.MinScore)
	if err != nil {
		recordOutcome(outcomeParseError)
		return nil, fmt.Errorf("%w: %w", ErrMatchFailed, err)
	}
	recordReconciled(matches, dropped)
	recordOutcome(outcomeSuccess)

	if len(dropped) > 0 {
		s.log.Info("matcher entries dropped", "artist_id", result.ArtistID, "dropped", dropped)
	}

	result.Matches = matches
	return result, nil
}
