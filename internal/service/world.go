package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maxviazov/football-manager-sim/internal/engine"
	"github.com/maxviazov/football-manager-sim/internal/event"
	"github.com/maxviazov/football-manager-sim/internal/fixture"
	"github.com/maxviazov/football-manager-sim/internal/model"
	"github.com/maxviazov/football-manager-sim/internal/progression"
	"github.com/maxviazov/football-manager-sim/internal/repository"
	"github.com/maxviazov/football-manager-sim/internal/seed"
	"github.com/maxviazov/football-manager-sim/internal/simulation"
	"github.com/maxviazov/football-manager-sim/internal/softstate"
)

const (
	monthlyEvery      = 4
	firstSeason       = 1
	postMatchInterval = 2 * time.Hour
	seasonBreak       = 6 * 7 * 24 * time.Hour
)

// Option configures a WorldService.
type Option func(*WorldService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *WorldService) { s.now = now }
}

// WorldService owns the single world. A mutex serializes every use case that
// reads or mutates it, so matchdays advance one at a time.
type WorldService struct {
	mu        sync.Mutex
	world     *model.World
	store     Store
	provider  softstate.Provider
	validator softstate.Validator
	simCfg    simulation.Config
	now       func() time.Time
	log       zerolog.Logger
}

func NewWorldService(store Store, provider softstate.Provider, simCfg simulation.Config, maxDelta float64, logger zerolog.Logger, opts ...Option) *WorldService {
	if provider == nil {
		provider = softstate.Disabled{}
	}
	s := &WorldService{
		store:     store,
		provider:  provider,
		validator: softstate.NewValidator(maxDelta),
		simCfg:    simCfg,
		now:       time.Now,
		log:       logger.With().Str("module", "service").Str("component", "world").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WorldInfo summarizes a world.
type WorldInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Seed     int64  `json:"seed"`
	Leagues  int    `json:"leagues"`
	Teams    int    `json:"teams"`
	Players  int    `json:"players"`
	Matches  int    `json:"matches"`
	Sequence int64  `json:"sequence"`
}

func info(w *model.World, seq int64) WorldInfo {
	return WorldInfo{
		ID:       w.ID,
		Name:     w.Name,
		Seed:     w.Seed,
		Leagues:  len(w.Leagues),
		Teams:    len(w.Teams),
		Players:  w.PlayerCount(),
		Matches:  len(w.Matches),
		Sequence: seq,
	}
}

// Restore loads the latest snapshot. It reports false when the store has none.
func (s *WorldService) Restore(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.store.LatestSnapshot(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	w := model.NewWorld("", "", 0)
	if err := json.Unmarshal(snap.Payload, w); err != nil {
		return false, fmt.Errorf("decode snapshot %s: %w", snap.ID, err)
	}
	s.world = w
	s.log.Info().Str("world_id", w.ID).Int64("sequence", snap.Sequence).Msg("world restored from snapshot")
	return true, nil
}

// InitWorld replaces the log with a freshly generated and scheduled world.
func (s *WorldService) InitWorld(ctx context.Context, opts InitOptions) (WorldInfo, error) {
	if err := validateInit(opts); err != nil {
		s.log.Debug().Interface("field_errors", FieldErrors(err)).Msg("init validation failed")
		return WorldInfo{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	start := opts.Start
	if start.IsZero() {
		start = s.now()
	}
	start = start.UTC()

	w, err := seed.Generate(opts.Options)
	if err != nil {
		return WorldInfo{}, err
	}
	var scheduled []*model.Match
	for _, id := range w.LeagueIDs() {
		ms, err := fixture.Schedule(w, w.Leagues[id], firstSeason, start)
		if err != nil {
			return WorldInfo{}, err
		}
		scheduled = append(scheduled, ms...)
	}

	events := make([]event.Event, 0, len(scheduled)+1)
	events = append(events, event.WorldInitialized{
		Header:  event.NewHeader(s.now()),
		WorldID: w.ID,
		Name:    w.Name,
		Seed:    w.Seed,
		Leagues: len(w.Leagues),
		Teams:   len(w.Teams),
		Players: w.PlayerCount(),
	})
	for _, m := range scheduled {
		events = append(events, event.MatchScheduled{
			Header:     event.NewHeader(s.now()),
			MatchID:    m.ID,
			LeagueID:   m.LeagueID,
			Season:     m.Season,
			Matchday:   m.Matchday,
			HomeTeamID: m.HomeTeamID,
			AwayTeamID: m.AwayTeamID,
		})
	}

	if err := s.store.Reset(ctx); err != nil {
		s.log.Error().Err(err).Msg("reset event log failed")
		return WorldInfo{}, err
	}
	var last int64
	err = s.store.WithinTx(ctx, func(ctx context.Context) error {
		stored, err := s.store.AppendBatch(ctx, events)
		if err != nil {
			return err
		}
		last = stored[len(stored)-1].Sequence
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Msg("persist new world failed")
		return WorldInfo{}, err
	}
	s.world = w
	if err := s.snapshot(ctx, last); err != nil {
		return WorldInfo{}, err
	}

	out := info(w, last)
	s.log.Info().Str("world_id", w.ID).Int64("seed", w.Seed).Int("teams", out.Teams).Int("matches", out.Matches).Msg("world initialized")
	return out, nil
}

func validateInit(opts InitOptions) error {
	var ferrs []FieldError
	if opts.Leagues < 0 || opts.Leagues > seed.MaxLeagues {
		ferrs = append(ferrs, FieldError{Field: "leagues", Message: fmt.Sprintf("must be between 1 and %d", seed.MaxLeagues)})
	}
	if opts.TeamsPerLeague != 0 && (opts.TeamsPerLeague < 2 || opts.TeamsPerLeague > seed.MaxTeamsPerLeague) {
		ferrs = append(ferrs, FieldError{Field: "teams_per_league", Message: fmt.Sprintf("must be between 2 and %d", seed.MaxTeamsPerLeague)})
	}
	if len(opts.Name) > 80 {
		ferrs = append(ferrs, FieldError{Field: "name", Message: "must be at most 80 characters"})
	}
	return newInvalidInput(ferrs)
}

// snapshot stores the current world as of the event at seq.
func (s *WorldService) snapshot(ctx context.Context, seq int64) error {
	payload, err := json.Marshal(s.world)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	err = s.store.SaveSnapshot(ctx, repository.Snapshot{
		ID:        uuid.New(),
		Timestamp: s.now().UTC(),
		Sequence:  seq,
		Payload:   payload,
	})
	if err != nil {
		s.log.Error().Err(err).Int64("sequence", seq).Msg("save snapshot failed")
		return err
	}
	return nil
}

// MatchResult is one played fixture.
type MatchResult struct {
	MatchID    string `json:"match_id"`
	HomeTeamID string `json:"home_team_id"`
	AwayTeamID string `json:"away_team_id"`
	HomeScore  int    `json:"home_score"`
	AwayScore  int    `json:"away_score"`
	Seed       int64  `json:"seed"`
	Events     int    `json:"events"`
}

// FixtureFailure is a fixture that could not be played.
type FixtureFailure struct {
	MatchID string `json:"match_id"`
	Error   string `json:"error"`
}

// MatchdayReport describes one advanced matchday.
type MatchdayReport struct {
	LeagueID      string           `json:"league_id"`
	Season        int              `json:"season"`
	Matchday      int              `json:"matchday"`
	Results       []MatchResult    `json:"results"`
	Failures      []FixtureFailure `json:"failures,omitempty"`
	Applied       int              `json:"soft_state_applied"`
	Rejected      int              `json:"soft_state_rejected"`
	ProviderError string           `json:"provider_error,omitempty"`
	FirstSequence int64            `json:"first_sequence"`
	LastSequence  int64            `json:"last_sequence"`
	SeasonEnded   bool             `json:"season_ended"`
}

// AdvanceMatchday plays every open fixture of the league's current matchday.
// A fixture that fails to simulate is reported and the rest still play.
//
// Match events are committed first. The soft-state provider then reads the
// persisted batch, and its updates, the newsroom and progression commit as a
// second batch. A failed commit rolls the world back to the state that matches
// the log.
func (s *WorldService) AdvanceMatchday(ctx context.Context, leagueID string) (MatchdayReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.world == nil {
		return MatchdayReport{}, ErrNoWorld
	}
	l, err := s.world.League(leagueID)
	if err != nil {
		return MatchdayReport{}, err
	}
	if l.SeasonComplete() {
		return MatchdayReport{}, fmt.Errorf("%w: league %s season %d", ErrSeasonComplete, l.ID, l.Season)
	}
	log := s.log.With().Str("league_id", l.ID).Int("season", l.Season).Int("matchday", l.CurrentMatchday).Logger()

	report := MatchdayReport{LeagueID: l.ID, Season: l.Season, Matchday: l.CurrentMatchday, Results: []MatchResult{}}
	checkpoint, err := json.Marshal(s.world)
	if err != nil {
		return MatchdayReport{}, fmt.Errorf("checkpoint world: %w", err)
	}

	matchEvents, played, err := s.playFixtures(ctx, l, &report)
	if err != nil {
		return MatchdayReport{}, s.rollback(checkpoint, err)
	}
	stored, err := s.commit(ctx, matchEvents)
	if err != nil {
		log.Error().Err(err).Msg("persist match events failed")
		return MatchdayReport{}, s.rollback(checkpoint, err)
	}
	report.FirstSequence, report.LastSequence = span(stored, 0, 0)

	if checkpoint, err = json.Marshal(s.world); err != nil {
		return MatchdayReport{}, fmt.Errorf("checkpoint world: %w", err)
	}
	after, err := s.aftermath(ctx, l, stored, played, &report)
	if err != nil {
		return MatchdayReport{}, s.rollback(checkpoint, err)
	}
	stored, err = s.commit(ctx, after)
	if err != nil {
		log.Error().Err(err).Msg("persist matchday aftermath failed")
		return MatchdayReport{}, s.rollback(checkpoint, err)
	}
	report.FirstSequence, report.LastSequence = span(stored, report.FirstSequence, report.LastSequence)

	if report.LastSequence > 0 {
		if err := s.snapshot(ctx, report.LastSequence); err != nil {
			return MatchdayReport{}, err
		}
	}
	log.Info().
		Int("played", len(report.Results)).
		Int("failed", len(report.Failures)).
		Int("soft_state_applied", report.Applied).
		Int64("last_sequence", report.LastSequence).
		Bool("season_ended", report.SeasonEnded).
		Msg("matchday advanced")
	return report, nil
}

func (s *WorldService) commit(ctx context.Context, events []event.Event) ([]event.Stored, error) {
	if len(events) == 0 {
		return nil, nil
	}
	var stored []event.Stored
	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		stored, err = s.store.AppendBatch(ctx, events)
		return err
	})
	return stored, err
}

func (s *WorldService) rollback(checkpoint []byte, cause error) error {
	restored := model.NewWorld("", "", 0)
	if err := json.Unmarshal(checkpoint, restored); err != nil {
		return errors.Join(cause, err)
	}
	s.world = restored
	return cause
}

// span widens [first, last] to cover stored.
func span(stored []event.Stored, first, last int64) (int64, int64) {
	if len(stored) == 0 {
		return first, last
	}
	if first == 0 {
		first = stored[0].Sequence
	}
	return first, stored[len(stored)-1].Sequence
}

// playFixtures simulates the open fixtures of the current matchday.
func (s *WorldService) playFixtures(ctx context.Context, l *model.League, report *MatchdayReport) ([]event.Event, []*model.Match, error) {
	w := s.world
	eng := engine.New(w, s.simCfg, s.log)

	var (
		out    []event.Event
		played []*model.Match
	)
	for _, m := range w.MatchesFor(l.ID, l.Season, l.CurrentMatchday) {
		if m.Finished {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		events, err := eng.PlayMatch(m.ID, nil)
		if err != nil {
			s.log.Warn().Err(err).Str("match_id", m.ID).Msg("fixture failed")
			report.Failures = append(report.Failures, FixtureFailure{MatchID: m.ID, Error: err.Error()})
			continue
		}
		venue := ""
		if home, err := w.Team(m.HomeTeamID); err == nil {
			venue = home.Stadium.Name
		}
		out = append(out, event.MatchStarted{
			MatchHeader: event.MatchHeader{Header: event.NewHeader(m.ScheduledAt), MatchID: m.ID},
			HomeTeamID:  m.HomeTeamID,
			AwayTeamID:  m.AwayTeamID,
			Seed:        m.Seed,
			Venue:       venue,
		})
		out = append(out, events...)
		played = append(played, m)
		report.Results = append(report.Results, MatchResult{
			MatchID:    m.ID,
			HomeTeamID: m.HomeTeamID,
			AwayTeamID: m.AwayTeamID,
			HomeScore:  m.HomeScore,
			AwayScore:  m.AwayScore,
			Seed:       m.Seed,
			Events:     len(events),
		})
	}
	return out, played, nil
}

// aftermath runs everything that follows the final whistles and returns the
// events to persist.
func (s *WorldService) aftermath(ctx context.Context, l *model.League, stored []event.Stored, played []*model.Match, report *MatchdayReport) ([]event.Event, error) {
	w := s.world
	var at time.Time
	for _, m := range played {
		if m.ScheduledAt.After(at) {
			at = m.ScheduledAt
		}
	}
	if at.IsZero() {
		at = s.now().UTC()
	}
	at = at.Add(postMatchInterval)

	var out []event.Event
	if len(stored) > 0 {
		batch := make([]event.Event, 0, len(stored))
		for _, st := range stored {
			batch = append(batch, st.Event)
		}
		out = append(out, s.softState(ctx, batch, at, report)...)
		for _, m := range played {
			out = append(out, matchStory(w, m, at))
		}
	}

	// progression is per league so a round of N leagues ticks each club once
	progression.Weekly(w, l.TeamIDs)
	if allFinished(w.MatchesFor(l.ID, l.Season, l.CurrentMatchday)) {
		l.CurrentMatchday++
	}
	if l.CurrentMatchday > 1 && (l.CurrentMatchday-1)%monthlyEvery == 0 {
		out = append(out, progression.Monthly(w, l.TeamIDs, at)...)
	}
	if seasonOver(w) {
		next, err := s.rollSeason(at)
		if err != nil {
			return nil, err
		}
		out = append(out, next...)
		report.SeasonEnded = true
	}
	return out, nil
}

func allFinished(ms []*model.Match) bool {
	for _, m := range ms {
		if !m.Finished {
			return false
		}
	}
	return true
}

func seasonOver(w *model.World) bool {
	for _, id := range w.LeagueIDs() {
		if !w.Leagues[id].SeasonComplete() {
			return false
		}
	}
	return len(w.Leagues) > 0
}

// rollSeason closes the season and schedules the next one after a break.
func (s *WorldService) rollSeason(at time.Time) ([]event.Event, error) {
	w := s.world
	progression.EndOfSeason(w)
	var out []event.Event
	for _, id := range w.LeagueIDs() {
		l := w.Leagues[id]
		ms, err := fixture.Schedule(w, l, l.Season, at.Add(seasonBreak))
		if err != nil {
			return nil, err
		}
		for _, m := range ms {
			out = append(out, event.MatchScheduled{
				Header:     event.NewHeader(at),
				MatchID:    m.ID,
				LeagueID:   m.LeagueID,
				Season:     m.Season,
				Matchday:   m.Matchday,
				HomeTeamID: m.HomeTeamID,
				AwayTeamID: m.AwayTeamID,
			})
		}
	}
	s.log.Info().Str("world_id", w.ID).Msg("season rolled over")
	return out, nil
}

// softState runs the provider over the played events and applies whatever
// passes validation. Provider failures are reported, not fatal.
func (s *WorldService) softState(ctx context.Context, played []event.Event, at time.Time, report *MatchdayReport) []event.Event {
	updates, err := s.provider.Analyze(ctx, played, s.world)
	if err != nil {
		s.log.Warn().Err(err).Str("provider", s.provider.Name()).Msg("soft-state provider failed")
		report.ProviderError = err.Error()
		return nil
	}
	res := s.validator.ApplyAll(s.world, updates)
	report.Applied, report.Rejected = len(res.Applied), len(res.Rejected)
	for _, r := range res.Rejected {
		s.log.Warn().
			Str("entity_type", r.Update.EntityType).
			Str("entity_id", r.Update.EntityID).
			Str("reason", r.Reason).
			Msg("soft-state update rejected")
	}

	var out []event.Event
	for _, a := range res.Applied {
		out = append(out, event.SoftStateUpdated{
			Header:     event.NewHeader(at),
			EntityType: a.Update.EntityType,
			EntityID:   a.Update.EntityID,
			Deltas:     a.Applied,
			Rationale:  a.Update.Rationale,
			Provider:   s.provider.Name(),
		})
		if a.Update.EntityType == softstate.EntityTeam {
			if d, ok := a.Applied["board_confidence"]; ok && d != 0 {
				if t, err := s.world.Team(a.Update.EntityID); err == nil {
					out = append(out, ownerStatement(t, d, at))
				}
			}
		}
	}
	return out
}

// Standings returns the league table.
func (s *WorldService) Standings(_ context.Context, leagueID string) ([]model.StandingRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.world == nil {
		return nil, ErrNoWorld
	}
	l, err := s.world.League(leagueID)
	if err != nil {
		return nil, err
	}
	return l.Standings(s.world), nil
}

// Team returns a copy of the team and its roster.
func (s *WorldService) Team(_ context.Context, teamID string) (model.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.world == nil {
		return model.Team{}, ErrNoWorld
	}
	t, err := s.world.Team(teamID)
	if err != nil {
		return model.Team{}, err
	}
	return clone(*t)
}

// World returns a deep copy of the current world.
func (s *WorldService) World() (*model.World, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.world == nil {
		return nil, ErrNoWorld
	}
	w, err := clone(*s.world)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func clone[T any](v T) (T, error) {
	var out T
	b, err := json.Marshal(v)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(b, &out)
	return out, err
}
