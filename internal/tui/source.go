package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/maxviazov/football-manager-sim/internal/event"
	"github.com/maxviazov/football-manager-sim/internal/repository"
	"github.com/maxviazov/football-manager-sim/internal/service"
)

// Source yields events after a cursor.
type Source interface {
	Events(ctx context.Context, req service.EventsRequest) (repository.EventPage, error)
}

// HTTPSource reads the event log of a running server.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{BaseURL: baseURL, Client: &http.Client{Timeout: 5 * time.Second}}
}

type wireEvent struct {
	Sequence int64           `json:"sequence"`
	Type     event.Type      `json:"type"`
	Event    json.RawMessage `json:"event"`
}

func (s *HTTPSource) Events(ctx context.Context, req service.EventsRequest) (repository.EventPage, error) {
	q := url.Values{}
	q.Set("after", strconv.FormatInt(req.AfterSequence, 10))
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	for _, t := range req.Types {
		q.Add("types", t)
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/api/v1/events?"+q.Encode(), nil)
	if err != nil {
		return repository.EventPage{}, err
	}
	resp, err := s.Client.Do(hreq)
	if err != nil {
		return repository.EventPage{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return repository.EventPage{}, fmt.Errorf("events: unexpected status %s", resp.Status)
	}

	var body struct {
		Events  []wireEvent `json:"events"`
		Skipped int         `json:"skipped"`
		Next    int64       `json:"next_after_sequence"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return repository.EventPage{}, fmt.Errorf("decode events: %w", err)
	}
	page := repository.EventPage{Events: make([]event.Stored, 0, len(body.Events)), Skipped: body.Skipped, LastSequence: body.Next}
	for _, w := range body.Events {
		e, err := event.Decode(w.Type, w.Event)
		if err != nil {
			page.Skipped++
			continue
		}
		page.Events = append(page.Events, event.Stored{Sequence: w.Sequence, Event: e})
	}
	return page, nil
}
