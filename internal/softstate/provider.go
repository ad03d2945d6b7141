package softstate

import (
	"context"
	"errors"
	"fmt"

	"github.com/maxviazov/football-manager-sim/internal/event"
	"github.com/maxviazov/football-manager-sim/internal/model"
)

// ErrUnknownProvider is returned by NewProvider for an unrecognised name.
var ErrUnknownProvider = errors.New("unknown soft-state provider")

// Provider proposes soft-state updates from a batch of persisted events.
// Proposals are untrusted and must pass a Validator before they are applied.
type Provider interface {
	Name() string
	Analyze(ctx context.Context, events []event.Event, w *model.World) ([]Update, error)
}

// NewProvider builds the provider named in cfg. It never falls back to
// another provider; conditions the caller should know about are returned as
// warnings.
func NewProvider(ctx context.Context, cfg Config) (Provider, []string, error) {
	var warnings []string
	switch cfg.Provider {
	case ProviderMock:
		return MockProvider{}, nil, nil
	case ProviderNone:
		return Disabled{}, []string{"soft-state provider disabled; soft attributes change only through progression"}, nil
	case ProviderGemini:
		if cfg.APIKey == "" {
			return nil, nil, fmt.Errorf("%s provider requires an api key", ProviderGemini)
		}
		if cfg.Model == "" {
			cfg.Model = DefaultConfig().Model
			warnings = append(warnings, fmt.Sprintf("no model configured, using %s", cfg.Model))
		}
		p, err := NewGeminiProvider(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, nil, err
		}
		if cfg.MaxDelta > 0 {
			p.maxDelta = cfg.MaxDelta
		}
		return p, warnings, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// Disabled proposes nothing.
type Disabled struct{}

func (Disabled) Name() string { return ProviderNone }

func (Disabled) Analyze(context.Context, []event.Event, *model.World) ([]Update, error) {
	return nil, nil
}
