package softstate

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"

	"github.com/maxviazov/football-manager-sim/internal/event"
	"github.com/maxviazov/football-manager-sim/internal/model"
)

//go:embed prompts/analyze.tmpl
var analyzePrompt string

var analyzeTemplate = template.Must(template.New("analyze").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(analyzePrompt))

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("no content returned from model")

type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiProvider asks a Gemini model for updates and parses its YAML answer.
type GeminiProvider struct {
	client   *genai.Client
	model    generator
	maxDelta float64
}

func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	m := client.GenerativeModel(modelName)
	m.SetTemperature(0.2)
	return &GeminiProvider{client: client, model: m, maxDelta: DefaultMaxDelta}, nil
}

func (g *GeminiProvider) Name() string { return ProviderGemini }

func (g *GeminiProvider) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

type promptData struct {
	PlayerAttributes []string
	TeamAttributes   []string
	MaxDelta         float64
	Teams            []*model.Team
	Events           []string
}

func (g *GeminiProvider) Analyze(ctx context.Context, events []event.Event, w *model.World) ([]Update, error) {
	if len(events) == 0 {
		return nil, nil
	}
	data := promptData{
		PlayerAttributes: Attributes(EntityPlayer),
		TeamAttributes:   Attributes(EntityTeam),
		MaxDelta:         g.maxDelta,
	}
	teams := map[string]bool{}
	for _, e := range events {
		data.Events = append(data.Events, describe(e))
		if m, ok := e.(event.MatchEnded); ok {
			teams[m.HomeTeamID], teams[m.AwayTeamID] = true, true
		}
	}
	for _, id := range slices.Sorted(maps.Keys(teams)) {
		if t, err := w.Team(id); err == nil {
			data.Teams = append(data.Teams, t)
		}
	}

	var buf bytes.Buffer
	if err := analyzeTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}
	resp, err := g.model.GenerateContent(ctx, genai.Text(buf.String()))
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	return parseResponse(resp)
}

func parseResponse(resp *genai.GenerateContentResponse) ([]Update, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrEmptyResponse
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response part %T", resp.Candidates[0].Content.Parts[0])
	}
	return ParseUpdates(string(text))
}

// ParseUpdates reads the YAML answer, tolerating a surrounding code fence.
func ParseUpdates(text string) ([]Update, error) {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```yaml")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")

	var out struct {
		Updates []Update `yaml:"updates"`
	}
	if err := yaml.Unmarshal([]byte(clean), &out); err != nil {
		return nil, fmt.Errorf("parse model yaml: %w", err)
	}
	return out.Updates, nil
}

func describe(e event.Event) string {
	prefix := ""
	if m, ok := e.(event.MatchScoped); ok {
		h := m.Match()
		prefix = fmt.Sprintf("[%s %d' %d-%d] ", h.MatchID, h.Minute, h.HomeScore, h.AwayScore)
	}
	var body string
	switch v := e.(type) {
	case event.Goal:
		body = fmt.Sprintf("goal team=%s scorer=%s assist=%s penalty=%t", v.TeamID, v.ScorerID, v.AssistID, v.Penalty)
	case event.YellowCard:
		body = fmt.Sprintf("yellow card team=%s player=%s reason=%q", v.TeamID, v.PlayerID, v.Reason)
	case event.RedCard:
		body = fmt.Sprintf("red card team=%s player=%s reason=%q", v.TeamID, v.PlayerID, v.Reason)
	case event.Injury:
		body = fmt.Sprintf("injury team=%s player=%s severity=%s out=%d", v.TeamID, v.PlayerID, v.Severity, v.MatchesOut)
	case event.Substitution:
		body = fmt.Sprintf("substitution team=%s off=%s on=%s", v.TeamID, v.PlayerOffID, v.PlayerOnID)
	case event.MatchEnded:
		var best []string
		for _, id := range slices.Sorted(maps.Keys(v.PlayerRatings)) {
			if v.PlayerRatings[id] >= 7.5 {
				best = append(best, fmt.Sprintf("%s=%.1f", id, v.PlayerRatings[id]))
			}
		}
		body = fmt.Sprintf("full time home=%s away=%s standout=%s", v.HomeTeamID, v.AwayTeamID, strings.Join(best, ","))
	default:
		body = string(e.Type())
	}
	return prefix + body
}
