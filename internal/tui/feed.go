// Package tui is a terminal feed that tails the event log.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maxviazov/football-manager-sim/internal/event"
	"github.com/maxviazov/football-manager-sim/internal/repository"
	"github.com/maxviazov/football-manager-sim/internal/service"
)

const (
	pageSize   = 500
	maxLines   = 2000
	headerRows = 2
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	goalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5FD75F")).
			Bold(true)

	yellowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	redStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true)

	pressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")).
			Italic(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)
)

// Model is the bubbletea model of the feed.
type Model struct {
	src      Source
	types    []string
	interval time.Duration

	viewport viewport.Model
	ready    bool
	lines    []string
	after    int64
	err      error
	follow   bool
	skipped  int
}

type pageMsg struct {
	page repository.EventPage
	err  error
}

type tickMsg time.Time

// NewModel tails src starting after the given sequence, polling every interval.
func NewModel(src Source, after int64, interval time.Duration, types []string) Model {
	if interval <= 0 {
		interval = time.Second
	}
	return Model{src: src, after: after, interval: interval, types: types, follow: true}
}

func (m Model) Init() tea.Cmd {
	return m.poll()
}

func (m Model) poll() tea.Cmd {
	src, req := m.src, service.EventsRequest{AfterSequence: m.after, Limit: pageSize, Types: m.types}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		page, err := src.Events(ctx, req)
		return pageMsg{page: page, err: err}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit
		case "f":
			m.follow = !m.follow
			if m.follow {
				m.viewport.GotoBottom()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerRows)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerRows
		}
		m.viewport.SetContent(strings.Join(m.lines, "\n"))
		if m.follow {
			m.viewport.GotoBottom()
		}
		return m, nil

	case pageMsg:
		m.err = msg.err
		if msg.err != nil {
			return m, m.tick()
		}
		m.skipped += msg.page.Skipped
		if len(msg.page.Events) > 0 {
			for _, st := range msg.page.Events {
				m.lines = append(m.lines, style(st))
			}
			if n := len(m.lines); n > maxLines {
				m.lines = m.lines[n-maxLines:]
			}
			m.viewport.SetContent(strings.Join(m.lines, "\n"))
			if m.follow {
				m.viewport.GotoBottom()
			}
		}
		if msg.page.LastSequence > m.after {
			m.after = msg.page.LastSequence
		}
		// a full page means more is waiting
		if len(msg.page.Events)+msg.page.Skipped == pageSize {
			return m, m.poll()
		}
		return m, m.tick()

	case tickMsg:
		return m, m.poll()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func style(st event.Stored) string {
	line := Line(st)
	switch st.Event.(type) {
	case event.Goal:
		return goalStyle.Render(line)
	case event.YellowCard:
		return yellowStyle.Render(line)
	case event.RedCard:
		return redStyle.Render(line)
	case event.MediaStoryPublished, event.OwnerStatement, event.AgentNegotiation:
		return pressStyle.Render(line)
	default:
		return line
	}
}

func (m Model) View() string {
	status := fmt.Sprintf("after #%d", m.after)
	if m.skipped > 0 {
		status += fmt.Sprintf(", %d unreadable skipped", m.skipped)
	}
	if m.err != nil {
		status = redStyle.Render("error: " + m.err.Error())
	}
	header := titleStyle.Render("Match feed") + "  " + status
	if !m.ready {
		return header + "\n" + helpStyle.Render("waiting for terminal size...")
	}
	follow := "on"
	if !m.follow {
		follow = "off"
	}
	return header + "\n" + m.viewport.View() + "\n" + helpStyle.Render("q quit, f follow ("+follow+"), arrows scroll")
}

// Lines returns the rendered feed, oldest first.
func (m Model) Lines() []string { return m.lines }

// After is the cursor of the next poll: the last sequence read, shown or
// skipped.
func (m Model) After() int64 { return m.after }

// Skipped counts records the source could not decode.
func (m Model) Skipped() int { return m.skipped }
