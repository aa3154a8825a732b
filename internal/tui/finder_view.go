package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/seanblong/repofinder/internal/finder"
	"github.com/seanblong/repofinder/pkg/models"
)

const defaultWrap = 72

type finderModel struct {
	ctx       context.Context
	ctrl      *finder.Controller
	languages []finder.Language
	cursor    int
	spinner   spinner.Model
	style     string
	renderer  *glamour.TermRenderer
	width     int
	quitting  bool
	log       zerolog.Logger
}

// fetchedMsg carries the outcome of one search back into the update loop.
type fetchedMsg struct {
	req finder.Request
	res models.SearchResult
	err error
}

func newFinderModel(ctx context.Context, config TUIConfig) *finderModel {
	if ctx == nil {
		ctx = context.Background()
	}
	ctrl := config.Controller
	if ctrl == nil {
		ctrl = finder.New(nil)
	}
	style := config.GlamourStyle
	if style == "" {
		style = "dark"
	}

	m := &finderModel{
		ctx:       ctx,
		ctrl:      ctrl,
		languages: finder.Languages(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(loadingStyle)),
		style:     style,
		log:       config.Logger,
	}
	for i, l := range m.languages {
		if l == ctrl.Language() {
			m.cursor = i
		}
	}
	m.resize(defaultWrap)
	return m
}

func (m *finderModel) resize(width int) {
	m.width = width
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		m.log.Warn().Err(err).Str("style", m.style).Msg("glamour renderer unavailable")
		m.renderer = nil
		return
	}
	m.renderer = r
}

func (m *finderModel) Init() tea.Cmd {
	return nil
}

// fetch starts a search for the selected language. Overlapping fetches are allowed;
// the controller drops results of all but the latest.
func (m *finderModel) fetch() tea.Cmd {
	req := m.ctrl.Begin()
	return tea.Batch(m.spinner.Tick, m.search(req))
}

func (m *finderModel) search(req finder.Request) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		res, err := ctrl.Search(ctx, req)
		return fetchedMsg{req: req, res: res, err: err}
	}
}

func (m *finderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.selectCursor()
			}

		case "down", "j":
			if m.cursor < len(m.languages)-1 {
				m.cursor++
				m.selectCursor()
			}

		case "enter", "f":
			return m, m.fetch()

		case "r":
			if m.ctrl.View().Kind == finder.KindFound {
				return m, m.fetch()
			}
		}

	case fetchedMsg:
		m.ctrl.Complete(msg.req, msg.res, msg.err)

	case spinner.TickMsg:
		if m.ctrl.View().Kind != finder.KindLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		w := msg.Width - 8
		if w < 20 {
			w = 20
		}
		if w > defaultWrap {
			w = defaultWrap
		}
		if w != m.width {
			m.resize(w)
		}
	}

	return m, nil
}

func (m *finderModel) selectCursor() {
	if err := m.ctrl.SelectLanguage(m.languages[m.cursor].String()); err != nil {
		m.log.Error().Err(err).Msg("select language")
	}
}

func (m *finderModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(headerStyle.Render("GitHub Repository Finder"))
	b.WriteString("\n")

	selected := m.ctrl.Language()
	for i, l := range m.languages {
		cursor := " "
		style := itemStyle
		if i == m.cursor {
			cursor = ">"
			style = selectedItemStyle
		}
		line := cursor + " " + l.Label()
		if l == selected {
			line += dimStyle.Render(" (selected)")
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	b.WriteString(buttonStyle.Render(finder.FetchLabel))
	b.WriteString("\n")

	v := m.ctrl.View()
	switch v.Kind {
	case finder.KindLoading:
		b.WriteString("\n")
		b.WriteString(m.spinner.View() + " " + loadingStyle.Render(v.Text()))
		b.WriteString("\n")
	case finder.KindError:
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(v.Text()))
		b.WriteString("\n")
	case finder.KindEmpty:
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(v.Text()))
		b.WriteString("\n")
	case finder.KindFound:
		b.WriteString(m.card(*v.Repository))
		b.WriteString("\n")
	}

	help := "↑/k up • ↓/j down • enter/f fetch • q quit"
	if v.Kind == finder.KindFound {
		help = "↑/k up • ↓/j down • enter/f fetch • r refresh • q quit"
	}
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func (m *finderModel) card(r models.Repository) string {
	var b strings.Builder
	b.WriteString(repoNameStyle.Render(r.Name))
	b.WriteString("\n")

	if desc := strings.TrimSpace(r.Description); desc != "" {
		b.WriteString(m.renderDescription(desc))
		b.WriteString("\n")
	}

	labels := finder.Badges(r)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		starsBadge.Render(labels[0]),
		forksBadge.Render(labels[1]),
		issuesBadge.Render(labels[2]),
	))
	b.WriteString("\n")
	b.WriteString(buttonStyle.Render(finder.RefreshLabel))

	return cardStyle.Render(b.String())
}

func (m *finderModel) renderDescription(desc string) string {
	if m.renderer == nil {
		return desc
	}
	rendered, err := m.renderer.Render(desc)
	if err != nil {
		return desc
	}
	return strings.Trim(rendered, "\n")
}
