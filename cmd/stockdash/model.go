package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stockdash/internal/viewstate"
)

// selector is the part of *query.Controller the UI drives.
type selector interface {
	SetSelection(ticker string) error
	Refresh() error
}

// Messages.
type viewMsg viewstate.ViewState
type tickMsg time.Time

// tickCmd re-renders periodically so "N minutes ago" stays current.
func tickCmd() tea.Cmd {
	return tea.Tick(30*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForView delivers the next published view state as a viewMsg.
func waitForView(ch <-chan viewstate.ViewState) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return nil
		}
		return viewMsg(v)
	}
}

type model struct {
	ctrl    selector
	updates <-chan viewstate.ViewState
	view    viewstate.ViewState
	popular []string

	input    textinput.Model
	editing  bool
	spinner  spinner.Model
	viewport viewport.Model
	ready    bool
	width    int
	height   int
	notice   string

	logger *slog.Logger
	now    func() time.Time
}

func newModel(ctrl selector, updates <-chan viewstate.ViewState, popular []string, logger *slog.Logger) model {
	in := textinput.New()
	in.Prompt = "ticker> "
	in.Placeholder = "e.g. AAPL"
	in.CharLimit = 16

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		ctrl:    ctrl,
		updates: updates,
		view:    viewstate.New(),
		popular: popular,
		input:   in,
		spinner: sp,
		logger:  logger,
		now:     time.Now,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForView(m.updates), m.spinner.Tick, tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.editing {
			return m.updateInput(msg)
		}
		switch key := msg.String(); key {
		case "q":
			return m, tea.Quit
		case "/", "t":
			m.editing = true
			m.notice = ""
			m.input.Reset()
			return m, m.input.Focus()
		case "r", "ctrl+r":
			m.command(m.ctrl.Refresh())
			return m, nil
		default:
			if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
				if i := int(key[0] - '1'); i < len(m.popular) {
					m.command(m.ctrl.SetSelection(m.popular[i]))
				}
				return m, nil
			}
		}

	case viewMsg:
		m.view = viewstate.ViewState(msg)
		m.refreshContent()
		return m, waitForView(m.updates)

	case tickMsg:
		m.refreshContent()
		return m, tickCmd()

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		if m.view.Loading() {
			m.refreshContent()
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerH := 2
		footerH := 1
		vpHeight := max(m.height-headerH-footerH, 1)
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshContent()
		return m, nil
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.editing = false
		m.input.Blur()
		if v := strings.TrimSpace(m.input.Value()); v != "" {
			m.command(m.ctrl.SetSelection(v))
		}
		return m, nil
	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// command records the outcome of a controller call for the header.
func (m *model) command(err error) {
	if err != nil {
		m.notice = err.Error()
		m.logger.Warn("command rejected", "error", err)
		return
	}
	m.notice = ""
}

func (m *model) refreshContent() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(renderContent(m.view, m.width, m.now(), m.spinner.View()))
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	status := "ready"
	if m.view.Loading() {
		status = m.spinner.View() + " loading"
	}
	selection := m.view.Selection
	if selection == "" {
		selection = "-"
	}
	headerText := fmt.Sprintf(" stockdash  %s    cycle %d    %s ", selection, m.view.Token, status)
	headerBar := headerStyle.Render(padOrTrunc(headerText, m.width))

	var second string
	switch {
	case m.editing:
		second = m.input.View()
	case m.notice != "":
		second = failStyle.Render(padOrTrunc(" "+m.notice, m.width))
	default:
		second = dimStyle.Render(padOrTrunc(" "+popularLine(m.popular, m.view.Selection), m.width))
	}

	pct := m.viewport.ScrollPercent() * 100
	footerLeft := " q quit  / ticker  r refresh  1-9 popular  pgup/dn scroll"
	footerRight := fmt.Sprintf("%.0f%% ", pct)
	gap := max(m.width-len(footerLeft)-len(footerRight), 0)
	footerBar := footerStyle.Render(padOrTrunc(footerLeft+strings.Repeat(" ", gap)+footerRight, m.width))

	return headerBar + "\n" + second + "\n" + m.viewport.View() + "\n" + footerBar
}

func popularLine(popular []string, selected string) string {
	parts := make([]string, 0, len(popular))
	for i, t := range popular {
		if i >= 9 {
			break
		}
		label := fmt.Sprintf("%d %s", i+1, t)
		if t == selected {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "  ")
}

// padOrTrunc pads s with spaces or truncates it to exactly width cells.
func padOrTrunc(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := lipgloss.Width(s)
	if w > width {
		return truncateCells(s, width)
	}
	return s + strings.Repeat(" ", width-w)
}

func truncateCells(s string, width int) string {
	var b strings.Builder
	n := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if n+rw > width {
			break
		}
		b.WriteRune(r)
		n += rw
	}
	return b.String()
}
