package livedash

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Focus    key.Binding
	PrevTab  key.Binding
	NextTab  key.Binding
	Tree     key.Binding
	Back     key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Refresh, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.PageUp, k.PageDown, k.Focus, k.Back},
		{k.PrevTab, k.NextTab, k.Tree},
		{k.Refresh, k.Help, k.Quit},
	}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Left:     key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "left")),
		Right:    key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "right")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "scroll up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "scroll down")),
		Focus:    key.NewBinding(key.WithKeys("enter", "f"), key.WithHelp("enter", "focus chart")),
		PrevTab:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev chart")),
		NextTab:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next chart")),
		Tree:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "element tree")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh now")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type tickMsg time.Time

// historyMsg carries the outcome of the one-time history load
type historyMsg struct {
	dataset []Snapshot
	err     error
}

// snapshotMsg carries the outcome of live fetch seq
type snapshotMsg struct {
	seq  uint64
	snap Snapshot
	err  error
}

type dashboardModel struct {
	ctx          context.Context
	session      *Session
	interval     time.Duration
	keys         keyMap
	help         help.Model
	viewport     viewport.Model
	tabs         *TabSet
	selectedPane int
	focusMode    bool
	showTree     bool
	polling      bool
	width        int
	height       int
	ready        bool
}

func NewDashboard(ctx context.Context, s *Session, interval time.Duration) dashboardModel {
	if interval <= 0 {
		interval = RefreshDuration()
	}
	return dashboardModel{
		ctx:      ctx,
		session:  s,
		interval: interval,
		keys:     defaultKeyMap(),
		help:     help.New(),
		tabs:     NewTabSet(),
	}
}

func (m dashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m dashboardModel) historyCmd() tea.Cmd {
	s, ctx := m.session, m.ctx
	return func() tea.Msg {
		dataset, err := s.FetchHistory(ctx)
		return historyMsg{dataset: dataset, err: err}
	}
}

// fetchCmd numbers the fetch on the event loop before it starts so results
// can be ordered when they come back
func (m dashboardModel) fetchCmd() tea.Cmd {
	s, ctx := m.session, m.ctx
	seq := s.NextFetch()
	return func() tea.Msg {
		snap, err := s.FetchLatest(ctx)
		return snapshotMsg{seq: seq, snap: snap, err: err}
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return m.historyCmd()
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyMsg:
		if m.polling {
			return m, nil
		}
		m.session.ApplyHistory(msg.dataset, msg.err)
		m.polling = true
		return m, tea.Batch(m.fetchCmd(), m.tickCmd())

	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), m.tickCmd())

	case snapshotMsg:
		if m.session.ApplyLatest(msg.seq, msg.snap, msg.err) {
			m.tabs.Sync(m.session.Charts().Handles())
		}
		m.refreshContent()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.ready {
			m.viewport = viewport.New(msg.Width, m.bodyHeight())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = m.bodyHeight()
		}
		m.refreshContent()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m dashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		if m.ready {
			m.viewport.Height = m.bodyHeight()
		}
	case key.Matches(msg, m.keys.Refresh):
		if m.polling {
			return m, m.fetchCmd()
		}
	case key.Matches(msg, m.keys.Back):
		m.focusMode = false
		m.showTree = false
	case key.Matches(msg, m.keys.Tree):
		m.showTree = !m.showTree
	case key.Matches(msg, m.keys.Focus):
		if m.tabs.Len() > 0 {
			m.tabs.SelectTab(m.selectedPane)
			m.focusMode = true
		}
	case key.Matches(msg, m.keys.PrevTab):
		if m.focusMode {
			m.tabs.PrevTab()
			m.selectedPane = m.tabs.GetSelectedTab()
		}
	case key.Matches(msg, m.keys.NextTab):
		if m.focusMode {
			m.tabs.NextTab()
			m.selectedPane = m.tabs.GetSelectedTab()
		}
	case key.Matches(msg, m.keys.Left):
		if m.focusMode {
			m.tabs.PrevTab()
			m.selectedPane = m.tabs.GetSelectedTab()
		} else if m.selectedPane > 0 {
			m.selectedPane--
		}
	case key.Matches(msg, m.keys.Right):
		if m.focusMode {
			m.tabs.NextTab()
			m.selectedPane = m.tabs.GetSelectedTab()
		} else if m.selectedPane < m.session.Charts().Len()-1 {
			m.selectedPane++
		}
	case key.Matches(msg, m.keys.Down):
		columns := m.getGridColumns()
		if !m.focusMode && m.selectedPane+columns < m.session.Charts().Len() {
			m.selectedPane += columns
		}
	case key.Matches(msg, m.keys.Up):
		columns := m.getGridColumns()
		if !m.focusMode && m.selectedPane-columns >= 0 {
			m.selectedPane -= columns
		}
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.SetYOffset(m.viewport.YOffset + m.viewport.Height)
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.SetYOffset(m.viewport.YOffset - m.viewport.Height)
		return m, nil
	}
	m.refreshContent()
	m.scrollToSelected()
	return m, nil
}

// getGridColumns returns the number of columns in the current chart grid
func (m dashboardModel) getGridColumns() int {
	return gridColumns(m.session.Charts().Len(), m.width)
}

func (m dashboardModel) headerHeight() int {
	return 1
}

func (m dashboardModel) footerHeight() int {
	return 1 + lipgloss.Height(m.help.View(m.keys))
}

func (m dashboardModel) bodyHeight() int {
	return max(m.height-m.headerHeight()-m.footerHeight(), 1)
}

func (m *dashboardModel) refreshContent() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(RenderDocument(m.session, m.width, m.selectedPane))
}

// scrollToSelected keeps the selected chart pane inside the viewport
func (m *dashboardModel) scrollToSelected() {
	if !m.ready || m.focusMode {
		return
	}
	statsHeight := lipgloss.Height(renderStats(m.session.Document(), m.width)) + 1
	top := statsHeight + chartRow(m.selectedPane, m.getGridColumns())*(paneHeight+2)
	bottom := top + paneHeight + 2
	switch {
	case top < m.viewport.YOffset:
		m.viewport.SetYOffset(top)
	case bottom > m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(bottom - m.viewport.Height)
	}
}

func (m dashboardModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var body string
	if m.focusMode {
		body = m.tabs.SetSize(m.width, m.bodyHeight()).Render()
		body = lipgloss.NewStyle().Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(body)
	} else {
		body = m.viewport.View()
	}
	baseView := m.renderHeader() + "\n" + body + "\n" + m.renderFooter()

	if m.showTree {
		return m.renderModal(baseView)
	}
	return baseView
}

func (m dashboardModel) renderHeader() string {
	title := lipgloss.NewStyle().Foreground(colorTitle).Bold(true).Render("livedash")
	source := lipgloss.NewStyle().Foreground(colorMuted).Render(" " + m.session.Status().Source)
	return lipgloss.NewStyle().MaxWidth(m.width).Render(title + source)
}

func (m dashboardModel) renderFooter() string {
	status := m.session.Status()
	line := fmt.Sprintf("%d charts  %d cards  every %s", m.session.Charts().Len(), m.session.Cards().Len(), m.interval)
	style := lipgloss.NewStyle().Foreground(colorMuted).Background(colorBar)
	if status.LastError != nil {
		line = fmt.Sprintf("fetch failed (%d so far): %v", status.Failures, status.LastError)
		style = style.Foreground(colorFailure)
	} else if !m.polling {
		line = "loading history..."
	}
	bar := style.Width(m.width).MaxWidth(m.width).MaxHeight(1).Render(line)
	return bar + "\n" + m.help.View(m.keys)
}

// renderModal overlays the element tree of the document
func (m dashboardModel) renderModal(baseView string) string {
	modalWidth := int(float64(m.width) * 0.6)
	modalHeight := int(float64(m.height) * 0.6)

	content := lipgloss.NewStyle().MaxHeight(modalHeight - 1).Render(DocumentTree(m.session.Document()))
	modalPane := NewPane("Elements", modalWidth, modalHeight).
		SetContent(content).
		SetFooter("esc/t to close").
		SetFocused(true)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modalPane.Render(),
		lipgloss.WithWhitespaceChars("░"),
		lipgloss.WithWhitespaceForeground(colorBar),
	)
}

// RunDashboard runs the interactive dashboard until the user quits or ctx ends
func RunDashboard(ctx context.Context, s *Session, interval time.Duration) error {
	p := tea.NewProgram(NewDashboard(ctx, s, interval), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
