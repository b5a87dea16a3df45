package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/dagatna/internal/cleanup"
	"github.com/alexanderramin/dagatna/internal/cli/formatter"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	gridCols = 60
	gridRows = 16

	// labelAlphabet skips q, which quits.
	labelAlphabet = "abcdefghijklmnoprstuvwxyz"
)

// maxLabels is the largest pool the play screen can label.
var maxLabels = len([]rune(labelAlphabet))

// playTickMsg drives the render poll.
type playTickMsg time.Time

// sessionFinishedMsg carries the result emitted by the runner.
type sessionFinishedMsg struct {
	result cleanup.Result
}

type playKeyMap struct {
	Clear key.Binding
	Quit  key.Binding
	Done  key.Binding
	Again key.Binding
}

func defaultPlayKeys() playKeyMap {
	return playKeyMap{
		Clear: key.NewBinding(key.WithKeys(strings.Split(labelAlphabet, "")...), key.WithHelp("a-z", "clear item")),
		Quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "give up")),
		Done:  key.NewBinding(key.WithKeys("enter", "q", "esc", "ctrl+c"), key.WithHelp("enter", "continue")),
		Again: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "play again")),
	}
}

// playModel renders a running cleanup session. The runner owns the engine
// callbacks; the model only reads state and forwards clears.
type playModel struct {
	runner  *cleanup.Runner
	session *cleanup.Session
	results <-chan cleanup.Result
	keys    playKeyMap

	labels  map[string]rune
	byLabel map[rune]string

	result    *cleanup.Result
	abandoned bool
	again     bool
	missed    int
	width     int
}

func newPlayModel(runner *cleanup.Runner, results <-chan cleanup.Result) *playModel {
	m := &playModel{
		runner:  runner,
		session: runner.Session(),
		results: results,
		keys:    defaultPlayKeys(),
		labels:  make(map[string]rune),
		byLabel: make(map[rune]string),
	}
	m.syncLabels()
	return m
}

func (m *playModel) Init() tea.Cmd {
	return tea.Batch(m.tick(), waitForResult(m.results))
}

func (m *playModel) tick() tea.Cmd {
	return tea.Tick(m.session.Config().PollInterval, func(t time.Time) tea.Msg {
		return playTickMsg(t)
	})
}

func waitForResult(results <-chan cleanup.Result) tea.Cmd {
	if results == nil {
		return nil
	}
	return func() tea.Msg {
		res, ok := <-results
		if !ok {
			return nil
		}
		return sessionFinishedMsg{result: res}
	}
}

func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case playTickMsg:
		if m.result != nil {
			return m, nil
		}
		m.syncLabels()
		return m, m.tick()

	case sessionFinishedMsg:
		res := msg.result
		m.result = &res
		return m, nil

	case tea.KeyMsg:
		if m.result != nil {
			if key.Matches(msg, m.keys.Again) {
				m.again = true
				return m, tea.Quit
			}
			if key.Matches(msg, m.keys.Done) {
				return m, tea.Quit
			}
			return m, nil
		}
		if key.Matches(msg, m.keys.Quit) {
			m.abandoned = true
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.Clear) {
			m.clearLabel([]rune(msg.String())[0])
		}
		return m, nil
	}
	return m, nil
}

func (m *playModel) clearLabel(r rune) {
	id, ok := m.byLabel[r]
	if !ok {
		return
	}
	if err := m.runner.Clear(id); err != nil {
		m.missed++
	}
	m.syncLabels()
}

// syncLabels keeps one letter per live item. Letters stay attached to their
// item for its whole life and are recycled once it is gone.
func (m *playModel) syncLabels() {
	items := m.session.Items()
	live := make(map[string]bool, len(items))
	for _, it := range items {
		live[it.ID] = true
	}
	for id, r := range m.labels {
		if !live[id] {
			delete(m.labels, id)
			delete(m.byLabel, r)
		}
	}
	for _, it := range items {
		if _, ok := m.labels[it.ID]; ok {
			continue
		}
		for _, r := range labelAlphabet {
			if _, taken := m.byLabel[r]; !taken {
				m.labels[it.ID] = r
				m.byLabel[r] = it.ID
				break
			}
		}
	}
}

func (m *playModel) ShortHelp() []key.Binding {
	if m.result != nil {
		return []key.Binding{m.keys.Done, m.keys.Again}
	}
	return []key.Binding{m.keys.Clear, m.keys.Quit}
}

func (m *playModel) View() string {
	cfg := m.session.Config()
	if m.result != nil {
		body := formatter.FormatResult(*m.result, cfg.Tiers, cfg.RewardCap)
		return formatter.RenderBox("Time's up", strings.TrimRight(body, "\n")) + "\n" + m.hints() + "\n"
	}

	now := m.runner.Clock().Now()
	total := int(cfg.Duration / time.Second)
	cleared := m.session.ItemsCleared()
	status := fmt.Sprintf("%s  %s  %s %s",
		formatter.StyleHeader.Render("OCEAN CLEANUP"),
		formatter.RenderCountdown(m.session.DisplaySeconds(now), total),
		formatter.Bold(fmt.Sprint(cleared)),
		formatter.Dim("cleared"),
	)

	var b strings.Builder
	b.WriteString(status + "\n")
	b.WriteString(m.renderGrid(now) + "\n")
	b.WriteString(formatter.FormatTierProgress(cleared, cfg.Tiers) + "\n")
	b.WriteString(m.hints() + "\n")
	return b.String()
}

func (m *playModel) hints() string {
	hints := make([]string, 0, 2)
	for _, kb := range m.ShortHelp() {
		hints = append(hints, formatter.Dim(kb.Help().Key+": "+kb.Help().Desc))
	}
	return strings.Join(hints, "  ")
}

func (m *playModel) renderGrid(now time.Time) string {
	cells := make([][]string, gridRows)
	for r := range cells {
		cells[r] = make([]string, gridCols)
		for c := range cells[r] {
			if (r+c)%5 == 0 {
				cells[r][c] = formatter.StyleWater.Render("~")
			} else {
				cells[r][c] = " "
			}
		}
	}

	for _, it := range m.session.Items() {
		col := min(max(int(it.X/100*gridCols), 0), gridCols-2)
		row := min(max(int(it.Y/100*gridRows), 0), gridRows-1)
		style := formatter.FadeStyle(cleanup.Fade(it, now))
		label := "·"
		if r, ok := m.labels[it.ID]; ok {
			label = string(r)
		}
		cells[row][col] = style.Render(label)
		cells[row][col+1] = style.Render(it.Category.Glyph)
	}

	lines := make([]string, gridRows)
	for r := range cells {
		lines[r] = strings.Join(cells[r], "")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(formatter.ColorWater).
		Render(strings.Join(lines, "\n"))
}
