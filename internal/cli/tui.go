package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ziggurat-io/ziggurat/pkg/history"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// HistoryListModel is the bubbletea model for interactive render browsing.
type HistoryListModel struct {
	Summaries []history.Summary
	Cursor    int
	Selected  *history.Summary
	Height    int
	Offset    int
}

// NewHistoryListModel creates a new history list model.
func NewHistoryListModel(summaries []history.Summary) HistoryListModel {
	return HistoryListModel{
		Summaries: summaries,
		Cursor:    0,
		Height:    15,
		Offset:    0,
	}
}

func (m HistoryListModel) Init() tea.Cmd {
	return nil
}

func (m HistoryListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Summaries)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = &m.Summaries[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m HistoryListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Render History"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ export  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Summaries) {
		end = len(m.Summaries)
	}

	b.WriteString(summaryTable(m.Summaries[m.Offset:end], m.Cursor-m.Offset))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Summaries))))

	return b.String()
}

// summaryTable renders summaries as a bordered table. The row at cursor
// is highlighted; pass a negative cursor for plain output.
func summaryTable(summaries []history.Summary, cursor int) string {
	rows := [][]string{}
	for i, sum := range summaries {
		marker := "  "
		if i == cursor {
			marker = "▸ "
		}
		seed := "—"
		if sum.Seed != 0 {
			seed = strconv.FormatInt(sum.Seed, 10)
		}
		rows = append(rows, []string{
			marker,
			shortID(sum.ID),
			strconv.Itoa(sum.Params.Levels),
			strconv.Itoa(sum.Params.BaseSize),
			string(sum.Params.Pattern),
			sum.Params.TileColor,
			themeName(sum.Dark),
			seed,
			formatRelativeTime(sum.CreatedAt),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Levels", "Base", "Pattern", "Color", "Theme", "Seed", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row == cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			if col >= 6 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	return t.Render()
}

// shortID trims a UUID to its first segment for display.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
