package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/framefit/framefit/pkg/experiment"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// VariantListModel - Interactive variant browsing
// =============================================================================

// VariantListModel is the bubbletea model for browsing prompt variants. The
// table shows metrics; the pane below shows the selected variant's template.
type VariantListModel struct {
	Variants []experiment.Variant
	Cursor   int
	Width    int
}

// NewVariantListModel creates a new variant list model.
func NewVariantListModel(variants []experiment.Variant) VariantListModel {
	return VariantListModel{
		Variants: variants,
		Width:    80,
	}
}

func (m VariantListModel) Init() tea.Cmd {
	return nil
}

func (m VariantListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc", "enter":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Variants)-1 {
				m.Cursor++
			}
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		if m.Width < 40 {
			m.Width = 40
		}
	}
	return m, nil
}

func (m VariantListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Prompt Variants"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	rows := [][]string{}
	for i, v := range m.Variants {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		status := "active"
		if !v.Active {
			status = "off"
		}

		rows = append(rows, []string{
			cursor,
			v.ID,
			fmt.Sprintf("%.0f%%", v.Weight),
			fmt.Sprintf("%d", v.Metrics.TotalUses),
			fmt.Sprintf("%.2f", v.Metrics.AverageRating),
			fmt.Sprintf("%.0f%%", v.Metrics.SuccessRate),
			status,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Variant", "Weight", "Uses", "Rating", "Success", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= len(m.Variants) {
				return lipgloss.NewStyle()
			}
			v := m.Variants[row]
			base := lipgloss.NewStyle()
			if row == m.Cursor {
				base = base.Bold(true)
				if v.Active {
					return base.Foreground(colorGreen)
				}
				return base.Foreground(colorDim)
			}
			if !v.Active {
				return base.Foreground(colorDim)
			}
			return base.Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")

	selected := m.Variants[m.Cursor]
	b.WriteString(StyleHighlight.Render(selected.Name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(wrapText(selected.Template, m.Width-4)))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Variants))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// wrapText soft-wraps text at width, preserving existing newlines.
func wrapText(s string, width int) string {
	if width < 20 {
		width = 20
	}
	var out []string
	for _, line := range strings.Split(s, "\n") {
		for len(line) > width {
			cut := strings.LastIndex(line[:width], " ")
			if cut <= 0 {
				cut = width
			}
			out = append(out, line[:cut])
			line = strings.TrimLeft(line[cut:], " ")
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
