package render

import "github.com/charmbracelet/lipgloss"

// Styles 报告各部分的样式
type Styles struct {
	Title    lipgloss.Style
	Section  lipgloss.Style
	Label    lipgloss.Style
	Muted    lipgloss.Style
	High     lipgloss.Style
	Medium   lipgloss.Style
	Low      lipgloss.Style
	Finding  lipgloss.Style
	Indented lipgloss.Style
}

// DefaultStyles 终端配色
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#101F38")).
			Padding(0, 2).
			Bold(true),
		Section: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#101F38")).
			Bold(true).
			Underline(true),
		Label: lipgloss.NewStyle().Bold(true),
		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color("#6a737d")),
		High: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d73a49")).
			Bold(true),
		Medium: lipgloss.NewStyle().Foreground(lipgloss.Color("#e36209")),
		Low:    lipgloss.NewStyle().Foreground(lipgloss.Color("#0366d6")),
		Finding: lipgloss.NewStyle().
			Bold(true),
		Indented: lipgloss.NewStyle().PaddingLeft(4),
	}
}

// PlainStyles 不带任何样式 (重定向到文件时使用)
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title: plain, Section: plain, Label: plain, Muted: plain,
		High: plain, Medium: plain, Low: plain, Finding: plain,
		Indented: lipgloss.NewStyle().PaddingLeft(4),
	}
}
