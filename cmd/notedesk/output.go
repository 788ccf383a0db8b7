package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/debemdeboas/notedesk/internal/app"
	"github.com/debemdeboas/notedesk/internal/config"
)

var (
	promptStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	titleStyle       = lipgloss.NewStyle().Bold(true)
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	deletedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	snippetStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	placeholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	paneStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// formatView draws the whole frame: search state, list and editor.
func formatView(v app.View) string {
	if v.Status != "" {
		return formatStatus(v) + "\n"
	}

	var b strings.Builder
	b.WriteString(formatHeader(v))
	b.WriteString("\n")
	b.WriteString(formatList(v))
	b.WriteString("\n")
	b.WriteString(formatEditor(v))
	return b.String()
}

func formatStatus(v app.View) string {
	if v.Failed {
		return errorStyle.Render(v.Status)
	}
	return placeholderStyle.Render(v.Status)
}

func formatHeader(v app.View) string {
	check := "[ ]"
	if v.IncludeDeleted {
		check = "[x]"
	}
	header := fmt.Sprintf("%s %s", check, config.LabelIncludeDeleted)
	if v.AppliedQuery != "" {
		header += fmt.Sprintf("  search: %q", v.AppliedQuery)
	}
	return titleStyle.Render(header) + "\n"
}

// formatList renders one block per visible post.
func formatList(v app.View) string {
	if v.Status != "" {
		return formatStatus(v) + "\n"
	}
	if len(v.Items) == 0 {
		return placeholderStyle.Render(v.EmptyMessage) + "\n"
	}

	var b strings.Builder
	for _, item := range v.Items {
		marker := "  "
		title := titleStyle.Render(item.Title)
		if item.Selected {
			marker = "> "
			title = selectedStyle.Render(item.Title)
		}
		if item.Deleted {
			title = deletedStyle.Render(item.Title)
		}

		fmt.Fprintf(&b, "%s%s  %s\n", marker, title, snippetStyle.Render("#"+item.Token))
		fmt.Fprintf(&b, "    %s\n", snippetStyle.Render(item.Snippet))
	}
	return b.String()
}

// formatEditor renders the editor pane, or its placeholder.
func formatEditor(v app.View) string {
	if v.Status != "" {
		return formatStatus(v) + "\n"
	}

	e := v.Editor
	if !e.Open {
		return placeholderStyle.Render(e.Placeholder) + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Title:"), e.Title)
	fmt.Fprintf(&b, "%s\n%s\n\n", titleStyle.Render("Body:"), e.Body)
	fmt.Fprintf(&b, "%s  %s  %s",
		button(e.SaveLabel, e.SaveEnabled),
		button(config.LabelClose, e.CloseEnabled),
		button(e.DeleteLabel, e.DeleteEnabled),
	)
	if e.Error != "" {
		fmt.Fprintf(&b, "\n%s", errorStyle.Render(e.Error))
	}
	return paneStyle.Render(b.String()) + "\n"
}

func button(label string, enabled bool) string {
	if !enabled {
		return placeholderStyle.Render("(" + label + ")")
	}
	return "[" + label + "]"
}
