// Package observability provides formatted terminal output for the CLI.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/resume"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for interactive commands.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content. Long lines are
// wrapped on word boundaries.
//
//nolint:errcheck // writing to a terminal; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", inner, truncate(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(content, "\n") {
		for _, w := range wrap(line, inner) {
			fmt.Fprintf(p.out, "│ %-*s │\n", inner, w)
		}
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintTurn shows the interviewer's messages for one cycle, then any
// delivery feedback in its own box.
func (p *Printer) PrintTurn(turn interview.Turn) {
	if len(turn.Messages) > 0 {
		title := "INTERVIEWER"
		if turn.Ended {
			title = "INTERVIEWER (interview complete)"
		}
		p.printBox(title, strings.Join(turn.Messages, "\n\n"))
	}
	if turn.VoiceFeedback != "" {
		p.printBox("DELIVERY FEEDBACK", turn.VoiceFeedback)
	}
}

// PrintMatch summarises a résumé/job match analysis.
func (p *Printer) PrintMatch(m *resume.MatchResult) {
	if m == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Overall:     %3d%%\n", m.OverallMatch)
	fmt.Fprintf(&sb, "Skills:      %3d%%\n", m.SkillsMatch)
	fmt.Fprintf(&sb, "Experience:  %3d%%\n", m.ExperienceMatch)
	fmt.Fprintf(&sb, "Education:   %3d%%\n", m.EducationMatch)

	writeList(&sb, "Missing keywords:", m.MissingKeywords)
	writeList(&sb, "Recommended improvements:", m.RecommendedImprovements)

	p.printBox("MATCH ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResume summarises a parsed résumé document.
func (p *Printer) PrintResume(data map[string]any) {
	if len(data) == 0 {
		return
	}

	var sb strings.Builder
	if name, _ := data["full_name"].(string); name != "" {
		fmt.Fprintf(&sb, "Name:   %s\n", name)
	}
	if email, _ := data["email"].(string); email != "" {
		fmt.Fprintf(&sb, "Email:  %s\n", email)
	}
	if years, ok := data["total_experience_years"].(float64); ok && years > 0 {
		fmt.Fprintf(&sb, "Years:  %g\n", years)
	}
	if jobs, ok := data["employment_details"].([]any); ok {
		fmt.Fprintf(&sb, "Roles:  %d\n", len(jobs))
	}
	writeList(&sb, "Skills:", stringSlice(data["skills"]))

	if sb.Len() == 0 {
		keys := make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		writeList(&sb, "Fields:", keys)
	}

	p.printBox("PARSED RÉSUMÉ", strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n" + label + "\n")
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		fmt.Fprintf(sb, "  • %s\n", items[i])
	}
	if len(items) > maxItemsToShow {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-maxItemsToShow)
	}
}

func stringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width-3]) + "..."
}

// wrap splits line into chunks of at most width runes. Words longer than
// width are cut.
func wrap(line string, width int) []string {
	if utf8.RuneCountInString(line) <= width {
		return []string{line}
	}

	var lines []string
	var cur []rune
	for _, word := range strings.Fields(line) {
		w := []rune(word)
		for len(w) > width {
			if len(cur) > 0 {
				lines = append(lines, string(cur))
				cur = nil
			}
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(cur) == 0:
			cur = w
		case len(cur)+1+len(w) <= width:
			cur = append(append(cur, ' '), w...)
		default:
			lines = append(lines, string(cur))
			cur = w
		}
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}
