package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/opengrid/internal/db"
)

// columnGap separates table columns.
const columnGap = "  "

// minLastColumn is the narrowest the last column is truncated to.
const minLastColumn = 12

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	statusStyles = map[string]lipgloss.Style{
		db.StatusWaiting:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		db.StatusInProgress:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		db.StatusReview:         lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		db.VersionPendingReview: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		db.StatusApproved:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		db.StatusComplete:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		db.StatusOnHold:         lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		db.ProjectArchived:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
)

// printer renders command results as a table, JSON or YAML. Colour and
// width truncation only apply when writing to a terminal.
type printer struct {
	out    io.Writer
	format string
	color  bool
	width  int
}

func newPrinter(out io.Writer, format string) *printer {
	p := &printer{out: out, format: format}
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		p.color = os.Getenv("NO_COLOR") == ""
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			p.width = w
		}
	}
	return p
}

// structured reports whether results go out as JSON or YAML.
func (p *printer) structured() bool {
	return p.format == outputJSON || p.format == outputYAML
}

// emit writes v in the structured format, or calls human for table output.
func (p *printer) emit(v any, human func()) error {
	switch p.format {
	case outputJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(p.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		human()
		return nil
	}
}

// success prints a "Created project: DEMO" style confirmation.
func (p *printer) success(label, subject string) {
	fmt.Fprintf(p.out, "%s %s\n", p.style(successStyle, label+":"), subject)
}

// line prints a plain line.
func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *printer) status(text string) string {
	s, ok := statusStyles[text]
	if !ok {
		return text
	}
	return p.style(s, text)
}

// table is a column-aligned listing. statusCol marks the column whose cells
// are coloured by status, or -1.
type table struct {
	headers   []string
	rows      [][]string
	statusCol int
}

func newTable(headers ...string) *table {
	return &table{headers: headers, statusCol: -1}
}

func (t *table) withStatus(col int) *table {
	t.statusCol = col
	return t
}

func (t *table) add(cells ...string) {
	for i, c := range cells {
		if c == "" {
			cells[i] = "-"
		}
	}
	t.rows = append(t.rows, cells)
}

// render writes the table. Widths are measured on plain text so styling
// never shifts the columns.
func (p *printer) render(t *table) {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}

	last := len(widths) - 1
	if p.width > 0 {
		used := 0
		for _, w := range widths[:last] {
			used += w + len(columnGap)
		}
		if used+widths[last] > p.width {
			widths[last] = max(p.width-used, minLastColumn)
		}
	}

	p.renderRow(t.headers, widths, func(_ int, s string) string { return p.style(headerStyle, s) })
	for _, row := range t.rows {
		p.renderRow(row, widths, func(i int, s string) string {
			if i == t.statusCol {
				return p.status(s)
			}
			return s
		})
	}
}

func (p *printer) renderRow(cells []string, widths []int, style func(int, string) string) {
	var b strings.Builder
	last := len(cells) - 1
	for i, c := range cells {
		if i == last {
			b.WriteString(style(i, truncate(c, widths[i])))
			break
		}
		b.WriteString(style(i, c))
		b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(c)))
		b.WriteString(columnGap)
	}
	fmt.Fprintln(p.out, b.String())
}

// details prints aligned "Label: value" lines under a title.
func (p *printer) details(title string, fields [][2]string) {
	fmt.Fprintln(p.out, p.style(headerStyle, title))
	width := 0
	for _, f := range fields {
		width = max(width, len(f[0]))
	}
	for _, f := range fields {
		value := f[1]
		if value == "" {
			value = "-"
		}
		label := f[0] + ":" + strings.Repeat(" ", width-len(f[0]))
		fmt.Fprintf(p.out, "  %s %s\n", p.style(labelStyle, label), value)
	}
}

// truncate shortens s to n display columns, ending with an ellipsis.
func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > n {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
