package render

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/socialcrawl/crawlctl/internal/models"
)

type CellKind int

const (
	CellText CellKind = iota
	CellLink
	CellBadge
	CellMissing
)

// Cell is one formatted table value. Title holds the full text of a truncated value.
type Cell struct {
	Text  string
	Title string
	Link  string
	Kind  CellKind
}

// Options are the per call site display limits
type Options struct {
	MaxRows int
	// TextLimit applies to long free-text columns
	TextLimit   int
	Placeholder string
}

const shortTextLimit = 50

var (
	MainPostOptions    = Options{MaxRows: 50, TextLimit: 100, Placeholder: "N/A"}
	FilteredOptions    = Options{MaxRows: 50, TextLimit: 80, Placeholder: "N/A"}
	UserHistoryOptions = Options{MaxRows: 20, TextLimit: 100, Placeholder: ""}
	UsersDataOptions   = Options{MaxRows: 50, TextLimit: 100, Placeholder: "N/A"}
)

var badgeColumns = map[string]bool{
	"posts_count": true,
	"total_posts": true,
	"like_count":  true,
}

// Table is the display model of a record set
type Table struct {
	Title   string
	Columns []string
	Headers []string
	Rows    [][]Cell
	Total   int
	Notice  string
}

// Empty reports whether there was nothing to tabulate
func (t Table) Empty() bool {
	return t.Total == 0
}

// BuildTable applies the row cap and cell formatting rules to rows
func BuildTable(title string, rows []models.Record, columns []string, opts Options) Table {
	t := Table{
		Title:   title,
		Columns: columns,
		Total:   len(rows),
	}

	if len(rows) == 0 {
		t.Notice = fmt.Sprintf("No data available for %s", title)
		return t
	}

	t.Headers = make([]string, len(columns))
	for i, col := range columns {
		t.Headers[i] = Header(col)
	}

	shown := rows
	if opts.MaxRows > 0 && len(rows) > opts.MaxRows {
		shown = rows[:opts.MaxRows]
		t.Notice = fmt.Sprintf("Showing first %d of %d records", opts.MaxRows, len(rows))
	}

	t.Rows = make([][]Cell, 0, len(shown))
	for _, row := range shown {
		cells := make([]Cell, len(columns))
		for i, col := range columns {
			cells[i] = FormatCell(col, row[col], opts)
		}
		t.Rows = append(t.Rows, cells)
	}

	return t
}

// Header turns a column key into a display header
func Header(column string) string {
	return strings.ToUpper(strings.NewReplacer("_", " ", "-", " ").Replace(column))
}

// FormatCell applies the column rules to a single value
func FormatCell(column string, value any, opts Options) Cell {
	text, ok := stringify(value)
	if !ok {
		return Cell{Text: opts.Placeholder, Kind: CellMissing}
	}

	switch {
	case isLinkColumn(column):
		return Cell{Text: "View", Link: text, Kind: CellLink}
	case badgeColumns[column]:
		return Cell{Text: text, Kind: CellBadge}
	case isLongTextColumn(column):
		limit := opts.TextLimit
		if limit <= 0 {
			limit = shortTextLimit
		}
		if short, cut := truncate(text, limit); cut {
			return Cell{Text: short, Title: text}
		}
		return Cell{Text: text}
	default:
		short, _ := truncate(text, shortTextLimit)
		return Cell{Text: short}
	}
}

func isLinkColumn(column string) bool {
	return column == "url" || strings.HasSuffix(column, "_url") || strings.HasPrefix(column, "url_")
}

func isLongTextColumn(column string) bool {
	return strings.HasSuffix(column, "text") ||
		strings.HasSuffix(column, "content") ||
		strings.HasSuffix(column, "_post")
}

// truncate cuts s to limit runes and appends an ellipsis
func truncate(s string, limit int) (string, bool) {
	runes := []rune(s)
	if len(runes) <= limit {
		return s, false
	}
	return string(runes[:limit]) + "...", true
}

func stringify(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		if strings.TrimSpace(v) == "" {
			return "", false
		}
		return v, true
	case bool:
		if v {
			return "Yes", true
		}
		return "No", true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		return v.String(), true
	case int:
		return strconv.Itoa(v), true
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v), true
		}
		return string(b), true
	}
}

// RenderTable builds and renders a table in one step
func RenderTable(r *lipgloss.Renderer, title string, rows []models.Record, columns []string, opts Options) string {
	return Render(r, BuildTable(title, rows, columns, opts))
}

// Render draws a table model for the terminal
func Render(r *lipgloss.Renderer, t Table) string {
	noticeStyle := r.NewStyle().Foreground(lipgloss.Color("214"))

	if t.Empty() {
		return noticeStyle.Render("⚠️ " + t.Notice)
	}

	titleStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	headerStyle := r.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := r.NewStyle().Padding(0, 1)
	badgeStyle := r.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("39"))
	linkStyle := r.NewStyle().Padding(0, 1).Underline(true).Foreground(lipgloss.Color("75"))
	missingStyle := r.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("244"))

	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = cellText(cell)
		}
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(t.Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(t.Rows) || col >= len(t.Rows[row]) {
				return cellStyle
			}
			switch t.Rows[row][col].Kind {
			case CellBadge:
				return badgeStyle
			case CellLink:
				return linkStyle
			case CellMissing:
				return missingStyle
			default:
				return cellStyle
			}
		})

	var s strings.Builder
	s.WriteString(titleStyle.Render(t.Title))
	s.WriteString("\n")
	s.WriteString(tbl.String())
	if t.Notice != "" {
		s.WriteString("\n")
		s.WriteString(noticeStyle.Render(t.Notice))
	}
	return s.String()
}

func cellText(c Cell) string {
	if c.Kind == CellLink {
		return c.Text + " ↗ " + c.Link
	}
	return c.Text
}
