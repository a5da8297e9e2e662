package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/socialcrawl/crawlctl/internal/models"
)

type field struct {
	label string
	value string
}

func panel(r *lipgloss.Renderer, title string, fields []field, footer string) string {
	titleStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle := r.NewStyle().Bold(true)
	footerStyle := r.NewStyle().Foreground(lipgloss.Color("82"))
	boxStyle := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1)

	var body strings.Builder
	body.WriteString(titleStyle.Render(title))
	for _, f := range fields {
		body.WriteString("\n")
		body.WriteString(labelStyle.Render(f.label+":") + " " + f.value)
	}
	if footer != "" {
		body.WriteString("\n")
		body.WriteString(footerStyle.Render(footer))
	}

	return boxStyle.Render(body.String())
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// TopicResults renders the summary of a finished topic crawl
func TopicResults(r *lipgloss.Renderer, data models.TopicCrawlResult) string {
	return panel(r, "🎯 Topic Crawl Results", []field{
		{"Topic", data.Topic},
		{"Posts Found", fmt.Sprintf("%d", data.PostsCount)},
	}, fmt.Sprintf("Results saved to: %s", data.OutputFile))
}

// UsersResults renders the summary of a finished users crawl
func UsersResults(r *lipgloss.Renderer, data models.UsersCrawlSummary) string {
	footer := ""
	if data.OutputFile != "" {
		footer = fmt.Sprintf("Results saved to: %s", data.OutputFile)
	}
	return panel(r, "👥 Users Crawl Results", []field{
		{"Total Users", fmt.Sprintf("%d", data.TotalUsers)},
		{"Successful", fmt.Sprintf("%d", data.SuccessfulCrawls)},
		{"Failed", fmt.Sprintf("%d", data.FailedCrawls)},
		{"Filter", orDefault(data.KeywordFilter, "All")},
	}, footer)
}

// FilterResults renders the outcome of a symptom-group filter followed by the matching posts
func FilterResults(r *lipgloss.Renderer, data models.FilterResult) string {
	summary := panel(r, "🔎 Filter Results", []field{
		{"Symptom Group", data.SymptomGroup},
		{"Posts Found", fmt.Sprintf("%d", data.PostsCount)},
	}, fmt.Sprintf("Filtered posts saved to: %s", data.OutputFile))

	posts := RenderTable(r, "Filtered Posts", data.Posts, PostColumns(data.Posts), FilteredOptions)
	return summary + "\n" + posts
}

// UsersCrawlResults renders the summary of collecting users from filtered posts
func UsersCrawlResults(r *lipgloss.Renderer, data models.UsersCrawlResult) string {
	usernames := "N/A"
	if len(data.Usernames) > 0 {
		usernames = strings.Join(data.Usernames, ", ")
	}
	return panel(r, "👥 Users Crawl Results", []field{
		{"Total Users", fmt.Sprintf("%d", data.TotalUsers)},
		{"Successful", fmt.Sprintf("%d", data.SuccessfulCrawls)},
		{"Failed", fmt.Sprintf("%d", data.FailedCrawls)},
		{"Total Posts", fmt.Sprintf("%d", data.TotalPosts)},
		{"Usernames", usernames},
	}, fmt.Sprintf("Results saved to: %s", orDefault(data.OutputFile, "N/A")))
}

var preferredPostColumns = []string{"username", "text", "timestamp", "url", "topic", "symptom_group"}

// PostColumns picks the known post columns present in rows, in display order
func PostColumns(rows []models.Record) []string {
	if len(rows) == 0 {
		return preferredPostColumns[:5]
	}
	var cols []string
	for _, col := range preferredPostColumns {
		if _, ok := rows[0][col]; ok {
			cols = append(cols, col)
		}
	}
	if len(cols) == 0 {
		return preferredPostColumns[:5]
	}
	return cols
}
