// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jordan/content-calendar/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSchedule outputs a human-readable summary of the generated week:
// each post's slot, persona, and title.
func (p *Printer) PrintSchedule(posts []types.Post) {
	if len(posts) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Scheduled %d posts:\n\n", len(posts)))

	count := min(len(posts), maxItemsToShow)
	for i := 0; i < count; i++ {
		post := posts[i]
		title := post.Title
		if len(title) > 45 {
			title = title[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("%s  u/%s\n", post.Timestamp.Format("Mon 15:04"), post.PersonaUsername))
		sb.WriteString(fmt.Sprintf("  r/%s: %s\n", post.Subreddit, title))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(posts) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more posts", len(posts)-maxItemsToShow))
	}

	p.printBox("WEEKLY SCHEDULE", sb.String())
}

// PrintThreads outputs the comment threads, one section per post. Threaded
// replies are indented under their parent.
func (p *Printer) PrintThreads(posts []types.Post, comments []types.Comment) {
	if len(comments) == 0 {
		return
	}

	byPost := make(map[string][]types.Comment, len(posts))
	for _, c := range comments {
		byPost[c.PostID] = append(byPost[c.PostID], c)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Generated %d comments:\n", len(comments)))

	for _, post := range posts {
		thread := byPost[post.PostID]
		if len(thread) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n%s:\n", post.PostID))
		for _, c := range thread {
			indent := "  "
			if c.ParentCommentID != nil {
				indent = "    ↳ "
			}
			text := c.CommentText
			if len(text) > 40 {
				text = text[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("%su/%s: %s\n", indent, c.PersonaUsername, text))
		}
	}

	p.printBox("COMMENT THREADS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintOutcome outputs the run's terminal result: the schedule and threads
// on success, or the failure code and details.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintOutcome(outcome *types.GenerationOutcome) {
	if outcome == nil {
		return
	}

	if !outcome.OK {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("⚠ %s\n", outcome.Error))
		if outcome.Details != "" {
			details := outcome.Details
			if len(details) > 50 {
				details = details[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  %s\n", details))
		}
		p.printBox("GENERATION FAILED", strings.TrimSuffix(sb.String(), "\n"))
		return
	}

	p.PrintSchedule(outcome.Posts)
	p.PrintThreads(outcome.Posts, outcome.Comments)
}
