// Package format renders the admitted item set into the delivered brief.
package format

import (
	"fmt"
	"strings"
	"time"

	"newsbrief/internal/domain/entity"
	"newsbrief/internal/usecase/score"
)

// Brief is the final material handed to the delivery channels.
type Brief struct {
	Date     time.Time
	Items    []score.ScoredItem
	Outcomes []entity.FetchOutcome
}

// Markdown renders the brief as a markdown document: a dated header,
// one section per admitted item in admission order, and a footer noting
// any sources that failed during the run.
func Markdown(b Brief) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Daily Brief — %s\n\n", b.Date.Format("2006-01-02"))

	if len(b.Items) == 0 {
		sb.WriteString("No items met the admission thresholds today.\n")
	}

	for i, si := range b.Items {
		fmt.Fprintf(&sb, "## %d. %s\n\n", i+1, si.Item.Title)
		if si.Enrichment.Summary != "" {
			sb.WriteString(si.Enrichment.Summary)
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "_%s · importance %d/10 · relevance %d/10_\n",
			si.Item.SourceName, si.Enrichment.Importance, si.Enrichment.Relevance)
		fmt.Fprintf(&sb, "%s\n\n", si.Item.URL)
	}

	if failed := failedSources(b.Outcomes); len(failed) > 0 {
		fmt.Fprintf(&sb, "---\n_Sources unavailable this run: %s_\n", strings.Join(failed, ", "))
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func failedSources(outcomes []entity.FetchOutcome) []string {
	var failed []string
	for _, out := range outcomes {
		if out.Status == entity.FetchFailed {
			failed = append(failed, out.SourceName)
		}
	}
	return failed
}

// Chunk splits text into pieces of at most limit bytes, breaking on
// newline boundaries where possible. Delivery APIs cap message length
// (Telegram: 4096 characters).
func Chunk(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n")
		if cut <= 0 {
			cut = limit
		}
		chunks = append(chunks, strings.TrimRight(text[:cut], "\n"))
		text = strings.TrimLeft(text[cut:], "\n")
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
