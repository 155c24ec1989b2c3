package scrape

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"echosignal/internal/domain"
	"echosignal/internal/metrics"
)

const (
	rootsSourceName      = "Roots Of Loneliness"
	rootsGenericTitle    = "Loneliness Statistics"
	rootsAuthors         = "Roots Of Loneliness Team"
	rootsSummaryLead     = "Key statistics on loneliness:"
	rootsSummaryFallback = "Statistics on loneliness and social connection."
)

var (
	rootsUpdatedExpr   = regexp.MustCompile(`Updated: ([A-Za-z]+ \d+, \d{4})`)
	rootsBodyClassExpr = regexp.MustCompile(`(?i)content|main|article`)
)

// Roots extracts the statistics round-ups published on rootsofloneliness.com.
type Roots struct {
	logger *slog.Logger
	now    func() time.Time
}

var _ Strategy = (*Roots)(nil)

// NewRoots builds the rootsofloneliness.com strategy.
func NewRoots(logger *slog.Logger) *Roots {
	return &Roots{logger: logger, now: time.Now}
}

func (r *Roots) Source() string {
	return rootsSourceName
}

// Extract derives all article fields; every step falls back rather than fails.
func (r *Roots) Extract(doc *goquery.Document, pageURL string) domain.Draft {
	title := r.extractTitle(doc)
	publicationDate := r.extractPublicationDate(doc)
	statistics := r.extractStatistics(doc)
	body := r.extractContent(doc)
	summary := r.createSummary(statistics)

	tags := contentTags([]string{"loneliness", "statistics", "social isolation", "mental health"}, body)

	metrics.PagesParsed.WithLabelValues(rootsSourceName).Inc()

	return domain.Draft{
		Title:           title,
		Summary:         summary,
		SourceName:      rootsSourceName,
		CanonicalURL:    pageURL,
		PublicationDate: publicationDate,
		Authors:         rootsAuthors,
		BodyText:        body,
		Categories:      []string{"Statistics", "Loneliness Research"},
		Tags:            tags,
	}
}

func (r *Roots) extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		return title
	}

	r.debug("title not found, using generic title")
	return rootsGenericTitle
}

// extractPublicationDate looks for the "Updated: Month Day, Year" marker the
// site places near the top of each statistics page.
func (r *Roots) extractPublicationDate(doc *goquery.Document) time.Time {
	var dateText string
	doc.Find("p, div, span").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(sel.Text()), "updated") {
			dateText = sel.Text()
			return false
		}
		return true
	})

	if dateText != "" {
		if match := rootsUpdatedExpr.FindStringSubmatch(dateText); match != nil {
			if parsed, err := time.Parse("January 2, 2006", match[1]); err == nil {
				return parsed
			}
		}
	}

	r.debug("publication date not found, using current date")
	return r.now()
}

// extractStatistics keeps every list item or paragraph carrying a figure:
// a percentage, "N percent", or an "N in M" ratio. No keyword gate — the
// whole site is about loneliness. Document order is preserved.
func (r *Roots) extractStatistics(doc *goquery.Document) []string {
	var statistics []string
	doc.Find("li, p").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if figureExpr.MatchString(text) {
			statistics = append(statistics, text)
		}
	})
	return statistics
}

func (r *Roots) extractContent(doc *goquery.Document) string {
	container := doc.Find("article").First()
	if container.Length() == 0 {
		if byClass := firstWithClass(doc, "div", rootsBodyClassExpr); byClass != nil {
			container = byClass
		}
	}

	if container.Length() > 0 {
		if content := joinBlocks(container.Find("p, h2, h3, ul, ol")); content != "" {
			return content
		}
	}

	return longParagraphs(doc, 50)
}

// createSummary bullets up to five statistics, or falls back to a fixed
// sentence when the page yielded none.
func (r *Roots) createSummary(statistics []string) string {
	if len(statistics) == 0 {
		return rootsSummaryFallback
	}
	return bulletSummary(rootsSummaryLead, statistics, 5)
}

func (r *Roots) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
