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
	cnbcSourceName      = "CNBC"
	cnbcGenericTitle    = "CNBC Article about Loneliness"
	cnbcGenericAuthor   = "CNBC Staff"
	cnbcSummaryLead     = "Key statistics from the Cigna study on loneliness:"
	cnbcSummaryFallback = "CNBC article on the Cigna study of loneliness and its impact on health."
)

var (
	cnbcTitleClassExpr = regexp.MustCompile(`(?i)title|headline`)
	cnbcAuthorExpr     = regexp.MustCompile(`(?i)author|byline`)
	cnbcBodyClassExpr  = regexp.MustCompile(`(?i)article-body|content|main`)
	cnbcDateLabelExpr  = regexp.MustCompile(`(Published|Updated):?\s+([A-Za-z]{3}\s+\d{1,2},?\s+\d{4})`)
	cnbcBylineExpr     = regexp.MustCompile(`[bB]y\s+([A-Za-z\s\.]+)`)
)

// CNBC extracts loneliness-research articles from cnbc.com pages, built
// around the Cigna study coverage.
type CNBC struct {
	logger *slog.Logger
	now    func() time.Time
}

var _ Strategy = (*CNBC)(nil)

// NewCNBC builds the cnbc.com strategy.
func NewCNBC(logger *slog.Logger) *CNBC {
	return &CNBC{logger: logger, now: time.Now}
}

func (c *CNBC) Source() string {
	return cnbcSourceName
}

// Extract derives all article fields; every step falls back rather than fails.
func (c *CNBC) Extract(doc *goquery.Document, pageURL string) domain.Draft {
	title := c.extractTitle(doc)
	publicationDate := c.extractPublicationDate(doc)
	author := c.extractAuthor(doc)
	statistics := c.extractStatistics(doc)
	body := c.extractContent(doc)
	summary := c.createSummary(statistics, body)

	tags := contentTags([]string{"loneliness", "health", "Cigna", "survey"}, body)

	metrics.PagesParsed.WithLabelValues(cnbcSourceName).Inc()

	return domain.Draft{
		Title:           title,
		Summary:         summary,
		SourceName:      cnbcSourceName,
		CanonicalURL:    pageURL,
		PublicationDate: publicationDate,
		Authors:         author,
		BodyText:        body,
		Categories:      []string{"Health Research", "Corporate Studies"},
		Tags:            tags,
	}
}

func (c *CNBC) extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		return title
	}

	if heading := firstWithClass(doc, "h1, h2", cnbcTitleClassExpr); heading != nil {
		if title := strings.TrimSpace(heading.Text()); title != "" {
			return title
		}
	}

	c.debug("title not found, using generic title")
	return cnbcGenericTitle
}

func (c *CNBC) extractPublicationDate(doc *goquery.Document) time.Time {
	dateNode := doc.Find(`time[data-testid="publish-date"], span[data-testid="publish-date"], div[data-testid="publish-date"]`).First()
	if dateNode.Length() > 0 {
		text := strings.TrimSpace(dateNode.Text())
		if parsed, err := time.Parse("Jan 2 2006", text); err == nil {
			return parsed
		}
		c.debug("publish-date element unparseable, using current date", "text", text)
		return c.now()
	}

	var parsed time.Time
	var matched bool
	doc.Find("time, span, p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		lower := strings.ToLower(text)
		if !strings.Contains(lower, "published") && !strings.Contains(lower, "updated") {
			return true
		}
		match := cnbcDateLabelExpr.FindStringSubmatch(text)
		if match == nil {
			return true
		}
		matched = true
		if t, err := time.Parse("Jan 2, 2006", match[2]); err == nil {
			parsed = t
		}
		return false
	})

	if matched && !parsed.IsZero() {
		return parsed
	}

	c.debug("publication date not found, using current date")
	return c.now()
}

func (c *CNBC) extractAuthor(doc *goquery.Document) string {
	if node := firstWithClass(doc, "span, div, a", cnbcAuthorExpr); node != nil {
		if author := strings.TrimSpace(node.Text()); author != "" {
			return author
		}
	}

	var author string
	doc.Find("p, span, div").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		if !strings.Contains(strings.ToLower(text), "by ") {
			return true
		}
		if match := cnbcBylineExpr.FindStringSubmatch(text); match != nil {
			author = strings.TrimSpace(match[1])
			return false
		}
		return true
	})
	if author != "" {
		return author
	}

	c.debug("author not found, using generic attribution")
	return cnbcGenericAuthor
}

// extractStatistics keeps paragraphs and list items carrying loneliness
// figures: a percentage plus a topic keyword, or a number tied to the study
// vocabulary plus a topic keyword. Document order is preserved.
func (c *CNBC) extractStatistics(doc *goquery.Document) []string {
	var statistics []string
	doc.Find("p, li").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		switch {
		case percentExpr.MatchString(text) && topicExpr.MatchString(text):
			statistics = append(statistics, text)
		case numberExpr.MatchString(text) && studyExpr.MatchString(text) && topicExpr.MatchString(text):
			statistics = append(statistics, text)
		}
	})
	return statistics
}

func (c *CNBC) extractContent(doc *goquery.Document) string {
	if container := firstWithClass(doc, "div", cnbcBodyClassExpr); container != nil {
		if content := joinBlocks(container.Find("p, h2, h3, blockquote")); content != "" {
			return content
		}
	}

	return longParagraphs(doc, 30)
}

// createSummary prefers extracted statistics, then keyword sentences from the
// start of the body, then a fixed fallback.
func (c *CNBC) createSummary(statistics []string, body string) string {
	if len(statistics) > 0 {
		return bulletSummary(cnbcSummaryLead, statistics, 3)
	}

	if body != "" {
		sentences := splitSentences(body)
		if len(sentences) > 5 {
			sentences = sentences[:5]
		}

		var relevant []string
		for _, sentence := range sentences {
			if summaryExpr.MatchString(sentence) {
				relevant = append(relevant, sentence)
			}
			if len(relevant) >= 3 {
				break
			}
		}
		if len(relevant) > 0 {
			return strings.Join(relevant, " ")
		}
	}

	return cnbcSummaryFallback
}

func (c *CNBC) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
