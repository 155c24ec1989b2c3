package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Shared heuristics over page text. The vocabulary is fixed: the pipeline
// targets social-isolation and loneliness research.
var (
	percentExpr = regexp.MustCompile(`\d+%`)
	numberExpr  = regexp.MustCompile(`\d+`)
	figureExpr  = regexp.MustCompile(`\d+%|\d+ percent|\d+ in \d+`)
	topicExpr   = regexp.MustCompile(`(?i)lone|isolat|disconnect|social`)
	studyExpr   = regexp.MustCompile(`(?i)cigna|survey|study|report`)
	summaryExpr = regexp.MustCompile(`(?i)lone|isolat|disconnect|social|cigna|health`)
)

// contentTagRule maps a content pattern to the canonical tag it adds.
type contentTagRule struct {
	pattern *regexp.Regexp
	tag     string
}

var contentTagRules = []contentTagRule{
	{regexp.MustCompile(`(?i)gen ?z`), "Gen Z"},
	{regexp.MustCompile(`(?i)millennials`), "millennials"},
	{regexp.MustCompile(`(?i)social media`), "social media"},
	{regexp.MustCompile(`(?i)mental health`), "mental health"},
}

// contentTags appends the tag of every rule matched by the body text, each at
// most once and never duplicating an existing tag.
func contentTags(base []string, body string) []string {
	tags := append([]string(nil), base...)
	for _, rule := range contentTagRules {
		if rule.pattern.MatchString(body) {
			tags = appendUnique(tags, rule.tag)
		}
	}
	return tags
}

func appendUnique(tags []string, tag string) []string {
	for _, existing := range tags {
		if strings.EqualFold(existing, tag) {
			return tags
		}
	}
	return append(tags, tag)
}

// splitSentences breaks text on sentence-ending punctuation followed by
// whitespace, keeping the punctuation with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0

	for i := 0; i+1 < len(text); i++ {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && isSpace(text[i+1]) {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				sentences = append(sentences, s)
			}
			j := i + 1
			for j < len(text) && isSpace(text[j]) {
				j++
			}
			start = j
			i = j - 1
		}
	}

	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// firstWithClass returns the first node among the selector's matches whose
// class attribute matches the expression, or nil when none does.
func firstWithClass(doc *goquery.Document, selector string, classExpr *regexp.Regexp) *goquery.Selection {
	var found *goquery.Selection
	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		class, _ := sel.Attr("class")
		if classExpr.MatchString(class) {
			found = sel
			return false
		}
		return true
	})
	return found
}

// joinBlocks concatenates the trimmed text of the selection's matches in
// document order, separated by blank lines.
func joinBlocks(sel *goquery.Selection) string {
	var blocks []string
	sel.Each(func(_ int, node *goquery.Selection) {
		if text := strings.TrimSpace(node.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})
	return strings.Join(blocks, "\n\n")
}

// longParagraphs collects every paragraph longer than minLen characters,
// filtering out short boilerplate and UI fragments.
func longParagraphs(doc *goquery.Document, minLen int) string {
	var blocks []string
	doc.Find("p").Each(func(_ int, node *goquery.Selection) {
		text := strings.TrimSpace(node.Text())
		if len(text) > minLen {
			blocks = append(blocks, text)
		}
	})
	return strings.Join(blocks, "\n\n")
}

// bulletSummary renders up to limit statistics as a bulleted synopsis under
// the given lead-in sentence.
func bulletSummary(leadIn string, stats []string, limit int) string {
	selected := stats
	if len(selected) > limit {
		selected = selected[:limit]
	}

	var b strings.Builder
	b.WriteString(leadIn)
	b.WriteString("\n\n")
	for i, stat := range selected {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("• ")
		b.WriteString(stat)
	}
	return b.String()
}
