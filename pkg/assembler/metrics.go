package assembler

import (
	"math"
	"regexp"
	"strings"

	"github.com/manasvi0103/ai-blog-platform/pkg/models"
)

// Metrics derives editorial metrics for doc. Word count comes from block
// metadata, keyword occurrences from the markup-stripped body.
func (a *Assembler) Metrics(doc *models.AssembledDocument, opts Options) models.DocumentMetrics {
	metrics := models.DocumentMetrics{WordCount: doc.WordCount}

	metrics.KeywordCount = a.keywordCount(doc.BodyMarkup, opts.FocusKeyword)

	if doc.WordCount > 0 {
		metrics.KeywordDensity = float64(metrics.KeywordCount) / float64(doc.WordCount)
	}

	if opts.TargetWordCount > 0 {
		metrics.CompletionPercent = math.Min(100, float64(doc.WordCount)/float64(opts.TargetWordCount)*100)
	}

	return metrics
}

func (a *Assembler) keywordCount(markup, keyword string) int {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return 0
	}

	words := strings.Fields(keyword)
	for i, word := range words {
		words[i] = regexp.QuoteMeta(word)
	}

	pattern, err := regexp.Compile(`(?i)\b` + strings.Join(words, `\s+`) + `\b`)
	if err != nil {
		return 0
	}

	return len(pattern.FindAllStringIndex(a.Text(markup), -1))
}
