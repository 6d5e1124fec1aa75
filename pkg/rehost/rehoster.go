// Package rehost rewrites externally hosted images in document markup to CMS-hosted copies.
package rehost

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// MediaRehoster uploads a single remote image to the CMS.
type MediaRehoster interface {
	Rehost(ctx context.Context, sourceURL string, creds *models.Credentials) (*models.MediaItem, error)
}

// Outcome is the fate of one image occurrence during a rehost pass.
type Outcome string

const (
	OutcomeRehosted Outcome = "rehosted"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeFailed   Outcome = "failed"
)

// Image reports what happened to one image tag, in document order.
type Image struct {
	SourceURL string
	HostedURL string
	MediaID   int64
	Outcome   Outcome
	Reason    string
}

// Report is the result of a rehost pass.
type Report struct {
	Markup string
	Images []Image
}

// Summary counts outcomes.
func (r *Report) Summary() *models.MediaSummary {
	summary := &models.MediaSummary{Total: len(r.Images)}

	for _, image := range r.Images {
		switch image.Outcome {
		case OutcomeRehosted:
			summary.Rehosted++
		case OutcomeSkipped:
			summary.Skipped++
		case OutcomeFailed:
			summary.Failed++
		}
	}

	return summary
}

// Config tunes a Rehoster.
type Config struct {
	Concurrency int
	// HostedDomains are extra hosts (for example a CDN in front of the CMS)
	// whose images are already considered CMS-hosted.
	HostedDomains []string
}

// Rehoster scans markup for image tags and replaces external sources with CMS-hosted copies.
type Rehoster struct {
	media       MediaRehoster
	concurrency int
	hosted      []string
	logger      *slog.Logger
}

// NewRehoster creates a Rehoster.
func NewRehoster(logger *slog.Logger, media MediaRehoster, cfg Config) *Rehoster {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	hosted := make([]string, 0, len(cfg.HostedDomains))
	for _, domain := range cfg.HostedDomains {
		if domain = models.NormalizeHost(strings.TrimSpace(domain)); domain != "" {
			hosted = append(hosted, domain)
		}
	}

	return &Rehoster{
		media:       media,
		concurrency: concurrency,
		hosted:      hosted,
		logger:      logger.With("module", "content_rehoster"),
	}
}

// RehostMedia returns markup with every rehostable image pointing at the CMS.
// Per-image failures leave the original URL in place.
func (r *Rehoster) RehostMedia(ctx context.Context, markup string, creds *models.Credentials) string {
	return r.Rehost(ctx, markup, creds).Markup
}

type occurrence struct {
	start, end int // src attribute value span, quotes included
	quote      string
	source     string
}

// Rehost is RehostMedia with a per-image report.
func (r *Rehoster) Rehost(ctx context.Context, markup string, creds *models.Credentials) *Report {
	occurrences := scanImages(markup)
	report := &Report{Markup: markup, Images: make([]Image, 0, len(occurrences))}

	if len(occurrences) == 0 {
		return report
	}

	cmsHost := creds.Host()
	unique := make([]string, 0, len(occurrences))
	seen := map[string]int{}

	for _, found := range occurrences {
		image := Image{Outcome: OutcomeSkipped}
		if found != nil {
			image.SourceURL = found.source
		}

		image.Reason = r.skipReason(found, cmsHost)
		if image.Reason == "" {
			image.Outcome = ""

			if _, ok := seen[found.source]; !ok {
				seen[found.source] = len(unique)
				unique = append(unique, found.source)
			}
		}

		report.Images = append(report.Images, image)
	}

	if len(unique) == 0 {
		return report
	}

	results := r.rehostAll(ctx, unique, creds)

	var builder strings.Builder

	last := 0

	for i, found := range occurrences {
		image := &report.Images[i]
		if image.Outcome == OutcomeSkipped {
			continue
		}

		result := results[seen[found.source]]
		if result.err != nil {
			image.Outcome = OutcomeFailed
			image.Reason = result.err.Error()

			continue
		}

		image.Outcome = OutcomeRehosted
		image.HostedURL = result.item.SourceURL
		image.MediaID = result.item.ID

		builder.WriteString(markup[last:found.start])
		builder.WriteString(found.quote)
		builder.WriteString(escapeAttr(result.item.SourceURL, found.quote))
		builder.WriteString(found.quote)

		last = found.end
	}

	if last > 0 {
		builder.WriteString(markup[last:])
		report.Markup = builder.String()
	}

	summary := report.Summary()
	r.logger.InfoContext(ctx, "Media rehost pass completed",
		"total", summary.Total,
		"rehosted", summary.Rehosted,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)

	return report
}

type rehostResult struct {
	item *models.MediaItem
	err  error
}

func (r *Rehoster) rehostAll(ctx context.Context, sources []string, creds *models.Credentials) []rehostResult {
	results := make([]rehostResult, len(sources))

	var group errgroup.Group

	group.SetLimit(r.concurrency)

	for i, source := range sources {
		group.Go(func() error {
			item, err := r.media.Rehost(ctx, source, creds)
			if err != nil {
				r.logger.WarnContext(ctx, "Image rehost failed, keeping original url", "source_url", source, "error", err)
			}

			results[i] = rehostResult{item: item, err: err}

			return nil
		})
	}

	_ = group.Wait()

	return results
}

func (r *Rehoster) skipReason(found *occurrence, cmsHost string) string {
	if found == nil || strings.TrimSpace(found.source) == "" {
		return "missing src"
	}

	lower := strings.ToLower(strings.TrimSpace(found.source))
	if strings.HasPrefix(lower, "data:") {
		return "inline data url"
	}

	parsed, err := url.Parse(strings.TrimSpace(found.source))
	if err != nil || parsed.Host == "" {
		return "not an absolute url"
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "unsupported scheme"
	}

	host := models.NormalizeHost(parsed.Hostname())
	if host == cmsHost {
		return "already hosted on cms"
	}

	for _, hosted := range r.hosted {
		if host == hosted {
			return "already hosted on cms"
		}
	}

	return ""
}

// scanImages tokenizes markup and returns one entry per <img> start tag in
// document order. Tags without a usable src attribute yield nil entries.
func scanImages(markup string) []*occurrence {
	var found []*occurrence

	tokenizer := html.NewTokenizer(strings.NewReader(markup))
	offset := 0

	for {
		tokenType := tokenizer.Next()
		if tokenType == html.ErrorToken {
			return found
		}

		// Raw must be measured before TagName, which lowercases the buffer in place.
		start := offset
		offset += len(tokenizer.Raw())

		if tokenType != html.StartTagToken && tokenType != html.SelfClosingTagToken {
			continue
		}

		name, hasAttr := tokenizer.TagName()
		if string(name) != "img" {
			continue
		}

		source, ok := "", false
		for hasAttr && !ok {
			var key, value []byte

			key, value, hasAttr = tokenizer.TagAttr()
			if string(key) == "src" {
				source, ok = string(value), true
			}
		}

		if !ok {
			found = append(found, nil)

			continue
		}

		found = append(found, locateSource(markup[start:offset], start, source))
	}
}

// locateSource finds the span of the first src attribute value in the raw tag
// text. The span is only trusted when it decodes to the tokenizer's value.
func locateSource(tag string, base int, source string) *occurrence {
	i := 1
	for i < len(tag) && !isTagSpace(tag[i]) && tag[i] != '/' && tag[i] != '>' {
		i++
	}

	for i < len(tag) {
		for i < len(tag) && (isTagSpace(tag[i]) || tag[i] == '/') {
			i++
		}

		if i >= len(tag) || tag[i] == '>' {
			return nil
		}

		// A leading '=' belongs to the name.
		nameStart := i
		i++

		for i < len(tag) && !isTagSpace(tag[i]) && tag[i] != '/' && tag[i] != '=' && tag[i] != '>' {
			i++
		}

		name := strings.ToLower(tag[nameStart:i])

		for i < len(tag) && isTagSpace(tag[i]) {
			i++
		}

		if i >= len(tag) || tag[i] != '=' {
			continue
		}

		i++
		for i < len(tag) && isTagSpace(tag[i]) {
			i++
		}

		if i >= len(tag) {
			return nil
		}

		valueStart, quote := i, ""
		if tag[i] == '"' || tag[i] == '\'' {
			quote = tag[i : i+1]

			end := strings.IndexByte(tag[i+1:], tag[i])
			if end < 0 {
				return nil
			}

			i += end + 2
		} else {
			for i < len(tag) && !isTagSpace(tag[i]) && tag[i] != '>' {
				i++
			}
		}

		if name != "src" {
			continue
		}

		raw := tag[valueStart+len(quote) : i-len(quote)]
		if html.UnescapeString(raw) != source {
			return nil
		}

		return &occurrence{
			start:  base + valueStart,
			end:    base + i,
			quote:  quote,
			source: strings.TrimSpace(source),
		}
	}

	return nil
}

func isTagSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func escapeAttr(value, quote string) string {
	value = strings.ReplaceAll(value, "&", "&amp;")

	switch quote {
	case `"`:
		return strings.ReplaceAll(value, `"`, "&quot;")
	case "'":
		return strings.ReplaceAll(value, "'", "&#39;")
	default:
		return strings.NewReplacer(" ", "%20", ">", "%3E").Replace(value)
	}
}
