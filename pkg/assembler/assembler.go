// Package assembler turns ordered content blocks into the canonical publishable document.
package assembler

import (
	"errors"
	"html"
	"sort"
	"strconv"
	"strings"

	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	defaultAltText        = "Blog image"
	untitledTitle         = "Untitled Draft"
	metaDescriptionLength = 160
)

var (
	// ErrNoBlocks is returned when there is nothing to assemble.
	ErrNoBlocks = errors.New("no selected content blocks")
	// ErrEmptyDocument is returned when no block produced any markup.
	ErrEmptyDocument = errors.New("assembled document has no content")
)

// Options carries draft-level inputs to assembly.
type Options struct {
	FocusKeyword    string
	TargetWordCount int
	MetaTitle       string
	MetaDescription string
	DefaultAltText  string
}

// Assembler renders blocks to markup. It holds only immutable sanitizer
// policies and is safe for concurrent use.
type Assembler struct {
	inline *bluemonday.Policy
	strip  *bluemonday.Policy
}

// New creates an Assembler.
func New() *Assembler {
	return &Assembler{
		inline: bluemonday.UGCPolicy(),
		strip:  bluemonday.StrictPolicy(),
	}
}

// Select returns the selected blocks ordered by (order, id).
func Select(blocks []*models.ContentBlock) []*models.ContentBlock {
	selected := make([]*models.ContentBlock, 0, len(blocks))

	for _, block := range blocks {
		if block != nil && block.Selected {
			selected = append(selected, block)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].Order != selected[j].Order {
			return selected[i].Order < selected[j].Order
		}

		return selected[i].ID < selected[j].ID
	})

	return selected
}

// Assemble renders blocks, in the given order, into an AssembledDocument.
// Callers are expected to pass the output of Select.
func (a *Assembler) Assemble(blocks []*models.ContentBlock, opts Options) (*models.AssembledDocument, error) {
	if len(blocks) == 0 {
		return nil, ErrNoBlocks
	}

	parts := make([]string, 0, len(blocks))
	title := ""
	firstParagraph := ""
	wordCount := 0

	for _, block := range blocks {
		wordCount += block.Metadata.WordCount

		if title == "" && block.Kind == models.BlockKindHeading && block.Level == 1 {
			title = strings.TrimSpace(a.Text(block.Content))
		}

		if firstParagraph == "" && block.Kind == models.BlockKindParagraph {
			firstParagraph = a.Text(block.Content)
		}

		markup := a.render(block, opts)
		if markup != "" {
			parts = append(parts, markup)
		}
	}

	if len(parts) == 0 {
		return nil, ErrEmptyDocument
	}

	if title == "" {
		title = a.synthesizeTitle(opts.FocusKeyword)
	}

	metaTitle := strings.TrimSpace(opts.MetaTitle)
	if metaTitle == "" {
		metaTitle = title
	}

	metaDescription := strings.TrimSpace(opts.MetaDescription)
	if metaDescription == "" {
		metaDescription = truncate(firstParagraph, metaDescriptionLength)
	}

	return &models.AssembledDocument{
		Title:           title,
		BodyMarkup:      strings.Join(parts, "\n"),
		MetaTitle:       metaTitle,
		MetaDescription: metaDescription,
		WordCount:       wordCount,
	}, nil
}

func (a *Assembler) render(block *models.ContentBlock, opts Options) string {
	content := strings.TrimSpace(block.Content)

	switch block.Kind {
	case models.BlockKindHeading:
		level := block.Level
		if level < 1 || level > 3 {
			level = 2
		}

		tag := "h" + strconv.Itoa(level)

		return "<" + tag + ">" + html.EscapeString(a.Text(content)) + "</" + tag + ">"
	case models.BlockKindParagraph:
		if content == "" {
			return ""
		}

		sanitized := a.inline.Sanitize(content)
		if strings.HasPrefix(strings.ToLower(sanitized), "<p") {
			return sanitized
		}

		return "<p>" + sanitized + "</p>"
	case models.BlockKindList:
		return a.renderList(content)
	case models.BlockKindImage:
		if content == "" {
			return ""
		}

		alt := strings.TrimSpace(block.AltText)
		if alt == "" {
			alt = opts.DefaultAltText
		}

		if alt == "" {
			alt = defaultAltText
		}

		return `<img src="` + html.EscapeString(content) + `" alt="` + html.EscapeString(alt) + `" />`
	case models.BlockKindQuote:
		if content == "" {
			return ""
		}

		return "<blockquote>" + a.inline.Sanitize(content) + "</blockquote>"
	case models.BlockKindCode:
		if content == "" {
			return ""
		}

		class := ""
		if lang := strings.TrimSpace(block.Language); lang != "" {
			class = ` class="language-` + html.EscapeString(lang) + `"`
		}

		return "<pre><code" + class + ">" + html.EscapeString(block.Content) + "</code></pre>"
	default:
		return ""
	}
}

func (a *Assembler) renderList(content string) string {
	if content == "" {
		return ""
	}

	if strings.Contains(strings.ToLower(content), "<li") {
		sanitized := a.inline.Sanitize(content)
		if strings.HasPrefix(strings.ToLower(sanitized), "<ul") || strings.HasPrefix(strings.ToLower(sanitized), "<ol") {
			return sanitized
		}

		return "<ul>" + sanitized + "</ul>"
	}

	var builder strings.Builder

	builder.WriteString("<ul>")

	for _, line := range strings.Split(content, "\n") {
		item := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•"))
		if item == "" {
			continue
		}

		builder.WriteString("<li>")
		builder.WriteString(a.inline.Sanitize(item))
		builder.WriteString("</li>")
	}

	builder.WriteString("</ul>")

	if builder.Len() == len("<ul></ul>") {
		return ""
	}

	return builder.String()
}

func (*Assembler) synthesizeTitle(focusKeyword string) string {
	keyword := strings.TrimSpace(focusKeyword)
	if keyword == "" {
		return untitledTitle
	}

	return cases.Title(language.English).String(keyword)
}

// Text strips all markup from s and collapses whitespace.
func (a *Assembler) Text(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(a.strip.Sanitize(s))), " ")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return strings.TrimSpace(string(runes[:limit-3])) + "..."
}
