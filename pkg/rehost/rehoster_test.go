package rehost

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUnreachable = errors.New("dial tcp: no such host")

type fakeMedia struct {
	mu      sync.Mutex
	calls   []string
	failing map[string]bool
}

func (f *fakeMedia) Rehost(_ context.Context, sourceURL string, _ *models.Credentials) (*models.MediaItem, error) {
	f.mu.Lock()
	f.calls = append(f.calls, sourceURL)
	id := int64(len(f.calls))
	f.mu.Unlock()

	if f.failing[sourceURL] {
		return nil, models.NewError(models.ErrorKindMediaUploadFailed, "media.Rehost", errUnreachable)
	}

	return &models.MediaItem{ID: id, SourceURL: fmt.Sprintf("https://www.cms.example/wp-content/uploads/img-%d.png", id)}, nil
}

func (f *fakeMedia) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.calls)
}

var creds = &models.Credentials{BaseURL: "https://cms.example", Username: "u", AppPassword: "p"}

func TestRehoster_PartialFailure(t *testing.T) {
	media := &fakeMedia{failing: map[string]bool{"https://down.example/b.png": true}}
	rehoster := NewRehoster(slog.Default(), media, Config{})

	markup := `<p>Intro</p><img src="https://img.example/a.png" alt="a"><p>Mid</p><img src="https://down.example/b.png" alt="b">`

	report := rehoster.Rehost(context.Background(), markup, creds)

	assert.Contains(t, report.Markup, `src="https://www.cms.example/wp-content/uploads/img-`)
	assert.Contains(t, report.Markup, `src="https://down.example/b.png"`)
	assert.NotContains(t, report.Markup, "https://img.example/a.png")
	assert.Equal(t, 1, strings.Count(report.Markup, "cms.example"))
	assert.Contains(t, report.Markup, `<p>Intro</p>`)
	assert.Contains(t, report.Markup, `alt="b">`)

	summary := report.Summary()
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Rehosted)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, OutcomeFailed, report.Images[1].Outcome)
}

func TestRehoster_Idempotent(t *testing.T) {
	media := &fakeMedia{}
	rehoster := NewRehoster(slog.Default(), media, Config{})

	markup := `<img src="https://img.example/a.png"><img src='https://img.example/b.png' alt="b">`

	first := rehoster.RehostMedia(context.Background(), markup, creds)
	require.Equal(t, 2, media.callCount())

	second := rehoster.RehostMedia(context.Background(), first, creds)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, media.callCount())
	assert.Contains(t, first, `src='https://www.cms.example/`)
}

func TestRehoster_SkipsNonRehostable(t *testing.T) {
	media := &fakeMedia{}
	rehoster := NewRehoster(slog.Default(), media, Config{HostedDomains: []string{"cdn.cms.example"}})

	markup := strings.Join([]string{
		`<img src="data:image/png;base64,AAAA">`,
		`<img src="/uploads/relative.png">`,
		`<img src="https://cms.example/wp-content/uploads/x.png">`,
		`<img src="https://WWW.cms.example/wp-content/uploads/y.png">`,
		`<img src="https://cdn.cms.example/z.png">`,
		`<img alt="no source">`,
		`<img src="ftp://files.example/x.png">`,
	}, "\n")

	report := rehoster.Rehost(context.Background(), markup, creds)

	assert.Equal(t, markup, report.Markup)
	assert.Zero(t, media.callCount())
	assert.Equal(t, 7, report.Summary().Skipped)
}

func TestRehoster_DuplicateURLsRehostedOnce(t *testing.T) {
	media := &fakeMedia{}
	rehoster := NewRehoster(slog.Default(), media, Config{Concurrency: 2})

	markup := `<img src="https://img.example/a.png" alt="first"><img class="wide" src="https://img.example/a.png" alt="second">`

	report := rehoster.Rehost(context.Background(), markup, creds)

	assert.Equal(t, 1, media.callCount())
	assert.Equal(t,
		`<img src="https://www.cms.example/wp-content/uploads/img-1.png" alt="first"><img class="wide" src="https://www.cms.example/wp-content/uploads/img-1.png" alt="second">`,
		report.Markup,
	)
	assert.Equal(t, 2, report.Summary().Rehosted)
}

func TestRehoster_PreservesOtherAttributesWithSameURL(t *testing.T) {
	media := &fakeMedia{}
	rehoster := NewRehoster(slog.Default(), media, Config{})

	markup := `<a href="https://img.example/a.png"><img data-src="https://img.example/a.png" src="https://img.example/a.png"></a>`

	out := rehoster.RehostMedia(context.Background(), markup, creds)

	assert.Equal(t,
		`<a href="https://img.example/a.png"><img data-src="https://img.example/a.png" src="https://www.cms.example/wp-content/uploads/img-1.png"></a>`,
		out,
	)
}

func TestRehoster_DecodesEntitiesInSource(t *testing.T) {
	media := &fakeMedia{}
	rehoster := NewRehoster(slog.Default(), media, Config{})

	rehoster.RehostMedia(context.Background(), `<img src="https://img.example/a.png?w=1&amp;h=2">`, creds)

	require.Equal(t, 1, media.callCount())
	assert.Equal(t, "https://img.example/a.png?w=1&h=2", media.calls[0])
}

func parsedImages(t *testing.T, markup string) *goquery.Selection {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)

	return doc.Find("img")
}

func TestRehoster_AttributeTextResemblingMarkup(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		source string
		alt    string
	}{
		{
			name:   "src= inside another attribute value",
			markup: `<p>x</p><img alt="see src=x" class="hero" src="https://ext.example/b.png"><p>y</p>`,
			source: "https://ext.example/b.png",
			alt:    "see src=x",
		},
		{
			name:   "> inside a quoted attribute value",
			markup: `<img alt="a > b" src="https://ext.example/c.png">`,
			source: "https://ext.example/c.png",
			alt:    "a > b",
		},
		{
			name:   "single quotes and unquoted neighbours",
			markup: `<img data-note='src="https://ext.example/no.png"' width=10 src='https://ext.example/d.png' />`,
			source: "https://ext.example/d.png",
			alt:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			media := &fakeMedia{}
			rehoster := NewRehoster(slog.Default(), media, Config{})

			report := rehoster.Rehost(context.Background(), tt.markup, creds)

			require.Len(t, report.Images, 1)
			assert.Equal(t, OutcomeRehosted, report.Images[0].Outcome)
			assert.Equal(t, tt.source, report.Images[0].SourceURL)
			assert.Equal(t, []string{tt.source}, media.calls)

			images := parsedImages(t, report.Markup)
			require.Equal(t, 1, images.Length())

			src, _ := images.Attr("src")
			assert.Equal(t, "https://www.cms.example/wp-content/uploads/img-1.png", src)

			alt, _ := images.Attr("alt")
			assert.Equal(t, tt.alt, alt)
			assert.NotContains(t, report.Markup, tt.source)
		})
	}
}

func TestRehoster_IgnoresImageMarkupInRawText(t *testing.T) {
	media := &fakeMedia{}
	rehoster := NewRehoster(slog.Default(), media, Config{})

	markup := `<script>var s = '<img src="https://ext.example/js.png">';</script><img src="https://ext.example/real.png">`

	report := rehoster.Rehost(context.Background(), markup, creds)

	require.Len(t, report.Images, 1)
	assert.Equal(t, []string{"https://ext.example/real.png"}, media.calls)
	assert.Contains(t, report.Markup, `'<img src="https://ext.example/js.png">'`)
}

func TestRehoster_FirstAppearanceOrder(t *testing.T) {
	media := &fakeMedia{}
	rehoster := NewRehoster(slog.Default(), media, Config{Concurrency: 1})

	rehoster.RehostMedia(context.Background(), `<img src="https://a.example/1.png"><img src="https://b.example/2.png"><IMG SRC="https://c.example/3.png">`, creds)

	assert.Equal(t, []string{"https://a.example/1.png", "https://b.example/2.png", "https://c.example/3.png"}, media.calls)
}

func TestRehoster_NoImages(t *testing.T) {
	rehoster := NewRehoster(slog.Default(), &fakeMedia{}, Config{})

	report := rehoster.Rehost(context.Background(), "<p>No images</p>", creds)

	assert.Equal(t, "<p>No images</p>", report.Markup)
	assert.Empty(t, report.Images)
}
