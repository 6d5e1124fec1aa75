package wpapi

import (
	"time"

	"github.com/manasvi0103/ai-blog-platform/pkg/models"
)

// Yoast SEO post meta keys.
const (
	MetaTitleKey        = "_yoast_wpseo_title"
	MetaDescriptionKey  = "_yoast_wpseo_metadesc"
	MetaFocusKeywordKey = "_yoast_wpseo_focuskw"
)

const wpTimeLayout = "2006-01-02T15:04:05"

// Rendered is the {"rendered": "..."} wrapper used for post text fields.
type Rendered struct {
	Rendered string `json:"rendered"`
	Raw      string `json:"raw,omitempty"`
}

// Post is the wire representation of a wp/v2 post.
type Post struct {
	ID            int64          `json:"id"`
	Status        string         `json:"status"`
	Link          string         `json:"link"`
	Title         Rendered       `json:"title"`
	Content       Rendered       `json:"content"`
	Excerpt       Rendered       `json:"excerpt"`
	DateGMT       string         `json:"date_gmt"`
	ModifiedGMT   string         `json:"modified_gmt"`
	Categories    []int64        `json:"categories"`
	Tags          []int64        `json:"tags"`
	FeaturedMedia int64          `json:"featured_media"`
	Meta          map[string]any `json:"meta"`
}

// PostBody is the request body for creating or updating a post.
type PostBody struct {
	Title         string            `json:"title,omitempty"`
	Content       string            `json:"content,omitempty"`
	Excerpt       string            `json:"excerpt,omitempty"`
	Status        string            `json:"status,omitempty"`
	Categories    []int64           `json:"categories,omitempty"`
	Tags          []int64           `json:"tags,omitempty"`
	FeaturedMedia int64             `json:"featured_media,omitempty"`
	Meta          map[string]string `json:"meta,omitempty"`
}

// SEOMeta builds the post meta map for the non-empty SEO fields.
func SEOMeta(metaTitle, metaDescription, focusKeyword string) map[string]string {
	meta := map[string]string{}

	if metaTitle != "" {
		meta[MetaTitleKey] = metaTitle
	}

	if metaDescription != "" {
		meta[MetaDescriptionKey] = metaDescription
	}

	if focusKeyword != "" {
		meta[MetaFocusKeywordKey] = focusKeyword
	}

	if len(meta) == 0 {
		return nil
	}

	return meta
}

// ToModel converts the wire post into the platform's CMSPost.
func (p *Post) ToModel(baseURL string) *models.CMSPost {
	title := p.Title.Raw
	if title == "" {
		title = p.Title.Rendered
	}

	content := p.Content.Raw
	if content == "" {
		content = p.Content.Rendered
	}

	return &models.CMSPost{
		ID:         p.ID,
		Title:      title,
		Content:    content,
		Excerpt:    p.Excerpt.Rendered,
		Status:     p.Status,
		Link:       p.Link,
		EditURL:    EditURL(baseURL, p.ID),
		PreviewURL: PreviewURL(baseURL, p.ID),
		Categories: p.Categories,
		Tags:       p.Tags,
		Date:       parseGMT(p.DateGMT),
		Modified:   parseGMT(p.ModifiedGMT),
		FeaturedID: p.FeaturedMedia,
	}
}

func parseGMT(value string) time.Time {
	if value == "" {
		return time.Time{}
	}

	parsed, err := time.ParseInLocation(wpTimeLayout, value, time.UTC)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

// User is the subset of /users/me returned by a connection test.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Media is the subset of a wp/v2 media response the platform reads.
type Media struct {
	ID        int64  `json:"id"`
	SourceURL string `json:"source_url"`
	MimeType  string `json:"mime_type"`
}
