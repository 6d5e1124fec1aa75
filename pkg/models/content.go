// Package models defines the core domain models for assembling and publishing blog drafts.
package models

import "time"

// BlockKind identifies how a content block is rendered.
type BlockKind string

const (
	BlockKindHeading   BlockKind = "heading"
	BlockKindParagraph BlockKind = "paragraph"
	BlockKindList      BlockKind = "list"
	BlockKindImage     BlockKind = "image"
	BlockKindQuote     BlockKind = "quote"
	BlockKindCode      BlockKind = "code"
)

// Citation is a single source reference attached to a block.
type Citation struct {
	URL         string `json:"url"                   validate:"required,url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// BlockMetadata carries provenance and metrics for a block.
type BlockMetadata struct {
	WordCount   int        `json:"word_count"`
	AIGenerated bool       `json:"ai_generated"`
	Source      string     `json:"source,omitempty"`
	Citations   []Citation `json:"citations,omitempty" validate:"dive"`
}

// ContentBlock is a single typed unit of draft content with an explicit render order.
//
// Content holds plain text for headings and code, inline markup for paragraphs,
// quotes and lists (one item per line when not already markup), and the image
// URL for image blocks.
type ContentBlock struct {
	ID       string        `json:"id"                 validate:"required"`
	DraftID  string        `json:"draft_id"`
	Kind     BlockKind     `json:"kind"               validate:"required,oneof=heading paragraph list image quote code"`
	Level    int           `json:"level,omitempty"    validate:"omitempty,min=1,max=3"`
	Content  string        `json:"content"`
	AltText  string        `json:"alt_text,omitempty"`
	Language string        `json:"language,omitempty"`
	Order    int           `json:"order"`
	Selected bool          `json:"selected"`
	Metadata BlockMetadata `json:"metadata"`
}

// AssembledDocument is the canonical document produced from the selected blocks of a draft.
// It is derived on every publish attempt and never stored on its own.
type AssembledDocument struct {
	Title           string `json:"title"            validate:"required"`
	BodyMarkup      string `json:"body_markup"      validate:"required"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	WordCount       int    `json:"word_count"`
}

// DocumentMetrics are the derived editorial metrics of an assembled document.
type DocumentMetrics struct {
	WordCount         int     `json:"word_count"`
	KeywordCount      int     `json:"keyword_count"`
	KeywordDensity    float64 `json:"keyword_density"`
	CompletionPercent float64 `json:"completion_percent"`
}

// DraftStatus represents the editorial workflow state of a draft.
type DraftStatus string

const (
	DraftStatusDraft          DraftStatus = "draft"
	DraftStatusInReview       DraftStatus = "in-review"
	DraftStatusReadyToPublish DraftStatus = "ready-to-publish"
	DraftStatusPublished      DraftStatus = "published"
)

// Draft is a blog draft owned by a company (tenant) together with its content blocks.
type Draft struct {
	ID                    string          `json:"id"`
	CompanyID             string          `json:"company_id"`
	Title                 string          `json:"title"`
	FocusKeyword          string          `json:"focus_keyword"`
	TargetWordCount       int             `json:"target_word_count"`
	MetaTitle             string          `json:"meta_title,omitempty"`
	MetaDescription       string          `json:"meta_description,omitempty"`
	Excerpt               string          `json:"excerpt,omitempty"`
	Categories            []int64         `json:"categories,omitempty"`
	Tags                  []int64         `json:"tags,omitempty"`
	FeaturedImageURL      string          `json:"featured_image_url,omitempty"`
	FeaturedImageRequired bool            `json:"featured_image_required,omitempty"`
	Status                DraftStatus     `json:"status"`
	Blocks                []*ContentBlock `json:"blocks"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}
