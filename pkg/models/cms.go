package models

import "time"

// CMSPost is the subset of a remote CMS post the platform reads back.
type CMSPost struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content,omitempty"`
	Excerpt    string    `json:"excerpt,omitempty"`
	Status     string    `json:"status"`
	Link       string    `json:"link,omitempty"`
	EditURL    string    `json:"edit_url"`
	PreviewURL string    `json:"preview_url"`
	Categories []int64   `json:"categories,omitempty"`
	Tags       []int64   `json:"tags,omitempty"`
	Date       time.Time `json:"date,omitzero"`
	Modified   time.Time `json:"modified,omitzero"`
	FeaturedID int64     `json:"featured_media,omitempty"`
}

// CMSPostList is one page of remote draft posts.
type CMSPostList struct {
	Posts      []*CMSPost `json:"posts"`
	Page       int        `json:"page"`
	PerPage    int        `json:"per_page"`
	Total      int        `json:"total"`
	TotalPages int        `json:"total_pages"`
}

// ListOptions controls remote draft listing.
type ListOptions struct {
	Page    int    `json:"page"     query:"page"     validate:"omitempty,min=1"`
	PerPage int    `json:"per_page" query:"per_page" validate:"omitempty,min=1,max=100"`
	OrderBy string `json:"orderby"  query:"orderby"  validate:"omitempty,oneof=date modified title id"`
	Order   string `json:"order"    query:"order"    validate:"omitempty,oneof=asc desc"`
}

// Normalize fills unset options with listing defaults.
func (o ListOptions) Normalize() ListOptions {
	if o.Page <= 0 {
		o.Page = 1
	}

	if o.PerPage <= 0 {
		o.PerPage = 10
	}

	if o.OrderBy == "" {
		o.OrderBy = "date"
	}

	if o.Order == "" {
		o.Order = "desc"
	}

	return o
}

// PostUpdate is a partial update of a remote draft. Nil fields are left unchanged.
type PostUpdate struct {
	Title           *string `json:"title,omitempty"`
	Content         *string `json:"content,omitempty"`
	Excerpt         *string `json:"excerpt,omitempty"`
	MetaTitle       *string `json:"meta_title,omitempty"`
	MetaDescription *string `json:"meta_description,omitempty"`
	FocusKeyword    *string `json:"focus_keyword,omitempty"`
	Categories      []int64 `json:"categories,omitempty"`
	Tags            []int64 `json:"tags,omitempty"`
}

// CMSUser is the authenticated account reported by a connection test.
type CMSUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// ConnectionResult is the outcome of a CMS connectivity self-test.
type ConnectionResult struct {
	TenantID  string           `json:"tenant_id,omitempty"`
	BaseURL   string           `json:"base_url,omitempty"`
	Source    CredentialSource `json:"source,omitempty"`
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	ErrorKind ErrorKind        `json:"error_kind,omitempty"`
	User      *CMSUser         `json:"user,omitempty"`
	TestedAt  time.Time        `json:"tested_at"`
}

// MediaItem is a media library entry created on the CMS.
type MediaItem struct {
	ID        int64  `json:"id"`
	SourceURL string `json:"source_url"`
	MimeType  string `json:"mime_type,omitempty"`
}
