// Package web provides HTTP request and response types for the publish API.
package web

import "github.com/manasvi0103/ai-blog-platform/pkg/models"

// PublishDraftRequest is the optional body of POST /drafts/:id/publish.
type PublishDraftRequest struct {
	// Force publishes even when the draft already has a CMS post.
	Force    bool             `json:"force"`
	TenantID string           `json:"tenant_id,omitempty"`
	Content  *ContentOverride `json:"content,omitempty"`
}

// ContentOverride replaces the assembled document of a draft.
type ContentOverride struct {
	Title           string `json:"title"                      validate:"required"`
	BodyMarkup      string `json:"body_markup"                validate:"required"`
	MetaTitle       string `json:"meta_title,omitempty"`
	MetaDescription string `json:"meta_description,omitempty" validate:"omitempty,max=320"`
}

// Document converts the override to an assembled document.
func (o *ContentOverride) Document() *models.AssembledDocument {
	if o == nil {
		return nil
	}

	return &models.AssembledDocument{
		Title:           o.Title,
		BodyMarkup:      o.BodyMarkup,
		MetaTitle:       o.MetaTitle,
		MetaDescription: o.MetaDescription,
	}
}

// UpdatePostRequest is a partial update of a remote draft.
// All fields are optional; unset fields are left unchanged.
type UpdatePostRequest struct {
	Title           *string `json:"title,omitempty"            validate:"omitempty,min=1"`
	Content         *string `json:"content,omitempty"`
	Excerpt         *string `json:"excerpt,omitempty"`
	MetaTitle       *string `json:"meta_title,omitempty"`
	MetaDescription *string `json:"meta_description,omitempty" validate:"omitempty,max=320"`
	FocusKeyword    *string `json:"focus_keyword,omitempty"`
	Categories      []int64 `json:"categories,omitempty"`
	Tags            []int64 `json:"tags,omitempty"`
}

// Empty reports whether the request changes nothing.
func (r *UpdatePostRequest) Empty() bool {
	return r.Title == nil && r.Content == nil && r.Excerpt == nil &&
		r.MetaTitle == nil && r.MetaDescription == nil && r.FocusKeyword == nil &&
		r.Categories == nil && r.Tags == nil
}

// PostUpdate converts the request to the CMS update model.
func (r *UpdatePostRequest) PostUpdate() *models.PostUpdate {
	return &models.PostUpdate{
		Title:           r.Title,
		Content:         r.Content,
		Excerpt:         r.Excerpt,
		MetaTitle:       r.MetaTitle,
		MetaDescription: r.MetaDescription,
		FocusKeyword:    r.FocusKeyword,
		Categories:      r.Categories,
		Tags:            r.Tags,
	}
}
