// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/manasvi0103/ai-blog-platform/pkg/models"
)

// Block creates a selected content block of the given kind.
func Block(id string, kind models.BlockKind, order int, content string) *models.ContentBlock {
	return &models.ContentBlock{
		ID:       id,
		Kind:     kind,
		Order:    order,
		Content:  content,
		Selected: true,
	}
}

// Heading creates a selected heading block.
func Heading(id string, order, level int, text string) *models.ContentBlock {
	block := Block(id, models.BlockKindHeading, order, text)
	block.Level = level

	return block
}

// Paragraph creates a selected paragraph block with a metadata word count.
func Paragraph(id string, order int, text string, words int) *models.ContentBlock {
	block := Block(id, models.BlockKindParagraph, order, text)
	block.Metadata.WordCount = words

	return block
}

// Image creates a selected image block.
func Image(id string, order int, url, alt string) *models.ContentBlock {
	block := Block(id, models.BlockKindImage, order, url)
	block.AltText = alt

	return block
}

// CreateTestDraft creates a draft with a heading and two paragraphs that can be overridden.
func CreateTestDraft(overrides ...func(*models.Draft)) *models.Draft {
	id := uuid.New().String()
	now := time.Now().UTC()

	draft := &models.Draft{
		ID:              id,
		CompanyID:       "tenant-" + id[:8],
		Title:           "Solar ROI",
		FocusKeyword:    "solar",
		TargetWordCount: 1000,
		Status:          models.DraftStatusReadyToPublish,
		Blocks: []*models.ContentBlock{
			Heading("h1", 1, 1, "Solar ROI"),
			Paragraph("p1", 2, "Solar panels pay for themselves.", 5),
			Paragraph("p2", 3, "Incentives shorten the payback period.", 5),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, block := range draft.Blocks {
		block.DraftID = draft.ID
	}

	for _, override := range overrides {
		override(draft)
	}

	return draft
}

// WithTenant sets the draft's owning tenant.
func WithTenant(tenantID string) func(*models.Draft) {
	return func(d *models.Draft) {
		d.CompanyID = tenantID
	}
}

// WithBlocks replaces the draft's blocks.
func WithBlocks(blocks ...*models.ContentBlock) func(*models.Draft) {
	return func(d *models.Draft) {
		for _, block := range blocks {
			block.DraftID = d.ID
		}

		d.Blocks = blocks
	}
}

// WithFeaturedImage sets the featured image of the draft.
func WithFeaturedImage(url string, required bool) func(*models.Draft) {
	return func(d *models.Draft) {
		d.FeaturedImageURL = url
		d.FeaturedImageRequired = required
	}
}

// CreateTestTenantConfig creates an active tenant CMS configuration pointing at baseURL.
func CreateTestTenantConfig(tenantID, baseURL string) *models.TenantCMSConfig {
	now := time.Now().UTC()

	return &models.TenantCMSConfig{
		TenantID:         tenantID,
		BaseURL:          baseURL,
		Username:         "editor",
		AppPassword:      "xxxx yyyy zzzz",
		IsActive:         true,
		ConnectionStatus: models.ConnectionStatusNotTested,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
