package models

import "time"

// PublishPayload is the CMS-ready form of a draft handed to a delivery path.
type PublishPayload struct {
	Title                 string  `json:"title"                             validate:"required"`
	Content               string  `json:"content"                           validate:"required"`
	Excerpt               string  `json:"excerpt,omitempty"`
	MetaTitle             string  `json:"meta_title,omitempty"`
	MetaDescription       string  `json:"meta_description,omitempty"`
	FocusKeyword          string  `json:"focus_keyword,omitempty"`
	Categories            []int64 `json:"categories,omitempty"`
	Tags                  []int64 `json:"tags,omitempty"`
	FeaturedImageURL      string  `json:"featured_image_url,omitempty"      validate:"omitempty,url"`
	FeaturedImageRequired bool    `json:"featured_image_required,omitempty"`
}

// DeliveryMethod identifies which path carried a publish attempt.
type DeliveryMethod string

const (
	DeliveryMethodDirect DeliveryMethod = "direct"
	DeliveryMethodRelay  DeliveryMethod = "relay"
	DeliveryMethodFailed DeliveryMethod = "failed"
)

// DeliveryAttempt records the outcome of one delivery path during a publish.
type DeliveryAttempt struct {
	Method      DeliveryMethod `json:"method"`
	Success     bool           `json:"success"`
	ErrorKind   ErrorKind      `json:"error_kind,omitempty"`
	ErrorDetail string         `json:"error_detail,omitempty"`
}

// MediaSummary counts the image outcomes of a rehost pass.
type MediaSummary struct {
	Total    int `json:"total"`
	Rehosted int `json:"rehosted"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// Inconsistency flags a remote success whose local bookkeeping did not complete.
type Inconsistency struct {
	Kind    ErrorKind `json:"kind"`
	Detail  string    `json:"detail"`
	Message string    `json:"message"`
}

// PublishResult is the outcome of a publish attempt.
//
// Success is true exactly when CMSPostID is non-zero; ErrorKind is set
// exactly when Success is false.
type PublishResult struct {
	Success        bool              `json:"success"`
	CMSPostID      int64             `json:"cms_post_id,omitempty"`
	EditURL        string            `json:"edit_url,omitempty"`
	PreviewURL     string            `json:"preview_url,omitempty"`
	Status         string            `json:"status,omitempty"`
	ErrorKind      ErrorKind         `json:"error_kind,omitempty"`
	ErrorDetail    string            `json:"error_detail,omitempty"`
	DeliveryMethod DeliveryMethod    `json:"delivery_method"`
	Attempts       []DeliveryAttempt `json:"attempts,omitempty"`
	Media          *MediaSummary     `json:"media,omitempty"`
	Inconsistency  *Inconsistency    `json:"inconsistency,omitempty"`
}

// Succeeded builds a successful result for a created remote draft.
func Succeeded(method DeliveryMethod, postID int64, editURL, previewURL string) *PublishResult {
	return &PublishResult{
		Success:        true,
		CMSPostID:      postID,
		EditURL:        editURL,
		PreviewURL:     previewURL,
		Status:         "draft",
		DeliveryMethod: method,
	}
}

// Failed builds a failed result from err, which should carry an ErrorKind.
func Failed(method DeliveryMethod, err error) *PublishResult {
	result := &PublishResult{
		Success:        false,
		DeliveryMethod: method,
		ErrorKind:      KindOf(err),
	}
	if err != nil {
		result.ErrorDetail = err.Error()
	}

	if result.ErrorKind == "" {
		result.ErrorKind = ErrorKindInternal
	}

	return result
}

// Attempt summarizes the result as a single delivery attempt.
func (r *PublishResult) Attempt() DeliveryAttempt {
	return DeliveryAttempt{
		Method:      r.DeliveryMethod,
		Success:     r.Success,
		ErrorKind:   r.ErrorKind,
		ErrorDetail: r.ErrorDetail,
	}
}

// PublishRecordStatus is the local bookkeeping state for a draft's remote post.
type PublishRecordStatus string

const (
	PublishRecordNotSent       PublishRecordStatus = "not-sent"
	PublishRecordDraftCreated  PublishRecordStatus = "draft-created"
	PublishRecordPublishFailed PublishRecordStatus = "publish-failed"
)

// DraftPublishRecord is the local record linking a draft to its CMS post.
// At most one record exists per draft.
type DraftPublishRecord struct {
	DraftID         string              `json:"draft_id"`
	CMSPostID       int64               `json:"cms_post_id,omitempty"`
	EditURL         string              `json:"edit_url,omitempty"`
	PreviewURL      string              `json:"preview_url,omitempty"`
	DeliveryMethod  DeliveryMethod      `json:"delivery_method,omitempty"`
	Status          PublishRecordStatus `json:"status"`
	ErrorKind       ErrorKind           `json:"error_kind,omitempty"`
	LastAttemptedAt time.Time           `json:"last_attempted_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// DeliveryOrder selects which delivery paths are tried and in which order.
type DeliveryOrder string

const (
	DeliveryOrderDirectFirst DeliveryOrder = "direct-first"
	DeliveryOrderRelayFirst  DeliveryOrder = "relay-first"
	DeliveryOrderDirectOnly  DeliveryOrder = "direct-only"
	DeliveryOrderRelayOnly   DeliveryOrder = "relay-only"
)

// Plan returns the delivery methods for the order. Relay methods are dropped
// when relayEnabled is false; fallback=false keeps only the primary method.
func (o DeliveryOrder) Plan(relayEnabled, fallback bool) []DeliveryMethod {
	var plan []DeliveryMethod

	switch o {
	case DeliveryOrderRelayFirst:
		plan = []DeliveryMethod{DeliveryMethodRelay, DeliveryMethodDirect}
	case DeliveryOrderDirectOnly:
		plan = []DeliveryMethod{DeliveryMethodDirect}
	case DeliveryOrderRelayOnly:
		plan = []DeliveryMethod{DeliveryMethodRelay}
	default:
		plan = []DeliveryMethod{DeliveryMethodDirect, DeliveryMethodRelay}
	}

	if !relayEnabled {
		return []DeliveryMethod{DeliveryMethodDirect}
	}

	if !fallback {
		return plan[:1]
	}

	return plan
}
