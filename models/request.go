package models

// ClassifyRequest is the payload for POST /api/v1/classify.
type ClassifyRequest struct {
	// URL is the page to classify. Required.
	URL string `json:"url" binding:"required,url"`

	// Timeout is the maximum duration in seconds for the fetch.
	// Default: 30. Max: 120.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`

	// FetchMode controls the fetching strategy.
	// "auto" (default): HTTP first, escalate to browser when the page
	// renders its problem content client-side.
	// "http": pure HTTP only. "browser": headless Chrome only.
	FetchMode string `json:"fetch_mode,omitempty" binding:"omitempty,oneof=auto browser http"`

	// SkipMetadata skips metadata extraction even when the page is a
	// problem page (classification only).
	SkipMetadata bool `json:"skip_metadata,omitempty"`

	// MaxAge is the maximum acceptable cache age in milliseconds.
	// 0 (default) disables cache lookup.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`
}

// Defaults applies default values to unset fields.
func (r *ClassifyRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 30
	}
	if r.FetchMode == "" {
		r.FetchMode = "auto"
	}
}

// BatchClassifyRequest is the payload for POST /api/v1/classify/batch.
// Batch classification is URL-only: no pages are fetched, so DOM marker
// confirmation does not apply.
type BatchClassifyRequest struct {
	URLs []string `json:"urls" binding:"required,min=1,max=500"`
}

// WatchRequest is the payload for POST /api/v1/watch.
type WatchRequest struct {
	// URL is the page to watch. Required.
	URL string `json:"url" binding:"required,url"`

	// Stealth enables anti-bot-detection evasions for the watched page.
	Stealth bool `json:"stealth,omitempty"`

	// Timeout is the maximum duration in seconds for the initial
	// navigation. Default: 30. Max: 120.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`
}

// Defaults applies default values to unset fields.
func (r *WatchRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 30
	}
}
