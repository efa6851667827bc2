package models

// ClassifyResponse is the response for POST /api/v1/classify.
type ClassifyResponse struct {
	// Success indicates whether the fetch and classification completed.
	Success bool `json:"success"`

	// Classification is the platform/page-type decision.
	Classification PageClassification `json:"classification"`

	// Metadata is the extracted problem metadata. Present only when the
	// page classified as a problem page and extraction was not skipped.
	Metadata *ProblemMetadata `json:"metadata,omitempty"`

	// FinalURL is the URL after following redirects.
	FinalURL string `json:"final_url,omitempty"`

	// EngineUsed indicates which fetch engine produced the document
	// ("http" or "rod").
	EngineUsed string `json:"engine_used,omitempty"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// BatchClassifyResponse is the response for POST /api/v1/classify/batch.
type BatchClassifyResponse struct {
	Success bool               `json:"success"`
	Results []URLClassifyEntry `json:"results"`
	Error   *ErrorDetail       `json:"error,omitempty"`
}

// URLClassifyEntry is one URL's classification in a batch response.
type URLClassifyEntry struct {
	URL            string             `json:"url"`
	Classification PageClassification `json:"classification"`
}

// TimingInfo provides millisecond duration breakdowns.
type TimingInfo struct {
	TotalMs int64 `json:"total_ms"`
	FetchMs int64 `json:"fetch_ms,omitempty"`
}

// WatchResponse is the response for POST /api/v1/watch.
type WatchResponse struct {
	Success        bool               `json:"success"`
	WatchID        string             `json:"watch_id,omitempty"`
	Classification PageClassification `json:"classification"`
	Metadata       *ProblemMetadata   `json:"metadata,omitempty"`
	Error          *ErrorDetail       `json:"error,omitempty"`
}

// WatchStatusResponse is the response for GET /api/v1/watch/:id.
type WatchStatusResponse struct {
	Success        bool               `json:"success"`
	WatchID        string             `json:"watch_id"`
	URL            string             `json:"url"`
	Classification PageClassification `json:"classification"`
	Observing      bool               `json:"observing"`
	Attempts       int                `json:"attempts"`
	Solved         bool               `json:"solved"`
	ElapsedSec     int                `json:"elapsed_sec"`
	LastSolve      *SolveEvent        `json:"last_solve,omitempty"`
	Error          *ErrorDetail       `json:"error,omitempty"`
}

// WatchStats is a snapshot of the watcher's current load.
type WatchStats struct {
	MaxWatches    int `json:"max_watches"`
	ActiveWatches int `json:"active_watches"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status     string     `json:"status"`
	Uptime     string     `json:"uptime"`
	WatchStats WatchStats `json:"watch_stats"`
	Version    string     `json:"version"`
}
