package models

// State is a step of a single product resolution.
type State string

const (
	StateStart           State = "START"
	StateJSONLookup      State = "JSON_LOOKUP"
	StateHTMLFallback    State = "HTML_FALLBACK"
	StatePageFetched     State = "PAGE_FETCHED"
	StateImagesExtracted State = "IMAGES_EXTRACTED"
	StateUploaded        State = "UPLOADED"

	StateSkippedUnresolved  State = "SKIPPED_UNRESOLVED"
	StateSkippedNoImages    State = "SKIPPED_NO_IMAGES"
	StateSkippedFetchFailed State = "SKIPPED_FETCH_FAILED"
	StateUploadFailed       State = "UPLOAD_FAILED"
)

func (s State) IsTerminal() bool {
	switch s {
	case StateUploaded, StateSkippedUnresolved, StateSkippedNoImages,
		StateSkippedFetchFailed, StateUploadFailed:
		return true
	}
	return false
}

// Outcome is the record of one resolved (or skipped) catalog row.
type Outcome struct {
	SKU        string   `json:"sku"`
	Brand      string   `json:"brand"`
	State      State    `json:"state"`
	Strategy   string   `json:"strategy,omitempty"`
	ProductURL string   `json:"product_url,omitempty"`
	Uploaded   []string `json:"uploaded,omitempty"`
	Error      string   `json:"error,omitempty"`
}
