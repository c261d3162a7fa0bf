package httpapi

import (
	"encoding/json"

	"dom-engine/internal/domain/entity"
)

type editSimpleRequest struct {
	HTML        string `json:"html"`
	Instruction string `json:"instruction"`
}

type editSimpleResponse struct {
	Success bool   `json:"success"`
	HTML    string `json:"html"`
	Applied bool   `json:"applied"`
	Rule    string `json:"rule,omitempty"`
}

type domRequest struct {
	HTML          string `json:"html"`
	IncludeBounds *bool  `json:"include_bounds"`
}

type domResponse struct {
	Success bool            `json:"success"`
	DOM     *entity.DomNode `json:"dom"`
}

type editComponentRequest struct {
	HTML      string          `json:"html"`
	Selector  string          `json:"selector"`
	EditType  string          `json:"edit_type"`
	EditValue json.RawMessage `json:"edit_value"`
}

type htmlResponse struct {
	Success bool   `json:"success"`
	HTML    string `json:"html"`
}

type elementRequest struct {
	HTML     string `json:"html"`
	Selector string `json:"selector"`
}

type elementResponse struct {
	Success bool `json:"success"`
	Element any  `json:"element"`
}

type screenshotRequest struct {
	HTML     string `json:"html"`
	Selector string `json:"selector"`
	FullPage *bool  `json:"full_page"`
}

type screenshotResponse struct {
	Success    bool   `json:"success"`
	Screenshot string `json:"screenshot"`
	Format     string `json:"format"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

type fetchRequest struct {
	URL               string `json:"url"`
	CaptureScreenshot *bool  `json:"capture_screenshot"`
	ExtractDesign     *bool  `json:"extract_design"`
	FocusArea         string `json:"focus_area"`
}

type fetchResponse struct {
	Success          bool                     `json:"success"`
	URL              string                   `json:"url"`
	DesignInfo       *entity.DesignExtraction `json:"design_info,omitempty"`
	Screenshot       string                   `json:"screenshot,omitempty"`
	ScreenshotFormat string                   `json:"screenshot_format,omitempty"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	// HTML echoes the input document when an edit fails.
	HTML *string `json:"html,omitempty"`
}

// orTrue reads an optional flag that defaults to on.
func orTrue(b *bool) bool {
	return b == nil || *b
}
