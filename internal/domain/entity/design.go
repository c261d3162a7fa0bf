package entity

const (
	MaxDesignColors       = 12
	MaxDesignFonts        = 6
	MaxDesignColorClasses = 20
	MaxSampledElements    = 300
)

// DesignSample is the raw material read from a rendered external page.
type DesignSample struct {
	URL             string
	Title           string
	HTML            string
	Colors          []string
	Fonts           []string
	DisplayCounts   map[string]int
	Header          *RegionStyle
	Hero            *RegionStyle
	SampledElements int
}

type RegionStyle struct {
	Tag        string  `json:"tag"`
	Background string  `json:"background"`
	Foreground string  `json:"foreground"`
	Height     float64 `json:"height"`
	Position   string  `json:"position"`
	FontFamily string  `json:"font_family"`
	FontSize   string  `json:"font_size"`
}

type DesignExtraction struct {
	Title        string   `json:"title,omitempty"`
	Colors       []string `json:"colors"`
	Fonts        []string `json:"fonts"`
	ColorClasses []string `json:"color_classes"`
	Layout       []string `json:"layout"`
	StyleNotes   string   `json:"style_notes,omitempty"`
}

type FetchRequest struct {
	URL               string
	CaptureScreenshot bool
	ExtractDesign     bool
	FocusArea         string
}

type FetchResult struct {
	URL        string
	Design     *DesignExtraction
	Screenshot *Screenshot
}
