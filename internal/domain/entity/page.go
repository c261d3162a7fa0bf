package entity

const (
	MaxTreeDepth   = 10
	MaxNodeText    = 100
	MaxElementText = 200
)

type Viewport struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// ScreenshotOptions controls capture encoding. Zero values fall back to PNG
// without downscaling.
type ScreenshotOptions struct {
	Format   string `yaml:"format"`
	Quality  int    `yaml:"quality"`
	MaxWidth int    `yaml:"max_width"`
}

type SessionOptions struct {
	Viewport   Viewport
	Screenshot ScreenshotOptions
	// Stealth opens the page with anti-detection patches, used for external URLs.
	Stealth bool
}

type Bounds struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type DomNode struct {
	Tag      string     `json:"tag"`
	ID       string     `json:"id,omitempty"`
	Classes  []string   `json:"classes"`
	Text     string     `json:"text,omitempty"`
	Bounds   *Bounds    `json:"bounds,omitempty"`
	Depth    int        `json:"depth"`
	Children []*DomNode `json:"children"`
}

type TreeOptions struct {
	IncludeBounds bool
	MaxDepth      int
}

// Walk visits n and its descendants depth first.
func (n *DomNode) Walk(fn func(*DomNode)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

type ElementInfo struct {
	Tag        string            `json:"tag"`
	ID         string            `json:"id,omitempty"`
	Classes    []string          `json:"classes"`
	Text       string            `json:"text"`
	HTML       string            `json:"html"`
	Attributes map[string]string `json:"attributes"`
}

type Colors struct {
	Background string `json:"background"`
	Foreground string `json:"foreground"`
	Border     string `json:"border"`
}

type BoxStyle struct {
	FontSize     string `json:"font_size"`
	FontWeight   string `json:"font_weight"`
	FontFamily   string `json:"font_family"`
	LineHeight   string `json:"line_height"`
	Padding      string `json:"padding"`
	Margin       string `json:"margin"`
	BorderRadius string `json:"border_radius"`
	Display      string `json:"display"`
	Position     string `json:"position"`
	TextAlign    string `json:"text_align"`
	Opacity      string `json:"opacity"`
}

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type VisualSnapshot struct {
	Tag          string   `json:"tag"`
	Classes      []string `json:"classes"`
	ColorClasses []string `json:"color_classes"`
	Text         string   `json:"text"`
	Colors       Colors   `json:"colors"`
	Style        BoxStyle `json:"style"`
	Rect         Rect     `json:"rect"`
}

type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}
