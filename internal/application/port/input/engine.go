package input

import (
	"context"

	"dom-engine/internal/domain/entity"
)

type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Cache   string `json:"cache"`
}

type EditResult struct {
	HTML    string
	Applied bool
	Rule    string
}

// DocumentEngine is the request/response surface. Every call is independent.
type DocumentEngine interface {
	Health(ctx context.Context) Health
	EditSimple(ctx context.Context, document, instruction string) (*EditResult, error)
	DOM(ctx context.Context, document string, includeBounds bool) (*entity.DomNode, error)
	EditComponent(ctx context.Context, document, selector string, op entity.EditOperation) (string, error)
	Element(ctx context.Context, document, selector string) (*entity.ElementInfo, error)
	VisualInfo(ctx context.Context, document, selector string) (*entity.VisualSnapshot, error)
	Screenshot(ctx context.Context, document, selector string, fullPage bool) (*entity.Screenshot, error)
	FetchURL(ctx context.Context, req entity.FetchRequest) (*entity.FetchResult, error)
}
