package output

import (
	"context"

	"dom-engine/internal/domain/entity"
)

// SessionProvider hands out one isolated rendering session per call and
// tears it down before WithSession returns, whatever fn does.
type SessionProvider interface {
	WithSession(ctx context.Context, opts entity.SessionOptions, fn func(ctx context.Context, s Session) error) error
}

// Target is the part of a session the editing use cases need.
// Selectors passed here must already be escaped.
type Target interface {
	Count(ctx context.Context, selector string) (int, error)
	Apply(ctx context.Context, selector string, op entity.EditOperation, all bool) (int, error)
}

type Session interface {
	Target

	ID() string
	Load(ctx context.Context, document string) error
	Navigate(ctx context.Context, url string) error
	Document(ctx context.Context) (string, error)

	Tree(ctx context.Context, opts entity.TreeOptions) (*entity.DomNode, error)
	Element(ctx context.Context, selector string) (*entity.ElementInfo, error)
	Visual(ctx context.Context, selector string) (*entity.VisualSnapshot, error)
	Screenshot(ctx context.Context, selector string, fullPage bool) (*entity.Screenshot, error)
	SampleDesign(ctx context.Context, limit int) (*entity.DesignSample, error)
}
