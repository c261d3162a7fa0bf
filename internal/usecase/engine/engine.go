// Package engine implements the request/response operations. Each call
// validates its inputs, acquires one browser session, does one thing and
// releases the session before returning.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dom-engine/internal/application/port/input"
	"dom-engine/internal/application/port/output"
	"dom-engine/internal/domain/entity"
	"dom-engine/internal/usecase/editor"
	"dom-engine/internal/usecase/interpreter"
	"dom-engine/internal/usecase/reference"
)

var _ input.DocumentEngine = (*Engine)(nil)

const ServiceName = "dom-engine"

const (
	OpEditSimple     = "edit-simple"
	OpGetDOM         = "get-dom"
	OpGetDOMDetailed = "get-dom-detailed"
	OpEditComponent  = "edit-component"
	OpGetElement     = "get-element"
	OpVisualInfo     = "get-element-visual-info"
	OpScreenshot     = "screenshot"
	OpFetchURL       = "fetch-url"
)

// referenceShot is the encoding used for fetched reference pages.
var referenceShot = entity.ScreenshotOptions{Format: "jpeg", Quality: 80, MaxWidth: 1024}

type Options struct {
	Viewport         entity.Viewport
	Screenshot       entity.ScreenshotOptions
	OperationTimeout time.Duration
}

type Engine struct {
	sessions    output.SessionProvider
	editor      *editor.UseCase
	interpreter *interpreter.UseCase
	cache       output.CachePort
	metrics     output.MetricsPort
	logger      output.LoggerPort
	opts        Options
}

func New(
	sessions output.SessionProvider,
	cache output.CachePort,
	metrics output.MetricsPort,
	logger output.LoggerPort,
	opts Options,
) *Engine {
	if opts.OperationTimeout <= 0 {
		opts.OperationTimeout = 90 * time.Second
	}
	return &Engine{
		sessions:    sessions,
		editor:      editor.New(logger),
		interpreter: interpreter.New(logger),
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
		opts:        opts,
	}
}

func (e *Engine) Health(ctx context.Context) input.Health {
	return input.Health{
		Status:  "healthy",
		Service: ServiceName,
		Cache:   e.cache.Status(ctx),
	}
}

func (e *Engine) EditSimple(ctx context.Context, document, instruction string) (*input.EditResult, error) {
	if err := required("html", document); err != nil {
		return nil, err
	}
	if err := required("instruction", instruction); err != nil {
		return nil, err
	}

	var result *input.EditResult
	err := e.run(ctx, OpEditSimple, func(ctx context.Context) error {
		var err error
		result, err = cached(ctx, e, OpEditSimple, []string{document, instruction}, func(ctx context.Context) (*input.EditResult, error) {
			return e.editSimple(ctx, document, instruction)
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) editSimple(ctx context.Context, document, instruction string) (*input.EditResult, error) {
	result := &input.EditResult{HTML: document}
	err := e.withDocument(ctx, document, func(ctx context.Context, s output.Session) error {
		out, err := e.interpreter.Interpret(ctx, s, instruction)
		if err != nil {
			return err
		}
		result.Rule = out.Rule
		result.Applied = out.Applied
		if !out.Applied {
			return nil
		}
		result.HTML, err = s.Document(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) DOM(ctx context.Context, document string, includeBounds bool) (*entity.DomNode, error) {
	if err := required("html", document); err != nil {
		return nil, err
	}

	op, key := OpGetDOM, "plain"
	if includeBounds {
		op, key = OpGetDOMDetailed, "bounds"
	}

	var tree *entity.DomNode
	err := e.run(ctx, op, func(ctx context.Context) error {
		var err error
		tree, err = cached(ctx, e, op, []string{document, key}, func(ctx context.Context) (*entity.DomNode, error) {
			var root *entity.DomNode
			err := e.withDocument(ctx, document, func(ctx context.Context, s output.Session) error {
				var err error
				root, err = s.Tree(ctx, entity.TreeOptions{IncludeBounds: includeBounds, MaxDepth: entity.MaxTreeDepth})
				return err
			})
			return root, err
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// EditComponent applies op to the first element matching selector. On any
// failure the input document is returned alongside the error.
func (e *Engine) EditComponent(ctx context.Context, document, selector string, op entity.EditOperation) (string, error) {
	if err := required("html", document); err != nil {
		return document, err
	}
	if err := required("selector", selector); err != nil {
		return document, err
	}
	if op == nil {
		return document, fmt.Errorf("%w: edit_type is required", entity.ErrValidation)
	}

	payload, err := operationKey(op)
	if err != nil {
		return document, err
	}

	var edited string
	err = e.run(ctx, OpEditComponent, func(ctx context.Context) error {
		var err error
		edited, err = cached(ctx, e, OpEditComponent, []string{document, selector, payload}, func(ctx context.Context) (string, error) {
			var out string
			err := e.withDocument(ctx, document, func(ctx context.Context, s output.Session) error {
				if err := e.editor.Apply(ctx, s, selector, op); err != nil {
					return err
				}
				var err error
				out, err = s.Document(ctx)
				return err
			})
			return out, err
		})
		return err
	})
	if err != nil {
		return document, err
	}
	return edited, nil
}

func (e *Engine) Element(ctx context.Context, document, selector string) (*entity.ElementInfo, error) {
	if err := required("html", document); err != nil {
		return nil, err
	}
	if err := required("selector", selector); err != nil {
		return nil, err
	}

	var info *entity.ElementInfo
	err := e.run(ctx, OpGetElement, func(ctx context.Context) error {
		return e.withDocument(ctx, document, func(ctx context.Context, s output.Session) error {
			var err error
			info, err = s.Element(ctx, escape(selector))
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (e *Engine) VisualInfo(ctx context.Context, document, selector string) (*entity.VisualSnapshot, error) {
	if err := required("html", document); err != nil {
		return nil, err
	}
	if err := required("selector", selector); err != nil {
		return nil, err
	}

	var snap *entity.VisualSnapshot
	err := e.run(ctx, OpVisualInfo, func(ctx context.Context) error {
		return e.withDocument(ctx, document, func(ctx context.Context, s output.Session) error {
			var err error
			snap, err = s.Visual(ctx, escape(selector))
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (e *Engine) Screenshot(ctx context.Context, document, selector string, fullPage bool) (*entity.Screenshot, error) {
	if err := required("html", document); err != nil {
		return nil, err
	}

	var shot *entity.Screenshot
	err := e.run(ctx, OpScreenshot, func(ctx context.Context) error {
		return e.withDocument(ctx, document, func(ctx context.Context, s output.Session) error {
			var err error
			shot, err = s.Screenshot(ctx, escape(selector), fullPage)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return shot, nil
}

func (e *Engine) FetchURL(ctx context.Context, req entity.FetchRequest) (*entity.FetchResult, error) {
	target, err := reference.NormalizeURL(req.URL)
	if err != nil {
		return nil, err
	}

	opts := entity.SessionOptions{
		Viewport:   e.opts.Viewport,
		Screenshot: referenceShot,
		Stealth:    true,
	}

	result := &entity.FetchResult{URL: target}
	err = e.run(ctx, OpFetchURL, func(ctx context.Context) error {
		return e.sessions.WithSession(ctx, opts, func(ctx context.Context, s output.Session) error {
			if err := s.Navigate(ctx, target); err != nil {
				return err
			}
			if req.CaptureScreenshot {
				shot, err := s.Screenshot(ctx, "", false)
				if err != nil {
					return err
				}
				result.Screenshot = shot
			}
			if req.ExtractDesign {
				sample, err := s.SampleDesign(ctx, entity.MaxSampledElements)
				if err != nil {
					return err
				}
				result.Design = reference.Summarize(sample, req.FocusArea)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// withDocument opens a session sized to the configured viewport and loads
// document into it before calling fn.
func (e *Engine) withDocument(ctx context.Context, document string, fn func(context.Context, output.Session) error) error {
	opts := entity.SessionOptions{Viewport: e.opts.Viewport, Screenshot: e.opts.Screenshot}
	return e.sessions.WithSession(ctx, opts, func(ctx context.Context, s output.Session) error {
		if err := s.Load(ctx, document); err != nil {
			return err
		}
		return fn(ctx, s)
	})
}

// run bounds fn by the operation timeout, classifies its error and records
// the outcome.
func (e *Engine) run(ctx context.Context, op string, fn func(context.Context) error) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, e.opts.OperationTimeout)
	defer cancel()

	err := classify(fn(ctx))
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = string(entity.KindOf(err))
	}
	e.metrics.ObserveOperation(op, outcome, elapsed)

	log := e.logger.WithField("operation", op)
	switch entity.KindOf(err) {
	case "":
		log.Info("Operation completed", "elapsed", elapsed)
	case entity.KindEngineFault:
		log.Error("Operation failed", "error", err, "elapsed", elapsed)
	default:
		log.Warn("Operation rejected", "kind", entity.KindOf(err), "error", err)
	}
	return err
}

func classify(err error) error {
	if err == nil || entity.Classified(err) {
		return err
	}
	if entity.IsTimeout(err) {
		return fmt.Errorf("%w: operation timed out: %v", entity.ErrEngineFault, err)
	}
	return fmt.Errorf("%w: %v", entity.ErrEngineFault, err)
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", entity.ErrValidation, field)
	}
	return nil
}
