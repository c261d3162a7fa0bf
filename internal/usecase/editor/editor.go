package editor

import (
	"context"
	"fmt"

	"dom-engine/internal/application/port/output"
	"dom-engine/internal/domain/entity"
	"dom-engine/internal/domain/selector"
)

type UseCase struct {
	logger output.LoggerPort
}

func New(logger output.LoggerPort) *UseCase {
	return &UseCase{logger: logger}
}

// Apply runs op against the first element matching sel. When nothing
// matches the target is left untouched and ErrElementNotFound is returned.
func (uc *UseCase) Apply(ctx context.Context, t output.Target, sel string, op entity.EditOperation) error {
	if op == nil {
		return fmt.Errorf("%w: edit operation is required", entity.ErrValidation)
	}

	escaped := selector.Escape(sel)
	if escaped == "" {
		return fmt.Errorf("%w: selector is required", entity.ErrValidation)
	}

	n, err := t.Count(ctx, escaped)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", entity.ErrElementNotFound, sel)
	}

	if _, err := t.Apply(ctx, escaped, op, false); err != nil {
		return fmt.Errorf("apply %s to %s: %w", op.Kind(), sel, err)
	}

	uc.logger.Debug("Edit applied", "kind", op.Kind(), "selector", escaped, "matches", n)
	return nil
}
