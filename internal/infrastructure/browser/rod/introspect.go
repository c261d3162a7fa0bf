package rod

import (
	"context"

	"dom-engine/internal/domain/entity"
	"dom-engine/internal/infrastructure/markup"
)

func (s *session) Tree(ctx context.Context, opts entity.TreeOptions) (*entity.DomNode, error) {
	depth := opts.MaxDepth
	if depth <= 0 {
		depth = entity.MaxTreeDepth
	}
	var root entity.DomNode
	if err := s.eval(ctx, &root, treeJS, opts.IncludeBounds, depth, entity.MaxNodeText); err != nil {
		return nil, err
	}
	return &root, nil
}

func (s *session) Element(ctx context.Context, selector string) (*entity.ElementInfo, error) {
	var info entity.ElementInfo
	if err := s.eval(ctx, &info, elementJS, selector, entity.MaxElementText); err != nil {
		return nil, err
	}
	return &info, nil
}

func (s *session) Visual(ctx context.Context, selector string) (*entity.VisualSnapshot, error) {
	var snap entity.VisualSnapshot
	if err := s.eval(ctx, &snap, visualJS, selector, entity.MaxElementText); err != nil {
		return nil, err
	}
	snap.ColorClasses = markup.FilterColorClasses(snap.Classes)
	return &snap, nil
}

type sampleResult struct {
	URL           string              `json:"url"`
	Title         string              `json:"title"`
	HTML          string              `json:"html"`
	Colors        []string            `json:"colors"`
	Fonts         []string            `json:"fonts"`
	DisplayCounts map[string]int      `json:"display_counts"`
	Header        *entity.RegionStyle `json:"header"`
	Hero          *entity.RegionStyle `json:"hero"`
	Sampled       int                 `json:"sampled"`
}

func (s *session) SampleDesign(ctx context.Context, limit int) (*entity.DesignSample, error) {
	if limit <= 0 || limit > entity.MaxSampledElements {
		limit = entity.MaxSampledElements
	}
	var r sampleResult
	if err := s.eval(ctx, &r, sampleJS, limit); err != nil {
		return nil, err
	}
	return &entity.DesignSample{
		URL:             r.URL,
		Title:           r.Title,
		HTML:            markup.Clean(r.HTML, nil),
		Colors:          r.Colors,
		Fonts:           r.Fonts,
		DisplayCounts:   r.DisplayCounts,
		Header:          r.Header,
		Hero:            r.Hero,
		SampledElements: r.Sampled,
	}, nil
}
