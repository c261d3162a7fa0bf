package rod

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"dom-engine/internal/domain/entity"
)

const defaultJPEGQuality = 80

func (s *session) Screenshot(ctx context.Context, selector string, fullPage bool) (*entity.Screenshot, error) {
	format, quality := s.encoding()

	var raw []byte
	if selector != "" {
		n, err := s.Count(ctx, selector)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, fmt.Errorf("%w: %s", entity.ErrElementNotFound, selector)
		}
		el, err := s.page.Context(ctx).Element(selector)
		if err != nil {
			return nil, fmt.Errorf("%w: locate %s: %v", entity.ErrEngineFault, selector, err)
		}
		raw, err = el.Screenshot(format, quality)
		if err != nil {
			return nil, fmt.Errorf("%w: element screenshot: %v", entity.ErrEngineFault, err)
		}
	} else {
		req := &proto.PageCaptureScreenshot{Format: format}
		if format == proto.PageCaptureScreenshotFormatJpeg {
			req.Quality = gson.Int(quality)
		}
		var err error
		raw, err = s.page.Context(ctx).Screenshot(fullPage, req)
		if err != nil {
			return nil, fmt.Errorf("%w: screenshot: %v", entity.ErrEngineFault, err)
		}
	}

	return s.postProcess(raw, format, quality)
}

func (s *session) encoding() (proto.PageCaptureScreenshotFormat, int) {
	switch strings.ToLower(s.shot.Format) {
	case "jpeg", "jpg":
		q := s.shot.Quality
		if q <= 0 || q > 100 {
			q = defaultJPEGQuality
		}
		return proto.PageCaptureScreenshotFormatJpeg, q
	default:
		return proto.PageCaptureScreenshotFormatPng, 0
	}
}

// postProcess downscales captures wider than the configured maximum and
// reports the final dimensions.
func (s *session) postProcess(raw []byte, format proto.PageCaptureScreenshotFormat, quality int) (*entity.Screenshot, error) {
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: decode screenshot: %v", entity.ErrEngineFault, err)
	}

	name := "png"
	if format == proto.PageCaptureScreenshotFormatJpeg {
		name = "jpeg"
	}

	if limit := s.shot.MaxWidth; limit <= 0 || img.Bounds().Dx() <= limit {
		return &entity.Screenshot{
			Data:   raw,
			Format: name,
			Width:  img.Bounds().Dx(),
			Height: img.Bounds().Dy(),
		}, nil
	}

	img = imaging.Resize(img, s.shot.MaxWidth, 0, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if name == "jpeg" {
		err = imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	} else {
		err = imaging.Encode(buf, img, imaging.PNG)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: encode screenshot: %v", entity.ErrEngineFault, err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: name,
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}
