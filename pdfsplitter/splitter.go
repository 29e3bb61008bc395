// Package pdfsplitter converts the pages of a PDF into raster images, either
// returned in memory or written to disk as JPEG files.
//
// Every page is first extracted into a standalone one-page PDF by the
// structural engine (pdfcpu) and then rasterized by a pdfrenderer.Renderer.
// A Splitter holds no per-call state and may be used from several goroutines.
package pdfsplitter

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/drummonds/pdf2image/engine/pdfrenderer"
)

// Logger defaults to slog.Default until the entry point injects its own
var Logger = slog.Default()

// Page is a rendered page and its 1-based number
type Page struct {
	Number int
	Image  image.Image
}

// Splitter sequences page extraction and rendering
type Splitter struct {
	extractor PageExtractor
	renderer  pdfrenderer.Renderer
}

// Option customises a Splitter
type Option func(*Splitter)

// WithExtractor replaces the pdfcpu page extractor
func WithExtractor(extractor PageExtractor) Option {
	return func(s *Splitter) {
		s.extractor = extractor
	}
}

// New returns a Splitter rendering with renderer. The caller keeps ownership of
// the renderer and closes it.
func New(renderer pdfrenderer.Renderer, opts ...Option) *Splitter {
	s := &Splitter{
		extractor: NewPDFCPUExtractor(),
		renderer:  renderer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetImages renders the selected pages in ascending page order
func (s *Splitter) GetImages(ctx context.Context, src Source, scale Scale, pages PageSelection) ([]image.Image, error) {
	rendered, err := s.Pages(ctx, src, scale, pages)
	if err != nil {
		return nil, err
	}
	images := make([]image.Image, len(rendered))
	for i, p := range rendered {
		images[i] = p.Image
	}
	return images, nil
}

// Pages is GetImages keeping the page numbers. A valid document where no page
// matches the selection yields an empty slice and no error.
func (s *Splitter) Pages(ctx context.Context, src Source, scale Scale, pages PageSelection) ([]Page, error) {
	multiplier, err := checkScale(scale)
	if err != nil {
		return nil, err
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}

	rendered := []Page{}
	err = s.eachPage(ctx, src, pages, func(n int, pagePDF []byte) error {
		img, err := s.render(n, pagePDF, multiplier)
		if err != nil {
			return err
		}
		rendered = append(rendered, Page{Number: n, Image: img})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rendered, nil
}

// WriteImages saves every selected page as outputFolder/<base>_<page>.jpg, where
// base is src.BaseName(). Existing files are overwritten. The paths written are
// returned; on an engine error they are the files written before the failure.
func (s *Splitter) WriteImages(ctx context.Context, src Source, outputFolder string, scale Scale, compression CompressionLevel, pages PageSelection) ([]string, error) {
	multiplier, err := checkScale(scale)
	if err != nil {
		return nil, err
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if info, err := os.Stat(outputFolder); err != nil || !info.IsDir() {
		return nil, &ValidationError{Op: "write images", Subject: outputFolder, Err: ErrOutputFolderMissing}
	}

	written := []string{}
	err = s.eachPage(ctx, src, pages, func(n int, pagePDF []byte) error {
		img, err := s.render(n, pagePDF, multiplier)
		if err != nil {
			return err
		}
		path := filepath.Join(outputFolder, fmt.Sprintf("%s_%d.jpg", src.BaseName(), n))
		if err := saveJPEG(path, img, compression); err != nil {
			return &EngineError{Stage: StageEncode, Page: n, Err: err}
		}
		Logger.Debug("Wrote page image", "page", n, "path", path, "quality", compression.Quality())
		written = append(written, path)
		return nil
	})
	return written, err
}

// eachPage opens src, hands every selected page to fn as a one-page PDF and
// closes the document whatever happens
func (s *Splitter) eachPage(ctx context.Context, src Source, pages PageSelection, fn func(n int, pagePDF []byte) error) error {
	data, err := src.Bytes()
	if err != nil {
		return &EngineError{Stage: StageOpen, Err: err}
	}
	doc, err := s.extractor.Open(data)
	if err != nil {
		return &EngineError{Stage: StageOpen, Err: err}
	}
	defer doc.Close()

	total := doc.PageCount()
	Logger.Debug("Opened PDF", "source", src.String(), "pages", total, "selection", pages.String())

	for n := 1; n <= total; n++ {
		if !pages.Contains(n) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		pagePDF, err := doc.ExtractPage(n)
		if err != nil {
			return &EngineError{Stage: StageExtract, Page: n, Err: err}
		}
		if err := fn(n, pagePDF); err != nil {
			return err
		}
	}
	return nil
}

func (s *Splitter) render(n int, pagePDF []byte, multiplier int) (image.Image, error) {
	img, err := s.renderer.RenderPage(pagePDF, multiplier)
	if err != nil {
		return nil, &EngineError{Stage: StageRender, Page: n, Err: err}
	}
	return img, nil
}

func checkScale(scale Scale) (int, error) {
	multiplier, ok := scale.Multiplier()
	if !ok {
		return 0, &ValidationError{Op: "check scale", Subject: scale.String(), Err: ErrInvalidScale}
	}
	return multiplier, nil
}
