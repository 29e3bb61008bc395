package pdfrenderer

import (
	"errors"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// FitzRenderer implements PDF rendering using go-fitz (requires CGo and MuPDF)
type FitzRenderer struct {
}

// NewFitzRenderer creates a new Fitz-based PDF renderer
func NewFitzRenderer() (*FitzRenderer, error) {
	return &FitzRenderer{}, nil
}

// RenderPage rasterizes the first page of a one-page PDF
func (r *FitzRenderer) RenderPage(pdf []byte, scale int) (image.Image, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, fmt.Errorf("unable to open PDF document: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, errors.New("PDF has no pages")
	}

	bound, err := doc.Bound(0)
	if err != nil {
		return nil, fmt.Errorf("unable to get page size: %w", err)
	}
	width, height := PixelSize(float64(bound.Dx()), float64(bound.Dy()), scale)

	img, err := doc.ImageDPI(0, float64(ReferenceDPI*scale))
	if err != nil {
		return nil, fmt.Errorf("unable to render page: %w", err)
	}

	return onWhite(img, width, height), nil
}

// Close cleans up resources (no-op for Fitz renderer as doc is closed per-render)
func (r *FitzRenderer) Close() error {
	return nil
}
