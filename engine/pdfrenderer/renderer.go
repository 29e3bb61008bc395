package pdfrenderer

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"time"

	"github.com/disintegration/imaging"
)

// Logger defaults to slog.Default until the entry point injects its own
var Logger = slog.Default()

// ReferenceDPI is the density rendered bitmaps are expressed at: one pixel per
// point at scale 1.
const ReferenceDPI = 72

// Backend names accepted by NewRenderer
const (
	BackendPDFium = "pdfium"
	BackendFitz   = "fitz"
)

// Renderer defines the interface for rasterizing standalone one-page PDFs
type Renderer interface {
	// RenderPage renders the first page of pdf with scale pixels per point onto
	// an opaque white canvas
	RenderPage(pdf []byte, scale int) (image.Image, error)

	// Close cleans up any resources used by the renderer
	Close() error
}

// Options selects and tunes a backend
type Options struct {
	Backend         string
	PoolSize        int
	InstanceTimeout time.Duration
}

// NewRenderer creates the configured backend; PDFium (pure Go, no CGo) is the default
func NewRenderer(opts Options) (Renderer, error) {
	switch opts.Backend {
	case "", BackendPDFium:
		return NewPDFiumRenderer(opts.PoolSize, opts.InstanceTimeout)
	case BackendFitz:
		return NewFitzRenderer()
	default:
		return nil, fmt.Errorf("unknown renderer backend %q (want %s or %s)", opts.Backend, BackendPDFium, BackendFitz)
	}
}

// PixelSize converts a page size in points to the bitmap size for scale
func PixelSize(widthPts, heightPts float64, scale int) (int, int) {
	return int(math.Ceil(widthPts)) * scale, int(math.Ceil(heightPts)) * scale
}

// onWhite composites img over an opaque white canvas of width x height
func onWhite(img image.Image, width, height int) *image.NRGBA {
	canvas := imaging.New(width, height, color.White)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}
