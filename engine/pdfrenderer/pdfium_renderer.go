package pdfrenderer

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"
)

const defaultInstanceTimeout = 30 * time.Second

// PDFiumRenderer renders with go-pdfium on WebAssembly (pure Go, no CGo).
// Every RenderPage borrows its own instance from the pool, so concurrent
// callers never share PDFium state.
type PDFiumRenderer struct {
	pool    pdfium.Pool
	timeout time.Duration
}

// NewPDFiumRenderer starts a pool of poolSize PDFium instances
func NewPDFiumRenderer(poolSize int, instanceTimeout time.Duration) (*PDFiumRenderer, error) {
	if poolSize < 1 {
		poolSize = 1
	}
	if instanceTimeout <= 0 {
		instanceTimeout = defaultInstanceTimeout
	}

	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  poolSize,
		MaxTotal: poolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PDFium WebAssembly: %w", err)
	}

	Logger.Debug("PDFium pool started", "size", poolSize)
	return &PDFiumRenderer{
		pool:    pool,
		timeout: instanceTimeout,
	}, nil
}

// RenderPage rasterizes the first page of a one-page PDF
func (r *PDFiumRenderer) RenderPage(pdfBytes []byte, scale int) (image.Image, error) {
	if r.pool == nil {
		return nil, errors.New("PDFium renderer is closed")
	}

	instance, err := r.pool.GetInstance(r.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to get PDFium instance: %w", err)
	}
	defer instance.Close()

	doc, err := instance.OpenDocument(&requests.OpenDocument{
		File: &pdfBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open PDF document: %w", err)
	}
	defer instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc.Document,
	})

	// Size with the page rotation applied
	size, err := instance.FPDF_GetPageSizeByIndex(&requests.FPDF_GetPageSizeByIndex{
		Document: doc.Document,
		Index:    0,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to get page size: %w", err)
	}
	width, height := PixelSize(size.Width, size.Height, scale)

	pageRender, err := instance.RenderPageInPixels(&requests.RenderPageInPixels{
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{
				Document: doc.Document,
				Index:    0,
			},
		},
		Width:  width,
		Height: height,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to render page: %w", err)
	}
	// The composite copies the pixels out of WebAssembly memory before cleanup
	defer pageRender.Cleanup()

	return onWhite(pageRender.Result.Image, width, height), nil
}

// Close cleans up resources used by the PDFium renderer
func (r *PDFiumRenderer) Close() error {
	if r.pool != nil {
		err := r.pool.Close()
		r.pool = nil
		return err
	}
	return nil
}
