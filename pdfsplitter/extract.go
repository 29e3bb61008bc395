package pdfsplitter

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// pdfcpu otherwise creates a config directory under the user's home
	api.DisableConfigDir()
}

// PageExtractor opens PDFs and splits single pages out of them
type PageExtractor interface {
	Open(data []byte) (Document, error)
}

// Document is an opened PDF. It belongs to one call and is closed by it.
type Document interface {
	PageCount() int
	// ExtractPage returns page pageNr (1-based) as a standalone one-page PDF
	ExtractPage(pageNr int) ([]byte, error)
	Close() error
}

// PDFCPUExtractor implements PageExtractor with pdfcpu
type PDFCPUExtractor struct {
	conf *model.Configuration
}

// NewPDFCPUExtractor uses relaxed validation and opens restricted documents
// without enforcing their owner permissions.
func NewPDFCPUExtractor() *PDFCPUExtractor {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFCPUExtractor{conf: conf}
}

// Open parses and validates the PDF
func (e *PDFCPUExtractor) Open(data []byte) (Document, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), e.conf)
	if err != nil {
		return nil, fmt.Errorf("unable to read PDF: %w", err)
	}
	return &pdfcpuDocument{ctx: ctx}, nil
}

type pdfcpuDocument struct {
	ctx *model.Context
}

func (d *pdfcpuDocument) PageCount() int {
	if d.ctx == nil {
		return 0
	}
	return d.ctx.PageCount
}

func (d *pdfcpuDocument) ExtractPage(pageNr int) ([]byte, error) {
	if d.ctx == nil {
		return nil, errors.New("document is closed")
	}
	r, err := api.ExtractPage(d.ctx, pageNr)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func (d *pdfcpuDocument) Close() error {
	d.ctx = nil
	return nil
}
