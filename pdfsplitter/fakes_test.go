package pdfsplitter

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// fakeExtractor serves documents of a fixed page count whose pages are the
// bytes "page-<n>"
type fakeExtractor struct {
	mu        sync.Mutex
	pages     int
	openErr   error
	failPage  int
	opened    int
	closed    int
	extracted []int
}

func (f *fakeExtractor) Open(data []byte) (Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opened++
	return &fakeDocument{extractor: f}, nil
}

type fakeDocument struct {
	extractor *fakeExtractor
}

func (d *fakeDocument) PageCount() int {
	return d.extractor.pages
}

func (d *fakeDocument) ExtractPage(n int) ([]byte, error) {
	f := d.extractor
	f.mu.Lock()
	defer f.mu.Unlock()
	if n == f.failPage {
		return nil, errors.New("broken page")
	}
	f.extracted = append(f.extracted, n)
	return []byte(fmt.Sprintf("page-%d", n)), nil
}

func (d *fakeDocument) Close() error {
	d.extractor.mu.Lock()
	defer d.extractor.mu.Unlock()
	d.extractor.closed++
	return nil
}

// fakeRenderer returns a (10*scale)x(20*scale) image whose red channel is the page number
type fakeRenderer struct {
	mu       sync.Mutex
	failPage int
	rendered []int
	scales   []int
}

func (r *fakeRenderer) RenderPage(pdf []byte, scale int) (image.Image, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(string(pdf), "page-"))
	if err != nil {
		return nil, fmt.Errorf("unexpected page payload %q", pdf)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if n == r.failPage {
		return nil, errors.New("render failed")
	}
	r.rendered = append(r.rendered, n)
	r.scales = append(r.scales, scale)
	return imaging.New(10*scale, 20*scale, color.NRGBA{R: uint8(n), G: 128, B: 255, A: 255}), nil
}

func (r *fakeRenderer) Close() error { return nil }

func newFakeSplitter(pages int) (*Splitter, *fakeExtractor, *fakeRenderer) {
	extractor := &fakeExtractor{pages: pages}
	renderer := &fakeRenderer{}
	return New(renderer, WithExtractor(extractor)), extractor, renderer
}

func pageOf(img image.Image) int {
	r, _, _, _ := img.At(0, 0).RGBA()
	return int(r >> 8)
}
