package pdfsplitter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
)

func writePlaceholder(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("%PDF-1.4 placeholder"), 0o644); err != nil {
		t.Fatalf("Failed to write placeholder: %v", err)
	}
	return path
}

func TestGetImagesAllPages(t *testing.T) {
	splitter, extractor, renderer := newFakeSplitter(3)

	for _, selection := range []PageSelection{nil, {}} {
		renderer.rendered = nil
		images, err := splitter.GetImages(context.Background(), FromBytes([]byte("pdf"), ""), ScaleLow, selection)
		if err != nil {
			t.Fatalf("GetImages failed: %v", err)
		}
		if len(images) != 3 {
			t.Fatalf("Expected 3 images, got %d", len(images))
		}
		for i, img := range images {
			if got := pageOf(img); got != i+1 {
				t.Errorf("Expected image %d to be page %d, got page %d", i, i+1, got)
			}
		}
	}
	if extractor.closed != extractor.opened {
		t.Errorf("Expected every opened document to be closed, opened %d closed %d", extractor.opened, extractor.closed)
	}
}

func TestGetImagesSelection(t *testing.T) {
	splitter, extractor, _ := newFakeSplitter(10)

	pages, err := splitter.Pages(context.Background(), FromBytes([]byte("pdf"), ""), ScaleLow, SelectPages(7, 1, 5, 1, 42, 0))
	if err != nil {
		t.Fatalf("Pages failed: %v", err)
	}

	want := []int{1, 5, 7}
	if len(pages) != len(want) {
		t.Fatalf("Expected %d pages, got %d", len(want), len(pages))
	}
	for i, p := range pages {
		if p.Number != want[i] {
			t.Errorf("Expected page %d at position %d, got %d", want[i], i, p.Number)
		}
		if pageOf(p.Image) != p.Number {
			t.Errorf("Image at position %d does not belong to page %d", i, p.Number)
		}
	}
	if len(extractor.extracted) != 3 {
		t.Errorf("Expected only selected pages to be extracted, got %v", extractor.extracted)
	}
}

func TestGetImagesNoMatchingPages(t *testing.T) {
	splitter, extractor, renderer := newFakeSplitter(2)

	images, err := splitter.GetImages(context.Background(), FromBytes([]byte("pdf"), ""), ScaleLow, SelectPages(3, 99))
	if err != nil {
		t.Fatalf("Expected no error for a selection outside the document, got %v", err)
	}
	if images == nil || len(images) != 0 {
		t.Errorf("Expected an empty, non-nil result, got %#v", images)
	}
	if len(renderer.rendered) != 0 {
		t.Errorf("Expected nothing rendered, got %v", renderer.rendered)
	}
	if extractor.closed != 1 {
		t.Errorf("Expected the document to be closed once, got %d", extractor.closed)
	}
}

func TestScaleIsForwarded(t *testing.T) {
	splitter, _, renderer := newFakeSplitter(1)

	images, err := splitter.GetImages(context.Background(), FromBytes([]byte("pdf"), ""), ScaleVeryHigh, nil)
	if err != nil {
		t.Fatalf("GetImages failed: %v", err)
	}
	if renderer.scales[0] != 3 {
		t.Errorf("Expected multiplier 3, got %d", renderer.scales[0])
	}
	if b := images[0].Bounds(); b.Dx() != 30 || b.Dy() != 60 {
		t.Errorf("Expected 30x60 image, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestGetImagesValidation(t *testing.T) {
	dir := t.TempDir()
	textFile := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(textFile, []byte("hello"), 0o644); err != nil {
		t.Fatalf("Failed to write text file: %v", err)
	}
	pdfFile := writePlaceholder(t, dir, "ok.pdf")

	tests := []struct {
		name  string
		src   Source
		scale Scale
		want  error
	}{
		{"missing file", FromFile(filepath.Join(dir, "missing.pdf")), ScaleLow, ErrSourceNotFound},
		{"directory", FromFile(dir), ScaleLow, ErrSourceNotFound},
		{"wrong extension", FromFile(textFile), ScaleLow, ErrNotPDF},
		{"nil buffer", FromBytes(nil, "x"), ScaleLow, ErrNilSource},
		{"undefined scale", FromFile(pdfFile), Scale(7), ErrInvalidScale},
		{"zero scale", FromFile(pdfFile), Scale(0), ErrInvalidScale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splitter, extractor, _ := newFakeSplitter(3)
			images, err := splitter.GetImages(context.Background(), tt.src, tt.scale, nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}
			if !IsValidation(err) || IsEngine(err) {
				t.Errorf("Expected a validation error, got %T", err)
			}
			if images != nil {
				t.Errorf("Expected no images, got %d", len(images))
			}
			if extractor.opened != 0 {
				t.Errorf("Expected the source not to be opened")
			}
		})
	}
}

func TestWriteImagesFileNames(t *testing.T) {
	splitter, _, _ := newFakeSplitter(3)
	out := t.TempDir()

	written, err := splitter.WriteImages(context.Background(), FromBytes([]byte("pdf"), "doc"), out, ScaleHigh, CompressionMedium, nil)
	if err != nil {
		t.Fatalf("WriteImages failed: %v", err)
	}
	if len(written) != 3 {
		t.Fatalf("Expected 3 written files, got %v", written)
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatalf("Failed to read output folder: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	want := []string{"doc_1.jpg", "doc_2.jpg", "doc_3.jpg"}
	if len(names) != len(want) {
		t.Fatalf("Expected files %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Expected %s, got %s", want[i], names[i])
		}
	}

	img, err := imaging.Open(filepath.Join(out, "doc_2.jpg"))
	if err != nil {
		t.Fatalf("Written file is not a readable JPEG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 40 {
		t.Errorf("Expected 20x40 JPEG, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestWriteImagesDefaultBaseName(t *testing.T) {
	splitter, _, _ := newFakeSplitter(1)
	out := t.TempDir()

	if _, err := splitter.WriteImages(context.Background(), FromBytes([]byte("pdf"), ""), out, ScaleLow, CompressionNone, nil); err != nil {
		t.Fatalf("WriteImages failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "pdfpic_1.jpg")); err != nil {
		t.Errorf("Expected pdfpic_1.jpg: %v", err)
	}
}

func TestWriteImagesFromFileUsesFileName(t *testing.T) {
	splitter, _, _ := newFakeSplitter(2)
	dir := t.TempDir()
	src := writePlaceholder(t, dir, "Report.PDF")
	out := filepath.Join(dir, "out")
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatalf("Failed to create output folder: %v", err)
	}

	written, err := splitter.WriteImages(context.Background(), FromFile(src), out, ScaleLow, CompressionLow, SelectPages(2))
	if err != nil {
		t.Fatalf("WriteImages failed: %v", err)
	}
	if len(written) != 1 || filepath.Base(written[0]) != "Report_2.jpg" {
		t.Errorf("Expected Report_2.jpg, got %v", written)
	}
}

func TestWriteImagesOverwrites(t *testing.T) {
	splitter, _, _ := newFakeSplitter(1)
	out := t.TempDir()
	target := filepath.Join(out, "doc_1.jpg")
	if err := os.WriteFile(target, []byte("stale"), 0o644); err != nil {
		t.Fatalf("Failed to write stale file: %v", err)
	}

	if _, err := splitter.WriteImages(context.Background(), FromBytes([]byte("pdf"), "doc"), out, ScaleLow, CompressionHigh, nil); err != nil {
		t.Fatalf("WriteImages failed: %v", err)
	}
	if _, err := imaging.Open(target); err != nil {
		t.Errorf("Expected the stale file to be replaced by a JPEG: %v", err)
	}
}

func TestWriteImagesMissingOutputFolder(t *testing.T) {
	splitter, extractor, _ := newFakeSplitter(3)
	dir := t.TempDir()
	missing := filepath.Join(dir, "nope")

	written, err := splitter.WriteImages(context.Background(), FromBytes([]byte("pdf"), "doc"), missing, ScaleLow, CompressionNone, nil)
	if !errors.Is(err, ErrOutputFolderMissing) {
		t.Fatalf("Expected ErrOutputFolderMissing, got %v", err)
	}
	if written != nil {
		t.Errorf("Expected nothing written, got %v", written)
	}
	if extractor.opened != 0 {
		t.Errorf("Expected the source not to be opened")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("Expected no filesystem writes, found %d entries", len(entries))
	}
}

func TestRenderFailureAbortsCall(t *testing.T) {
	splitter, extractor, renderer := newFakeSplitter(3)
	renderer.failPage = 2
	out := t.TempDir()

	written, err := splitter.WriteImages(context.Background(), FromBytes([]byte("pdf"), "doc"), out, ScaleLow, CompressionNone, nil)
	var engineErr *EngineError
	if !errors.As(err, &engineErr) {
		t.Fatalf("Expected an EngineError, got %v", err)
	}
	if engineErr.Stage != StageRender || engineErr.Page != 2 {
		t.Errorf("Expected render failure on page 2, got %s page %d", engineErr.Stage, engineErr.Page)
	}
	if IsValidation(err) {
		t.Errorf("Engine failure must not look like a validation error")
	}
	if len(written) != 1 {
		t.Errorf("Expected only page 1 written before the failure, got %v", written)
	}
	for _, n := range renderer.rendered {
		if n == 3 {
			t.Errorf("Page 3 must not be rendered after page 2 failed")
		}
	}
	if extractor.closed != 1 {
		t.Errorf("Expected the document to be closed after the failure")
	}

	images, err := splitter.GetImages(context.Background(), FromBytes([]byte("pdf"), "doc"), ScaleLow, nil)
	if err == nil || images != nil {
		t.Errorf("Expected GetImages to fail without partial results, got %d images, err %v", len(images), err)
	}
}

func TestExtractAndOpenFailures(t *testing.T) {
	splitter, extractor, _ := newFakeSplitter(3)
	extractor.failPage = 3

	_, err := splitter.GetImages(context.Background(), FromBytes([]byte("pdf"), ""), ScaleLow, nil)
	var engineErr *EngineError
	if !errors.As(err, &engineErr) || engineErr.Stage != StageExtract || engineErr.Page != 3 {
		t.Errorf("Expected extract failure on page 3, got %v", err)
	}

	extractor.openErr = errors.New("not a pdf")
	_, err = splitter.GetImages(context.Background(), FromBytes([]byte("pdf"), ""), ScaleLow, nil)
	if !errors.As(err, &engineErr) || engineErr.Stage != StageOpen {
		t.Errorf("Expected open failure, got %v", err)
	}
}

func TestCancelledContextStopsBeforeRendering(t *testing.T) {
	splitter, extractor, renderer := newFakeSplitter(3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := splitter.GetImages(ctx, FromBytes([]byte("pdf"), ""), ScaleLow, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if len(renderer.rendered) != 0 {
		t.Errorf("Expected nothing rendered, got %v", renderer.rendered)
	}
	if extractor.closed != 1 {
		t.Errorf("Expected the document to be closed")
	}
}

func TestConcurrentCallsAreIndependent(t *testing.T) {
	splitter, extractor, _ := newFakeSplitter(4)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pages := SelectPages(i%4 + 1)
			images, err := splitter.GetImages(context.Background(), FromBytes([]byte("pdf"), ""), ScaleLow, pages)
			if err != nil {
				errs <- err
				return
			}
			if len(images) != 1 || pageOf(images[0]) != i%4+1 {
				errs <- errors.New("wrong page returned")
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	if extractor.opened != 8 || extractor.closed != 8 {
		t.Errorf("Expected 8 independent open/close pairs, got %d/%d", extractor.opened, extractor.closed)
	}
}
