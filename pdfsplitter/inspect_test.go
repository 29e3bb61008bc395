package pdfsplitter

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/drummonds/pdf2image/internal/testpdf"
)

func TestInspect(t *testing.T) {
	data := testpdf.Build("Quarterly",
		testpdf.Page{Width: 612, Height: 792},
		testpdf.Page{Width: 612, Height: 792, Rotate: 90},
		testpdf.Page{Width: 200, Height: 100, Rotate: -180},
	)

	info, err := Inspect(FromBytes(data, "quarterly"))
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if info.PageCount != 3 || len(info.Pages) != 3 {
		t.Fatalf("Expected 3 pages, got count %d with %d entries", info.PageCount, len(info.Pages))
	}
	if info.Title != "Quarterly" {
		t.Errorf("Expected title Quarterly, got %q", info.Title)
	}

	want := []PageInfo{
		{Number: 1, Width: 612, Height: 792, Rotate: 0},
		{Number: 2, Width: 792, Height: 612, Rotate: 90},
		{Number: 3, Width: 200, Height: 100, Rotate: 180},
	}
	for i, p := range info.Pages {
		if p != want[i] {
			t.Errorf("Page %d: expected %+v, got %+v", i+1, want[i], p)
		}
	}
}

func TestInspectValidation(t *testing.T) {
	_, err := Inspect(FromFile(filepath.Join(t.TempDir(), "missing.pdf")))
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("Expected ErrSourceNotFound, got %v", err)
	}

	_, err = Inspect(FromBytes([]byte("definitely not a pdf"), ""))
	if !IsEngine(err) {
		t.Errorf("Expected an engine error for garbage input, got %v", err)
	}
}
