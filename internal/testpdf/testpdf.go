// Package testpdf writes small, valid PDF documents for tests.
package testpdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// Page describes one page: its MediaBox size in points, an optional /Rotate and
// whether a blue square is painted at (10,10)-(60,60).
type Page struct {
	Width  float64
	Height float64
	Rotate int
	Square bool
}

// Letter is a US Letter page with the blue square
var Letter = Page{Width: 612, Height: 792, Square: true}

// Build returns a PDF with the given pages and a document info dictionary
func Build(title string, pages ...Page) []byte {
	return build(title, nil, pages)
}

// BuildInherited returns n pages that declare no MediaBox or /Rotate of their
// own and inherit p's from the page tree node
func BuildInherited(title string, n int, p Page) []byte {
	return build(title, &p, Pages(n, p))
}

func build(title string, inherited *Page, pages []Page) []byte {
	var buf bytes.Buffer
	var offsets []int

	object := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	// 1: catalog, 2: page tree, 3: info, then a page and content stream per page
	kids := ""
	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", 4+2*i)
	}
	object("<< /Type /Catalog /Pages 2 0 R >>")
	treeAttrs := ""
	if inherited != nil {
		treeAttrs = " " + boxAndRotate(*inherited)
	}
	object(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d%s >>", kids, len(pages), treeAttrs))
	object(fmt.Sprintf("<< /Title (%s) /Author (testpdf) /Producer (testpdf) >>", title))

	for i, p := range pages {
		pageAttrs := ""
		if inherited == nil {
			pageAttrs = boxAndRotate(p) + " "
		}
		object(fmt.Sprintf("<< /Type /Page /Parent 2 0 R %s/Contents %d 0 R /Resources << >> >>", pageAttrs, 5+2*i))

		content := ""
		if p.Square {
			content = "0 0 1 rg 10 10 50 50 re f"
		}
		object(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info 3 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func boxAndRotate(p Page) string {
	attrs := fmt.Sprintf("/MediaBox [0 0 %g %g]", p.Width, p.Height)
	if p.Rotate != 0 {
		attrs += fmt.Sprintf(" /Rotate %d", p.Rotate)
	}
	return attrs
}

// Pages returns n identical pages
func Pages(n int, p Page) []Page {
	pages := make([]Page, n)
	for i := range pages {
		pages[i] = p
	}
	return pages
}

// WriteFile writes a PDF into dir and returns its path
func WriteFile(t testing.TB, dir, name string, pages ...Page) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(name, pages...), 0o644); err != nil {
		t.Fatalf("Failed to write test PDF: %v", err)
	}
	return path
}
