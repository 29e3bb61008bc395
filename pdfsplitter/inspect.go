package pdfsplitter

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PageInfo is a page size in points with its rotation applied
type PageInfo struct {
	Number int     `json:"number"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Rotate int     `json:"rotate"`
}

// Info describes a document without rendering it
type Info struct {
	PageCount int        `json:"pageCount"`
	Title     string     `json:"title,omitempty"`
	Author    string     `json:"author,omitempty"`
	Producer  string     `json:"producer,omitempty"`
	Pages     []PageInfo `json:"pages"`
}

// Inspect reads the page count, page sizes and document metadata of src
func Inspect(src Source) (info Info, err error) {
	if err := src.Validate(); err != nil {
		return Info{}, err
	}
	data, err := src.Bytes()
	if err != nil {
		return Info{}, &EngineError{Stage: StageOpen, Err: err}
	}

	// the reader panics on some malformed objects
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Panic recovered while inspecting PDF", "source", src.String(), "panic", r)
			info, err = Info{}, &EngineError{Stage: StageOpen, Err: fmt.Errorf("malformed PDF: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Info{}, &EngineError{Stage: StageOpen, Err: fmt.Errorf("failed to create PDF reader: %w", err)}
	}

	meta := reader.Trailer().Key("Info")
	info = Info{
		PageCount: reader.NumPage(),
		Title:     meta.Key("Title").Text(),
		Author:    meta.Key("Author").Text(),
		Producer:  meta.Key("Producer").Text(),
		Pages:     []PageInfo{},
	}

	for n := 1; n <= info.PageCount; n++ {
		page := reader.Page(n)
		if page.V.IsNull() {
			continue
		}
		box := inherited(page.V, "MediaBox")
		width := box.Index(2).Float64() - box.Index(0).Float64()
		height := box.Index(3).Float64() - box.Index(1).Float64()

		rotate := int(inherited(page.V, "Rotate").Int64()) % 360
		if rotate < 0 {
			rotate += 360
		}
		if rotate%180 != 0 {
			width, height = height, width
		}
		info.Pages = append(info.Pages, PageInfo{Number: n, Width: width, Height: height, Rotate: rotate})
	}
	return info, nil
}

// inherited looks key up on the page and then up its page tree
func inherited(v pdf.Value, key string) pdf.Value {
	for !v.IsNull() {
		if found := v.Key(key); !found.IsNull() {
			return found
		}
		v = v.Key("Parent")
	}
	return v
}
