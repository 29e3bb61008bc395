package pdfsplitter

import (
	"fmt"
	"strconv"
	"strings"
)

// PageSelection holds 1-based page numbers. Nil or empty selects every page.
type PageSelection []int

// AllPages selects every page of the document
var AllPages PageSelection

// SelectPages builds a selection from page numbers
func SelectPages(numbers ...int) PageSelection {
	return PageSelection(numbers)
}

// Contains reports whether page n is selected
func (p PageSelection) Contains(n int) bool {
	if len(p) == 0 {
		return true
	}
	for _, v := range p {
		if v == n {
			return true
		}
	}
	return false
}

func (p PageSelection) String() string {
	if len(p) == 0 {
		return "all"
	}
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// ParsePageSelection parses "1,5,7-9". An empty string or "all" selects every page.
func ParsePageSelection(value string) (PageSelection, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "all") {
		return AllPages, nil
	}
	var pages PageSelection
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if from, to, isRange := strings.Cut(part, "-"); isRange {
			start, err := parsePageNumber(from)
			if err != nil {
				return nil, err
			}
			end, err := parsePageNumber(to)
			if err != nil {
				return nil, err
			}
			if end < start {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
			for n := start; n <= end; n++ {
				pages = append(pages, n)
			}
			continue
		}
		n, err := parsePageNumber(part)
		if err != nil {
			return nil, err
		}
		pages = append(pages, n)
	}
	return pages, nil
}

func parsePageNumber(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid page number %q: %w", s, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("invalid page number %d: pages start at 1", n)
	}
	return n, nil
}
