package pdfsplitter

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestSourceBaseName(t *testing.T) {
	tests := []struct {
		src  Source
		want string
	}{
		{FromFile("/tmp/Comprovativo.pdf"), "Comprovativo"},
		{FromFile("scan.2024.PDF"), "scan.2024"},
		{FromBytes([]byte("x"), ""), DefaultBaseFilename},
		{FromBytes([]byte("x"), "invoice"), "invoice"},
	}
	for _, tt := range tests {
		if got := tt.src.BaseName(); got != tt.want {
			t.Errorf("%s: expected base name %q, got %q", tt.src, tt.want, got)
		}
	}
}

func TestSourceBytes(t *testing.T) {
	dir := t.TempDir()
	path := writePlaceholder(t, dir, "a.pdf")

	data, err := FromFile(path).Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("Unexpected file content %q", data)
	}

	if _, err := FromFile(filepath.Join(dir, "gone.pdf")).Bytes(); err == nil {
		t.Error("Expected an error reading a missing file")
	}

	if err := FromBytes([]byte{}, "").Validate(); err != nil {
		t.Errorf("An empty but non-nil buffer is left to the engine, got %v", err)
	}
}
