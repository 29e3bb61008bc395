package main

import (
	"errors"
	"testing"

	config "github.com/drummonds/pdf2image/config"
)

func TestIsAddressInUse(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("listen tcp :8000: bind: address already in use"), true},
		{errors.New("permission denied"), false},
	}
	for _, tt := range tests {
		if got := isAddressInUse(tt.err); got != tt.want {
			t.Errorf("isAddressInUse(%v): expected %v, got %v", tt.err, tt.want, got)
		}
	}
}

func TestNextPort(t *testing.T) {
	if got := nextPort("8000"); got != "8001" {
		t.Errorf("Expected 8001, got %s", got)
	}
}

func TestNewRendererFromConfig(t *testing.T) {
	if _, err := newRenderer(config.ServerConfig{Renderer: "ghostscript"}); err == nil {
		t.Error("Expected an error for an unknown renderer")
	}

	if testing.Short() {
		t.Skip("Skipping PDFium start up in short mode")
	}
	renderer, err := newRenderer(config.ServerConfig{Renderer: "pdfium", PDFiumPoolSize: 2})
	if err != nil {
		t.Fatalf("Failed to start PDFium: %v", err)
	}
	if err := renderer.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
