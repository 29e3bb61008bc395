// Package build carries version information stamped in at link time
package build

// Version is overridden with -ldflags "-X github.com/drummonds/pdf2image/internal/build.Version=..."
var Version = "dev"
