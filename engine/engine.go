package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/drummonds/pdf2image/database"
	"github.com/drummonds/pdf2image/pdfsplitter"
)

// errBadRequest marks malformed request parameters
var errBadRequest = errors.New("bad request")

// conversionOptions are the parsed scale, compression and pages of a request
type conversionOptions struct {
	Scale       pdfsplitter.Scale
	Compression pdfsplitter.CompressionLevel
	Pages       pdfsplitter.PageSelection
}

// parseOptions parses request values, falling back to the configured defaults
func (serverHandler *ServerHandler) parseOptions(scale, compression, pages string) (conversionOptions, error) {
	var opts conversionOptions
	var err error

	if scale == "" {
		scale = serverHandler.ServerConfig.DefaultScale
	}
	if opts.Scale, err = pdfsplitter.ParseScale(scale); err != nil {
		return opts, err
	}

	if compression == "" {
		compression = serverHandler.ServerConfig.DefaultCompression
	}
	if opts.Compression, err = pdfsplitter.ParseCompression(compression); err != nil {
		return opts, &pdfsplitter.ValidationError{Op: "parse compression", Subject: compression, Err: err}
	}

	if opts.Pages, err = pdfsplitter.ParsePageSelection(pages); err != nil {
		return opts, &pdfsplitter.ValidationError{Op: "parse pages", Subject: pages, Err: err}
	}
	return opts, nil
}

// resolveOutputFolder maps a folder relative to OUTPUT_PATH to an absolute
// path. Paths escaping OUTPUT_PATH are rejected. The folder is created by the
// write job once the source has been validated.
func (serverHandler *ServerHandler) resolveOutputFolder(folder string) (string, error) {
	root := serverHandler.ServerConfig.OutputPath
	target := filepath.Join(root, filepath.FromSlash(folder))
	if !within(root, target) {
		return "", fmt.Errorf("%w: folder %q is outside the output path", errBadRequest, folder)
	}
	return target, nil
}

// resolveSource maps a server side source to an absolute path under
// SOURCE_PATH. Relative paths are joined to SOURCE_PATH; absolute paths and
// symlink targets must stay inside it.
func (serverHandler *ServerHandler) resolveSource(source string) (string, error) {
	root := serverHandler.ServerConfig.SourcePath
	target := filepath.FromSlash(source)
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	target = filepath.Clean(target)
	if !within(root, target) {
		return "", fmt.Errorf("%w: source %q is outside the source path", errBadRequest, source)
	}
	if resolved, err := filepath.EvalSymlinks(target); err == nil {
		realRoot, rootErr := filepath.EvalSymlinks(root)
		if rootErr != nil {
			realRoot = root
		}
		if !within(realRoot, resolved) {
			return "", fmt.Errorf("%w: source %q is outside the source path", errBadRequest, source)
		}
	}
	return target, nil
}

// within reports whether target is root or below it
func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// readUpload reads the uploaded pdf into memory
func readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// uploadBaseName is the form supplied name, else the uploaded file name without extension
func uploadBaseName(name string, fileHeader *multipart.FileHeader) string {
	if name = strings.TrimSpace(name); name != "" {
		return filepath.Base(name)
	}
	if fileHeader == nil {
		return ""
	}
	base := filepath.Base(fileHeader.Filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// runJob records a conversion in the job history around fn. fn returns the
// files written and the number of pages converted.
func (serverHandler *ServerHandler) runJob(req database.JobRequest, fn func() ([]string, int, error)) (*database.Job, []string, error) {
	job, err := serverHandler.DB.CreateJob(req)
	if err != nil {
		Logger.Error("Failed to create job", "type", req.Type, "error", err)
		return nil, nil, err
	}
	if err := serverHandler.DB.StartJob(job.ID); err != nil {
		Logger.Error("Failed to update job status", "jobID", job.ID, "error", err)
	}
	Logger.Info("Conversion started", "jobID", job.ID, "type", req.Type, "source", req.Source, "pages", req.Pages)

	files, pageCount, runErr := fn()
	if runErr != nil {
		Logger.Error("Conversion failed", "jobID", job.ID, "error", runErr, "written", len(files))
		if err := serverHandler.DB.FailJob(job.ID, runErr.Error(), files); err != nil {
			Logger.Error("Failed to record job failure", "jobID", job.ID, "error", err)
		}
		job.Status = database.JobStatusFailed
		job.Error = runErr.Error()
		job.Files = files
		return job, files, runErr
	}

	if err := serverHandler.DB.CompleteJob(job.ID, pageCount, files); err != nil {
		Logger.Error("Failed to record job completion", "jobID", job.ID, "error", err)
	}
	Logger.Info("Conversion completed", "jobID", job.ID, "pages", pageCount)
	job.Status = database.JobStatusCompleted
	job.PageCount = pageCount
	job.Files = files
	return job, files, nil
}

// writeImages runs WriteImages as a tracked job
func (serverHandler *ServerHandler) writeImages(ctx context.Context, jobType database.JobType, src pdfsplitter.Source, folder string, opts conversionOptions) (*database.Job, []string, error) {
	req := database.JobRequest{
		Type:         jobType,
		Source:       src.String(),
		Pages:        opts.Pages.String(),
		Scale:        opts.Scale.String(),
		Compression:  opts.Compression.String(),
		OutputFolder: folder,
	}
	return serverHandler.runJob(req, func() ([]string, int, error) {
		if err := src.Validate(); err != nil {
			return nil, 0, err
		}
		if err := os.MkdirAll(folder, 0755); err != nil {
			Logger.Error("Unable to create output folder", "path", folder, "error", err)
			return nil, 0, err
		}
		files, err := serverHandler.Splitter.WriteImages(ctx, src, folder, opts.Scale, opts.Compression, opts.Pages)
		return files, len(files), err
	})
}
