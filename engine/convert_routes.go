package engine

import (
	"bytes"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/drummonds/pdf2image/database"
	"github.com/drummonds/pdf2image/pdfsplitter"
	"github.com/labstack/echo/v4"
)

type pageImage struct {
	Page   int    `json:"page"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Image  string `json:"image"` // base64 encoded
}

type writeRequest struct {
	Source      string `json:"source"`
	Folder      string `json:"folder"`
	Scale       string `json:"scale"`
	Compression string `json:"compression"`
	Pages       string `json:"pages"`
}

type writeResponse struct {
	JobID     string   `json:"jobId,omitempty"`
	Files     []string `json:"files"`
	PageCount int      `json:"pageCount"`
	Error     string   `json:"error,omitempty"`
}

// PostImages renders an uploaded PDF and returns the pages inline
// @Summary Render PDF pages
// @Description Render the selected pages of an uploaded PDF and return them base64 encoded
// @Tags Convert
// @Accept multipart/form-data
// @Produce json
// @Param pdf formData file true "PDF document"
// @Param scale formData string false "low, high or veryhigh"
// @Param pages formData string false "Pages such as 1,3,5-7 (default all)"
// @Param format formData string false "jpeg or png (default jpeg)"
// @Param compression formData string false "none, low, medium or high (jpeg only)"
// @Success 200 {array} pageImage "Rendered pages"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 422 {object} map[string]interface{} "PDF could not be rendered"
// @Router /images [post]
func (serverHandler *ServerHandler) PostImages(c echo.Context) error {
	fileHeader, err := c.FormFile("pdf")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Missing pdf upload")
	}
	opts, err := serverHandler.parseOptions(c.FormValue("scale"), c.FormValue("compression"), c.FormValue("pages"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	format := strings.ToLower(c.FormValue("format"))
	switch format {
	case "", "jpg":
		format = pdfsplitter.FormatJPEG
	case pdfsplitter.FormatJPEG, pdfsplitter.FormatPNG:
	default:
		return errorJSON(c, http.StatusBadRequest, "Unsupported format "+format)
	}

	data, err := readUpload(fileHeader)
	if err != nil {
		Logger.Error("Unable to read uploaded file", "error", err)
		return errorJSON(c, http.StatusBadRequest, "Unable to read upload")
	}
	src := pdfsplitter.FromBytes(data, uploadBaseName("", fileHeader))

	var images []pageImage
	req := database.JobRequest{
		Type:        database.JobTypeImages,
		Source:      fileHeader.Filename,
		Pages:       opts.Pages.String(),
		Scale:       opts.Scale.String(),
		Compression: opts.Compression.String(),
	}
	job, _, err := serverHandler.runJob(req, func() ([]string, int, error) {
		pages, err := serverHandler.Splitter.Pages(c.Request().Context(), src, opts.Scale, opts.Pages)
		if err != nil {
			return nil, 0, err
		}
		images = make([]pageImage, 0, len(pages))
		for _, page := range pages {
			var buf bytes.Buffer
			if err := pdfsplitter.Encode(&buf, page.Image, format, opts.Compression); err != nil {
				return nil, 0, &pdfsplitter.EngineError{Stage: pdfsplitter.StageEncode, Page: page.Number, Err: err}
			}
			bounds := page.Image.Bounds()
			images = append(images, pageImage{
				Page:   page.Number,
				Width:  bounds.Dx(),
				Height: bounds.Dy(),
				Format: format,
				Image:  base64.StdEncoding.EncodeToString(buf.Bytes()),
			})
		}
		return nil, len(pages), nil
	})
	if job != nil {
		c.Response().Header().Set("X-Job-ID", job.ID.String())
	}
	if err != nil {
		return errorJSON(c, statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, images)
}

// PostWrite writes JPEG files for a PDF already on the server
// @Summary Write page images for a server side PDF
// @Description Render a PDF found under the source path into JPEG files under the output path
// @Tags Convert
// @Accept json
// @Produce json
// @Param request body writeRequest true "Source path under the source path, output folder relative to the output path and options"
// @Success 200 {object} writeResponse "Files written"
// @Failure 400 {object} writeResponse "Invalid request"
// @Failure 422 {object} writeResponse "PDF could not be rendered"
// @Router /write [post]
func (serverHandler *ServerHandler) PostWrite(c echo.Context) error {
	var request writeRequest
	if err := c.Bind(&request); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if request.Source == "" {
		return errorJSON(c, http.StatusBadRequest, "source is required")
	}
	opts, err := serverHandler.parseOptions(request.Scale, request.Compression, request.Pages)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	source, err := serverHandler.resolveSource(request.Source)
	if err != nil {
		return errorJSON(c, statusFor(err), err.Error())
	}
	folder, err := serverHandler.resolveOutputFolder(request.Folder)
	if err != nil {
		return errorJSON(c, statusFor(err), err.Error())
	}

	job, files, err := serverHandler.writeImages(c.Request().Context(), database.JobTypeWrite, pdfsplitter.FromFile(source), folder, opts)
	return writeResult(c, job, files, err)
}

// PostWriteUpload writes JPEG files for an uploaded PDF
// @Summary Write page images for an uploaded PDF
// @Description Render an uploaded PDF into JPEG files named <name>_<page>.jpg under the output path
// @Tags Convert
// @Accept multipart/form-data
// @Produce json
// @Param pdf formData file true "PDF document"
// @Param name formData string false "Base file name (default: upload file name)"
// @Param folder formData string false "Output folder relative to the output path"
// @Param scale formData string false "low, high or veryhigh"
// @Param pages formData string false "Pages such as 1,3,5-7 (default all)"
// @Param compression formData string false "none, low, medium or high"
// @Success 200 {object} writeResponse "Files written"
// @Failure 400 {object} writeResponse "Invalid request"
// @Failure 422 {object} writeResponse "PDF could not be rendered"
// @Router /write/upload [post]
func (serverHandler *ServerHandler) PostWriteUpload(c echo.Context) error {
	fileHeader, err := c.FormFile("pdf")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Missing pdf upload")
	}
	opts, err := serverHandler.parseOptions(c.FormValue("scale"), c.FormValue("compression"), c.FormValue("pages"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	folder, err := serverHandler.resolveOutputFolder(c.FormValue("folder"))
	if err != nil {
		return errorJSON(c, statusFor(err), err.Error())
	}
	data, err := readUpload(fileHeader)
	if err != nil {
		Logger.Error("Unable to read uploaded file", "error", err)
		return errorJSON(c, http.StatusBadRequest, "Unable to read upload")
	}

	src := pdfsplitter.FromBytes(data, uploadBaseName(c.FormValue("name"), fileHeader))
	job, files, err := serverHandler.writeImages(c.Request().Context(), database.JobTypeWriteUpload, src, folder, opts)
	return writeResult(c, job, files, err)
}

func writeResult(c echo.Context, job *database.Job, files []string, err error) error {
	response := writeResponse{Files: files, PageCount: len(files)}
	if response.Files == nil {
		response.Files = []string{}
	}
	if job != nil {
		response.JobID = job.ID.String()
	}
	if err != nil {
		response.Error = err.Error()
		return c.JSON(statusFor(err), response)
	}
	return c.JSON(http.StatusOK, response)
}

// PostInspect reports page count, page sizes and metadata of an uploaded PDF
// @Summary Inspect a PDF
// @Tags Convert
// @Accept multipart/form-data
// @Produce json
// @Param pdf formData file true "PDF document"
// @Success 200 {object} pdfsplitter.Info "Document information"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 422 {object} map[string]interface{} "PDF could not be read"
// @Router /inspect [post]
func (serverHandler *ServerHandler) PostInspect(c echo.Context) error {
	fileHeader, err := c.FormFile("pdf")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Missing pdf upload")
	}
	data, err := readUpload(fileHeader)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Unable to read upload")
	}
	info, err := pdfsplitter.Inspect(pdfsplitter.FromBytes(data, uploadBaseName("", fileHeader)))
	if err != nil {
		Logger.Warn("Inspect failed", "file", fileHeader.Filename, "error", err)
		return errorJSON(c, statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, info)
}
