// Command pdf2image rasterizes PDF pages from the command line
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/drummonds/pdf2image/config"
	"github.com/drummonds/pdf2image/engine/pdfrenderer"
	"github.com/drummonds/pdf2image/internal/build"
	"github.com/drummonds/pdf2image/pdfsplitter"
)

// Exit codes
const (
	exitOK         = 0
	exitFailure    = 1
	exitValidation = 2
)

// rendererFlags are shared by every command that renders
type rendererFlags struct {
	backend  string
	poolSize int
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	serverConfig, logger := config.SetupCLI()
	pdfsplitter.Logger = logger
	pdfrenderer.Logger = logger

	root := newRootCmd(serverConfig, stdin)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitCode(err)
	}
	return exitOK
}

func newRootCmd(serverConfig config.ServerConfig, stdin io.Reader) *cobra.Command {
	flags := &rendererFlags{}
	root := &cobra.Command{
		Use:           "pdf2image",
		Short:         "Convert PDF pages into images",
		Version:       build.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.backend, "renderer", serverConfig.Renderer, "rasterizer backend: pdfium|fitz")
	root.PersistentFlags().IntVar(&flags.poolSize, "pool-size", serverConfig.PDFiumPoolSize, "number of PDFium instances")

	root.AddCommand(writeCmd(serverConfig, flags, stdin))
	root.AddCommand(imagesCmd(serverConfig, flags, stdin))
	root.AddCommand(inspectCmd(stdin))
	return root
}

// exitCode maps validation failures to 2 and everything else to 1
func exitCode(err error) int {
	if pdfsplitter.IsValidation(err) {
		return exitValidation
	}
	return exitFailure
}

// openSplitter starts the renderer; the returned func closes it
func openSplitter(serverConfig config.ServerConfig, flags *rendererFlags) (*pdfsplitter.Splitter, func(), error) {
	renderer, err := pdfrenderer.NewRenderer(pdfrenderer.Options{
		Backend:         strings.ToLower(flags.backend),
		PoolSize:        flags.poolSize,
		InstanceTimeout: serverConfig.RenderTimeout,
	})
	if err != nil {
		return nil, nil, err
	}
	return pdfsplitter.New(renderer), func() { renderer.Close() }, nil
}

// sourceFor reads "-" from stdin, anything else is a file path
func sourceFor(arg, name string, stdin io.Reader) (pdfsplitter.Source, error) {
	if arg != "-" {
		src := pdfsplitter.FromFile(arg)
		return src, src.Validate()
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return pdfsplitter.Source{}, fmt.Errorf("reading stdin: %w", err)
	}
	return pdfsplitter.FromBytes(data, name), nil
}

// conversionFlags are the scale, compression and page options of a command
type conversionFlags struct {
	scale       string
	compression string
	pages       string
	name        string
	out         string
}

func (f *conversionFlags) register(cmd *cobra.Command, serverConfig config.ServerConfig) {
	cmd.Flags().StringVarP(&f.out, "out", "o", ".", "output folder (must exist)")
	cmd.Flags().StringVarP(&f.scale, "scale", "s", serverConfig.DefaultScale, "scale: low|high|veryhigh")
	cmd.Flags().StringVarP(&f.compression, "compression", "c", serverConfig.DefaultCompression, "jpeg compression: none|low|medium|high")
	cmd.Flags().StringVarP(&f.pages, "pages", "p", "", "pages to convert, e.g. 1,3,5-7 (default all)")
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "base file name for stdin input (default pdfpic)")
}

func (f *conversionFlags) parse() (pdfsplitter.Scale, pdfsplitter.CompressionLevel, pdfsplitter.PageSelection, error) {
	scale, err := pdfsplitter.ParseScale(f.scale)
	if err != nil {
		return 0, 0, nil, err
	}
	compression, err := pdfsplitter.ParseCompression(f.compression)
	if err != nil {
		return 0, 0, nil, &pdfsplitter.ValidationError{Op: "parse compression", Subject: f.compression, Err: err}
	}
	pages, err := pdfsplitter.ParsePageSelection(f.pages)
	if err != nil {
		return 0, 0, nil, &pdfsplitter.ValidationError{Op: "parse pages", Subject: f.pages, Err: err}
	}
	return scale, compression, pages, nil
}

func writeCmd(serverConfig config.ServerConfig, rflags *rendererFlags, stdin io.Reader) *cobra.Command {
	flags := &conversionFlags{}
	cmd := &cobra.Command{
		Use:   "write <pdf|->",
		Short: "Write every selected page as <name>_<page>.jpg",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scale, compression, pages, err := flags.parse()
			if err != nil {
				return err
			}
			src, err := sourceFor(args[0], flags.name, stdin)
			if err != nil {
				return err
			}
			splitter, closeRenderer, err := openSplitter(serverConfig, rflags)
			if err != nil {
				return err
			}
			defer closeRenderer()

			files, err := splitter.WriteImages(cmd.Context(), src, flags.out, scale, compression, pages)
			for _, file := range files {
				fmt.Fprintln(cmd.OutOrStdout(), file)
			}
			return err
		},
	}
	flags.register(cmd, serverConfig)
	return cmd
}

func imagesCmd(serverConfig config.ServerConfig, rflags *rendererFlags, stdin io.Reader) *cobra.Command {
	flags := &conversionFlags{}
	var format string
	cmd := &cobra.Command{
		Use:   "images <pdf|->",
		Short: "Render pages in memory and save them as jpeg or png",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scale, compression, pages, err := flags.parse()
			if err != nil {
				return err
			}
			ext := strings.ToLower(format)
			switch ext {
			case "jpg", pdfsplitter.FormatJPEG:
				ext = "jpg"
			case pdfsplitter.FormatPNG:
			default:
				return &pdfsplitter.ValidationError{Op: "parse format", Subject: format, Err: errors.New("want jpeg or png")}
			}
			if info, err := os.Stat(flags.out); err != nil || !info.IsDir() {
				return &pdfsplitter.ValidationError{Op: "images", Subject: flags.out, Err: pdfsplitter.ErrOutputFolderMissing}
			}
			src, err := sourceFor(args[0], flags.name, stdin)
			if err != nil {
				return err
			}
			splitter, closeRenderer, err := openSplitter(serverConfig, rflags)
			if err != nil {
				return err
			}
			defer closeRenderer()

			rendered, err := splitter.Pages(cmd.Context(), src, scale, pages)
			if err != nil {
				return err
			}
			for _, page := range rendered {
				path := filepath.Join(flags.out, fmt.Sprintf("%s_%d.%s", src.BaseName(), page.Number, ext))
				if err := saveImage(path, page, format, compression); err != nil {
					return err
				}
				b := page.Image.Bounds()
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%dx%d\n", path, b.Dx(), b.Dy())
			}
			return nil
		},
	}
	flags.register(cmd, serverConfig)
	cmd.Flags().StringVarP(&format, "format", "f", pdfsplitter.FormatPNG, "image format: jpeg|png")
	return cmd
}

func saveImage(path string, page pdfsplitter.Page, format string, compression pdfsplitter.CompressionLevel) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pdfsplitter.Encode(file, page.Image, format, compression); err != nil {
		file.Close()
		return &pdfsplitter.EngineError{Stage: pdfsplitter.StageEncode, Page: page.Number, Err: err}
	}
	return file.Close()
}

func inspectCmd(stdin io.Reader) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <pdf|->",
		Short: "Print page count, page sizes and metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := sourceFor(args[0], "", stdin)
			if err != nil {
				return err
			}
			info, err := pdfsplitter.Inspect(src)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), info)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
