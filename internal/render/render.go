package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// Renderer rasterizes PDF pages to PNG through poppler's pdftoppm, with an
// optional ImageMagick enhancement pass before OCR.
type Renderer struct {
	pdftoppmPath string
	enhance      bool
}

// New locates pdftoppm in PATH. A missing binary is not a construction
// error; Available reports it so the registry can record the reason.
func New(enhance bool) *Renderer {
	path, err := exec.LookPath("pdftoppm")
	if err != nil {
		log.Warn().Msg("pdftoppm not found in PATH, page rasterization unavailable")
	}
	return &Renderer{
		pdftoppmPath: path,
		enhance:      enhance,
	}
}

// Available reports whether page rasterization can work at all.
func (r *Renderer) Available() error {
	if r.pdftoppmPath == "" {
		return fmt.Errorf("pdftoppm not found in PATH (install poppler-utils)")
	}
	return nil
}

// RenderPage rasterizes a single 0-based page to PNG bytes.
func (r *Renderer) RenderPage(ctx context.Context, pdfPath string, pageIndex, dpi int) ([]byte, error) {
	if err := r.Available(); err != nil {
		return nil, err
	}
	if dpi <= 0 {
		dpi = 300
	}

	tmpDir, err := os.MkdirTemp("", "qadocr-render-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// pdftoppm pages are 1-based
	pageNum := strconv.Itoa(pageIndex + 1)
	prefix := filepath.Join(tmpDir, "page")

	cmd := exec.CommandContext(ctx, r.pdftoppmPath,
		"-png",
		"-r", strconv.Itoa(dpi),
		"-f", pageNum,
		"-l", pageNum,
		pdfPath,
		prefix,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm page %d: %w: %s", pageIndex, err, strings.TrimSpace(stderr.String()))
	}

	entries, err := filepath.Glob(prefix + "*.png")
	if err != nil || len(entries) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no image for page %d", pageIndex)
	}
	sort.Strings(entries)

	data, err := os.ReadFile(entries[0])
	if err != nil {
		return nil, fmt.Errorf("reading rendered page %d: %w", pageIndex, err)
	}

	if r.enhance {
		data = r.enhanceImage(data)
	}
	return data, nil
}

// enhanceImage runs the ImageMagick cleanup pipeline (grayscale, normalize,
// despeckle, sharpen). Any failure falls back to the original image.
func (r *Renderer) enhanceImage(imageData []byte) []byte {
	inputFile, outputFile, cleanup, err := stageEnhanceInput(imageData)
	if err != nil {
		return imageData
	}
	defer cleanup()

	args := []string{
		inputFile,
		"-colorspace", "Gray",
		"-normalize",
		"-contrast-stretch", "2%x1%",
		"-despeckle",
		"-sharpen", "0x1",
		"-quality", "95",
		outputFile,
	}

	// 'magick' is ImageMagick 7, 'convert' the v6 fallback
	var cmd *exec.Cmd
	if _, err := exec.LookPath("magick"); err == nil {
		cmd = exec.Command("magick", args...)
	} else if _, err := exec.LookPath("convert"); err == nil {
		cmd = exec.Command("convert", args...)
	} else {
		return imageData
	}

	if err := cmd.Run(); err != nil {
		log.Debug().Err(err).Msg("imagemagick enhancement failed, using original image")
		return imageData
	}

	processed, err := os.ReadFile(outputFile)
	if err != nil {
		return imageData
	}
	return processed
}

// stageEnhanceInput writes the image into a fresh temp directory so that
// concurrent page renders never share enhancement files.
func stageEnhanceInput(imageData []byte) (inputFile, outputFile string, cleanup func(), err error) {
	tmpDir, err := os.MkdirTemp("", "qadocr-enhance-*")
	if err != nil {
		return "", "", nil, fmt.Errorf("creating temp dir: %w", err)
	}

	inputFile = filepath.Join(tmpDir, "in.png")
	outputFile = filepath.Join(tmpDir, "out.png")
	if err := os.WriteFile(inputFile, imageData, 0644); err != nil {
		os.RemoveAll(tmpDir)
		return "", "", nil, fmt.Errorf("staging image: %w", err)
	}

	return inputFile, outputFile, func() { os.RemoveAll(tmpDir) }, nil
}

// PageCount opens the PDF and returns its number of pages.
func PageCount(pdfPath string) (int, error) {
	f, reader, err := pdf.Open(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", pdfPath, err)
	}
	defer f.Close()
	return reader.NumPage(), nil
}
