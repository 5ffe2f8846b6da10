// ocrpdf is a command-line tool for turning scanned page images into a
// searchable PDF.
//
// Each page is recognized through the remote OCR service with adaptive
// retries, then assembled into a PDF carrying the page raster plus an
// invisible, selectable text layer. Pages whose sidecar text is already
// substantial are passed through without a recognition call.
//
// Usage:
//
//	ocrpdf -config credentials.yaml -images ./pages -output document.pdf [options]
//
// Required flags:
//
//	-config string    Path to a YAML credentials file (api_key, secret_key)
//	-images string    Directory containing page images (sorted by name)
//	-output string    Output PDF path
//
// Processing options:
//
//	-mode string      Quality mode: fast, balanced or high (default "balanced")
//	-dpi int          Resolution the images were scanned at (default 300)
//	-text-dir string  Directory of per-page sidecar .txt files (same base names)
//	-hocr string      Also write an hOCR file with the recognized words
//	-debug            Render the OCR layer visibly with bounding boxes
//	-overwrite        Overwrite the output PDF if it already exists
//
// The credentials file:
//
//	api_key: "..."
//	secret_key: "..."
//	mode: balanced   # optional, overridden by -mode
//
// Example:
//
//	ocrpdf -config cred.yaml -images ./scans -output thesis.pdf -mode high -hocr thesis.hocr
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/skarde/ocrkit/pkg/aipocr"
	"github.com/skarde/ocrkit/pkg/hocr"
	"github.com/skarde/ocrkit/pkg/imgprep"
	"github.com/skarde/ocrkit/pkg/recognize"
	"github.com/skarde/ocrkit/pkg/searchpdf"
)

type credentials struct {
	APIKey    string `yaml:"api_key"`
	SecretKey string `yaml:"secret_key"`
	Mode      string `yaml:"mode"`
}

func loadCredentials(path string) (credentials, error) {
	var cred credentials
	data, err := os.ReadFile(path)
	if err != nil {
		return cred, err
	}
	if err := yaml.Unmarshal(data, &cred); err != nil {
		return cred, fmt.Errorf("parse %s: %w", path, err)
	}
	if cred.APIKey == "" || cred.SecretKey == "" {
		return cred, fmt.Errorf("%s must set api_key and secret_key", path)
	}
	return cred, nil
}

func main() {
	configPath := flag.String("config", "", "Path to YAML credentials file")
	imageDir := flag.String("images", "", "Directory containing page images")
	textDir := flag.String("text-dir", "", "Directory of per-page sidecar .txt files")
	outputPath := flag.String("output", "", "Output PDF path")
	hocrPath := flag.String("hocr", "", "Also write an hOCR file to this path")
	mode := flag.String("mode", "", "Quality mode: fast, balanced or high")
	scanDPI := flag.Int("dpi", 300, "Resolution the images were scanned at")
	debug := flag.Bool("debug", false, "Render the OCR layer visibly with bounding boxes")
	overwrite := flag.Bool("overwrite", false, "Overwrite the output PDF if it already exists")
	flag.Parse()

	if *configPath == "" || *imageDir == "" || *outputPath == "" {
		fmt.Println("Error: Must provide -config, -images and -output")
		os.Exit(1)
	}
	if _, err := os.Stat(*outputPath); err == nil && !*overwrite {
		fmt.Printf("Output file %s already exists. Use -overwrite to overwrite.\n", *outputPath)
		os.Exit(1)
	}

	cred, err := loadCredentials(*configPath)
	if err != nil {
		fmt.Printf("Failed to load credentials: %v\n", err)
		os.Exit(1)
	}
	if *mode == "" {
		*mode = cred.Mode
	}

	imagePaths, err := filepath.Glob(filepath.Join(*imageDir, "*"))
	if err != nil {
		fmt.Printf("Error accessing image directory: %v\n", err)
		os.Exit(1)
	}
	sort.Strings(imagePaths)
	fmt.Printf("Found %d image files in %s\n", len(imagePaths), *imageDir)

	var images [][]byte
	var texts []string
	for _, imgPath := range imagePaths {
		imgBytes, err := os.ReadFile(imgPath)
		if err != nil {
			fmt.Printf("Failed to read image %s: %v\n", imgPath, err)
			os.Exit(1)
		}
		images = append(images, imgBytes)
		texts = append(texts, sidecarText(*textDir, imgPath))
	}

	src, err := searchpdf.NewImageSource(images, texts, *scanDPI)
	if err != nil {
		fmt.Printf("Error preparing page source: %v\n", err)
		os.Exit(1)
	}

	client := aipocr.New(cred.APIKey, cred.SecretKey)
	strategy := &recognize.Strategy{
		Recognizer: client,
		Enhancer:   &imgprep.Enhancer{},
		Profile:    recognize.ProfileFor(*mode),
	}

	cfg := searchpdf.DefaultConfig()
	cfg.Mode = *mode
	cfg.Debug = *debug
	cfg.OnProgress = func(percent int, progressText, statusText string) {
		if statusText != "" {
			fmt.Printf("[%3d%%] %s: %s\n", percent, progressText, statusText)
		} else {
			fmt.Printf("[%3d%%] %s\n", percent, progressText)
		}
	}

	result, pdfData, err := searchpdf.NewComposer(strategy, cfg).Compose(context.Background(), src)
	if err != nil {
		fmt.Printf("Error composing PDF: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*outputPath, pdfData, 0666); err != nil {
		fmt.Printf("Failed to write output PDF: %v\n", err)
		os.Exit(1)
	}

	if *hocrPath != "" {
		if err := writeHOCR(*hocrPath, src, result); err != nil {
			fmt.Printf("Failed to write hOCR file: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Searchable PDF created: %s (%d recognized, %d skipped, %d failed, %d chars)\n",
		*outputPath, result.ProcessedPages, result.SkippedPages, result.FailedPages, result.CharCount)
	for _, perr := range result.Errors {
		fmt.Printf("Warning: %v\n", perr)
	}
}

// sidecarText loads the .txt file matching an image's base name, empty when
// no text directory is set or the file is absent.
func sidecarText(textDir, imgPath string) string {
	if textDir == "" {
		return ""
	}
	base := strings.TrimSuffix(filepath.Base(imgPath), filepath.Ext(imgPath))
	data, err := os.ReadFile(filepath.Join(textDir, base+".txt"))
	if err != nil {
		return ""
	}
	return string(data)
}

func writeHOCR(path string, src *searchpdf.ImageSource, result *searchpdf.Result) error {
	var pages []hocr.Page
	for i, words := range result.Words {
		w, h, err := src.PageSize(i)
		if err != nil {
			return err
		}
		pages = append(pages, hocr.Page{Number: i + 1, Width: w, Height: h, Words: words})
	}
	data, err := hocr.Generate(pages)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0666)
}
