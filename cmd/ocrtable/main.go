// ocrtable is a command-line tool for extracting a table from a scanned
// image into CSV.
//
// The image is sent to the remote table-recognition endpoint, the cell list
// is rebuilt into a rectangular grid, and unless -raw is set the grid is
// cleaned up: the header row is detected, data rows are re-aligned to it and
// empty columns are dropped.
//
// Usage:
//
//	ocrtable -config credentials.yaml -image roster.png -output roster.csv
//
// Flags:
//
//	-config string  Path to a YAML credentials file (api_key, secret_key)
//	-image string   Path to the table image
//	-output string  Output CSV path (default: stdout)
//	-raw            Emit the raw grid without header alignment or trimming
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/skarde/ocrkit/pkg/aipocr"
	"github.com/skarde/ocrkit/pkg/tablegrid"
)

type credentials struct {
	APIKey    string `yaml:"api_key"`
	SecretKey string `yaml:"secret_key"`
}

func main() {
	configPath := flag.String("config", "", "Path to YAML credentials file")
	imagePath := flag.String("image", "", "Path to the table image")
	outputPath := flag.String("output", "", "Output CSV path (default: stdout)")
	raw := flag.Bool("raw", false, "Emit the raw grid without cleanup")
	flag.Parse()

	if *configPath == "" || *imagePath == "" {
		fmt.Println("Error: Must provide -config and -image")
		os.Exit(1)
	}

	data, err := os.ReadFile(*configPath)
	if err != nil {
		fmt.Printf("Failed to load credentials: %v\n", err)
		os.Exit(1)
	}
	var cred credentials
	if err := yaml.Unmarshal(data, &cred); err != nil {
		fmt.Printf("Failed to parse credentials: %v\n", err)
		os.Exit(1)
	}

	image, err := os.ReadFile(*imagePath)
	if err != nil {
		fmt.Printf("Failed to read image: %v\n", err)
		os.Exit(1)
	}

	client := aipocr.New(cred.APIKey, cred.SecretKey)
	cells, err := client.RecognizeTable(context.Background(), image, aipocr.TableOptions{CellContents: true})
	if err != nil {
		fmt.Printf("Table recognition failed: %v\n", err)
		os.Exit(1)
	}
	if len(cells) == 0 {
		fmt.Println("No table cells recognized")
		os.Exit(1)
	}

	rows := buildRows(tablegrid.NewReconstructor(), cells, *raw)
	if len(rows) == 0 {
		fmt.Println("Recognized table is empty")
		os.Exit(1)
	}

	var out io.Writer = os.Stdout
	if *outputPath != "" {
		f, err := os.Create(*outputPath)
		if err != nil {
			fmt.Printf("Failed to create output file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	if err := w.WriteAll(rows); err != nil {
		fmt.Printf("Failed to write CSV: %v\n", err)
		os.Exit(1)
	}
	if *outputPath != "" {
		fmt.Printf("Table written: %s (%d rows x %d columns)\n", *outputPath, len(rows), len(rows[0]))
	}
}

// buildRows assembles the export rows: the raw grid or the full
// reconstruction pipeline, cleaned either way.
func buildRows(rec *tablegrid.Reconstructor, cells []aipocr.TableCell, raw bool) [][]string {
	var rows [][]string
	if raw {
		rows = tablegrid.BuildGrid(cells)
	} else {
		rows = rec.Reconstruct(cells)
	}
	return tablegrid.CleanRows(rows)
}
