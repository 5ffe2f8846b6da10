// Package tablegrid rebuilds rectangular tables from the spanning cells a
// recognition service returns: grid assembly, header detection, row
// alignment against the header, and empty-column trimming.
package tablegrid

import (
	"strings"

	"github.com/skarde/ocrkit/pkg/aipocr"
)

// DefaultHeaderKeywords is the roster vocabulary the header scorer matches
// against. The set is deployment-specific and configurable on the
// Reconstructor.
var DefaultHeaderKeywords = []string{
	"班级", "学号", "姓名", "平时", "期中", "期末", "总评", "备注", "成绩",
}

// Reconstructor turns spanning cells into clean rectangular grids.
type Reconstructor struct {
	// HeaderKeywords are substring-matched against candidate header rows.
	HeaderKeywords []string

	// ScanRows bounds how many leading rows are examined for a header.
	ScanRows int

	// MinHeaderScore is the minimum keyword hits for a row to be designated
	// the header.
	MinHeaderScore int
}

// NewReconstructor returns a reconstructor with default settings.
func NewReconstructor() *Reconstructor {
	return &Reconstructor{
		HeaderKeywords: DefaultHeaderKeywords,
		ScanRows:       8,
		MinHeaderScore: 2,
	}
}

// BuildGrid allocates a grid sized to the maximum observed spans and writes
// each cell's text at its origin (RowStart-1, ColStart-1). When merge
// overlap puts two cells at one origin the texts are concatenated with a
// space. Cells with non-positive starts are dropped. Every row of the
// result has identical length.
func BuildGrid(cells []aipocr.TableCell) [][]string {
	maxRow, maxCol := 0, 0
	for _, c := range cells {
		if c.RowEnd > maxRow {
			maxRow = c.RowEnd
		}
		if c.ColEnd > maxCol {
			maxCol = c.ColEnd
		}
	}
	if maxRow <= 0 || maxCol <= 0 {
		return nil
	}

	grid := make([][]string, maxRow)
	for i := range grid {
		grid[i] = make([]string, maxCol)
	}
	for _, c := range cells {
		r, col := c.RowStart-1, c.ColStart-1
		if r < 0 || col < 0 {
			continue
		}
		if grid[r][col] != "" {
			grid[r][col] = strings.TrimSpace(grid[r][col] + " " + c.Text)
		} else {
			grid[r][col] = c.Text
		}
	}
	return grid
}

// DetectHeader scans at most ScanRows leading rows, scoring each by keyword
// hits over its joined text. The best row is the header only when its score
// reaches MinHeaderScore; ties keep the earliest row.
func (rc *Reconstructor) DetectHeader(grid [][]string) (int, bool) {
	bestIdx, bestScore := -1, 0
	limit := rc.ScanRows
	if limit > len(grid) {
		limit = len(grid)
	}
	for i := 0; i < limit; i++ {
		var parts []string
		for _, cell := range grid[i] {
			if cell != "" {
				parts = append(parts, cell)
			}
		}
		text := strings.Join(parts, " ")
		score := 0
		for _, kw := range rc.HeaderKeywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
		if score > bestScore {
			bestScore, bestIdx = score, i
		}
	}
	if bestScore >= rc.MinHeaderScore {
		return bestIdx, true
	}
	return -1, false
}

// AlignToHeader normalizes data rows against a header of headerLen columns:
// trailing empty cells are trimmed, a leading run of empty cells is shifted
// out when the remaining span fits, and every row is padded or truncated to
// exactly headerLen columns.
func AlignToHeader(rows [][]string, headerLen int) [][]string {
	aligned := make([][]string, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		row = append([]string(nil), row...)

		for len(row) > 0 && strings.TrimSpace(row[len(row)-1]) == "" {
			row = row[:len(row)-1]
		}

		leading := 0
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				break
			}
			leading++
		}
		if leading >= 1 && len(row)-leading <= headerLen {
			row = row[leading:]
		}

		if len(row) < headerLen {
			row = append(row, make([]string, headerLen-len(row))...)
		} else if len(row) > headerLen {
			row = row[:headerLen]
		}
		aligned = append(aligned, row)
	}
	return aligned
}

// TrimEmptyColumns drops every column that is empty across all rows,
// preserving column order.
func TrimEmptyColumns(grid [][]string) [][]string {
	if len(grid) == 0 {
		return grid
	}
	colCount := 0
	for _, row := range grid {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	var keep []int
	for c := 0; c < colCount; c++ {
		for _, row := range grid {
			if c < len(row) && strings.TrimSpace(row[c]) != "" {
				keep = append(keep, c)
				break
			}
		}
	}

	trimmed := make([][]string, len(grid))
	for i, row := range grid {
		out := make([]string, len(keep))
		for j, c := range keep {
			if c < len(row) {
				out[j] = row[c]
			}
		}
		trimmed[i] = out
	}
	return trimmed
}

// Reconstruct runs the full pipeline: grid assembly, then slicing from the
// header row, alignment, and column trimming when a header is found; without
// a header only the column trim applies.
func (rc *Reconstructor) Reconstruct(cells []aipocr.TableCell) [][]string {
	grid := BuildGrid(cells)
	if grid == nil {
		return nil
	}

	idx, ok := rc.DetectHeader(grid)
	if !ok {
		return TrimEmptyColumns(grid)
	}
	data := AlignToHeader(grid[idx:], len(grid[idx]))
	return TrimEmptyColumns(data)
}

// CleanRows collapses internal whitespace in every cell and drops rows that
// are empty throughout. Useful before exporting a grid.
func CleanRows(rows [][]string) [][]string {
	var cleaned [][]string
	for _, row := range rows {
		if row == nil {
			continue
		}
		out := make([]string, len(row))
		empty := true
		for i, cell := range row {
			out[i] = strings.Join(strings.Fields(cell), " ")
			if out[i] != "" {
				empty = false
			}
		}
		if !empty {
			cleaned = append(cleaned, out)
		}
	}
	return cleaned
}
