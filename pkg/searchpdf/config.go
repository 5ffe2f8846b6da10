package searchpdf

import "time"

// ProgressFunc receives progress after each page. A percent of -1 means only
// the status texts changed.
type ProgressFunc func(percent int, progressText, statusText string)

// Config holds user options for composing a searchable PDF.
type Config struct {
	Mode         string        // Quality mode name (fast/balanced/high)
	MinTextChars int           // Skip threshold for existing page text
	Pacing       time.Duration // Delay between successive recognition calls
	LayerName    string        // Base name of OCR layer (page number appended)
	Debug        bool          // Render overlay text visibly with boxes
	OnProgress   ProgressFunc  // Progress callback (nil = none)
	Font         FontConfig
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Mode:         "balanced",
		MinTextChars: 24,
		Pacing:       500 * time.Millisecond,
		LayerName:    "OCR Text",
		Debug:        false,
		Font:         DefaultFont,
	}
}

// FontConfig contains font settings for the OCR text overlay.
type FontConfig struct {
	Name        string  // Font name (e.g., "Helvetica")
	Style       string  // Font style ("", "B", "I", "BI")
	Size        float64 // Default font size
	AscentRatio float64 // Vertical anchor ratio within the word box
}

// DefaultFont is tried and tested for the OCR layer.
var DefaultFont = FontConfig{
	Name:        "Helvetica",
	Style:       "",
	Size:        10,
	AscentRatio: 0.85,
}
