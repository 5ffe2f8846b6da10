package recognize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/skarde/ocrkit/pkg/aipocr"
	"github.com/skarde/ocrkit/pkg/imgprep"
)

func page(texts ...string) []aipocr.Word {
	words := make([]aipocr.Word, len(texts))
	for i, t := range texts {
		words[i] = aipocr.Word{Text: t, X: 10, Y: float64(20 * i), W: 50, H: 12}
	}
	return words
}

// scriptedRecognizer returns one scripted step per call, in order.
type scriptedRecognizer struct {
	steps []struct {
		words []aipocr.Word
		err   error
	}
	dpis []int
}

func (r *scriptedRecognizer) add(words []aipocr.Word, err error) {
	r.steps = append(r.steps, struct {
		words []aipocr.Word
		err   error
	}{words, err})
}

func (r *scriptedRecognizer) RecognizeTextWithLocation(_ context.Context, _ []byte, dpi int) ([]aipocr.Word, error) {
	r.dpis = append(r.dpis, dpi)
	if len(r.steps) == 0 {
		return nil, errors.New("unexpected recognition call")
	}
	step := r.steps[0]
	r.steps = r.steps[1:]
	return step.words, step.err
}

// passEnhancer returns the image unchanged so the ladder's tier ordering can
// be observed without real raster work.
type passEnhancer struct{ fail bool }

func (e passEnhancer) Normalize(image []byte, _ imgprep.Mode) ([]byte, error) {
	if e.fail {
		return nil, errors.New("enhancement unavailable")
	}
	return image, nil
}

func render(dpi int) ([]byte, error) { return []byte("img"), nil }

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		words []aipocr.Word
		want  int
	}{
		{"empty", nil, 0},
		{"single word", page("hello"), 15},
		{"blank words ignored", page("hi", "  ", ""), 12},
		{"multibyte counted as runes", page("数学分析"), 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.words); got != tt.want {
				t.Errorf("Score = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreMonotonicInChars(t *testing.T) {
	// With the line count fixed, more recognized characters never lowers
	// the score.
	prev := -1
	for n := 1; n <= 40; n++ {
		words := page(strings.Repeat("x", n), "tail")
		got := Score(words)
		if got < prev {
			t.Fatalf("score decreased from %d to %d at %d chars", prev, got, n)
		}
		prev = got
	}
}

func TestProfileFor(t *testing.T) {
	tests := []struct {
		mode string
		want Profile
	}{
		{"fast", Profile{220, 300, 100}},
		{"balanced", Profile{300, 360, 120}},
		{"high", Profile{360, 420, 140}},
		{"HIGH", Profile{360, 420, 140}},
		{"", Profile{300, 360, 120}},
		{"turbo", Profile{300, 360, 120}},
	}
	for _, tt := range tests {
		if got := ProfileFor(tt.mode); got != tt.want {
			t.Errorf("ProfileFor(%q) = %+v, want %+v", tt.mode, got, tt.want)
		}
	}
}

func TestRunBaselineGoodEnough(t *testing.T) {
	rec := &scriptedRecognizer{}
	rec.add(page("plenty", "of", "good", "text", "here"), nil) // score 70

	s := &Strategy{
		Recognizer: rec,
		Enhancer:   passEnhancer{},
		Profile:    Profile{RenderDPI: 72, RetryDPI: 144, RetryScore: 50},
	}
	words, err := s.Run(context.Background(), render)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(words) != 5 {
		t.Errorf("got %d words, want baseline result", len(words))
	}
	if len(rec.dpis) != 1 {
		t.Errorf("made %d calls, want 1 when baseline meets threshold", len(rec.dpis))
	}
}

func TestRunBaselineErrorPropagates(t *testing.T) {
	rec := &scriptedRecognizer{}
	rec.add(nil, errors.New("service down"))

	s := &Strategy{Recognizer: rec, Profile: Profile{RenderDPI: 72, RetryDPI: 72, RetryScore: 50}}
	if _, err := s.Run(context.Background(), render); err == nil {
		t.Fatal("expected baseline error to propagate")
	}
}

func TestRunRenderErrorPropagates(t *testing.T) {
	s := &Strategy{
		Recognizer: &scriptedRecognizer{},
		Profile:    Profile{RenderDPI: 72, RetryDPI: 72, RetryScore: 50},
	}
	_, err := s.Run(context.Background(), func(dpi int) ([]byte, error) {
		return nil, errors.New("raster failed")
	})
	if err == nil {
		t.Fatal("expected render error to propagate")
	}
}

func TestRunKeepsBestAttempt(t *testing.T) {
	rec := &scriptedRecognizer{}
	rec.add(page("a"), nil)               // baseline, score 11
	rec.add(page("much", "better"), nil)  // enhance-normal, score 30
	rec.add(page("worse"), nil)           // enhance-strong, score 15
	rec.add(page("equal", "parts"), nil)  // higher-dpi, score 30: tie keeps earlier

	s := &Strategy{
		Recognizer: rec,
		Enhancer:   passEnhancer{},
		Profile:    Profile{RenderDPI: 72, RetryDPI: 144, RetryScore: 1000},
	}
	words, err := s.Run(context.Background(), render)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(words) != 2 || words[0].Text != "much" {
		t.Errorf("got %v, want the enhance-normal result kept on tie", words)
	}
	wantDPIs := []int{72, 72, 72, 144}
	if len(rec.dpis) != len(wantDPIs) {
		t.Fatalf("made %d calls, want %d", len(rec.dpis), len(wantDPIs))
	}
	for i, dpi := range wantDPIs {
		if rec.dpis[i] != dpi {
			t.Errorf("call %d at %d dpi, want %d", i+1, rec.dpis[i], dpi)
		}
	}
}

func TestRunStopsWhenThresholdReached(t *testing.T) {
	rec := &scriptedRecognizer{}
	rec.add(page("a"), nil)                                  // baseline, score 11
	rec.add(page("good", "enough", "now", "really"), nil)    // enhance-normal, score 59

	s := &Strategy{
		Recognizer: rec,
		Enhancer:   passEnhancer{},
		Profile:    Profile{RenderDPI: 72, RetryDPI: 144, RetryScore: 50},
	}
	if _, err := s.Run(context.Background(), render); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rec.dpis) != 2 {
		t.Errorf("made %d calls, want 2 once threshold reached", len(rec.dpis))
	}
}

func TestRunNilEnhancerSkipsEnhanceTiers(t *testing.T) {
	rec := &scriptedRecognizer{}
	rec.add(page("a"), nil)
	rec.add(page("b"), nil)

	s := &Strategy{
		Recognizer: rec,
		Profile:    Profile{RenderDPI: 72, RetryDPI: 144, RetryScore: 1000},
	}
	if _, err := s.Run(context.Background(), render); err != nil {
		t.Fatalf("Run: %v", err)
	}
	wantDPIs := []int{72, 144}
	if len(rec.dpis) != 2 || rec.dpis[0] != wantDPIs[0] || rec.dpis[1] != wantDPIs[1] {
		t.Errorf("dpis = %v, want %v", rec.dpis, wantDPIs)
	}
}

func TestRunNoHigherDPITierWhenEqual(t *testing.T) {
	rec := &scriptedRecognizer{}
	rec.add(page("a"), nil)

	s := &Strategy{
		Recognizer: rec,
		Profile:    Profile{RenderDPI: 300, RetryDPI: 300, RetryScore: 1000},
	}
	if _, err := s.Run(context.Background(), render); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rec.dpis) != 1 {
		t.Errorf("made %d calls, want baseline only", len(rec.dpis))
	}
}

func TestRunTierErrorKeepsPreviousBest(t *testing.T) {
	rec := &scriptedRecognizer{}
	rec.add(page("keep", "me"), nil)          // baseline, score 26
	rec.add(nil, errors.New("flaky service")) // enhance-normal fails
	rec.add(page("z"), nil)                   // enhance-strong, worse
	rec.add(page("y"), nil)                   // higher-dpi, worse

	s := &Strategy{
		Recognizer: rec,
		Enhancer:   passEnhancer{},
		Profile:    Profile{RenderDPI: 72, RetryDPI: 144, RetryScore: 1000},
	}
	words, err := s.Run(context.Background(), render)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(words) != 2 || words[0].Text != "keep" {
		t.Errorf("got %v, want the baseline result", words)
	}
}

func TestRunFailedPreparationDoesNotConsumeAttempt(t *testing.T) {
	rec := &scriptedRecognizer{}
	rec.add(page("a"), nil) // baseline
	rec.add(page("b"), nil) // higher-dpi, the only reachable tier

	s := &Strategy{
		Recognizer: rec,
		Enhancer:   passEnhancer{fail: true},
		Profile:    Profile{RenderDPI: 72, RetryDPI: 144, RetryScore: 1000},
	}
	if _, err := s.Run(context.Background(), render); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rec.dpis) != 2 {
		t.Errorf("made %d recognition calls, want 2 (enhance prep failures skip the call)", len(rec.dpis))
	}
}
