// Package recognize owns per-page recognition quality control: scoring of
// recognition results and the bounded multi-tier retry ladder that tries
// cheap image enhancements before paying for a higher-resolution re-render.
package recognize

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/skarde/ocrkit/pkg/aipocr"
	"github.com/skarde/ocrkit/pkg/imgprep"
)

var log = logrus.WithField("component", "recognize")

// maxExtraAttempts bounds the recognition calls made beyond the baseline.
const maxExtraAttempts = 3

// Score rates a recognition result for comparison against other attempts on
// the same page: ten points per non-blank word plus one per trimmed rune.
// The value is purely relative and never an absolute quality gate.
func Score(words []aipocr.Word) int {
	lines, chars := 0, 0
	for _, w := range words {
		t := strings.TrimSpace(w.Text)
		if t == "" {
			continue
		}
		lines++
		chars += utf8.RuneCountInString(t)
	}
	return lines*10 + chars
}

// Profile holds the per-quality-mode knobs of the retry ladder.
type Profile struct {
	RenderDPI  int
	RetryDPI   int
	RetryScore int
}

var profiles = map[string]Profile{
	"fast":     {RenderDPI: 220, RetryDPI: 300, RetryScore: 100},
	"balanced": {RenderDPI: 300, RetryDPI: 360, RetryScore: 120},
	"high":     {RenderDPI: 360, RetryDPI: 420, RetryScore: 140},
}

// ProfileFor looks up the profile for a named quality mode. Unknown or empty
// names fall back to balanced. RetryDPI is never below RenderDPI.
func ProfileFor(mode string) Profile {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(mode))]
	if !ok {
		p = profiles["balanced"]
	}
	if p.RetryDPI < p.RenderDPI {
		p.RetryDPI = p.RenderDPI
	}
	return p
}

// Recognizer is the located-text contract the ladder drives. Implemented by
// *aipocr.Client and by the offline tessocr engine.
type Recognizer interface {
	RecognizeTextWithLocation(ctx context.Context, image []byte, dpi int) ([]aipocr.Word, error)
}

// Enhancer is the optional image-enhancement capability. A nil Enhancer
// degrades gracefully: the enhancement tiers are skipped.
type Enhancer interface {
	Normalize(image []byte, mode imgprep.Mode) ([]byte, error)
}

// Renderer produces the page raster at the requested DPI. Supplied per page
// so the higher-DPI tier can re-render the source.
type Renderer func(dpi int) ([]byte, error)

// Strategy runs the ordered retry ladder: baseline, enhance-normal,
// enhance-strong, higher-DPI. Each tier is attempted only while the best
// score is under the profile threshold, and a new result replaces the best
// only when strictly better, so ties keep the cheaper attempt.
type Strategy struct {
	Recognizer Recognizer
	Enhancer   Enhancer
	Profile    Profile
}

// attempt prepares the image and DPI for one retry tier.
type attempt struct {
	name    string
	prepare func() ([]byte, int, error)
}

// Run recognizes one page. The baseline error is returned as-is; tier
// failures are logged and the previous best kept.
func (s *Strategy) Run(ctx context.Context, render Renderer) ([]aipocr.Word, error) {
	baseline, err := render(s.Profile.RenderDPI)
	if err != nil {
		return nil, fmt.Errorf("render page at %d dpi: %w", s.Profile.RenderDPI, err)
	}

	best, err := s.Recognizer.RecognizeTextWithLocation(ctx, baseline, s.Profile.RenderDPI)
	if err != nil {
		return nil, err
	}
	bestScore := Score(best)
	log.WithFields(logrus.Fields{"tier": "baseline", "score": bestScore, "words": len(best)}).Debug("recognition pass")

	extra := 0
	for _, a := range s.attempts(baseline, render) {
		if bestScore >= s.Profile.RetryScore || extra >= maxExtraAttempts {
			break
		}

		img, dpi, err := a.prepare()
		if err != nil {
			log.WithField("tier", a.name).WithError(err).Debug("tier preparation failed")
			continue
		}
		words, err := s.Recognizer.RecognizeTextWithLocation(ctx, img, dpi)
		extra++
		if err != nil {
			log.WithField("tier", a.name).WithError(err).Debug("tier recognition failed")
			continue
		}

		score := Score(words)
		log.WithFields(logrus.Fields{"tier": a.name, "score": score, "words": len(words)}).Debug("recognition pass")
		if score > bestScore {
			best, bestScore = words, score
		}
	}

	return best, nil
}

// attempts builds the ordered tier list for one page. Tiers whose capability
// is unavailable are omitted rather than failing.
func (s *Strategy) attempts(baseline []byte, render Renderer) []attempt {
	var out []attempt
	if s.Enhancer != nil {
		for _, mode := range []imgprep.Mode{imgprep.ModeNormal, imgprep.ModeStrong} {
			mode := mode
			out = append(out, attempt{
				name: "enhance-" + string(mode),
				prepare: func() ([]byte, int, error) {
					img, err := s.Enhancer.Normalize(baseline, mode)
					return img, s.Profile.RenderDPI, err
				},
			})
		}
	}
	if s.Profile.RenderDPI < s.Profile.RetryDPI {
		out = append(out, attempt{
			name: "higher-dpi",
			prepare: func() ([]byte, int, error) {
				img, err := render(s.Profile.RetryDPI)
				return img, s.Profile.RetryDPI, err
			},
		})
	}
	return out
}
