// =============================================================================
// Preston RPA - Screen Actuator: OCR Engine
// =============================================================================
//
// Locates UI text on screen with Tesseract and clicks it. The engine works
// on screenshots: capture region, run OCR, compare word boxes against the
// wanted labels, translate the hit back to absolute screen coordinates.
//
// Tesseract and the configured language pack must be installed on the host.
//
// =============================================================================

package screen

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"

	"github.com/mkaraca/preston-rpa/internal/config"
)

// Engine performs OCR text localization on the live screen.
type Engine struct {
	lang       string
	confidence float64
	clickDelay time.Duration
	debugDir   string
	log        zerolog.Logger
}

// NewEngine builds an OCR engine from the screen actuator settings.
func NewEngine(cfg config.ScreenConfig, log zerolog.Logger) *Engine {
	return &Engine{
		lang:       cfg.OCRLanguage,
		confidence: cfg.OCRConfidence,
		clickDelay: time.Duration(cfg.ClickDelayMS) * time.Millisecond,
		debugDir:   cfg.DebugDir,
		log:        log,
	}
}

// FindText searches the region (the whole screen when region is empty) for
// any of the given labels and returns the absolute bounding box of the first
// hit. Comparison is case-insensitive on trimmed text.
func (e *Engine) FindText(labels []string, region image.Rectangle) (image.Rectangle, bool, error) {
	shot, err := e.screenshot(region)
	if err != nil {
		return image.Rectangle{}, false, err
	}
	defer os.Remove(shot)

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(e.lang); err != nil {
		return image.Rectangle{}, false, fmt.Errorf("unsupported OCR language %q: %w", e.lang, err)
	}
	if err := client.SetImage(shot); err != nil {
		return image.Rectangle{}, false, fmt.Errorf("failed to load screenshot: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return image.Rectangle{}, false, fmt.Errorf("ocr failed: %w", err)
	}

	for _, box := range boxes {
		if box.Confidence < e.confidence*100 {
			continue
		}
		line := normalize(box.Word)
		for _, label := range labels {
			if strings.Contains(line, normalize(label)) {
				return box.Box.Add(region.Min), true, nil
			}
		}
	}

	if e.debugDir != "" {
		e.saveDebugImage(shot, labels)
	}
	return image.Rectangle{}, false, nil
}

// ClickText finds one of the labels and clicks its center.
func (e *Engine) ClickText(labels []string, region image.Rectangle) error {
	box, found, err := e.FindText(labels, region)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("text %q not found on screen", labels[0])
	}

	center := box.Min.Add(box.Size().Div(2))
	robotgo.Move(center.X, center.Y)
	robotgo.Click()
	time.Sleep(e.clickDelay)
	return nil
}

// WaitForText polls until one of the labels appears or the timeout elapses.
func (e *Engine) WaitForText(ctx context.Context, labels []string, timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		_, found, err := e.FindText(labels, image.Rectangle{})
		if err != nil {
			return false, err
		}
		if found {
			return true, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return false, nil
}

// screenshot captures the region to a temporary PNG and returns its path.
func (e *Engine) screenshot(region image.Rectangle) (string, error) {
	var img image.Image
	if region.Empty() {
		img = robotgo.CaptureImg()
	} else {
		img = robotgo.CaptureImg(region.Min.X, region.Min.Y, region.Dx(), region.Dy())
	}
	if img == nil {
		return "", fmt.Errorf("screen capture failed")
	}

	f, err := os.CreateTemp("", "preston-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create screenshot file: %w", err)
	}
	f.Close()

	if err := robotgo.Save(img, f.Name()); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to save screenshot: %w", err)
	}
	return f.Name(), nil
}

// saveDebugImage keeps the screenshot of a failed lookup for inspection.
func (e *Engine) saveDebugImage(shot string, labels []string) {
	if err := os.MkdirAll(e.debugDir, 0o755); err != nil {
		e.log.Error().Err(err).Msg("failed to create debug directory")
		return
	}
	name := fmt.Sprintf("not_found_%s_%s.png",
		sanitize(labels[0]), time.Now().Format("150405"))
	dst := filepath.Join(e.debugDir, name)

	data, err := os.ReadFile(shot)
	if err == nil {
		err = os.WriteFile(dst, data, 0o644)
	}
	if err != nil {
		e.log.Error().Err(err).Msg("failed to save debug image")
		return
	}
	e.log.Debug().Str("image", dst).Msg("saved debug screenshot")
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}
