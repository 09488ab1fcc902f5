// =============================================================================
// Preston RPA - Screen Actuator: Icon Matcher
// =============================================================================
//
// Finds toolbar icons on screen by normalized template matching. Templates
// are grayscale PNG crops of the target icons, stored in the configured
// templates directory.
//
// =============================================================================

package screen

import (
	"fmt"
	"image"
	"time"

	"github.com/go-vgo/robotgo"
	"gocv.io/x/gocv"
)

// Matcher locates icons via OpenCV template matching.
type Matcher struct {
	confidence float64
	clickDelay time.Duration
}

// NewMatcher builds a matcher with the given minimum match score (0..1).
func NewMatcher(confidence float64, clickDelay time.Duration) *Matcher {
	return &Matcher{confidence: confidence, clickDelay: clickDelay}
}

// FindIcon matches the template against the current screen and returns the
// best hit when it clears the confidence threshold.
func (m *Matcher) FindIcon(templatePath string) (image.Rectangle, bool, error) {
	img := robotgo.CaptureImg()
	if img == nil {
		return image.Rectangle{}, false, fmt.Errorf("screen capture failed")
	}

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return image.Rectangle{}, false, fmt.Errorf("failed to convert screenshot: %w", err)
	}
	defer src.Close()

	screen := gocv.NewMat()
	defer screen.Close()
	gocv.CvtColor(src, &screen, gocv.ColorBGRToGray)

	tmpl := gocv.IMRead(templatePath, gocv.IMReadGrayScale)
	defer tmpl.Close()
	if tmpl.Empty() {
		return image.Rectangle{}, false, fmt.Errorf("template not found: %s", templatePath)
	}

	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.MatchTemplate(screen, tmpl, &result, gocv.TmCcoeffNormed, mask)

	_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)
	if float64(maxVal) < m.confidence {
		return image.Rectangle{}, false, nil
	}

	box := image.Rect(maxLoc.X, maxLoc.Y, maxLoc.X+tmpl.Cols(), maxLoc.Y+tmpl.Rows())
	return box, true, nil
}

// ClickIcon finds the template on screen and clicks its center.
func (m *Matcher) ClickIcon(templatePath string) error {
	box, found, err := m.FindIcon(templatePath)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("icon not found on screen: %s", templatePath)
	}

	center := box.Min.Add(box.Size().Div(2))
	robotgo.Move(center.X, center.Y)
	robotgo.Click()
	time.Sleep(m.clickDelay)
	return nil
}
