// =============================================================================
// Preston RPA - Screen Actuator
// =============================================================================
//
// The desktop variant: reproduces a POS entry against the real Preston
// window using OCR text localization for menus and buttons, template
// matching for ribbon icons, and synthetic keyboard/mouse input for the
// form. The whole workflow is best-effort: any step that cannot locate its
// target raises an actuator error and the record is recorded as failed.
//
// =============================================================================

package screen

import (
	"context"
	"image"
	"path/filepath"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/rs/zerolog"

	"github.com/mkaraca/preston-rpa/internal/actuator"
	"github.com/mkaraca/preston-rpa/internal/config"
	"github.com/mkaraca/preston-rpa/internal/pos"
)

// windowTitle is the Preston application window the actuator drives.
const windowTitle = "Preston"

// posIconTemplate is the ribbon icon template file inside TemplatesDir.
const posIconTemplate = "pos_girisi.png"

// menuBarHeight bounds the OCR region for top-level menu lookups. Keeping
// the region small makes menu OCR both faster and less ambiguous.
const menuBarHeight = 120

// Actuator is the screen-automation variant.
type Actuator struct {
	cfg     config.ScreenConfig
	log     zerolog.Logger
	ocr     *Engine
	icons   *Matcher
	fillGap time.Duration
}

// New builds the screen actuator.
func New(cfg config.ScreenConfig, log zerolog.Logger) *Actuator {
	clickDelay := time.Duration(cfg.ClickDelayMS) * time.Millisecond
	return &Actuator{
		cfg:     cfg,
		log:     log,
		ocr:     NewEngine(cfg, log),
		icons:   NewMatcher(cfg.IconConfidence, clickDelay),
		fillGap: time.Duration(cfg.FormFillDelayMS) * time.Millisecond,
	}
}

func (a *Actuator) Name() string { return "screen" }

// Prepare brings the Preston window to the foreground.
func (a *Actuator) Prepare(ctx context.Context) error {
	if err := robotgo.ActiveName(windowTitle); err != nil {
		// The window may still be reachable (e.g. already focused); the
		// first Enter will fail cleanly if it is not.
		a.log.Warn().Err(err).Msg("could not focus Preston window")
	}
	time.Sleep(2 * time.Second)
	return nil
}

// Enter replays one record: navigate the Finans menu, open the POS entry
// form, type the fields, save, close.
func (a *Actuator) Enter(ctx context.Context, record pos.Record) error {
	if err := ctx.Err(); err != nil {
		return actuator.Errorf("enter", err, "cancelled")
	}

	if err := a.openEntryForm(ctx); err != nil {
		return err
	}
	if err := a.fillForm(record); err != nil {
		return err
	}
	return a.saveAndClose(ctx)
}

// openEntryForm walks the menu to a fresh POS entry form.
func (a *Actuator) openEntryForm(ctx context.Context) error {
	width, _ := robotgo.GetScreenSize()
	menuRegion := image.Rect(0, 0, width, menuBarHeight)

	if err := a.ocr.ClickText(a.cfg.UITexts.FinansMenu, menuRegion); err != nil {
		return actuator.Errorf("navigate", err, "Finans menu not found")
	}

	if err := a.icons.ClickIcon(filepath.Join(a.cfg.TemplatesDir, posIconTemplate)); err != nil {
		return actuator.Errorf("navigate", err, "POS entry icon not found")
	}

	modalWait := time.Duration(a.cfg.ModalWaitSeconds) * time.Second
	found, err := a.ocr.WaitForText(ctx, []string{a.cfg.UITexts.KaydetButton}, modalWait)
	if err != nil {
		return actuator.Errorf("navigate", err, "waiting for entry form")
	}
	if !found {
		return actuator.Errorf("navigate", nil, "entry form did not open within %s", modalWait)
	}

	if err := a.ocr.ClickText([]string{a.cfg.UITexts.YeniButton}, image.Rectangle{}); err != nil {
		return actuator.Errorf("navigate", err, "Yeni button not found")
	}
	return nil
}

// fillForm types the record fields in tab order.
func (a *Actuator) fillForm(record pos.Record) error {
	fields := []string{
		record.Date.Format(pos.DateLayout),
		a.cariCode(record.Company),
		record.Description,
		record.Amount.String(),
	}
	if record.Currency != "" {
		fields = append(fields, record.Currency)
	}
	if !record.DueDate.IsZero() {
		fields = append(fields, record.DueDate.Format(pos.DateLayout))
	}

	for _, value := range fields {
		robotgo.TypeStr(value)
		robotgo.KeyTap("tab")
		time.Sleep(a.fillGap)
	}
	return nil
}

// saveAndClose saves the entry and dismisses the confirmation.
func (a *Actuator) saveAndClose(ctx context.Context) error {
	if err := a.ocr.ClickText([]string{a.cfg.UITexts.KaydetButton}, image.Rectangle{}); err != nil {
		return actuator.Errorf("save", err, "Kaydet button not found")
	}

	modalWait := time.Duration(a.cfg.ModalWaitSeconds) * time.Second
	if found, err := a.ocr.WaitForText(ctx, []string{a.cfg.UITexts.TamamButton}, modalWait); err == nil && found {
		if err := a.ocr.ClickText([]string{a.cfg.UITexts.TamamButton}, image.Rectangle{}); err != nil {
			return actuator.Errorf("save", err, "confirmation not dismissable")
		}
	}

	if err := a.ocr.ClickText([]string{a.cfg.UITexts.KapatButton}, image.Rectangle{}); err != nil {
		return actuator.Errorf("save", err, "Kapat button not found")
	}
	return nil
}

// cariCode resolves the company to its Preston cari code; unmapped
// companies use the configured default.
func (a *Actuator) cariCode(company string) string {
	if code, ok := a.cfg.CariCodes[company]; ok {
		return code
	}
	if code, ok := a.cfg.CariCodes["default"]; ok {
		return code
	}
	return company
}

func (a *Actuator) Close() error { return nil }

var _ actuator.Actuator = (*Actuator)(nil)
