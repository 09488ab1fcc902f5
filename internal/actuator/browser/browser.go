// =============================================================================
// Preston RPA - Browser Actuator
// =============================================================================
//
// Drives the Preston HTML simulator through the Chrome DevTools Protocol.
// The selector contract mirrors the simulator markup:
//
//   menu entry   div.menu-item[data-menu='finans-tahsilat']
//   POS icon     div.ribbon-icon[data-tooltip='Pos Girişi' | 'POS Girişi']
//   entry modal  #posModal with #posTarih, #posKartHesap, #posAciklama,
//                #posTutar, #posDoviz, #posVadeTarihi
//   save button  .modal-buttons .primary
//
// The simulator shows a body.loading class and a #modalOverlay element while
// busy; every interaction waits for both to clear and force-dismisses them
// after a timeout, because a stuck overlay would otherwise swallow clicks.
//
// =============================================================================

package browser

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/mkaraca/preston-rpa/internal/actuator"
	"github.com/mkaraca/preston-rpa/internal/config"
	"github.com/mkaraca/preston-rpa/internal/pos"
)

const (
	menuSelector    = `div.menu-item[data-menu='finans-tahsilat']`
	posIconSelector = `div.ribbon-icon[data-tooltip='Pos Girişi'], div.ribbon-icon[data-tooltip='POS Girişi']`
	modalSelector   = `#posModal`
	saveSelector    = `.modal-buttons .primary`

	// overlayClearExpr is true once no overlay blocks interaction.
	overlayClearExpr = `!document.body.classList.contains('loading') &&
		(function () {
			var o = document.getElementById('modalOverlay');
			return !o || getComputedStyle(o).display === 'none';
		})()`

	// overlayDismissExpr force-clears a stuck overlay.
	overlayDismissExpr = `document.body.classList.remove('loading');
		(function () {
			var o = document.getElementById('modalOverlay');
			if (o) { o.style.display = 'none'; }
		})();`

	// posIconVisibleExpr reports whether the POS ribbon icon is already on
	// screen. The menu entry toggles the ribbon, so navigation must not
	// click it again once the icon is reachable.
	posIconVisibleExpr = `(function () {
		var icon = document.querySelector(
			"div.ribbon-icon[data-tooltip='Pos Girişi'], div.ribbon-icon[data-tooltip='POS Girişi']");
		return !!icon && icon.offsetParent !== null;
	})()`
)

// Actuator is the browser-automation variant.
type Actuator struct {
	cfg config.BrowserConfig
	log zerolog.Logger

	allocCancel context.CancelFunc
	tabCancel   context.CancelFunc
	tab         context.Context
}

// New builds the browser actuator. The chromedp session is not started
// until Prepare.
func New(cfg config.BrowserConfig, log zerolog.Logger) *Actuator {
	return &Actuator{cfg: cfg, log: log}
}

func (a *Actuator) Name() string { return "browser" }

// Prepare launches Chrome and navigates to the simulator.
func (a *Actuator) Prepare(ctx context.Context) error {
	abs, err := filepath.Abs(a.cfg.SimulatorPath)
	if err != nil {
		return actuator.Errorf("prepare", err, "invalid simulator path %q", a.cfg.SimulatorPath)
	}
	url := "file://" + filepath.ToSlash(abs)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", a.cfg.Headless),
		chromedp.WindowSize(1600, 1000),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tab, tabCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(tab,
		chromedp.Navigate(url),
		chromedp.WaitVisible("body", chromedp.ByQuery),
	); err != nil {
		tabCancel()
		allocCancel()
		return actuator.Errorf("prepare", err, "failed to open simulator at %s", url)
	}

	a.allocCancel = allocCancel
	a.tabCancel = tabCancel
	a.tab = tab
	a.log.Info().Str("url", url).Msg("opened Preston simulator")
	return nil
}

// Enter navigates to Finans > Tahsilat, opens the POS entry modal, fills the
// form from the record, and saves.
func (a *Actuator) Enter(ctx context.Context, record pos.Record) error {
	if a.tab == nil {
		return actuator.Errorf("enter", nil, "actuator not prepared")
	}
	if err := ctx.Err(); err != nil {
		return actuator.Errorf("enter", err, "cancelled")
	}

	step, cancel := context.WithTimeout(a.tab, time.Duration(a.cfg.StepTimeoutSeconds)*time.Second)
	defer cancel()

	if err := a.ensureOverlayClosed(step); err != nil {
		return err
	}
	// The ribbon stays open between records; clicking the menu again would
	// toggle it closed and hide the POS icon for the next entry.
	var iconVisible bool
	if err := chromedp.Run(step,
		chromedp.Evaluate(posIconVisibleExpr, &iconVisible),
	); err != nil {
		return actuator.Errorf("navigate", err, "could not inspect ribbon state")
	}
	if !iconVisible {
		if err := chromedp.Run(step,
			chromedp.Click(menuSelector, chromedp.ByQuery),
		); err != nil {
			return actuator.Errorf("navigate", err, "Finans > Tahsilat menu not clickable")
		}
		if err := a.ensureOverlayClosed(step); err != nil {
			return err
		}
	}
	if err := chromedp.Run(step,
		chromedp.Click(posIconSelector, chromedp.ByQuery),
		chromedp.WaitVisible(modalSelector, chromedp.ByQuery),
	); err != nil {
		return actuator.Errorf("navigate", err, "POS entry modal did not open")
	}

	if err := a.fillForm(step, record); err != nil {
		return err
	}

	if err := chromedp.Run(step,
		chromedp.Click(saveSelector, chromedp.ByQuery),
	); err != nil {
		return actuator.Errorf("save", err, "save button not clickable")
	}
	if err := a.ensureOverlayClosed(step); err != nil {
		return err
	}

	a.log.Debug().Str("record", record.Ref()).Msg("POS entry saved")
	return nil
}

// fillForm types the record into the POS modal fields.
func (a *Actuator) fillForm(ctx context.Context, record pos.Record) error {
	fields := []struct {
		selector string
		value    string
	}{
		{"#posTarih", record.Date.Format(pos.DateLayout)},
		{"#posKartHesap", record.Company},
		{"#posAciklama", record.Description},
		{"#posTutar", record.Amount.String()},
	}
	if record.Currency != "" {
		fields = append(fields, struct{ selector, value string }{"#posDoviz", record.Currency})
	}
	if !record.DueDate.IsZero() {
		fields = append(fields, struct{ selector, value string }{"#posVadeTarihi", record.DueDate.Format(pos.DateLayout)})
	}

	for _, f := range fields {
		if err := chromedp.Run(ctx,
			chromedp.SetValue(f.selector, f.value, chromedp.ByQuery),
		); err != nil {
			return actuator.Errorf("fill", err, "failed to set %s", f.selector)
		}
	}
	return nil
}

// ensureOverlayClosed waits for loading/modal overlays to clear and
// force-dismisses them when they outlive the timeout.
func (a *Actuator) ensureOverlayClosed(ctx context.Context) error {
	wait, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.OverlayTimeoutSeconds)*time.Second)
	defer cancel()

	var cleared bool
	err := chromedp.Run(wait,
		chromedp.Poll(overlayClearExpr, &cleared, chromedp.WithPollingInterval(100*time.Millisecond)),
	)
	if err == nil && cleared {
		return nil
	}

	// Stuck overlay: dismiss it the hard way, as the operator would.
	if err := chromedp.Run(ctx, chromedp.Evaluate(overlayDismissExpr, nil)); err != nil {
		return actuator.Errorf("overlay", err, "could not dismiss blocking overlay")
	}
	return nil
}

// Close tears down the chromedp session.
func (a *Actuator) Close() error {
	if a.tabCancel != nil {
		a.tabCancel()
	}
	if a.allocCancel != nil {
		a.allocCancel()
	}
	a.tab = nil
	return nil
}

var _ actuator.Actuator = (*Actuator)(nil)

// String implements fmt.Stringer for debug logging.
func (a *Actuator) String() string {
	return fmt.Sprintf("browser(%s)", a.cfg.SimulatorPath)
}
