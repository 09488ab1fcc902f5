// =============================================================================
// Preston RPA - Configuration Module
// =============================================================================
//
// Loads and validates the application configuration from a single YAML file.
// The configuration covers:
//   1. Pipeline settings (workbook path, POS filter, grouping mode)
//   2. Logging settings (run log file, level)
//   3. Actuator selection and per-variant settings
//
// Every setting has a default, so an empty config file produces a runnable
// dry-run setup. Defaults are applied on load and the result is validated
// before it reaches any component.
//
// =============================================================================

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Actuator kinds accepted by Actuator.Kind.
const (
	ActuatorDryRun  = "dryrun"
	ActuatorBrowser = "browser"
	ActuatorScreen  = "screen"
)

// Config is the root application configuration.
type Config struct {
	// ExcelPath is the default workbook to process. The --excel flag
	// overrides it.
	ExcelPath string `yaml:"excel_path"`

	// ArchiveDir receives the workbook after a fully successful run.
	// Empty disables archiving.
	ArchiveDir string `yaml:"archive_dir"`

	// LogFile is the append-only run log. Every reporter event is written
	// here with a timestamp.
	LogFile string `yaml:"log_file"`

	// LogLevel controls verbosity: "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`

	// Filter configures the POS description filter.
	Filter FilterConfig `yaml:"filter"`

	// Grouping configures the grouping key.
	Grouping GroupingConfig `yaml:"grouping"`

	// Actuator selects and configures the entry actuator.
	Actuator ActuatorConfig `yaml:"actuator"`
}

// FilterConfig describes which workbook rows count as POS transactions.
type FilterConfig struct {
	// DescriptionPrefix is the literal prefix a POS description starts with.
	DescriptionPrefix string `yaml:"description_prefix"`

	// MinSuffixDigits is the minimum trailing digit run length.
	MinSuffixDigits int `yaml:"min_suffix_digits"`
}

// GroupingConfig controls the replay grouping key.
type GroupingConfig struct {
	// ByCompany enables the composite (date, company) key. Default is
	// date-only grouping.
	ByCompany bool `yaml:"by_company"`
}

// ActuatorConfig selects the actuator variant and carries its settings.
type ActuatorConfig struct {
	// Kind is one of "dryrun", "browser", "screen".
	Kind string `yaml:"kind"`

	Browser BrowserConfig `yaml:"browser"`
	Screen  ScreenConfig  `yaml:"screen"`
}

// BrowserConfig configures the chromedp-driven simulator actuator.
type BrowserConfig struct {
	// SimulatorPath is the local Preston simulator HTML file.
	SimulatorPath string `yaml:"simulator_path"`

	// Headless runs Chrome without a visible window.
	Headless bool `yaml:"headless"`

	// StepTimeoutSeconds bounds each per-record form interaction.
	StepTimeoutSeconds int `yaml:"step_timeout_seconds"`

	// OverlayTimeoutSeconds bounds the wait for loading/modal overlays
	// before they are force-dismissed.
	OverlayTimeoutSeconds int `yaml:"overlay_timeout_seconds"`
}

// ScreenConfig configures the desktop OCR/vision actuator.
type ScreenConfig struct {
	// OCRLanguage is the Tesseract language pack ("tur", "eng", ...).
	OCRLanguage string `yaml:"ocr_language"`

	// OCRConfidence is the minimum word confidence (0..1) for a match.
	OCRConfidence float64 `yaml:"ocr_confidence"`

	// IconConfidence is the minimum template-matching score (0..1).
	IconConfidence float64 `yaml:"icon_confidence"`

	// TemplatesDir holds the icon template images.
	TemplatesDir string `yaml:"templates_dir"`

	// ClickDelayMS is the pause after each click.
	ClickDelayMS int `yaml:"click_delay_ms"`

	// FormFillDelayMS is the pause after each typed field.
	FormFillDelayMS int `yaml:"form_fill_delay_ms"`

	// ModalWaitSeconds bounds waits for dialogs to appear.
	ModalWaitSeconds int `yaml:"modal_wait_seconds"`

	// DebugDir, when set, receives screenshots for failed lookups.
	DebugDir string `yaml:"debug_dir"`

	// UITexts are the on-screen labels the actuator navigates by.
	UITexts UITexts `yaml:"ui_texts"`

	// CariCodes maps company names to Preston cari codes. The "default"
	// entry is used when a company has no mapping.
	CariCodes map[string]string `yaml:"cari_codes"`
}

// UITexts are the OCR targets for screen navigation. The menu entry has
// several spellings because the target UI renders the dash inconsistently.
type UITexts struct {
	FinansMenu   []string `yaml:"finans_menu"`
	TamamButton  string   `yaml:"tamam_button"`
	YeniButton   string   `yaml:"yeni_button"`
	KaydetButton string   `yaml:"kaydet_button"`
	KapatButton  string   `yaml:"kapat_button"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads, defaults, and validates the configuration at path. A missing
// file is not an error: the defaults describe a runnable dry-run setup.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
		// Fall through to defaults.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.ExcelPath == "" {
		cfg.ExcelPath = "./pos_data.xlsx"
	}
	if cfg.LogFile == "" {
		cfg.LogFile = "./logs/preston-rpa.log"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.Filter.DescriptionPrefix == "" {
		cfg.Filter.DescriptionPrefix = "POSH"
	}
	if cfg.Filter.MinSuffixDigits == 0 {
		cfg.Filter.MinSuffixDigits = 5
	}

	if cfg.Actuator.Kind == "" {
		cfg.Actuator.Kind = ActuatorDryRun
	}

	b := &cfg.Actuator.Browser
	if b.SimulatorPath == "" {
		b.SimulatorPath = "./sim/preston.html"
	}
	if b.StepTimeoutSeconds == 0 {
		b.StepTimeoutSeconds = 15
	}
	if b.OverlayTimeoutSeconds == 0 {
		b.OverlayTimeoutSeconds = 10
	}

	s := &cfg.Actuator.Screen
	if s.OCRLanguage == "" {
		s.OCRLanguage = "tur"
	}
	if s.OCRConfidence == 0 {
		s.OCRConfidence = 0.8
	}
	if s.IconConfidence == 0 {
		s.IconConfidence = 0.9
	}
	if s.TemplatesDir == "" {
		s.TemplatesDir = "./templates"
	}
	if s.ClickDelayMS == 0 {
		s.ClickDelayMS = 1000
	}
	if s.FormFillDelayMS == 0 {
		s.FormFillDelayMS = 500
	}
	if s.ModalWaitSeconds == 0 {
		s.ModalWaitSeconds = 10
	}
	if len(s.UITexts.FinansMenu) == 0 {
		s.UITexts.FinansMenu = []string{
			"Finans - İzle",
			"Finans-İzle",
			"Finans İzle",
			"Finans - Izle",
		}
	}
	if s.UITexts.TamamButton == "" {
		s.UITexts.TamamButton = "Tamam"
	}
	if s.UITexts.YeniButton == "" {
		s.UITexts.YeniButton = "Yeni"
	}
	if s.UITexts.KaydetButton == "" {
		s.UITexts.KaydetButton = "Kaydet"
	}
	if s.UITexts.KapatButton == "" {
		s.UITexts.KapatButton = "Kapat"
	}
	if s.CariCodes == nil {
		s.CariCodes = map[string]string{"default": "120.12.001"}
	}
}

// validate rejects configurations no component could run with.
func validate(cfg *Config) error {
	switch cfg.Actuator.Kind {
	case ActuatorDryRun, ActuatorBrowser, ActuatorScreen:
	default:
		return fmt.Errorf("unknown actuator kind %q", cfg.Actuator.Kind)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}

	if cfg.Filter.MinSuffixDigits < 1 {
		return fmt.Errorf("filter.min_suffix_digits must be positive, got %d", cfg.Filter.MinSuffixDigits)
	}
	if c := cfg.Actuator.Screen.OCRConfidence; c < 0 || c > 1 {
		return fmt.Errorf("screen.ocr_confidence must be in [0,1], got %v", c)
	}
	if c := cfg.Actuator.Screen.IconConfidence; c < 0 || c > 1 {
		return fmt.Errorf("screen.icon_confidence must be in [0,1], got %v", c)
	}
	return nil
}
