package cmd

import (
	"testing"

	"github.com/mkaraca/preston-rpa/internal/config"
	"github.com/mkaraca/preston-rpa/internal/pos"
)

func archiveConfig(kind string) *config.Config {
	return &config.Config{
		ArchiveDir: "./archive",
		Actuator:   config.ActuatorConfig{Kind: kind},
	}
}

func TestShouldArchive(t *testing.T) {
	clean := pos.Summary{SucceededCount: 3}

	tests := []struct {
		name    string
		cfg     *config.Config
		summary pos.Summary
		want    bool
	}{
		{
			name:    "clean browser run",
			cfg:     archiveConfig(config.ActuatorBrowser),
			summary: clean,
			want:    true,
		},
		{
			name:    "dryrun selected by config",
			cfg:     archiveConfig(config.ActuatorDryRun),
			summary: clean,
			want:    false,
		},
		{
			name:    "archiving disabled",
			cfg:     &config.Config{Actuator: config.ActuatorConfig{Kind: config.ActuatorBrowser}},
			summary: clean,
			want:    false,
		},
		{
			name:    "failed record",
			cfg:     archiveConfig(config.ActuatorBrowser),
			summary: pos.Summary{SucceededCount: 2, FailedCount: 1},
			want:    false,
		},
		{
			name:    "cancelled run",
			cfg:     archiveConfig(config.ActuatorBrowser),
			summary: pos.Summary{SucceededCount: 1, Cancelled: true},
			want:    false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := shouldArchive(tc.cfg, tc.summary); got != tc.want {
				t.Errorf("shouldArchive() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestApplyFlagsDryRunForcesKind(t *testing.T) {
	cfg := archiveConfig(config.ActuatorBrowser)
	dryRun = true
	defer func() { dryRun = false }()

	applyFlags(cfg)

	if cfg.Actuator.Kind != config.ActuatorDryRun {
		t.Errorf("actuator kind = %q, want dryrun", cfg.Actuator.Kind)
	}
	if shouldArchive(cfg, pos.Summary{SucceededCount: 1}) {
		t.Error("a --dry-run run must never archive the workbook")
	}
}
