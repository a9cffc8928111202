// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdf-ocr/internal/ledger"
	"github.com/pdiddy/pdf-ocr/internal/ocr"
	"github.com/pdiddy/pdf-ocr/pkg/types"
)

const (
	defaultTimeout    = 5 * time.Minute
	defaultUserAgent  = "pdf-ocr/0.1"
	defaultMaxRetries = 5
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Config merges defaults, the config file, and PDF_OCR_* environment
variables and prints the result. The API key is never printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model", ocr.DefaultModel)
	v.SetDefault("format", string(types.FormatMarkdown))
	v.SetDefault("overwrite", string(types.OverwritePrompt))
	v.SetDefault("workers", 1)
	v.SetDefault("download_dir", ".")
	v.SetDefault("ocr.base_url", ocr.DefaultBaseURL)
	v.SetDefault("ocr.timeout", defaultTimeout)
	v.SetDefault("ocr.max_retries", defaultMaxRetries)
	v.SetDefault("ledger.path", ledger.DefaultPath)
	v.SetDefault("ledger.format", string(types.LedgerText))
}

// loadConfig builds the typed configuration from v and validates the
// enumerated settings.
func loadConfig(v *viper.Viper) (types.Config, error) {
	format, err := types.ParseFormat(v.GetString("format"))
	if err != nil {
		return types.Config{}, err
	}
	policy, err := types.ParseOverwritePolicy(v.GetString("overwrite"))
	if err != nil {
		return types.Config{}, err
	}
	ledgerFormat, err := types.ParseLedgerFormat(v.GetString("ledger.format"))
	if err != nil {
		return types.Config{}, err
	}
	workers := v.GetInt("workers")
	if workers < 1 {
		return types.Config{}, fmt.Errorf("workers must be at least 1, got %d", workers)
	}

	cfg := types.Config{
		Conversion: types.ConversionConfig{
			Model:         v.GetString("model"),
			Format:        format,
			Overwrite:     policy,
			IncludeImages: v.GetBool("images"),
			KeepDownloads: v.GetBool("keep"),
			DownloadDir:   v.GetString("download_dir"),
			Workers:       workers,
		},
		OCR: types.OCRConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("ocr.timeout"),
				UserAgent: defaultUserAgent,
			},
			Model:      v.GetString("model"),
			BaseURL:    v.GetString("ocr.base_url"),
			MaxRetries: v.GetInt("ocr.max_retries"),
		},
		Ledger: types.LedgerConfig{
			Enabled:     v.GetBool("ledger.enabled"),
			Path:        v.GetString("ledger.path"),
			ExtraPath:   v.GetString("ledger.extra_path"),
			ExtraFormat: ledgerFormat,
		},
	}
	if cfg.Ledger.ExtraPath != "" {
		cfg.Ledger.Enabled = true
	}
	return cfg, nil
}
