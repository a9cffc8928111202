// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdf-ocr CLI. The root command
// converts a PDF, a directory of PDFs, or a downloaded PDF to markdown or
// plain text through the Mistral OCR API.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd converts its input; the other stages are subcommands.
var rootCmd = &cobra.Command{
	Use:   "pdf-ocr [input]",
	Short: "Convert PDFs to markdown or text with Mistral OCR",
	Long: `pdf-ocr sends PDF documents to the Mistral OCR service and writes the
recognized content next to each source as markdown (.md) or plain text (.txt).

The input is a single PDF, a directory searched recursively for PDFs that have
not been converted yet, or a remote document given with --url (http, https,
or gs://). Page selection, header and footer extraction, image extraction, and
a usage ledger with per-page cost are available as flags.

The API key is read from --api-key, MISTRAL_API_KEY, a .env file, or
.secrets/mistral-api-key, in that order.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConvert,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdf-ocr.yaml or ~/.config/pdf-ocr/pdf-ocr.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func initConfig() {
	verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
	setupLogging(verbose)

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdf-ocr")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdf-ocr"))
		}
	}

	viper.SetEnvPrefix("PDF_OCR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "path", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		slog.Warn("could not read config file", "path", cfgFile, "error", err)
	}
}

// setupLogging installs a text handler on stderr as the default logger.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
