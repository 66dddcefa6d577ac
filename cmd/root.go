/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnbundle/internal/iofs"
	"github.com/gnames/gnbundle/internal/iologger"
	app "github.com/gnames/gnbundle/pkg"
	"github.com/gnames/gnbundle/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	homeDir string
	opts    []config.Option
	cfg     *config.Config
)

// getRootCmd builds the command tree.
func getRootCmd() *cobra.Command {
	var actor string

	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
		Use:     "gnbundle",
		Short:   "GNbundle imports and exports vocabulary bundles",
		Long: `GNbundle moves vocabulary content (categories, word images, wordsets,
words and their audio) between content stores as portable zip bundles.

An import accepts either a native bundle (manifest.json with media) or a
loose archive of CSV/TSV quiz tables with images/ and audio/ folders.
Every import is recorded in history and can be undone.

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (GNBUNDLE_*, e.g. GNBUNDLE_STORE_DRIVER)
  3. ~/.config/gnbundle/config.yaml
  4. Built-in defaults`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := bootstrap(cmd, args); err != nil {
				return err
			}
			if cmd.Flags().Changed("actor") {
				cfg.Update([]config.Option{config.OptActor(actor)})
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Remove the automatic "gnbundle version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.Flags().BoolP("version", "V", false, "version for gnbundle")
	rootCmd.PersistentFlags().StringVarP(&actor, "actor", "a", "",
		"name recorded in import history")

	rootCmd.AddCommand(
		getImportCmd(),
		getPreviewCmd(),
		getExportCmd(),
		getHistoryCmd(),
		getUndoCmd(),
		getMigrateCmd(),
		getOptimizeCmd(),
	)
	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	if homeDir == "" {
		homeDir, err = os.UserHomeDir()
		if err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Logging with defaults until the config is read.
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if err = iologger.Init(config.LogDir(homeDir), defaultLog, false); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	var cfgViper *config.Config
	if cfgViper, err = initConfig(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	opts = cfgViper.ToOptions()
	cfg.Update(opts)
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	if err = iologger.Init(config.LogDir(cfg.HomeDir), cfg.Log, true); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded",
		"config_file", config.ConfigFilePath(homeDir),
		"command", cmd.Name(),
	)
	return nil
}

// Execute runs the command line interface.
func Execute() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig(home string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(home)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

// initEnvVars binds the environment variables that match the fields of
// config.ToOptions.
func initEnvVars(v *viper.Viper) {
	v.SetEnvPrefix("GNBUNDLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	keys := []string{
		"store.driver",
		"store.path",
		"store.media_dir",
		"store.host",
		"store.port",
		"store.user",
		"store.password",
		"store.database",
		"store.ssl_mode",

		"limits.max_archive_entries",
		"limits.max_uncompressed_bytes",
		"limits.export_max_files",
		"limits.export_max_bytes",
		"limits.export_warn_bytes",

		"import.allowed_meta_keys",
		"import.legacy_encodings",
		"import.max_warnings",

		"history.max_entries",
		"history.max_age_days",

		"log.level",
		"log.format",
		"log.destination",
	}
	for _, k := range keys {
		env := strings.ToUpper(strings.ReplaceAll(k, ".", "_"))
		_ = v.BindEnv(k, "GNBUNDLE_"+env)
	}

	v.AutomaticEnv()
}
