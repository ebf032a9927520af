// Package cli implements the recordkeeper CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/recordkeeper/internal/config"
	"github.com/rcliao/recordkeeper/internal/store"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// RootCmd is the top-level command. Without a subcommand it starts the
// interactive menu.
var RootCmd = &cobra.Command{
	Use:   "recordkeeper",
	Short: "Keep contact records as JSON files",
	Long: "A small record manager. Each record (nombre, apellido, telefono, email) " +
		"is a JSON file in the data directory. Run without arguments for the interactive menu.",
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runMenu,
}

func init() {
	def := config.Default()
	pf := RootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "Config file (default: recordkeeper.yaml in . or ~/.config/recordkeeper)")
	pf.StringP("dir", "d", def.DataDir, "Data directory (env RECORDKEEPER_DATA_DIR)")
	pf.String("backend", def.Backend, "Storage backend: file or sqlite")
	pf.String("suffix", def.Suffix, "Record file suffix")
	pf.StringP("format", "f", def.Format, "Output format: json, text or yaml")
	pf.String("log-level", def.LogLevel, "Log level: debug, info, warn, error")
}

// Execute runs RootCmd and reports a failure on stderr.
func Execute() error {
	err := RootCmd.Execute()
	if err != nil {
		fmt.Fprintf(RootCmd.ErrOrStderr(), "error: %v\n", err)
	}
	return err
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cmd.Flags(), cfgFile)
	if err != nil {
		return fail("config", err)
	}
	lvl, _ := c.Level()
	cfg = c
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))
	return nil
}

func openStore() (store.Store, error) {
	opts := []store.Option{store.WithSuffix(cfg.Suffix), store.WithLogger(logger)}
	switch cfg.Backend {
	case config.BackendSQLite:
		return store.NewSQLiteStore(cfg.DatabasePath(), opts...)
	default:
		return store.NewFileStore(cfg.DataDir, opts...)
	}
}

// fail labels err with the operation that failed, printed as
// "error: <what>: <err>".
func fail(what string, err error) error {
	return fmt.Errorf("%s: %w", what, err)
}

// recordName accepts a stem or a full name.
func recordName(arg string) string {
	return store.FileName(arg, cfg.Suffix)
}

// render writes v in the configured format. text is used for the text format.
func render(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	switch cfg.Format {
	case config.FormatText:
		text(w)
		return nil
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fail("encode yaml", err)
		}
		return enc.Close()
	default:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fail("encode json", err)
		}
		fmt.Fprintln(w, string(b))
		return nil
	}
}
