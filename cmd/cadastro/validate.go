package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/celerix-dev/cadastro/internal/config"
	"github.com/celerix-dev/cadastro/internal/engine"
	"github.com/celerix-dev/cadastro/internal/logger"
	"github.com/celerix-dev/cadastro/internal/report"
	"github.com/celerix-dev/cadastro/internal/source"
	"github.com/celerix-dev/cadastro/pkg/sdk"
)

const defaultOutput = "resultados.txt"

func validateCmd() *cobra.Command {
	var (
		output        string
		format        string
		workers       int
		noHeader      bool
		quiet         bool
		strictCPF     bool
		nationalPhone bool
	)

	c := &cobra.Command{
		Use:   "validate <file.csv>",
		Short: "Validate every record of a CSV file and write the verdicts",
		Long: "Reads name,email,cpf,phone,age,birth_date,registration_date rows, validates each\n" +
			"record and writes one verdict per line to the output file, echoing it to stdout.\n" +
			"When CADASTRO_ADDR is set and reachable the daemon does the validation.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("output") {
				cfg.Output.Path = output
			}
			if flags.Changed("format") {
				cfg.Output.Format = format
			}
			if !flags.Changed("output") && cfg.Output.Path == defaultOutput {
				if f, err := report.ParseFormat(cfg.Output.Format); err == nil {
					cfg.Output.Path = strings.TrimSuffix(defaultOutput, ".txt") + f.Ext()
				}
			}
			if flags.Changed("workers") {
				cfg.Validator.Workers = workers
			}
			if flags.Changed("no-header") {
				cfg.Input.SkipHeader = !noHeader
			}
			if flags.Changed("strict-cpf") {
				cfg.Validator.StrictCPF = strictCPF
			}
			if flags.Changed("national-phone") {
				cfg.Validator.NationalPhone = nationalPhone
			}
			if quiet {
				cfg.Output.Echo = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, Output: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			return runValidate(cmd, cfg, args[0], log)
		},
	}

	c.Flags().StringVarP(&output, "output", "o", defaultOutput, "file the verdicts are written to (extension follows --format by default)")
	c.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or yaml")
	c.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent validators (0 = number of CPUs)")
	c.Flags().BoolVar(&noHeader, "no-header", false, "treat the first row as data")
	c.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not echo verdicts to stdout")
	c.Flags().BoolVar(&strictCPF, "strict-cpf", false, "require literal periods in CPF numbers")
	c.Flags().BoolVar(&nationalPhone, "national-phone", false, "accept (xx) 9xxxx-xxxx phone numbers instead of (xx) 9xxx-xxxxx")
	return c
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func runValidate(cmd *cobra.Command, cfg *config.Config, path string, log zerolog.Logger) error {
	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := source.NewReader(f, source.Options{
		Comma:      cfg.Input.Comma(),
		SkipHeader: cfg.Input.SkipHeader,
	}).ReadAll()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	checker := sdk.New(cfg.Validator.Options(), cfg.Validator.Workers)
	b, err := checker.ValidateBatch(cmd.Context(), source.Records(rows))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, format, b.Records); err != nil {
		return err
	}
	if err := engine.WriteFileAtomic(cfg.Output.Path, buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", cfg.Output.Path, err)
	}
	if cfg.Output.Echo {
		if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
			return fmt.Errorf("echo verdicts: %w", err)
		}
	}

	log.Info().
		Str("input", path).
		Str("output", cfg.Output.Path).
		Int("total", b.Summary.Total).
		Int("valid", b.Summary.Valid).
		Int("invalid", b.Summary.Invalid).
		Msg("validation finished")
	return nil
}
