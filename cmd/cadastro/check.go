package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/celerix-dev/cadastro/internal/report"
	"github.com/celerix-dev/cadastro/pkg/schema"
	"github.com/celerix-dev/cadastro/pkg/sdk"
)

func checkCmd() *cobra.Command {
	values := make(map[string]*string, len(schema.Fields()))

	c := &cobra.Command{
		Use:   "check",
		Short: "Validate a single record given as flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			m := make(map[string]any, len(values))
			for field, v := range values {
				m[field] = *v
			}
			rec, err := schema.FromMap(m)
			if err != nil {
				return err
			}

			out, err := sdk.New(cfg.Validator.Options(), 1).Validate(cmd.Context(), rec)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.Line(out))
			return nil
		},
	}

	for _, field := range schema.Fields() {
		values[field] = c.Flags().String(field, "", field+" value")
	}
	return c
}
