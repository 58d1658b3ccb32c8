package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the API key is accepted by the provider",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, log, err := newService(false)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		v := svc.Validate(cmd.Context(), apiKey)
		if !v.Valid {
			return errors.New(v.Error)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API key is valid.")
		return nil
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List configured models and tones",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, log, err := newService(false)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		c := svc.Catalog()
		w := cmd.OutOrStdout()
		for _, m := range c.Models {
			fmt.Fprintln(w, m.Label)
		}
		fmt.Fprintln(w, "tones:", c.Tones)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd, modelsCmd)
}
