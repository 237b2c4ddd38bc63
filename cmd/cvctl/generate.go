package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kiranshivaraju/cvforge/pkg/client"
	"github.com/kiranshivaraju/cvforge/pkg/jobkey"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <job-id>",
	Short: "Generate a tailored CV for an uploaded job",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

var generateVariant string

func init() {
	generateCmd.Flags().StringVar(&generateVariant, "variant", string(jobkey.VariantStandard),
		"Generation variant: standard or fine-tuned")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	variant := jobkey.Variant(generateVariant)
	if variant != jobkey.VariantStandard && variant != jobkey.VariantFineTuned {
		return fmt.Errorf("unknown variant %q", generateVariant)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Minute)
	defer cancel()

	c := client.New(serverURL)
	url, err := c.Generate(ctx, args[0], variant)
	if err != nil {
		if errors.Is(err, client.ErrJobNotFound) {
			return fmt.Errorf("job %s not found; upload again and retry", args[0])
		}
		if errors.Is(err, client.ErrServiceUnavailable) {
			return fmt.Errorf("%w (safe to retry)", err)
		}
		return err
	}

	fmt.Printf("generated cv: %s\n", url)
	return nil
}
