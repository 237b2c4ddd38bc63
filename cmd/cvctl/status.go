package main

import (
	"context"
	"fmt"
	"time"

	"github.com/kiranshivaraju/cvforge/pkg/client"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Show the embedding stage of an uploaded job",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	c := client.New(serverURL)
	stage, err := c.JobStatus(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("job %s: %s\n", args[0], stage)
	return nil
}
