package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kiranshivaraju/cvforge/pkg/client"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a CV and job offer, printing the job id",
	RunE:  runUpload,
}

var (
	uploadCVPath    string
	uploadOfferPath string
	uploadOfferText string
)

func init() {
	uploadCmd.Flags().StringVar(&uploadCVPath, "cv", "", "Path to the CV file (required)")
	uploadCmd.Flags().StringVar(&uploadOfferPath, "offer-file", "", "Path to a file holding the job offer text")
	uploadCmd.Flags().StringVar(&uploadOfferText, "offer", "", "Job offer text (alternative to --offer-file)")
	uploadCmd.MarkFlagRequired("cv")

	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, _ []string) error {
	if uploadOfferText == "" && uploadOfferPath == "" {
		return fmt.Errorf("one of --offer or --offer-file is required")
	}
	if uploadOfferText != "" && uploadOfferPath != "" {
		return fmt.Errorf("cannot use --offer with --offer-file")
	}

	offer := uploadOfferText
	if uploadOfferPath != "" {
		data, err := os.ReadFile(uploadOfferPath)
		if err != nil {
			return fmt.Errorf("read job offer: %w", err)
		}
		offer = string(data)
	}

	cv, err := os.Open(uploadCVPath)
	if err != nil {
		return fmt.Errorf("open cv: %w", err)
	}
	defer cv.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	c := client.New(serverURL)
	result, err := c.Upload(ctx, filepath.Base(uploadCVPath), cv, offer)
	if err != nil {
		return err
	}

	fmt.Printf("job id:        %s\n", result.JobID)
	fmt.Printf("cv url:        %s\n", result.CVURL)
	fmt.Printf("job offer url: %s\n", result.JobOfferURL)
	return nil
}
