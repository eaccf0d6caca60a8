// Package main implements the wsctl CLI for manual calls against a wordsense
// server.
package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	v1 "github.com/fyrsmithlabs/wordsense/pkg/api/v1"
)

var (
	serverURL  string
	apiVersion string
	timeout    time.Duration
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wsctl",
	Short: "CLI for wordsense HTTP server operations",
	Long: `wsctl is a command-line interface for the wordsense HTTP server.
It sends predictions, feedback and transcriptions and prints the response
envelope as JSON.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8000", "wordsense server URL")
	rootCmd.PersistentFlags().StringVar(&apiVersion, "api-version", "v1", "API version path segment")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")

	feedbackCmd.Flags().StringP("file", "f", "", "JSON file with the feedback body (- for stdin)")
	_ = feedbackCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(predictCmd, feedbackCmd, transcribeCmd, healthCmd, readyCmd)
}

var predictCmd = &cobra.Command{
	Use:   "predict <description>",
	Short: "Predict words matching a description",
	Long: `Predict the top words for a free-text description.

Examples:
  wsctl predict "tall tower in Tokyo"
  wsctl predict --server http://wordsense:8000 a large ancient amphitheatre`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := v1.PredictionRequest{Description: strings.Join(args, " ")}
		return newClient().post(cmd, "/predictions", body)
	},
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback --file feedback.json",
	Short: "Submit feedback on a prediction",
	Long: `Submit feedback on a prediction. The file holds the request body:

  {
    "description": "tall tower in Tokyo",
    "user_input": "Tokyo Skytree",
    "predictions": [{"text": "Tokyo Skytree", "rank": 1}],
    "version_model": "sentence-transformers/all-MiniLM-L6-v2",
    "correct_prediction_index": 0
  }`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("file")
		raw, err := readInput(cmd, path)
		if err != nil {
			return err
		}
		if !json.Valid(raw) {
			return fmt.Errorf("%s does not contain valid JSON", path)
		}
		return newClient().post(cmd, "/predictions/feedback", json.RawMessage(raw))
	},
}

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <file.wav>",
	Short: "Transcribe a WAV recording",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		audio, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		body := v1.TranscriptionRequest{Audio: base64.StdEncoding.EncodeToString(audio)}
		return newClient().post(cmd, "/transcriptions", body)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check wordsense server health",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return newClient().get(cmd, "/health")
	},
}

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "Check that the server's dependencies are reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return newClient().get(cmd, "/ready")
	},
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return data, nil
}
