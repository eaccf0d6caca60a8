package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	v1 "github.com/fyrsmithlabs/wordsense/pkg/api/v1"
)

// client calls the wordsense API and prints the response envelope.
type client struct {
	baseURL    string
	apiVersion string
	http       *http.Client
}

func newClient() *client {
	return &client{
		baseURL:    strings.TrimRight(serverURL, "/"),
		apiVersion: apiVersion,
		http:       &http.Client{Timeout: timeout},
	}
}

func (c *client) post(cmd *cobra.Command, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/%s%s", c.baseURL, c.apiVersion, path)
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(cmd, req)
}

func (c *client) get(cmd *cobra.Command, path string) error {
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(cmd, req)
}

// do sends req, pretty-prints the envelope to stdout and returns an error
// for any non-2xx response.
func (c *client) do(cmd *cobra.Command, req *http.Request) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return fmt.Errorf("server returned status %d with a non-JSON body: %s", resp.StatusCode, string(raw))
	}
	out.WriteByte('\n')
	if _, err := cmd.OutOrStdout().Write(out.Bytes()); err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var env v1.ErrorResponse
		if err := json.Unmarshal(raw, &env); err == nil && env.Details.Reason != "" {
			return fmt.Errorf("%d %s: %s", env.Code, env.Details.Attribute, env.Details.Reason)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	return nil
}
