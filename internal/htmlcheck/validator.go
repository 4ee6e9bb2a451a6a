package htmlcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DefaultValidatorURL is the public Nu HTML checker.
const DefaultValidatorURL = "https://validator.w3.org/nu/?out=json"

// Validator posts pages to a Nu HTML checker instance.
type Validator struct {
	URL    string
	Client *http.Client
	// Delay between requests; the public checker throttles bursts.
	Delay time.Duration
}

type nuResponse struct {
	Messages []nuMessage `json:"messages"`
}

type nuMessage struct {
	Type     string `json:"type"`
	SubType  string `json:"subType"`
	LastLine int    `json:"lastLine"`
	Message  string `json:"message"`
}

func NewValidator(url string) *Validator {
	if url == "" {
		url = DefaultValidatorURL
	}
	return &Validator{
		URL:    url,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

// ValidateDir validates pages below dir, one request per page.
func (v *Validator) ValidateDir(ctx context.Context, dir string, pages []string) ([]Issue, error) {
	var issues []Issue
	for i, p := range pages {
		if i > 0 && v.Delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(v.Delay):
			}
		}
		content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(p)))
		if err != nil {
			return nil, err
		}
		found, err := v.Validate(ctx, p, content)
		if err != nil {
			return nil, fmt.Errorf("validating %v: %w", p, err)
		}
		slog.Debug("Validated page", "page", p, "errors", len(found))
		issues = append(issues, found...)
	}
	sortIssues(issues)
	return issues, nil
}

// Validate checks one document. Only messages of type "error" become
// issues; warnings and info are dropped.
func (v *Validator) Validate(ctx context.Context, name string, content []byte) ([]Issue, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.URL, bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/html; charset=utf-8")
	req.Header.Set("User-Agent", "blogsmith")

	client := v.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("checker returned %v: %s", resp.Status, bytes.TrimSpace(body))
	}

	var nu nuResponse
	if err := json.NewDecoder(resp.Body).Decode(&nu); err != nil {
		return nil, fmt.Errorf("decoding checker response: %w", err)
	}

	var issues []Issue
	for _, m := range nu.Messages {
		if m.Type != "error" {
			continue
		}
		rule := "nu-error"
		if m.SubType != "" {
			rule = "nu-" + m.SubType
		}
		issues = append(issues, Issue{File: name, Line: m.LastLine, Rule: rule, Message: m.Message})
	}
	return issues, nil
}
