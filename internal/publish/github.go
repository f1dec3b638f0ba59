// Package publish pushes rendered skill bundles to GitHub as new repositories.
package publish

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrRepoExists = errors.New("repository already exists")
	ErrAuthFailed = errors.New("github authentication failed")
	ErrAPIError   = errors.New("github api error")
)

// Client publishes a set of files as a new repository.
type Client interface {
	Publish(ctx context.Context, req Request) (*Result, error)
}

// Request describes one publication: the repository to create and the files
// it should contain. File paths are relative, bodies are raw content.
type Request struct {
	RepoName    string
	Description string
	Private     bool
	Files       map[string][]byte
}

// Result reports where the bundle landed.
type Result struct {
	RepoURL string `json:"repo_url"`
	Owner   string `json:"owner"`
}

// HTTPClient talks to the GitHub REST API v3 with a personal access token.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Publish(ctx context.Context, req Request) (*Result, error) {
	repo, err := c.createRepo(ctx, req)
	if err != nil {
		return nil, err
	}
	for path, body := range req.Files {
		if err := c.putFile(ctx, repo.Owner.Login, repo.Name, path, body); err != nil {
			return nil, fmt.Errorf("upload %s: %w", path, err)
		}
	}
	return &Result{RepoURL: repo.HTMLURL, Owner: repo.Owner.Login}, nil
}

type repoResponse struct {
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
	Owner   struct {
		Login string `json:"login"`
	} `json:"owner"`
}

func (c *HTTPClient) createRepo(ctx context.Context, req Request) (*repoResponse, error) {
	payload, err := json.Marshal(map[string]any{
		"name":        req.RepoName,
		"description": req.Description,
		"private":     req.Private,
		"auto_init":   false,
	})
	if err != nil {
		return nil, fmt.Errorf("encode repo request: %w", err)
	}

	body, status, err := c.do(ctx, http.MethodPost, "/user/repos", payload)
	if err != nil {
		return nil, err
	}
	if err := classifyStatus(status, body); err != nil {
		return nil, err
	}

	var repo repoResponse
	if err := json.Unmarshal(body, &repo); err != nil {
		return nil, fmt.Errorf("%w: decode repo response: %v", ErrAPIError, err)
	}
	return &repo, nil
}

func (c *HTTPClient) putFile(ctx context.Context, owner, repo, path string, content []byte) error {
	payload, err := json.Marshal(map[string]any{
		"message": fmt.Sprintf("Add %s", path),
		"content": base64.StdEncoding.EncodeToString(content),
	})
	if err != nil {
		return fmt.Errorf("encode file request: %w", err)
	}

	url := fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, path)
	body, status, err := c.do(ctx, http.MethodPut, url, payload)
	if err != nil {
		return err
	}
	return classifyStatus(status, body)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrAPIError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read response: %v", ErrAPIError, err)
	}
	return body, resp.StatusCode, nil
}

func classifyStatus(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuthFailed, status)
	case status == http.StatusUnprocessableEntity && bytes.Contains(body, []byte("already exists")):
		return ErrRepoExists
	default:
		return fmt.Errorf("%w: status %d: %s", ErrAPIError, status, truncate(body, 200))
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

var _ Client = (*HTTPClient)(nil)
