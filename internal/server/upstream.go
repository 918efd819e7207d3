package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Executor runs an admitted request and returns the raw GraphQL
// response body. The execution engine itself lives elsewhere; the
// guard only decides what reaches it.
type Executor interface {
	Execute(ctx context.Context, req GraphQLRequest) ([]byte, error)
}

// Upstream forwards admitted requests to a GraphQL endpoint over HTTP.
type Upstream struct {
	url    string
	client *http.Client
}

// NewUpstream creates a forwarder for the given endpoint URL. A nil
// client uses http.DefaultClient.
func NewUpstream(url string, client *http.Client) *Upstream {
	if client == nil {
		client = http.DefaultClient
	}
	return &Upstream{url: url, client: client}
}

func (u *Upstream) Execute(ctx context.Context, req GraphQLRequest) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	hr.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(hr)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}
	return body, nil
}
