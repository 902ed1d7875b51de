package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RemoteSource fetches the treatment sequence from an HTTP endpoint once
// per Load.
type RemoteSource struct {
	url    string
	client *http.Client
}

// NewRemoteSource builds a remote source. A nil client gets a default with
// the given timeout.
func NewRemoteSource(url string, client *http.Client, timeout time.Duration) *RemoteSource {
	if client == nil {
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &RemoteSource{url: url, client: client}
}

// Load performs one GET. Transport errors, non-2xx statuses and undecodable
// bodies all wrap ErrDataLoad.
func (s *RemoteSource) Load(ctx context.Context) ([]Treatment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrDataLoad, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataLoad, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d", ErrDataLoad, resp.StatusCode)
	}

	var records []Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrDataLoad, err)
	}

	out := make([]Treatment, 0, len(records))
	for _, rec := range records {
		out = append(out, Normalize(rec))
	}
	return out, nil
}
