package sampler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Sunny-pro22/Dashboard/internal/dto"
	"github.com/Sunny-pro22/Dashboard/internal/model"
)

// maxBody caps how much of a device response is read.
const maxBody = 64 << 10

// Transport polls one device and normalises the answer into a Sample.
// A non-nil error is a fault. Poll may return a sample alongside the fault
// when part of the device answered; such a sample has Device set.
type Transport interface {
	Name() string
	Poll(ctx context.Context) (model.Sample, error)
}

// StatusTransport polls GET <base>/status for absolute counters.
type StatusTransport struct {
	name    string
	baseURL string
	client  *http.Client
}

func NewStatusTransport(name, baseURL string, client *http.Client) *StatusTransport {
	return &StatusTransport{name: name, baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (t *StatusTransport) Name() string { return t.name }

func (t *StatusTransport) Poll(ctx context.Context) (model.Sample, error) {
	const endpoint = "/status"
	body, err := get(ctx, t.client, t.baseURL+endpoint)
	if err != nil {
		return model.Sample{}, &Fault{Kind: TransportFault, Device: t.name, Endpoint: endpoint, Err: err}
	}

	var status dto.StatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return model.Sample{}, &Fault{Kind: DecodeFault, Device: t.name, Endpoint: endpoint, Err: err}
	}
	if status.Enter < 0 || status.Exit < 0 {
		return model.Sample{}, &Fault{Kind: DecodeFault, Device: t.name, Endpoint: endpoint,
			Err: fmt.Errorf("negative counters enter=%d exit=%d", status.Enter, status.Exit)}
	}

	return model.NewSnapshotSample(t.name, status.Enter, status.Exit, status.Total, time.Now()), nil
}

// DetectTransport polls GET <base>/detectEntry and <base>/detectExit, each
// answering "1" when the event happened since the previous poll.
type DetectTransport struct {
	name    string
	baseURL string
	client  *http.Client
}

func NewDetectTransport(name, baseURL string, client *http.Client) *DetectTransport {
	return &DetectTransport{name: name, baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (t *DetectTransport) Name() string { return t.name }

func (t *DetectTransport) Poll(ctx context.Context) (model.Sample, error) {
	var (
		wg                sync.WaitGroup
		entry, exit       bool
		entryErr, exitErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		entry, entryErr = t.detect(ctx, "/detectEntry")
	}()
	go func() {
		defer wg.Done()
		exit, exitErr = t.detect(ctx, "/detectExit")
	}()
	wg.Wait()

	switch {
	case entryErr != nil && exitErr != nil:
		return model.Sample{}, errors.Join(entryErr, exitErr)
	case entryErr != nil && exit:
		// The device resets each flag once read, so a reported edge is kept.
		return model.NewDeltaSample(t.name, false, true, time.Now()), entryErr
	case exitErr != nil && entry:
		return model.NewDeltaSample(t.name, true, false, time.Now()), exitErr
	case entryErr != nil:
		return model.Sample{}, entryErr
	case exitErr != nil:
		return model.Sample{}, exitErr
	}
	return model.NewDeltaSample(t.name, entry, exit, time.Now()), nil
}

func (t *DetectTransport) detect(ctx context.Context, endpoint string) (bool, error) {
	body, err := get(ctx, t.client, t.baseURL+endpoint)
	if err != nil {
		return false, &Fault{Kind: TransportFault, Device: t.name, Endpoint: endpoint, Err: err}
	}

	switch strings.TrimSpace(string(body)) {
	case "1":
		return true, nil
	case "0":
		return false, nil
	default:
		return false, &Fault{Kind: DecodeFault, Device: t.name, Endpoint: endpoint,
			Err: fmt.Errorf("unexpected body %q", truncate(body, 32))}
	}
}

func get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
