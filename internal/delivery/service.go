// Package delivery executes the occurrences produced by the dispatch engine:
// HTTP occurrences are sent with a retrying client, file occurrences are
// written to disk, and data occurrences are handed to an in-process
// consumer. This is the I/O boundary the engine itself never crosses.
package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gabapcia/hookwatch/internal/hookdispatch"
	transporthttp "github.com/gabapcia/hookwatch/internal/pkg/transport/http"

	"github.com/hashicorp/go-retryablehttp"
)

// filePermissions is the mode used when persisting file occurrences.
const filePermissions = 0o644

// DataConsumer receives the fully materialized payloads of noop-action
// hooks. Implementations run in-process and skip serialization entirely.
type DataConsumer interface {
	ConsumeHookPayload(ctx context.Context, payload hookdispatch.OwnedPayload) error
}

// Service executes occurrences. It satisfies hookproc.Deliverer.
type Service interface {
	Deliver(ctx context.Context, occurrence hookdispatch.Occurrence) error
}

type service struct {
	httpClient   *retryablehttp.Client
	dataConsumer DataConsumer
}

var _ Service = (*service)(nil)

// Deliver executes one occurrence. HTTP responses with a non-2xx status are
// reported as errors so the caller can surface them to the hook owner.
func (s *service) Deliver(ctx context.Context, occurrence hookdispatch.Occurrence) error {
	switch occ := occurrence.(type) {
	case hookdispatch.HTTPOccurrence:
		return s.deliverHTTP(ctx, occ)

	case hookdispatch.FileOccurrence:
		return os.WriteFile(occ.Path, occ.Body, filePermissions)

	case hookdispatch.DataOccurrence:
		if s.dataConsumer == nil {
			return nil
		}
		return s.dataConsumer.ConsumeHookPayload(ctx, occ.Payload)

	default:
		return fmt.Errorf("unknown occurrence type %T", occurrence)
	}
}

func (s *service) deliverHTTP(ctx context.Context, occ hookdispatch.HTTPOccurrence) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, occ.Method, occ.URL, bytes.NewReader(occ.Body))
	if err != nil {
		return err
	}

	for key, values := range occ.Headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Drain so the underlying connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("hook endpoint returned status %d", resp.StatusCode)
	}

	return nil
}

type config struct {
	httpClient   *retryablehttp.Client
	dataConsumer DataConsumer
}

// Option configures the delivery service.
type Option func(*config)

// WithHTTPClient overrides the retrying HTTP client used for HTTP
// occurrences.
func WithHTTPClient(c *retryablehttp.Client) Option {
	return func(cfg *config) {
		cfg.httpClient = c
	}
}

// WithDataConsumer sets the in-process consumer for data occurrences.
// Without one, data occurrences are acknowledged and dropped.
func WithDataConsumer(dc DataConsumer) Option {
	return func(cfg *config) {
		cfg.dataConsumer = dc
	}
}

// New creates a delivery service. By default it uses the shared retrying
// HTTP client factory and no data consumer.
func New(opts ...Option) *service {
	cfg := config{
		httpClient: transporthttp.NewClient(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		httpClient:   cfg.httpClient,
		dataConsumer: cfg.dataConsumer,
	}
}
