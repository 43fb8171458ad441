package httpstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-livesite/internal/backends"
	"github.com/goliatone/go-livesite/internal/sites"
	"github.com/goliatone/go-livesite/pkg/interfaces"
)

// maxDocumentSize caps the tenant document read from the remote service (8MB).
const maxDocumentSize = 8 * 1024 * 1024

// DefaultTimeout bounds each remote call.
const DefaultTimeout = 10 * time.Second

var (
	ErrBaseURLRequired = errors.New("httpstore: base url required")
	ErrTenantKeyPath   = errors.New("httpstore: tenant key cannot be a dot segment")
)

// StatusError reports an unexpected response status.
type StatusError struct {
	Method string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpstore: %s returned status %d", e.Method, e.Status)
}

// Store reads and writes tenant documents at {base}/tenants/{key}.
type Store struct {
	base   *url.URL
	client *http.Client
	header http.Header
}

// Option configures a Store.
type Option func(*Store)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Store) {
		if client != nil {
			s.client = client
		}
	}
}

// WithHeader adds a header to every request, e.g. an authorization token.
func WithHeader(key, value string) Option {
	return func(s *Store) {
		s.header.Set(key, value)
	}
}

// New constructs a store rooted at baseURL.
func New(baseURL string, opts ...Option) (*Store, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, ErrBaseURLRequired
	}
	base, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("httpstore: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("httpstore: unsupported scheme %q", base.Scheme)
	}
	s := &Store{
		base:   base,
		client: &http.Client{Timeout: DefaultTimeout},
		header: http.Header{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// FetchTenant loads the document of tenantKey. A 404 yields an empty document.
func (s *Store) FetchTenant(ctx context.Context, tenantKey string) (*sites.TenantSnapshot, error) {
	key, err := backends.NormalizeKey(tenantKey)
	if err != nil {
		return nil, err
	}
	req, err := s.request(ctx, http.MethodGet, key, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpstore: fetch %s: %w", key, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return &sites.TenantSnapshot{TenantKey: key}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Method: http.MethodGet, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("httpstore: read %s: %w", key, err)
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("httpstore: document exceeds maximum size of %d bytes", maxDocumentSize)
	}
	return backends.DecodeDocument(key, data)
}

// RequestSave PUTs the document carried by req.
func (s *Store) RequestSave(ctx context.Context, req interfaces.SaveRequest) error {
	key, err := backends.CheckSave(req)
	if err != nil {
		return err
	}
	snapshot := sites.CloneSnapshot(req.Snapshot)
	snapshot.TenantKey = key
	payload, err := backends.EncodeDocument(snapshot)
	if err != nil {
		return err
	}

	httpReq, err := s.request(ctx, http.MethodPut, key, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.Reason != "" {
		httpReq.Header.Set("X-Save-Reason", string(req.Reason))
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("httpstore: save %s: %w", key, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDocumentSize))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: http.MethodPut, Status: resp.StatusCode}
	}
	return nil
}

func (s *Store) request(ctx context.Context, method, key string, body io.Reader) (*http.Request, error) {
	if key == "." || key == ".." {
		return nil, fmt.Errorf("%w: %q", ErrTenantKeyPath, key)
	}
	target := s.base.JoinPath("tenants", url.PathEscape(key))
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("httpstore: build request: %w", err)
	}
	for name, values := range s.header {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}
	return req, nil
}
