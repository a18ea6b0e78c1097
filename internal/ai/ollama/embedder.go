// Package ollama embeds text with a local Ollama server.
package ollama

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"github.com/spigell/talent-matcher/internal/ai"
	"github.com/spigell/talent-matcher/internal/utils"
)

const (
	provider = "ollama"

	defaultModel        = "nomic-embed-text"
	defaultMaxRetries   = 2
	defaultTimeout      = 30 * time.Second
	defaultMaxLogLength = 120

	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

var sleep = utils.WaitFor

type embedAPI interface {
	Embed(ctx context.Context, req *api.EmbedRequest) (*api.EmbedResponse, error)
}

// Options tune the embedding backend. Zero values select defaults. An empty Host
// falls back to OLLAMA_HOST and then to the local default address.
type Options struct {
	Host         string
	Model        string
	MaxRetries   int
	Timeout      time.Duration
	MaxLogLength int
}

// Embedder produces text embeddings through the Ollama embed API with bounded
// retries and an in-memory cache keyed by text hash.
type Embedder struct {
	client     embedAPI
	model      string
	maxRetries int
	timeout    time.Duration
	maxLogLen  int
	logger     *zap.Logger

	cacheMu sync.RWMutex
	cache   map[string][]float32
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder creates an Embedder for the Ollama server at opts.Host.
func NewEmbedder(opts Options, logger *zap.Logger) (*Embedder, error) {
	client, err := newClient(strings.TrimSpace(opts.Host))
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return newEmbedder(client, opts, logger), nil
}

func newClient(host string) (*api.Client, error) {
	if host == "" {
		return api.ClientFromEnvironment()
	}

	base, err := url.Parse(host)
	if err != nil {
		return nil, err
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("host %q must be an absolute url", host)
	}
	return api.NewClient(base, http.DefaultClient), nil
}

func newEmbedder(client embedAPI, opts Options, logger *zap.Logger) *Embedder {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Embedder{
		client:     client,
		model:      strings.TrimSpace(opts.Model),
		maxRetries: opts.MaxRetries,
		timeout:    opts.Timeout,
		maxLogLen:  opts.MaxLogLength,
		logger:     logger,
		cache:      make(map[string][]float32),
	}

	if e.model == "" {
		e.model = defaultModel
	}
	if e.maxRetries <= 0 {
		e.maxRetries = defaultMaxRetries
	}
	if e.timeout <= 0 {
		e.timeout = defaultTimeout
	}
	if e.maxLogLen <= 0 {
		e.maxLogLen = defaultMaxLogLength
	}

	return e
}

func (e *Embedder) Provider() string { return provider }

func (e *Embedder) Model() string {
	if e == nil {
		return ""
	}
	return e.model
}

// Embed returns the embedding of text. Every failure is wrapped with ai.ErrBackendUnavailable.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text must not be empty")
	}

	key := fmt.Sprintf("%x", sha256.Sum256([]byte(text)))

	e.cacheMu.RLock()
	cached, ok := e.cache[key]
	e.cacheMu.RUnlock()
	if ok {
		return cached, nil
	}

	vec, err := e.embedWithRetries(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrBackendUnavailable, err)
	}

	e.cacheMu.Lock()
	e.cache[key] = vec
	e.cacheMu.Unlock()

	return vec, nil
}

func (e *Embedder) embedWithRetries(ctx context.Context, text string) ([]float32, error) {
	var lastErr error

	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		e.logger.Debug("ollama embed request",
			zap.Int("attempt", attempt),
			zap.Int("text_length", utf8.RuneCountInString(text)),
			zap.String("text_preview", utils.TruncateForLog(text, e.maxLogLen)),
		)

		vec, err := e.embedOnce(ctx, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err

		if !retryable(err) || attempt == e.maxRetries {
			break
		}

		delay := backoff(attempt)
		e.logger.Debug("retrying ollama embed",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

func (e *Embedder) embedOnce(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.Embed(ctx, &api.EmbedRequest{
		Model: e.model,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	if resp == nil || len(resp.Embeddings) == 0 || len(resp.Embeddings[0]) == 0 {
		return nil, errors.New("ollama returned empty embedding")
	}

	return resp.Embeddings[0], nil
}

// retryable reports server-side failures and timeouts. A missing model or a bad
// request fails the same way on every attempt.
func retryable(err error) bool {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= http.StatusInternalServerError
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func backoff(attempt int) time.Duration {
	d := initialBackoff << (attempt - 1)
	if d > maxBackoff || d <= 0 {
		return maxBackoff
	}
	return d
}
