package gemini

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/spigell/talent-matcher/internal/ai"
	"github.com/spigell/talent-matcher/internal/utils"
)

const (
	provider = "gemini"

	defaultModel        = "gemini-embedding-001"
	defaultTaskType     = "SEMANTIC_SIMILARITY"
	defaultMaxRetries   = 2
	defaultTimeout      = 15 * time.Second
	defaultMaxLogLength = 120

	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 5 * time.Second
	// Quota errors asking to wait longer than this are not retried.
	maxQuotaDelay = 10 * time.Second
)

var (
	sleep = utils.WaitFor

	retryAfterRe = regexp.MustCompile(`(?i)retry (?:after|in) ([0-9]+(?:\.[0-9]+)?)\s*(s|sec|secs|second|seconds)\b`)
)

type embedContentAPI interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Options tune the embedding backend. Zero values select defaults.
type Options struct {
	Model             string
	TaskType          string
	MaxRetries        int
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxLogLength      int
}

// Embedder produces text embeddings through the Gemini API with bounded retries,
// a request rate limit and an in-memory cache keyed by text hash.
type Embedder struct {
	models     embedContentAPI
	model      string
	taskType   string
	maxRetries int
	timeout    time.Duration
	limiter    *rate.Limiter
	maxLogLen  int
	logger     *zap.Logger

	cacheMu sync.RWMutex
	cache   map[string][]float32
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder creates an Embedder configured for the Gemini API backend.
func NewEmbedder(ctx context.Context, apiKey string, opts Options, logger *zap.Logger) (*Embedder, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newEmbedder(client.Models, opts, logger), nil
}

func newEmbedder(models embedContentAPI, opts Options, logger *zap.Logger) *Embedder {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Embedder{
		models:     models,
		model:      strings.TrimSpace(opts.Model),
		taskType:   strings.TrimSpace(opts.TaskType),
		maxRetries: opts.MaxRetries,
		timeout:    opts.Timeout,
		maxLogLen:  opts.MaxLogLength,
		logger:     logger,
		cache:      make(map[string][]float32),
	}

	if e.model == "" {
		e.model = defaultModel
	}
	if e.taskType == "" {
		e.taskType = defaultTaskType
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
	if opts.RequestsPerSecond > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
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
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		e.logger.Debug("gemini embed content request",
			zap.Int("attempt", attempt),
			zap.Int("text_length", utf8.RuneCountInString(text)),
			zap.String("text_preview", utils.TruncateForLog(text, e.maxLogLen)),
		)

		vec, err := e.embedOnce(ctx, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err

		delay, retry := retryDelay(err, attempt)
		if !retry || attempt == e.maxRetries {
			break
		}

		e.logger.Debug("retrying gemini embed content",
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

	resp, err := e.models.EmbedContent(ctx, e.model, genai.Text(text), &genai.EmbedContentConfig{
		TaskType: e.taskType,
	})
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.New("gemini api returned empty embedding")
	}

	return resp.Embeddings[0].Values, nil
}

// retryDelay decides whether err is worth another attempt and how long to wait first.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		if errors.Is(err, context.DeadlineExceeded) {
			return backoff(attempt), true
		}
		return 0, false
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		if d, ok := parseRetryAfter(apiErr.Message); ok {
			if d > maxQuotaDelay {
				return 0, false
			}
			return d, true
		}
		return backoff(attempt), true
	case apiErr.Code >= http.StatusInternalServerError:
		return backoff(attempt), true
	default:
		return 0, false
	}
}

func backoff(attempt int) time.Duration {
	d := initialBackoff << (attempt - 1)
	if d > maxBackoff || d <= 0 {
		return maxBackoff
	}
	return d
}

func parseRetryAfter(message string) (time.Duration, bool) {
	m := retryAfterRe.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}
	secs, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}
