package embedding

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"

	perr "coursehub/internal/platform/errors"
	"coursehub/internal/platform/logger"
)

const (
	defaultModel     = "text-embedding-3-small"
	defaultDimension = 1536
	defaultTimeout   = 15 * time.Second
)

// Options configures the OpenAI embedding client
type Options struct {
	APIKey string

	// BaseURL overrides the API endpoint for proxies or compatible servers
	BaseURL string

	Model     string
	Dimension int
	Timeout   time.Duration
}

// OpenAI implements Provider against the OpenAI embeddings API
type OpenAI struct {
	client *openai.Client
	opts   Options
	log    logger.Logger
}

// NewOpenAI creates an OpenAI embedding provider with sane defaults
func NewOpenAI(o Options) (*OpenAI, error) {
	if o.APIKey == "" {
		return nil, perr.New(perr.ErrorCodeInvalidArgument, "embedding: api key required")
	}
	if o.Model == "" {
		o.Model = defaultModel
	}
	if o.Dimension <= 0 {
		o.Dimension = defaultDimension
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}

	cfg := openai.DefaultConfig(o.APIKey)
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(cfg),
		opts:   o,
		log:    *logger.Named("embedding"),
	}, nil
}

// Embed returns the embedding vector for text
func (p *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(p.opts.Model),
	})
	if err != nil {
		p.log.Warn().
			Err(err).
			Str("model", p.opts.Model).
			Int("text_len", len(text)).
			Dur("elapsed", time.Since(start)).
			Msg("embedding request failed")
		return nil, perr.Wrap(err, perr.ErrorCodeEmbedding, "create embeddings")
	}
	if len(resp.Data) == 0 {
		return nil, perr.New(perr.ErrorCodeEmbedding, "embedding response empty")
	}

	vec := resp.Data[0].Embedding
	if len(vec) != p.opts.Dimension {
		return nil, perr.Newf(perr.ErrorCodeEmbedding,
			"embedding dimension mismatch: got %d want %d", len(vec), p.opts.Dimension)
	}

	p.log.Debug().
		Str("model", p.opts.Model).
		Int("text_len", len(text)).
		Dur("elapsed", time.Since(start)).
		Msg("embedding ok")
	return vec, nil
}

// Model reports the model name used for embedding
func (p *OpenAI) Model() string { return p.opts.Model }

// Dimension reports the expected vector width
func (p *OpenAI) Dimension() int { return p.opts.Dimension }
