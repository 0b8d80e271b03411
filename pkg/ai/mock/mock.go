package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/OFFIS-RIT/corpusgraph/pkg/ai"
)

// Client is a deterministic in-memory implementation of ai.GraphAIClient
// for tests. Behavior can be overridden per call via the function fields;
// unset fields fall back to deterministic defaults.
type Client struct {
	CompletionFn func(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error)
	FormatFn     func(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error
	EmbeddingFn  func(ctx context.Context, input []byte) ([]float32, error)

	// Dimensions controls the size of default embedding vectors.
	Dimensions int

	mu          sync.Mutex
	calls       int
	embedCalls  int
	formatCalls int
	metrics     ai.ModelMetrics
}

// New returns a mock client producing 8-dimensional hash embeddings.
func New() *Client {
	return &Client{Dimensions: 8}
}

// Calls returns the total number of completion and format calls made.
func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// EmbedCalls returns the number of embedding requests made.
func (c *Client) EmbedCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.embedCalls
}

// FormatCalls returns the number of structured completion requests made.
func (c *Client) FormatCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.formatCalls
}

func (c *Client) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.CompletionFn != nil {
		return c.CompletionFn(ctx, prompt, opts...)
	}
	return "", nil
}

func (c *Client) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	c.mu.Lock()
	c.calls++
	c.formatCalls++
	c.mu.Unlock()
	if c.FormatFn != nil {
		return c.FormatFn(ctx, name, description, prompt, out, opts...)
	}
	return fmt.Errorf("mock: no FormatFn configured")
}

func (c *Client) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	c.mu.Lock()
	c.embedCalls++
	c.mu.Unlock()
	if c.EmbeddingFn != nil {
		return c.EmbeddingFn(ctx, input)
	}
	return c.hashVector(input), nil
}

func (c *Client) GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i, in := range inputs {
		vec, err := c.GenerateEmbedding(ctx, in)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (c *Client) LoadModel(ctx context.Context, opts ...ai.GenerateOption) error {
	return nil
}

func (c *Client) ResetMetrics() {
	c.mu.Lock()
	c.metrics = ai.ModelMetrics{}
	c.mu.Unlock()
}

func (c *Client) GetMetrics() ai.ModelMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics
}

// hashVector derives a stable pseudo-embedding from the input so equal
// texts always map to equal vectors.
func (c *Client) hashVector(input []byte) []float32 {
	dim := c.Dimensions
	if dim <= 0 {
		dim = 8
	}
	vec := make([]float32, dim)
	h := fnv.New32a()
	h.Write(input)
	seed := h.Sum32()
	for i := range vec {
		seed = seed*1664525 + 1013904223
		vec[i] = float32(seed%1000) / 1000.0
	}
	return vec
}
