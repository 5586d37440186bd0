package service

import (
	"context"
	"errors"
	"fmt"

	orbital "orbital_node"
	"orbital_node/internal/logger"

	openai "github.com/sashabaranov/go-openai"
)

// Compute is the opaque external capability invoked after admission. It owns
// the mapping from payload/priority to the heat load the job generates; the
// admission controller only relays what it returns.
type Compute interface {
	Execute(ctx context.Context, payload string, priority orbital.Priority) (result string, heatLoadWatts float64, err error)
}

// Heat-load policy defaults: a HIGH-priority job drives the accelerator at
// full tilt, lower priorities run throttled clocks.
const (
	DefaultHeatWattsLow    = 200.0
	DefaultHeatWattsNormal = 350.0
	DefaultHeatWattsHigh   = 500.0
	DefaultWattsPerKiB     = 5.0
)

// ComputeConfig configures the compute capability and its heat policy.
type ComputeConfig struct {
	APIKey string // empty selects the offline mock kernel
	Model  string

	HeatWattsLow    float64
	HeatWattsNormal float64
	HeatWattsHigh   float64
	WattsPerKiB     float64

	// MinExecSeconds floors the execution time the admission path integrates.
	MinExecSeconds float64
}

func (c ComputeConfig) normalize() ComputeConfig {
	if c.Model == "" {
		c.Model = openai.GPT4oMini
	}
	if c.HeatWattsLow <= 0 {
		c.HeatWattsLow = DefaultHeatWattsLow
	}
	if c.HeatWattsNormal <= 0 {
		c.HeatWattsNormal = DefaultHeatWattsNormal
	}
	if c.HeatWattsHigh <= 0 {
		c.HeatWattsHigh = DefaultHeatWattsHigh
	}
	if c.WattsPerKiB < 0 {
		c.WattsPerKiB = DefaultWattsPerKiB
	}
	return c
}

// heatLoadWatts maps priority and payload size to simulated power draw.
func (c ComputeConfig) heatLoadWatts(payload string, priority orbital.Priority) float64 {
	base := c.HeatWattsNormal
	switch priority {
	case orbital.PriorityLow:
		base = c.HeatWattsLow
	case orbital.PriorityHigh:
		base = c.HeatWattsHigh
	}
	return base + c.WattsPerKiB*float64(len(payload))/1024.0
}

// NewCompute picks the kernel-backed capability when an API key is configured
// and falls back to the offline mock otherwise, so the surrounding
// infrastructure stays testable without credentials.
func NewCompute(cfg ComputeConfig, log *logger.Logger) Compute {
	cfg = cfg.normalize()
	if cfg.APIKey == "" {
		if log != nil {
			log.Infow("compute_mock_kernel", "reason", "no api key configured")
		}
		return &MockKernel{cfg: cfg}
	}
	return &KernelCompute{
		cfg:    cfg,
		client: openai.NewClient(cfg.APIKey),
		log:    log,
	}
}

const summarizePrompt = "You are an AI worker on an orbital data center. " +
	"Summarize the following scientific data stream concisely."

// KernelCompute runs the job payload through a chat-completion model.
type KernelCompute struct {
	cfg    ComputeConfig
	client *openai.Client
	log    *logger.Logger
}

func (k *KernelCompute) Execute(ctx context.Context, payload string, priority orbital.Priority) (string, float64, error) {
	resp, err := k.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: k.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarizePrompt},
			{Role: openai.ChatMessageRoleUser, Content: payload},
		},
	})
	if err != nil {
		return "", 0, fmt.Errorf("kernel invoke: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", 0, errors.New("kernel returned no choices")
	}
	return resp.Choices[0].Message.Content, k.cfg.heatLoadWatts(payload, priority), nil
}

// MockKernel produces a deterministic offline result so the thermal and link
// behavior stays observable without an upstream provider.
type MockKernel struct {
	cfg ComputeConfig
}

func (m *MockKernel) Execute(_ context.Context, payload string, priority orbital.Priority) (string, float64, error) {
	snippet := payload
	if len(snippet) > 50 {
		snippet = snippet[:50] + "..."
	}
	return "[MOCK KERNEL] Processed: " + snippet, m.cfg.heatLoadWatts(payload, priority), nil
}
