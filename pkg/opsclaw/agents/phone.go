package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// CallTask asks the phone agent to place an outbound call.
type CallTask struct {
	Number string
	Goal   string
}

func (CallTask) Action() string { return "call" }

// PhoneConfig holds the outbound calling credentials. APIKey and
// PhoneNumberID are resolved from keyring/env/config at startup; when either
// is missing the agent reports a labeled failure without attempting a call.
type PhoneConfig struct {
	APIKey        string `yaml:"api_key"`
	PhoneNumberID string `yaml:"phone_number_id"`
	APIURL        string `yaml:"api_url"`
}

// Phone places outbound voice calls through a hosted calling API.
type Phone struct {
	cfg    PhoneConfig
	client *http.Client
	logger *slog.Logger
}

// NewPhone returns the phone-calling agent.
func NewPhone(cfg PhoneConfig, logger *slog.Logger) *Phone {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.APIURL == "" {
		cfg.APIURL = "https://api.vapi.ai/call/phone"
	}
	return &Phone{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
		logger: logger,
	}
}

// Name implements Agent.
func (p *Phone) Name() string { return "PhoneCallingAgent" }

// Execute implements Agent.
func (p *Phone) Execute(ctx context.Context, task Task) (Result, error) {
	call, ok := task.(CallTask)
	if !ok {
		return unknownAction(p.Name(), task), nil
	}
	return p.call(ctx, call)
}

func (p *Phone) call(ctx context.Context, t CallTask) (Result, error) {
	if p.cfg.APIKey == "" || p.cfg.PhoneNumberID == "" {
		return Result{
			Steps:  []string{"❌ Calling credentials not configured (api key / phone number id)"},
			Status: "error",
		}, nil
	}
	if t.Number == "" {
		return Result{
			Steps:  []string{"❌ No phone number provided"},
			Status: "error",
		}, nil
	}

	goal := t.Goal
	if goal == "" {
		goal = "Have a helpful conversation."
	}

	payload := map[string]any{
		"assistant": map[string]any{
			"model": map[string]any{
				"messages": []map[string]string{{
					"role":    "system",
					"content": fmt.Sprintf("You are a helpful assistant. Your goal is: %s. Be concise and polite.", goal),
				}},
			},
			"firstMessage": fmt.Sprintf("Hello, I am calling about: %s.", goal),
		},
		"phoneNumberId": p.cfg.PhoneNumberID,
		"customer":      map[string]string{"number": t.Number},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("phone: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("phone: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	p.logger.Info("placing call", "number", t.Number)
	resp, err := p.client.Do(req)
	if err != nil {
		return Result{
			Steps:  []string{fmt.Sprintf("📞 Dialing %s...", t.Number), fmt.Sprintf("❌ Call failed: %v", err)},
			Status: "error",
		}, nil
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode != http.StatusCreated {
		return Result{
			Steps: []string{
				fmt.Sprintf("📞 Dialing %s...", t.Number),
				fmt.Sprintf("❌ API error (%d): %s", resp.StatusCode, bytes.TrimSpace(raw)),
			},
			Status: "error",
		}, nil
	}

	var created struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(raw, &created)

	return Result{
		Steps: []string{
			fmt.Sprintf("📞 Dialing %s...", t.Number),
			fmt.Sprintf("🤖 Goal: '%s'", goal),
			fmt.Sprintf("✅ Call connected (ID: %s)", created.ID),
		},
		Status: "success",
		CallID: created.ID,
	}, nil
}
