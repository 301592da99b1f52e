package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"taskrouter/internal/models"
)

// AssistedClient is a client for the external natural-language judgment
// service.
type AssistedClient struct {
	baseURL    string
	httpClient *http.Client
}

type assistRequest struct {
	Text           string   `json:"text"`
	AddressedUsers []string `json:"addressed_users"`
}

type Judgment struct {
	IsWorkRequest bool    `json:"is_work_request"`
	Confidence    float64 `json:"confidence"`
	Category      string  `json:"category"`
}

// NewAssistedClient creates a new assisted-classifier client.
func NewAssistedClient(baseURL string, timeout time.Duration) *AssistedClient {
	return &AssistedClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Judge asks the external service for a confidence + category judgment.
func (c *AssistedClient) Judge(ctx context.Context, text string, addressed []string) (*Judgment, error) {
	jsonData, err := json.Marshal(assistRequest{Text: text, AddressedUsers: addressed})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v1/classify", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("assisted classifier returned status %d: %s", resp.StatusCode, string(body))
	}

	var result Judgment
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// AssistedDetector layers the external judgment service over the rule-based
// detector. The assisted call carries a hard timeout; on timeout or error
// the rule-based result is returned unchanged, so the assisted path is an
// enhancement and never a point of failure in the pipeline.
type AssistedDetector struct {
	rules   *RuleBased
	client  *AssistedClient
	timeout time.Duration
	logger  *zap.Logger
}

func NewAssistedDetector(rules *RuleBased, client *AssistedClient, timeout time.Duration, logger *zap.Logger) *AssistedDetector {
	return &AssistedDetector{
		rules:   rules,
		client:  client,
		timeout: timeout,
		logger:  logger,
	}
}

func (d *AssistedDetector) Detect(ctx context.Context, rawText string, addressed []string) models.ClassificationResult {
	ruleResult := d.rules.Detect(ctx, rawText, addressed)

	// Zero addressed users is never a work request; skip the remote call
	// entirely so the invariant cannot be violated by the service.
	if len(addressed) == 0 {
		return ruleResult
	}

	assistCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	judgment, err := d.client.Judge(assistCtx, rawText, addressed)
	if err != nil {
		d.logger.Debug("assisted classifier unavailable, using rule-based result", zap.Error(err))
		return ruleResult
	}

	result := models.ClassificationResult{
		IsWorkRequest: judgment.IsWorkRequest,
		Confidence:    clamp01(judgment.Confidence),
		Category:      parseCategory(judgment.Category, ruleResult.Category),
		DetectedBy:    models.DetectedByAssistedFallback,
	}

	return result
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// parseCategory maps the service's category string, keeping the rule-based
// category when the service answers with something this core doesn't know.
func parseCategory(s string, fallback models.Category) models.Category {
	switch models.Category(s) {
	case models.CategoryScheduling, models.CategoryOutreach, models.CategoryGeneric, models.CategoryNone:
		return models.Category(s)
	default:
		return fallback
	}
}
