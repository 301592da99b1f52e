package intent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskrouter/internal/models"
)

func newAssisted(t *testing.T, handler http.HandlerFunc, timeout time.Duration) (*AssistedDetector, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	rules := NewRuleBased(NewVocabulary(nil))
	client := NewAssistedClient(srv.URL, timeout)
	return NewAssistedDetector(rules, client, timeout, zap.NewNop()), srv
}

func TestAssistedDetect_UsesServiceJudgment(t *testing.T) {
	detector, _ := newAssisted(t, func(w http.ResponseWriter, r *http.Request) {
		var req assistRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"U1"}, req.AddressedUsers)

		_ = json.NewEncoder(w).Encode(Judgment{
			IsWorkRequest: true,
			Confidence:    0.97,
			Category:      "outreach",
		})
	}, time.Second)

	result := detector.Detect(context.Background(), "<@U1> something ambiguous", []string{"U1"})
	assert.True(t, result.IsWorkRequest)
	assert.Equal(t, 0.97, result.Confidence)
	assert.Equal(t, models.CategoryOutreach, result.Category)
	assert.Equal(t, models.DetectedByAssistedFallback, result.DetectedBy)
}

func TestAssistedDetect_TimeoutFallsBackToRules(t *testing.T) {
	detector, _ := newAssisted(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(Judgment{IsWorkRequest: false})
	}, 50*time.Millisecond)

	// Rule-based says work request; the slow service must not override it.
	result := detector.Detect(context.Background(), "<@U1> schedule a meeting", []string{"U1"})
	assert.True(t, result.IsWorkRequest)
	assert.Equal(t, models.DetectedByImperative, result.DetectedBy)
	assert.Equal(t, models.CategoryScheduling, result.Category)
}

func TestAssistedDetect_ServerErrorFallsBackToRules(t *testing.T) {
	detector, _ := newAssisted(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}, time.Second)

	result := detector.Detect(context.Background(), "<@U1> schedule a meeting", []string{"U1"})
	assert.True(t, result.IsWorkRequest)
	assert.Equal(t, models.DetectedByImperative, result.DetectedBy)
}

func TestAssistedDetect_ZeroMentionsSkipsService(t *testing.T) {
	called := false
	detector, _ := newAssisted(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		_ = json.NewEncoder(w).Encode(Judgment{IsWorkRequest: true, Confidence: 1})
	}, time.Second)

	result := detector.Detect(context.Background(), "schedule a meeting tomorrow", nil)
	assert.False(t, result.IsWorkRequest, "zero mentions can never be a work request")
	assert.False(t, called, "service must not be consulted without addressed users")
}

func TestAssistedDetect_UnknownCategoryKeepsRuleCategory(t *testing.T) {
	detector, _ := newAssisted(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Judgment{IsWorkRequest: true, Confidence: 0.8, Category: "weird"})
	}, time.Second)

	result := detector.Detect(context.Background(), "<@U1> schedule a meeting", []string{"U1"})
	assert.Equal(t, models.CategoryScheduling, result.Category)
}

func TestAssistedDetect_ConfidenceClamped(t *testing.T) {
	detector, _ := newAssisted(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Judgment{IsWorkRequest: true, Confidence: 3.5, Category: "generic"})
	}, time.Second)

	result := detector.Detect(context.Background(), "<@U1> schedule a meeting", []string{"U1"})
	assert.Equal(t, 1.0, result.Confidence)
}
