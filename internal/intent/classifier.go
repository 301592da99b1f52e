package intent

import (
	"context"
	"strings"

	"taskrouter/internal/mentions"
	"taskrouter/internal/models"
)

// Per-signal confidence constants for the rule-based detector. The values
// are fixed so both call sites report identical scores for the same message.
const (
	confidenceImperative     = 0.9
	confidenceMentionPattern = 0.85
	confidencePolite         = 0.75
)

// Detector decides whether a message is a work request. Implementations
// must never report a work request for a message with zero addressed users.
type Detector interface {
	Detect(ctx context.Context, rawText string, addressed []string) models.ClassificationResult
}

// RuleBased is the deterministic classifier. Every feature that needs a
// work-request verdict must go through a shared *RuleBased (or an
// AssistedDetector wrapping one) so that all call sites agree on the same
// vocabulary and combination rule.
type RuleBased struct {
	voc *Vocabulary
}

func NewRuleBased(voc *Vocabulary) *RuleBased {
	return &RuleBased{voc: voc}
}

// Detect applies the rule-based algorithm:
//  1. polite request if any polite phrase occurs in the text
//  2. imperative command if, after stripping leading mentions, the text
//     begins with an action verb
//  3. mention-then-verb if an addressed-user token is immediately followed
//     by an action verb
//
// A message with zero addressed users is never a work request.
func (r *RuleBased) Detect(_ context.Context, rawText string, addressed []string) models.ClassificationResult {
	hasMentions := len(addressed) > 0
	lower := strings.ToLower(rawText)

	polite := false
	for _, phrase := range politePhrases {
		if strings.Contains(lower, phrase) {
			polite = true
			break
		}
	}

	imperativeCat, imperative := r.voc.matchVerb(mentions.StripLeading(rawText))

	var (
		mentionCat     VerbCategory
		mentionPattern bool
	)
	for _, tail := range mentions.TextAfterEach(rawText) {
		if cat, ok := r.voc.matchVerb(tail); ok {
			mentionCat = cat
			mentionPattern = true
			break
		}
	}

	// Ambient conversation guard: without an addressed user nothing below
	// can make this a work request, verbs or not.
	if !hasMentions {
		return models.ClassificationResult{
			IsWorkRequest: false,
			Confidence:    0,
			Category:      models.CategoryNone,
			DetectedBy:    models.DetectedByKeyword,
		}
	}

	result := models.ClassificationResult{Category: models.CategoryNone}

	switch {
	case imperative:
		result.IsWorkRequest = true
		result.Confidence = confidenceImperative
		result.Category = category(imperativeCat)
		result.DetectedBy = models.DetectedByImperative
	case mentionPattern:
		result.IsWorkRequest = true
		result.Confidence = confidenceMentionPattern
		result.Category = category(mentionCat)
		result.DetectedBy = models.DetectedByMentionPattern
	case polite:
		result.IsWorkRequest = true
		result.Confidence = confidencePolite
		result.Category = r.politeCategory(rawText)
		result.DetectedBy = models.DetectedByKeyword
	}

	return result
}

// HasActionVerb reports whether the text, after stripping leading mentions,
// begins with a vocabulary verb. The pipeline uses it to log near-misses:
// work-request-like messages with nobody addressed.
func (r *RuleBased) HasActionVerb(rawText string) bool {
	_, ok := r.voc.matchVerb(mentions.StripLeading(rawText))
	return ok
}

// politeCategory scans the whole message for an action verb so a polite
// request like "can you schedule a sync" still lands in the scheduling
// category. Polite requests with no recognizable verb are generic.
func (r *RuleBased) politeCategory(rawText string) models.Category {
	words := strings.Fields(strings.ToLower(rawText))
	for i := range words {
		if cat, ok := r.voc.matchVerb(strings.Join(words[i:], " ")); ok {
			return category(cat)
		}
	}
	return models.CategoryGeneric
}
