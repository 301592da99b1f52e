package models

import "time"

// InboundMessage is the normalized message handed to the core by a
// transport collaborator (chat webhook, telegram adapter, HTTP ingest).
type InboundMessage struct {
	SenderID   string    `json:"sender_id"`
	RawText    string    `json:"raw_text"`
	ChannelID  string    `json:"channel_id"`
	ReceivedAt time.Time `json:"received_at"`
}

// DetectionMethod identifies which rule produced a classification verdict.
type DetectionMethod string

const (
	DetectedByKeyword          DetectionMethod = "keyword"
	DetectedByImperative       DetectionMethod = "imperative"
	DetectedByMentionPattern   DetectionMethod = "mention_pattern"
	DetectedByAssistedFallback DetectionMethod = "assisted_fallback"
)

// Category is the message category derived from the matched verb vocabulary.
type Category string

const (
	CategoryScheduling Category = "scheduling"
	CategoryOutreach   Category = "outreach"
	CategoryGeneric    Category = "generic"
	CategoryNone       Category = "none"
)

// ClassificationResult is the intent classifier's verdict for one message.
type ClassificationResult struct {
	IsWorkRequest bool            `json:"is_work_request"`
	Confidence    float64         `json:"confidence"`
	Category      Category        `json:"category"`
	DetectedBy    DetectionMethod `json:"detected_by"`
}
