package intent

import (
	"strings"

	"taskrouter/internal/models"
)

// VerbCategory names a sub-vocabulary of action verbs. The matched category
// feeds the routing classifier, so the names here line up with the message
// categories the router understands.
type VerbCategory string

const (
	VerbsScheduling    VerbCategory = "scheduling"
	VerbsCommunication VerbCategory = "communication"
	VerbsCreation      VerbCategory = "creation"
	VerbsAnalysis      VerbCategory = "analysis"
)

// politePhrases mark a message as a polite request when present anywhere
// in the text.
var politePhrases = []string{
	"can you",
	"could you",
	"please",
	"need you to",
	"would you mind",
	"can u",
	"would you be able to",
}

// defaultVerbs is the built-in action-verb vocabulary. Multi-word verbs are
// supported; matching is against the start of the remaining text.
var defaultVerbs = map[VerbCategory][]string{
	VerbsScheduling: {
		"schedule", "book", "arrange", "plan", "reschedule",
		"set up a meeting", "calendar", "block time",
	},
	VerbsCommunication: {
		"email", "call", "contact", "reach out", "message",
		"ping", "follow up", "reply", "respond", "notify",
	},
	VerbsCreation: {
		"create", "write", "draft", "build", "make",
		"prepare", "set up", "add", "implement",
	},
	VerbsAnalysis: {
		"review", "analyze", "check", "investigate",
		"look into", "audit", "verify", "debug",
	},
}

// Vocabulary is the single verb table shared by every classifier call site.
// Maintaining two copies of this table is how detection drifts apart across
// features, so construction goes through NewVocabulary and the merged result
// is passed to each consumer.
type Vocabulary struct {
	verbs map[VerbCategory][]string
}

// NewVocabulary builds the vocabulary from the built-in verb lists merged
// with per-category extras from configuration. Unknown category names in
// extras are ignored.
func NewVocabulary(extras map[string][]string) *Vocabulary {
	verbs := make(map[VerbCategory][]string, len(defaultVerbs))
	for cat, list := range defaultVerbs {
		merged := make([]string, 0, len(list))
		merged = append(merged, list...)
		for _, extra := range extras[string(cat)] {
			extra = strings.ToLower(strings.TrimSpace(extra))
			if extra != "" {
				merged = append(merged, extra)
			}
		}
		verbs[cat] = merged
	}
	return &Vocabulary{verbs: verbs}
}

// matchVerb reports the category of the action verb the text begins with,
// preferring the longest match so "set up a meeting" wins over "set up".
func (v *Vocabulary) matchVerb(text string) (VerbCategory, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	var (
		bestCat VerbCategory
		bestLen int
	)
	for cat, list := range v.verbs {
		for _, verb := range list {
			if len(verb) <= bestLen {
				continue
			}
			if startsWithWord(text, verb) {
				bestCat = cat
				bestLen = len(verb)
			}
		}
	}
	return bestCat, bestLen > 0
}

// startsWithWord checks that text begins with prefix on a word boundary,
// so "planning" does not match the verb "plan" while "plan the offsite" does.
func startsWithWord(text, prefix string) bool {
	if !strings.HasPrefix(text, prefix) {
		return false
	}
	if len(text) == len(prefix) {
		return true
	}
	next := text[len(prefix)]
	return next == ' ' || next == '\t' || next == ',' || next == '.' || next == '!' || next == '?' || next == ':'
}

// category maps a matched verb category to the message category the
// routing classifier consumes.
func category(cat VerbCategory) models.Category {
	switch cat {
	case VerbsScheduling:
		return models.CategoryScheduling
	case VerbsCommunication:
		return models.CategoryOutreach
	default:
		return models.CategoryGeneric
	}
}
