package mentions

import "regexp"

var (
	// taggedRef matches platform markup like <@U02ABCDEF> or <@U02ABCDEF|display>.
	taggedRef = regexp.MustCompile(`<@([A-Za-z0-9._-]+)(?:\|[^>]*)?>`)
	// plainRef is the fallback for bare @name tokens typed without markup.
	plainRef = regexp.MustCompile(`(^|\s)@([A-Za-z0-9._-]+)`)
)

// Extract returns the user identifiers addressed in raw message text,
// de-duplicated with insertion order preserved. The sender is supplied
// out-of-band by the transport and is never parsed from text.
// Empty input yields an empty list.
func Extract(rawText string) []string {
	ids := make([]string, 0, 4)
	seen := make(map[string]struct{})

	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, m := range taggedRef.FindAllStringSubmatch(rawText, -1) {
		add(m[1])
	}

	// Strip tagged references before scanning for plain @name tokens so the
	// same mention is not counted under both encodings.
	stripped := taggedRef.ReplaceAllString(rawText, " ")
	for _, m := range plainRef.FindAllStringSubmatch(stripped, -1) {
		add(m[2])
	}

	return ids
}

// StripLeading removes mention tokens (either encoding) from the front of
// the text, returning the remainder. Used by the intent classifier to find
// the first word of an imperative command.
func StripLeading(rawText string) string {
	rest := rawText
	for {
		trimmed := trimLeftSpace(rest)
		if loc := taggedRef.FindStringIndex(trimmed); loc != nil && loc[0] == 0 {
			rest = trimmed[loc[1]:]
			continue
		}
		if loc := plainRef.FindStringIndex(trimmed); loc != nil && loc[0] == 0 {
			rest = trimmed[loc[1]:]
			continue
		}
		return trimmed
	}
}

// TextAfterEach returns, for every mention token in the text, the substring
// that immediately follows it. The intent classifier uses this to detect
// the mention-then-verb pattern anywhere in the message, not only at the
// front.
func TextAfterEach(rawText string) []string {
	var tails []string
	for _, loc := range taggedRef.FindAllStringIndex(rawText, -1) {
		tails = append(tails, trimLeftSpace(rawText[loc[1]:]))
	}
	stripped := taggedRef.ReplaceAllString(rawText, " ")
	for _, loc := range plainRef.FindAllStringIndex(stripped, -1) {
		tails = append(tails, trimLeftSpace(stripped[loc[1]:]))
	}
	return tails
}

func trimLeftSpace(s string) string {
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t' || s[0] == '\n' || s[0] == ',' || s[0] == ':') {
		s = s[1:]
	}
	return s
}
