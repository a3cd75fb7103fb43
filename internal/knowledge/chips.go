package knowledge

import (
	"strings"

	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/domain"
)

// chipMaxTopicLen bounds the topic excerpt inside a continuation chip.
const chipMaxTopicLen = 60

// BuildContextChips reshapes already-assembled blocks into short UI
// suggestion strings: one chip per numbered work item and one continuation
// chip referencing the latest conversation exchange. No store or network
// dependency.
func BuildContextChips(blocks []domain.ContextBlock) []string {
	var chips []string

	for _, block := range blocks {
		switch block.ID {
		case "active-work-items":
			chips = append(chips, workItemChips(block.Content)...)
		case "recent-conversation":
			if topic := latestConversationTopic(block.Content); topic != "" {
				chips = append(chips, "Continue this: "+topic)
			}
		}
	}
	return chips
}

// workItemChips extracts the title of each numbered entry. Lines look like
// "1. [P2] Renew contracts (open)".
func workItemChips(content string) []string {
	var chips []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		dot := strings.Index(line, ". ")
		if dot <= 0 || !isDigits(line[:dot]) {
			continue
		}
		entry := line[dot+2:]

		if strings.HasPrefix(entry, "[") {
			if end := strings.Index(entry, "] "); end >= 0 {
				entry = entry[end+2:]
			}
		}
		if open := strings.LastIndex(entry, " ("); open >= 0 && strings.HasSuffix(entry, ")") {
			entry = entry[:open]
		}

		if entry != "" {
			chips = append(chips, entry)
		}
	}
	return chips
}

// latestConversationTopic returns a short excerpt of the newest message in
// the rendered transcript. The transcript reads oldest first, so the last
// line is the latest exchange.
func latestConversationTopic(content string) string {
	lines := strings.Split(content, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" || line == "Recent conversation:" {
			continue
		}
		if colon := strings.Index(line, ": "); colon >= 0 {
			line = line[colon+2:]
		}
		return truncateTopic(line, chipMaxTopicLen)
	}
	return ""
}

// truncateTopic shortens s to at most max runes. Cutting on a rune
// boundary keeps multi-byte content valid UTF-8.
func truncateTopic(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
