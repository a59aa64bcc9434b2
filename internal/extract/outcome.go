package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// First numbered item under a "DECISION" header.
	decisionHeaderRe = regexp.MustCompile(`(?s)DECISION\s*\n+\s*(?:Decisions? of the Tribunal\s*\n+\s*)?(?:\(?1\)?\s*)?(.+?)(?:\n\s*\(?2\)|\n\s*\n|$)`)
	// "The tribunal determines/orders/decides/grants ..." sentence.
	tribunalVerbRe = regexp.MustCompile(`(?s)(?:The )?[Tt]ribunal (?:determines|orders|decides|grants)\s+(.+?)(?:\.\s|\n\s*\n)`)
	// "The application/appeal is dismissed/allowed/..." sentence.
	applicationIsRe = regexp.MustCompile(`(?is)(?:The )?(?:application|appeal)\s+is\s+(?:dismissed|allowed|granted|refused|struck out)(?:.{0,200}?)(?:\.\s|\n)`)
)

const maxDirectOutcomeLen = 500

// DecisionOutcome extracts a short summary of what the tribunal decided.
/// Candidates are tried in priority order: numbered DECISION item, tribunal
// verb sentence, application-disposed sentence. The first match by pattern
// priority wins even when a later decision point exists in the document.
func DecisionOutcome(text string) string {
	if m := decisionHeaderRe.FindStringSubmatch(text); m != nil {
		outcome := collapse(m[1])
		if n := utf8.RuneCountInString(outcome); n > 10 && n < maxDirectOutcomeLen {
			return outcome
		}
	}

	if m := tribunalVerbRe.FindString(text); m != "" {
		outcome := collapse(m)
		if !strings.HasPrefix(strings.ToLower(outcome), "the ") {
			outcome = "The " + outcome
		}
		if utf8.RuneCountInString(outcome) < maxDirectOutcomeLen {
			return outcome
		}
	}

	if m := applicationIsRe.FindString(text); m != "" {
		outcome := collapse(m)
		if utf8.RuneCountInString(outcome) < maxDirectOutcomeLen {
			return outcome
		}
	}

	return ""
}

// truncateOutcome caps accepted outcomes at 300 characters. Short outcomes
// pass through; longer ones are cut at the first sentence boundary found
// between 200 and 300 characters, else hard-truncated with an ellipsis.
func truncateOutcome(outcome string) string {
	runes := []rune(outcome)
	if len(runes) <= 200 {
		return outcome
	}

	rest := string(runes[200:])
	if idx := strings.Index(rest, ". "); idx != -1 {
		end := 200 + utf8.RuneCountInString(rest[:idx])
		if end < 300 {
			return string(runes[:end+1])
		}
	}

	if len(runes) > 300 {
		return string(runes[:297]) + "..."
	}
	return outcome
}
