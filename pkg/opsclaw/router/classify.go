package router

import (
	"math"
	"strings"
)

var (
	commandSignals = []string{
		"please", "can you", "do", "make", "set", "create",
		"send", "trigger", "schedule", "book", "assign",
		"tell", "alert", "notify", "remind",
	}
	questionSignals = []string{
		"?", "what", "how", "why", "when", "where", "who", "is there",
	}
	discussionSignals = []string{
		"think", "opinion", "thoughts", "maybe", "perhaps",
		"consider", "discuss", "what if",
	}
)

// ClassifyIntent scores the message against command, question and discussion
// signal words (each signal counts once, substring match on the lowercased
// text) and picks an intent. Extracted actions boost the command score by 2
// each. Ties resolve in favor of the later branches: COMMAND only wins when
// strictly greater than both other scores.
func ClassifyIntent(text string, actions []ExtractedAction) Classification {
	lower := strings.ToLower(text)

	score := func(signals []string) int {
		n := 0
		for _, s := range signals {
			if strings.Contains(lower, s) {
				n++
			}
		}
		return n
	}

	commandScore := score(commandSignals) + len(actions)*2
	questionScore := score(questionSignals)
	discussionScore := score(discussionSignals)

	var intent Intent
	var confidence float64
	switch {
	case commandScore > questionScore && commandScore > discussionScore:
		intent = IntentCommand
		confidence = math.Min(0.95, 0.6+float64(commandScore)*0.05)
	case questionScore > commandScore:
		intent = IntentInformation
		confidence = math.Min(0.90, 0.5+float64(questionScore)*0.1)
	case discussionScore > 0:
		intent = IntentDiscussion
		confidence = math.Min(0.85, 0.5+float64(discussionScore)*0.1)
	default:
		intent = IntentSuggestion
		confidence = 0.5
	}

	return Classification{
		Intent:        intent,
		Confidence:    math.Round(confidence*100) / 100,
		ShouldExecute: intent == IntentCommand,
		Scores: Scores{
			Command:    commandScore,
			Question:   questionScore,
			Discussion: discussionScore,
		},
	}
}
