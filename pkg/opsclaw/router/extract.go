package router

import "strings"

// actionFamily binds an action type to the keywords that signal it.
type actionFamily struct {
	typ         ActionType
	description string
	keywords    []string
}

// actionFamilies is scanned in this fixed order, so extracted actions are
// stable relative to family definition order, not keyword position in text.
var actionFamilies = []actionFamily{
	{
		typ:         ActionScheduleEvent,
		description: "Calendar event detected",
		keywords: []string{
			"meeting", "sync", "call", "standup", "post-mortem", "catch-up",
			"schedule", "book", "set up", "arrange",
		},
	},
	{
		typ:         ActionTriggerAlert,
		description: "DevOps alert detected",
		keywords: []string{
			"error", "down", "fail", "broken", "500", "outage", "crash",
			"alert", "urgent", "critical", "emergency",
		},
	},
	{
		typ:         ActionCreateTicket,
		description: "Task ticket detected",
		keywords: []string{
			"fix", "task", "assign", "ticket", "jira", "action item",
			"revert", "update", "implement", "build", "deploy",
		},
	},
	{
		typ:         ActionCreateReminder,
		description: "Reminder detected",
		keywords: []string{
			"remind", "don't forget", "follow up", "check back",
			"ping me", "remember", "later",
		},
	},
}

// ExtractActions scans the message for the four action keyword families.
// A family is detected when at least one of its keywords appears in the
// lowercased text; every matching keyword is recorded, not just the first.
func ExtractActions(text string) []ExtractedAction {
	lower := strings.ToLower(text)

	var actions []ExtractedAction
	for _, fam := range actionFamilies {
		var matched []string
		for _, kw := range fam.keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) > 0 {
			actions = append(actions, ExtractedAction{
				Type:            fam.typ,
				MatchedKeywords: matched,
				Description:     fam.description,
				RawText:         text,
			})
		}
	}
	return actions
}
