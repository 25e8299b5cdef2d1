package router

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tool names the agents understand, one per action type.
const (
	ToolScheduleEvent  = "schedule_event"
	ToolTriggerAlert   = "trigger_alert"
	ToolCreateTicket   = "create_ticket"
	ToolCreateReminder = "create_reminder"
)

var toolForAction = map[ActionType]string{
	ActionScheduleEvent:  ToolScheduleEvent,
	ActionTriggerAlert:   ToolTriggerAlert,
	ActionCreateTicket:   ToolCreateTicket,
	ActionCreateReminder: ToolCreateReminder,
}

// PlanActions turns extracted actions plus resolved context into action
// plans. Call only when the classification approved execution.
func PlanActions(actions []ExtractedAction, ctx Context) []Plan {
	var plans []Plan
	for _, action := range actions {
		tool, ok := toolForAction[action.Type]
		if !ok {
			continue
		}

		var params map[string]any
		switch action.Type {
		case ActionScheduleEvent:
			params = map[string]any{
				"topic":        ExtractTopic(action.RawText),
				"time":         firstOr(ctx.Times, "TBD"),
				"participants": participantsOr(ctx.People, "team"),
			}
		case ActionTriggerAlert:
			params = map[string]any{
				"system":   ExtractSystem(action.RawText),
				"issue":    ExtractIssue(action.RawText),
				"priority": ctx.Priority,
			}
		case ActionCreateTicket:
			params = map[string]any{
				"assignee": firstOr(ctx.People, "unassigned"),
				"summary":  ExtractTopic(action.RawText),
				"due":      firstOr(ctx.Times, "TBD"),
				"priority": ctx.Priority,
			}
		case ActionCreateReminder:
			params = map[string]any{
				"message": ExtractTopic(action.RawText),
				"time":    reminderTime(ctx, "TBD"),
				"target":  firstOr(ctx.People, "self"),
			}
		}

		plans = append(plans, Plan{
			Tool:       tool,
			Params:     params,
			ActionType: action.Type,
		})
	}
	return plans
}

var politenessPrefixes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^hey, `),
	regexp.MustCompile(`(?i)^please `),
	regexp.MustCompile(`(?i)^can you `),
	regexp.MustCompile(`(?i)^also `),
}

// ExtractTopic derives a short topic/summary: politeness prefixes stripped,
// truncated to the first 8 words with "..." appended.
func ExtractTopic(text string) string {
	for _, re := range politenessPrefixes {
		text = re.ReplaceAllString(text, "")
	}
	words := strings.Fields(text)
	if len(words) > 8 {
		return strings.Join(words[:8], " ") + "..."
	}
	return strings.TrimSpace(text)
}

var systemPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:the\s+)?(\w+(?:\s+\w+)?\s+(?:gateway|server|api|service|database|db|system))`),
	regexp.MustCompile(`(?i)(?:the\s+)?(\w+)\s+(?:is|are)\s+(?:down|failing|broken|throwing)`),
}

var systemTitler = cases.Title(language.English)

// ExtractSystem pulls the affected system name out of alert text.
func ExtractSystem(text string) string {
	for _, re := range systemPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return systemTitler.String(strings.ToLower(strings.TrimSpace(m[1])))
		}
	}
	return "Unknown System"
}

var issuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:throwing|getting|has)\s+(.+?)(?:\.|!|$)`),
	regexp.MustCompile(`(?i)(\d+\s+errors?)`),
	regexp.MustCompile(`(?i)(is\s+(?:down|failing|broken|crashed))`),
}

// ExtractIssue pulls the issue phrase out of alert text.
func ExtractIssue(text string) string {
	for _, re := range issuePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return "Unknown issue"
}

// reminderTime picks the reminder's firing time. A relative token with a
// resolved date ("today", "tomorrow", a weekday, "next week") wins over
// free-form tokens, so the stored time is a concrete date the reminder scan
// can compare against the clock. Without one the first token is kept as-is.
func reminderTime(ctx Context, fallback string) string {
	for _, tok := range ctx.Times {
		if date, ok := ctx.ResolvedDates[strings.ToLower(tok)]; ok {
			return date
		}
	}
	return firstOr(ctx.Times, fallback)
}

func firstOr(vals []string, fallback string) string {
	if len(vals) > 0 {
		return vals[0]
	}
	return fallback
}

func participantsOr(people []string, fallback string) []string {
	if len(people) > 0 {
		return people
	}
	return []string{fallback}
}
