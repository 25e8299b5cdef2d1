// Package orchestrator – dispatch.go holds the ordered phrase patterns. Each
// rule inspects the lowercased message and, when it claims the message, runs
// the agents and returns their results. Order matters: "tell X to fix Y"
// must win over the generic "tell X ..." message pattern, and the explicit
// patterns all win over the semantic fallback.
package orchestrator

import (
	"context"
	"regexp"
	"strings"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/agents"
)

// dispatchRule is one entry in the priority-ordered dispatch list.
type dispatchRule struct {
	name string
	run  func(ctx context.Context, msg, lower string, sess *Session) ([]execution, bool, error)
}

var (
	forceRe    = regexp.MustCompile(`(?:prioritize|override|do it|force)(?:\s+this)?`)
	tellFixRe  = regexp.MustCompile(`(?:tell|ask)\s+(\w+)\s+to\s+(?:fix|resolve|handle|update|debug)\s+(.+)`)
	tellDoneRe = regexp.MustCompile(`(?:tell|inform|let)\s+(\w+)\s+(?:that\s+)?(?:the\s+)?(.+?)\s+(?:is|has been|was)\s+(?:fixed|resolved|done|completed)`)
	tellRe     = regexp.MustCompile(`(?:tell|ask|contact|notify|message|send\s+(?:a\s+)?(?:message|msg)\s+to)\s+(\w+)\s+(?:to|about|that)\s+(.+)`)
	scheduleRe = regexp.MustCompile(`(?:schedule|book|set up|arrange)\s+(?:a\s+)?(?:meeting|call|standup|sync|session)\s+(?:with\s+)?(\w+)?\s*(?:at|for|on)?\s*([\d]+\s*(?:am|pm)?.*)?`)
	moveRe     = regexp.MustCompile(`(?:reschedule|move|change)\s+(?:my\s+|the\s+)?(?:meeting\s+)?(?:(?:from\s+)?(\d+\s*(?:am|pm)?)\s+to\s+(\d+\s*(?:am|pm)?)(?:\s+with\s+(\w+))?|(.+))`)
	clockRe    = regexp.MustCompile(`(\d+\s*(?:am|pm))`)
	withRe     = regexp.MustCompile(`with\s+(\w+)`)
	expertRe   = regexp.MustCompile(`(?:find|who\s+is|who\s+knows|get|locate)\s+(?:the\s+|an?\s+)?(.+)`)
	alertToRe  = regexp.MustCompile(`(?:send|trigger)\s+(?:an?\s+)?alert\s+(?:to\s+)?(\w+)?`)
	outageRe   = regexp.MustCompile(`(?:critical|urgent|emergency|server|api|system|service)\s+.*(?:down|crash|fail|error|broken|outage)`)
	callRe     = regexp.MustCompile(`call\s+(\w+)\s+(?:to|about|for)\s+(.+)`)

	systemNameRe = regexp.MustCompile(`(?i)(?:the\s+)?(\w+(?:\s+\w+)?\s+(?:server|api|gateway|service|database|system))`)
	systemDownRe = regexp.MustCompile(`(?i)(\w+)\s+(?:is\s+)?(?:down|crashed|failing|broken)`)
)

// meetingQueries are the phrasings that mean "list my meetings".
var meetingQueries = []string{
	"what meeting", "my meeting", "list meeting", "show meeting", "upcoming meeting", "do i have",
}

// expertCues mark a lookup as an expertise query rather than a plain search.
var expertCues = []string{"expert", "lead", "specialist", "knows", "who is", "who's", "exper tin"}

// expertFillers are stripped from the matched text to isolate the expertise
// keyword ("exper tin" catches a typo seen in the wild).
var expertFillers = []string{
	"expert in", "exper tin", "expert on", "expert", "lead", "specialist",
	"guy", "person", "engineer", "who is", "knows", "find",
}

// scheduleParts reads the participant and time out of a schedule phrase. A
// trailing "with X" names the participant even when the pattern's first
// capture grabbed a different word (a weekday before the time, say), and the
// "with X" text is dropped from the time slot.
func scheduleParts(lower string) (person, when string, ok bool) {
	m := scheduleRe.FindStringSubmatch(lower)
	if m == nil {
		return "", "", false
	}
	person = m[1]
	when = strings.TrimSpace(m[2])
	if w := withRe.FindStringSubmatch(lower); w != nil {
		person = w[1]
		when = strings.TrimSpace(strings.Replace(when, w[0], "", 1))
	}
	if person == "" {
		person = "team"
	}
	if when == "" {
		when = "TBD"
	}
	return person, when, true
}

// ruleForce re-runs the scheduling in the previous message with the conflict
// override set, for follow-ups like "prioritize this" or "do it anyway".
func (o *Orchestrator) ruleForce(ctx context.Context, _, lower string, sess *Session) ([]execution, bool, error) {
	if !forceRe.MatchString(lower) || sess == nil || sess.LastMessage == "" {
		return nil, false, nil
	}
	person, when, ok := scheduleParts(strings.ToLower(sess.LastMessage))
	if !ok {
		return nil, false, nil
	}

	res, err := o.calendar.Execute(ctx, agents.ScheduleTask{
		Title:        sess.LastMessage,
		Time:         when,
		Participants: []string{o.titler.String(person)},
		CreatedBy:    "user (force)",
		Force:        true,
	})
	if err != nil {
		return nil, false, err
	}
	return []execution{{agent: o.calendar.Name(), result: res}}, true, nil
}

// ruleTellFix handles "tell X to fix Y": message the person and open a
// ticket for them in one pass.
func (o *Orchestrator) ruleTellFix(ctx context.Context, msg, lower string, _ *Session) ([]execution, bool, error) {
	m := tellFixRe.FindStringSubmatch(lower)
	if m == nil {
		return nil, false, nil
	}
	person := o.titler.String(m[1])
	issue := strings.TrimRight(strings.TrimSpace(m[2]), ".")

	r1, err := o.messenger.Execute(ctx, agents.SendMessageTask{
		Person:  person,
		Message: "Please fix: " + issue,
	})
	if err != nil {
		return nil, false, err
	}
	r2, err := o.ticketer.Execute(ctx, agents.CreateTicketTask{
		Title:      "Fix " + issue,
		AssignedTo: person,
		Priority:   detectPriority(msg),
	})
	if err != nil {
		return nil, false, err
	}
	return []execution{
		{agent: o.messenger.Name(), result: r1},
		{agent: o.ticketer.Name(), result: r2},
	}, true, nil
}

// ruleStatusUpdate handles "tell X the Y is fixed".
func (o *Orchestrator) ruleStatusUpdate(ctx context.Context, _, lower string, _ *Session) ([]execution, bool, error) {
	m := tellDoneRe.FindStringSubmatch(lower)
	if m == nil {
		return nil, false, nil
	}
	person := o.titler.String(m[1])
	subject := strings.TrimSpace(m[2])

	res, err := o.messenger.Execute(ctx, agents.StatusUpdateTask{
		Person:  person,
		Message: "The " + subject + " has been fixed",
	})
	if err != nil {
		return nil, false, err
	}
	return []execution{{agent: o.messenger.Name(), result: res}}, true, nil
}

// ruleDirectMessage handles the generic "tell/contact/notify X ..." forms.
func (o *Orchestrator) ruleDirectMessage(ctx context.Context, _, lower string, _ *Session) ([]execution, bool, error) {
	m := tellRe.FindStringSubmatch(lower)
	if m == nil {
		return nil, false, nil
	}
	person := o.titler.String(m[1])
	content := strings.TrimRight(strings.TrimSpace(m[2]), ".")

	res, err := o.messenger.Execute(ctx, agents.SendMessageTask{Person: person, Message: content})
	if err != nil {
		return nil, false, err
	}
	return []execution{{agent: o.messenger.Name(), result: res}}, true, nil
}

// ruleSchedule handles "schedule meeting with X at Y".
func (o *Orchestrator) ruleSchedule(ctx context.Context, msg, lower string, _ *Session) ([]execution, bool, error) {
	person, when, ok := scheduleParts(lower)
	if !ok {
		return nil, false, nil
	}

	res, err := o.calendar.Execute(ctx, agents.ScheduleTask{
		Title:        msg,
		Time:         when,
		Participants: []string{o.titler.String(person)},
	})
	if err != nil {
		return nil, false, err
	}
	return []execution{{agent: o.calendar.Name(), result: res}}, true, nil
}

// ruleReschedule handles "reschedule/move X to Y", falling back to a plain
// scan for two clock times when the structured form does not match.
func (o *Orchestrator) ruleReschedule(ctx context.Context, _, lower string, _ *Session) ([]execution, bool, error) {
	m := moveRe.FindStringSubmatch(lower)
	if m == nil {
		return nil, false, nil
	}

	var oldTime, newTime, person string
	if m[1] != "" && m[2] != "" {
		oldTime = strings.TrimSpace(m[1])
		newTime = strings.TrimSpace(m[2])
		person = o.titler.String(m[3])
	} else {
		oldTime, newTime = "TBD", "TBD"
		if times := clockRe.FindAllString(lower, -1); len(times) >= 2 {
			oldTime, newTime = times[0], times[1]
		}
		if w := withRe.FindStringSubmatch(lower); w != nil {
			person = o.titler.String(w[1])
		}
	}

	res, err := o.calendar.Execute(ctx, agents.RescheduleTask{
		OldTime: oldTime,
		NewTime: newTime,
		Person:  person,
	})
	if err != nil {
		return nil, false, err
	}
	return []execution{{agent: o.calendar.Name(), result: res}}, true, nil
}

// ruleMeetingsQuery handles "what meetings do I have?".
func (o *Orchestrator) ruleMeetingsQuery(ctx context.Context, _, lower string, _ *Session) ([]execution, bool, error) {
	if !containsAny(lower, meetingQueries) {
		return nil, false, nil
	}
	res, err := o.calendar.Execute(ctx, agents.QueryMeetingsTask{})
	if err != nil {
		return nil, false, err
	}
	return []execution{{agent: o.calendar.Name(), result: res}}, true, nil
}

// ruleFindExpert handles "find the X expert" / "who knows X". The rule
// claims the message even when stripping fillers leaves nothing to search
// for, so a bare "find the expert" does not fall through to the pipeline.
func (o *Orchestrator) ruleFindExpert(ctx context.Context, _, lower string, _ *Session) ([]execution, bool, error) {
	m := expertRe.FindStringSubmatch(lower)
	if m == nil || !containsAny(lower, expertCues) {
		return nil, false, nil
	}

	expertise := strings.TrimSpace(m[1])
	expertise = strings.Trim(expertise, "?")
	expertise = strings.Trim(expertise, ".")
	for _, filler := range expertFillers {
		expertise = strings.TrimSpace(strings.ReplaceAll(expertise, filler, ""))
	}

	if expertise == "" {
		return nil, true, nil
	}

	res, err := o.searcher.Execute(ctx, agents.FindExpertTask{Expertise: expertise})
	if err != nil {
		return nil, false, err
	}
	return []execution{{agent: o.searcher.Name(), result: res}}, true, nil
}

// ruleAlertTarget handles "send/trigger alert to X".
func (o *Orchestrator) ruleAlertTarget(ctx context.Context, msg, lower string, _ *Session) ([]execution, bool, error) {
	m := alertToRe.FindStringSubmatch(lower)
	if m == nil {
		return nil, false, nil
	}
	var target string
	if m[1] != "" {
		target = o.titler.String(m[1])
	}

	res, err := o.alerter.Execute(ctx, agents.SendAlertTask{
		Title:        "Alert",
		Message:      msg,
		Priority:     "High",
		TargetPerson: target,
	})
	if err != nil {
		return nil, false, err
	}
	return []execution{{agent: o.alerter.Name(), result: res}}, true, nil
}

// ruleAlertCritical handles outage language like "payment API is down!".
func (o *Orchestrator) ruleAlertCritical(ctx context.Context, msg, lower string, _ *Session) ([]execution, bool, error) {
	if !outageRe.MatchString(lower) {
		return nil, false, nil
	}

	res, err := o.alerter.Execute(ctx, agents.SendAlertTask{
		Title:    o.extractSystem(msg),
		Message:  msg,
		Priority: "Critical",
	})
	if err != nil {
		return nil, false, err
	}
	return []execution{{agent: o.alerter.Name(), result: res}}, true, nil
}

// rulePhoneCall handles "call X to/about Y". Missing contact or number
// produces a labeled failure without touching the calling API.
func (o *Orchestrator) rulePhoneCall(ctx context.Context, _, lower string, _ *Session) ([]execution, bool, error) {
	m := callRe.FindStringSubmatch(lower)
	if m == nil {
		return nil, false, nil
	}
	person := o.titler.String(m[1])
	goal := m[2]

	contact, ok := o.dir.FindContact(person)
	if !ok {
		return []execution{{agent: o.phone.Name(), result: agents.Result{
			Steps: []string{
				"❌ Contact '" + person + "' not found in database.",
				"Cannot initiate call.",
			},
		}}}, true, nil
	}

	number := contact.CallNumber()
	if number == "" {
		return []execution{{agent: o.phone.Name(), result: agents.Result{
			Steps: []string{
				"❌ Contact '" + person + "' has no phone info.",
				"Cannot initiate call.",
			},
		}}}, true, nil
	}

	res, err := o.phone.Execute(ctx, agents.CallTask{Number: number, Goal: goal})
	if err != nil {
		return nil, false, err
	}
	return []execution{{agent: o.phone.Name(), result: res}}, true, nil
}

// detectPriority grades ticket priority from urgency words in the message.
func detectPriority(msg string) string {
	lower := strings.ToLower(msg)
	if containsAny(lower, []string{"critical", "urgent", "emergency", "asap", "immediately"}) {
		return "High"
	}
	if containsAny(lower, []string{"important", "soon"}) {
		return "Medium"
	}
	return "Medium"
}

// extractSystem names the affected system for an outage alert.
func (o *Orchestrator) extractSystem(msg string) string {
	if m := systemNameRe.FindStringSubmatch(msg); m != nil {
		return o.titler.String(strings.ToLower(strings.TrimSpace(m[1])))
	}
	if m := systemDownRe.FindStringSubmatch(msg); m != nil {
		return o.titler.String(strings.ToLower(strings.TrimSpace(m[1])))
	}
	return "System"
}

func containsAny(text string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}
