// Package orchestrator – orchestrator.go coordinates the specialized agents.
// Incoming text is matched against an ordered list of phrase patterns; the
// first match dispatches to one or more agents. Messages no pattern claims
// fall through to the semantic routing pipeline, and messages the pipeline
// cannot act on get a guidance response instead of an error.
package orchestrator

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/agents"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/audit"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/directory"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/router"
)

// Session tracks per-user conversation state. LastMessage holds the previous
// routed input so that force/override phrases can re-run it with conflicts
// overridden.
type Session struct {
	UserID      string
	LastMessage string
}

// TaskTrace is one agent's contribution to a response.
type TaskTrace struct {
	Agent  string   `json:"agent"`
	Status string   `json:"status"`
	Steps  []string `json:"steps"`
}

// Response is the rendered outcome of routing one message.
type Response struct {
	Message    string      `json:"message"`
	TotalTasks int         `json:"total_tasks"`
	Tasks      []TaskTrace `json:"tasks"`
	Lines      []string    `json:"response_lines"`
}

// execution pairs an agent name with its result, in dispatch order.
type execution struct {
	agent  string
	result agents.Result
}

// Deps are the collaborators the orchestrator dispatches to. Audit is
// optional; when nil no routing log is kept.
type Deps struct {
	Calendar  *agents.Calendar
	Alerter   *agents.Alerter
	Ticketer  *agents.Ticketer
	Messenger *agents.Messenger
	Searcher  *agents.Searcher
	Delegator *agents.Delegator
	Phone     *agents.Phone
	Directory *directory.Directory
	Audit     *audit.Log
	Logger    *slog.Logger
}

// Orchestrator routes free-text messages to the specialized agents.
type Orchestrator struct {
	calendar  *agents.Calendar
	alerter   *agents.Alerter
	ticketer  *agents.Ticketer
	messenger *agents.Messenger
	searcher  *agents.Searcher
	delegator *agents.Delegator
	phone     *agents.Phone
	dir       *directory.Directory
	audit     *audit.Log
	logger    *slog.Logger

	byName map[string]agents.Agent
	rules  []dispatchRule
	titler cases.Caser

	// now is the clock; swapped in tests.
	now func() time.Time
}

// New assembles the orchestrator with its dispatch rules in priority order.
func New(d Deps) *Orchestrator {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		calendar:  d.Calendar,
		alerter:   d.Alerter,
		ticketer:  d.Ticketer,
		messenger: d.Messenger,
		searcher:  d.Searcher,
		delegator: d.Delegator,
		phone:     d.Phone,
		dir:       d.Directory,
		audit:     d.Audit,
		logger:    logger,
		titler:    cases.Title(language.English),
		now:       time.Now,
	}
	o.byName = map[string]agents.Agent{}
	for _, a := range []agents.Agent{o.calendar, o.alerter, o.ticketer, o.messenger, o.searcher, o.delegator, o.phone} {
		if a != nil {
			o.byName[a.Name()] = a
		}
	}
	o.rules = []dispatchRule{
		{"force_override", o.ruleForce},
		{"tell_fix", o.ruleTellFix},
		{"status_update", o.ruleStatusUpdate},
		{"direct_message", o.ruleDirectMessage},
		{"schedule", o.ruleSchedule},
		{"reschedule", o.ruleReschedule},
		{"meetings_query", o.ruleMeetingsQuery},
		{"find_expert", o.ruleFindExpert},
		{"alert_target", o.ruleAlertTarget},
		{"alert_critical", o.ruleAlertCritical},
		{"phone_call", o.rulePhoneCall},
	}
	return o
}

// Route dispatches one message. sess may be nil for one-shot routing.
func (o *Orchestrator) Route(ctx context.Context, sess *Session, message string) (Response, error) {
	start := o.now()
	lower := strings.ToLower(message)
	o.logger.Info("routing message", "input", message)

	var (
		execs   []execution
		matched bool
		pattern string
	)
	for _, r := range o.rules {
		res, ok, err := r.run(ctx, message, lower, sess)
		if err != nil {
			return Response{}, err
		}
		if ok {
			execs, matched, pattern = res, true, r.name
			break
		}
	}
	if !matched {
		pattern = "semantic"
		execs = o.fallback(ctx, message)
	}

	var resp Response
	if !matched && len(execs) == 0 {
		resp = guidance(message)
	} else {
		resp = buildResponse(message, execs)
	}

	if sess != nil {
		sess.LastMessage = message
	}
	o.record(ctx, sess, message, pattern, resp, o.now().Sub(start))

	return resp, nil
}

// fallback runs the semantic pipeline and executes whatever plans it
// approves. A failing agent contributes an error step instead of aborting
// the remaining plans.
func (o *Orchestrator) fallback(ctx context.Context, message string) []execution {
	result := router.Process(message, o.now())

	var execs []execution
	for _, plan := range result.Plans {
		name, task := planTask(plan)
		if task == nil {
			continue
		}
		agent, ok := o.byName[name]
		if !ok {
			continue
		}
		res, err := agent.Execute(ctx, task)
		if err != nil {
			o.logger.Error("agent failed", "agent", name, "error", err)
			execs = append(execs, execution{agent: name, result: agents.Result{
				Steps:  []string{"❌ " + name + ": Error - " + err.Error()},
				Status: "error",
			}})
			continue
		}
		execs = append(execs, execution{agent: name, result: res})
	}
	return execs
}

// planTask maps a pipeline plan onto the agent that executes it. Reminders
// become calendar entries with a "Reminder: " title so the scheduler can
// pick them up.
func planTask(p router.Plan) (string, agents.Task) {
	switch p.Tool {
	case router.ToolScheduleEvent:
		return "CalendarAgent", agents.ScheduleTask{
			Title:        pstr(p.Params, "topic", "Meeting"),
			Time:         pstr(p.Params, "time", "TBD"),
			Participants: pstrs(p.Params, "participants"),
		}
	case router.ToolTriggerAlert:
		return "AlertAgent", agents.SendAlertTask{
			Title:    pstr(p.Params, "system", "Alert"),
			Message:  pstr(p.Params, "issue", "Unknown"),
			Priority: pstr(p.Params, "priority", "High"),
		}
	case router.ToolCreateTicket:
		return "TaskAgent", agents.CreateTicketTask{
			Title:      pstr(p.Params, "summary", "Task"),
			AssignedTo: pstr(p.Params, "assignee", "unassigned"),
			Priority:   pstr(p.Params, "priority", "Medium"),
			Deadline:   pstr(p.Params, "due", "TBD"),
		}
	case router.ToolCreateReminder:
		return "CalendarAgent", agents.ScheduleTask{
			Title:        "Reminder: " + pstr(p.Params, "message", ""),
			Time:         pstr(p.Params, "time", "TBD"),
			Participants: []string{pstr(p.Params, "target", "self")},
		}
	}
	return "", nil
}

func buildResponse(message string, execs []execution) Response {
	var lines []string
	tasks := make([]TaskTrace, 0, len(execs))

	for _, ex := range execs {
		lines = append(lines, ex.result.Steps...)
		if len(ex.result.Steps) > 0 {
			lines = append(lines, "")
		}
		status := ex.result.Status
		if status == "" {
			status = "done"
		}
		tasks = append(tasks, TaskTrace{Agent: ex.agent, Status: status, Steps: ex.result.Steps})
	}

	// Drop trailing blank separators.
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return Response{Message: message, TotalTasks: len(execs), Tasks: tasks, Lines: lines}
}

// guidance is the conversational response for messages nothing could act on.
func guidance(message string) Response {
	return Response{
		Message:    message,
		TotalTasks: 0,
		Tasks:      []TaskTrace{},
		Lines: []string{
			"🤔 I understood your message but couldn't identify a clear action.",
			"",
			"💡 Try commands like:",
			`• "Tell John to fix the bug"`,
			`• "Schedule meeting with Alice at 3pm"`,
			`• "Send alert to Dana"`,
			`• "What meetings do I have?"`,
		},
	}
}

func (o *Orchestrator) record(ctx context.Context, sess *Session, input, pattern string, resp Response, dur time.Duration) {
	if o.audit == nil {
		return
	}
	var userID string
	if sess != nil {
		userID = sess.UserID
	}
	names := make([]string, 0, len(resp.Tasks))
	for _, t := range resp.Tasks {
		names = append(names, t.Agent)
	}
	entry := audit.Entry{
		UserID:     userID,
		Input:      input,
		Pattern:    pattern,
		Agents:     names,
		TotalTasks: resp.TotalTasks,
		Duration:   dur,
		CreatedAt:  o.now(),
	}
	if err := o.audit.Record(ctx, entry); err != nil {
		o.logger.Warn("audit record failed", "error", err)
	}
}

func pstr(params map[string]any, key, fallback string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func pstrs(params map[string]any, key string) []string {
	switch v := params[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
