package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/delivery"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/directory"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/store"
)

// Alert is an alert record in the alerts collection.
type Alert struct {
	ID         string   `json:"id"`
	System     string   `json:"system"`
	Issue      string   `json:"issue"`
	Priority   string   `json:"priority"`
	CreatedAt  string   `json:"created_at"`
	Status     string   `json:"status"`
	Recipients []string `json:"recipients,omitempty"`
}

// SendAlertTask asks the alert agent to create and route an alert.
type SendAlertTask struct {
	Title        string
	Message      string
	Priority     string
	Recipients   []string
	TargetPerson string
}

func (SendAlertTask) Action() string { return "send_alert" }

// EscalateTask notifies all leads about a critical situation.
type EscalateTask struct{}

func (EscalateTask) Action() string { return "escalate" }

// techWords route a broadcast to the tech channel instead of the general one.
var techWords = []string{"server", "api", "devops", "deploy", "database"}

// Alerter sends urgent alerts and escalations.
type Alerter struct {
	st      *store.Store
	dir     *directory.Directory
	deliver delivery.Deliverer
	logger  *slog.Logger
	now     func() time.Time
}

// NewAlerter returns the alert agent.
func NewAlerter(st *store.Store, dir *directory.Directory, deliver delivery.Deliverer, logger *slog.Logger) *Alerter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Alerter{st: st, dir: dir, deliver: deliver, logger: logger, now: time.Now}
}

// Name implements Agent.
func (a *Alerter) Name() string { return "AlertAgent" }

// Execute implements Agent.
func (a *Alerter) Execute(ctx context.Context, task Task) (Result, error) {
	switch t := task.(type) {
	case SendAlertTask:
		return a.sendAlert(ctx, t)
	case EscalateTask:
		return a.escalate(ctx)
	default:
		return unknownAction(a.Name(), task), nil
	}
}

func (a *Alerter) sendAlert(ctx context.Context, t SendAlertTask) (Result, error) {
	title := t.Title
	if title == "" {
		title = "Alert"
	}
	message := t.Message
	if message == "" {
		message = "Unknown issue"
	}
	priority := t.Priority
	if priority == "" {
		priority = "High"
	}

	critical := strings.EqualFold(priority, "critical") || strings.EqualFold(priority, "high")

	label := strings.ToUpper(priority)
	if critical {
		label = "CRITICAL"
	}
	steps := []string{fmt.Sprintf("🚨 AlertAgent: %s alert", label)}

	aid := store.GenID("ALT")
	var alerts []Alert
	if err := a.st.Load("alerts", &alerts); err != nil {
		return Result{}, fmt.Errorf("alerts: %w", err)
	}
	alerts = append(alerts, Alert{
		ID:         aid,
		System:     title,
		Issue:      message,
		Priority:   priority,
		CreatedAt:  a.now().Format(time.RFC3339),
		Status:     "active",
		Recipients: t.Recipients,
	})
	if err := a.st.Save("alerts", alerts); err != nil {
		return Result{}, fmt.Errorf("alerts: %w", err)
	}

	switch {
	case t.TargetPerson != "":
		if contact, ok := a.dir.FindContact(t.TargetPerson); ok {
			receipt, _ := a.deliver.IntelligentSend(ctx, contact.Name, "🚨 ALERT: "+message)
			app := receipt.App
			if app == "" {
				app = "chat"
			}
			steps = append(steps, fmt.Sprintf("📤 Sent to %s via %s", contact.Name, app))
		} else {
			steps = append(steps, fmt.Sprintf("📤 Alert queued for %s", t.TargetPerson))
		}

	case len(t.Recipients) > 0:
		for _, r := range t.Recipients {
			_, _ = a.deliver.IntelligentSend(ctx, r, "🚨 ALERT: "+message)
			steps = append(steps, fmt.Sprintf("📤 Sent to @%s", r))
		}

	default:
		steps = append(steps, a.autoRoute(ctx, message, priority, critical)...)
	}

	if critical {
		steps = append(steps, "⏲️ Waiting for acknowledgement")
	}

	return Result{Steps: steps, Status: "sent", AlertID: aid}, nil
}

// autoRoute handles alerts without explicit recipients: critical alerts and
// broadcast requests go to the tech or general channel depending on the
// message, and critical ones additionally notify the devops and product
// leads from the directory. Everything else is a general broadcast.
func (a *Alerter) autoRoute(ctx context.Context, message, priority string, critical bool) []string {
	var steps []string
	lower := strings.ToLower(message)

	if critical || strings.Contains(lower, "broadcast") {
		heading := "📢 *BROADCAST*"
		if critical {
			heading = fmt.Sprintf("🚨 *%s ALERT*", strings.ToUpper(priority))
		}

		channel := "social"
		if containsAnyWord(lower, techWords) {
			channel = "devops"
		}
		if err := a.deliver.Broadcast(ctx, channel, heading+": "+message); err != nil {
			a.logger.Warn("broadcast failed", "channel", channel, "error", err)
		}
		steps = append(steps, fmt.Sprintf("📢 Broadcast to #%s channel", channel))

		if critical {
			if devops, ok := a.dir.FindExpert("devops"); ok {
				_, _ = a.deliver.IntelligentSend(ctx, devops.Name, "🚨 ALERT: "+message)
				steps = append(steps, fmt.Sprintf("📤 Sent to @%s (DevOps)", strings.ToLower(devops.Name)))
			}
			if product, ok := a.dir.FindExpert("product"); ok {
				_, _ = a.deliver.IntelligentSend(ctx, product.Name, "🚨 ALERT: "+message)
				steps = append(steps, fmt.Sprintf("📤 Sent to @%s (Product)", strings.ToLower(product.Name)))
			}
			steps = append(steps, "⏲️ Escalating...")
		}
		return steps
	}

	if err := a.deliver.Broadcast(ctx, "social", "🚨 ALERT: "+message); err != nil {
		a.logger.Warn("broadcast failed", "channel", "social", "error", err)
	}
	return append(steps, "📢 Broadcast to #social channel")
}

func (a *Alerter) escalate(_ context.Context) (Result, error) {
	steps := []string{"🚨 AlertAgent: CRITICAL status"}

	contacts, err := a.dir.Contacts()
	if err != nil {
		return Result{}, fmt.Errorf("alerts: %w", err)
	}
	for _, c := range contacts {
		switch c.Role {
		case "devops_lead", "developer", "team_lead":
			steps = append(steps, fmt.Sprintf("📤 Sent to @%s (%s)", strings.ToLower(c.Name), c.Role))
		}
	}

	steps = append(steps, "⏲️ Escalating...")
	return Result{Steps: steps, Status: "escalated"}, nil
}

func containsAnyWord(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
