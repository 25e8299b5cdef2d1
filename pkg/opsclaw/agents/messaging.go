package agents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/delivery"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/directory"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/store"
)

// MessageLog is a record in the messages collection.
type MessageLog struct {
	ID      string `json:"id"`
	To      string `json:"to"`
	Body    string `json:"message"`
	SentAt  string `json:"sent_at"`
	Status  string `json:"status"`
	Channel string `json:"channel,omitempty"`
}

// SendMessageTask delivers a message to a person.
type SendMessageTask struct {
	Person  string
	Message string
}

func (SendMessageTask) Action() string { return "send_message" }

// StatusUpdateTask delivers a status update to a person and broadcasts it to
// the general channel with a "(cc: person)" annotation.
type StatusUpdateTask struct {
	Person  string
	Message string
}

func (StatusUpdateTask) Action() string { return "send_status_update" }

// NotifyContactsTask fans a message out to several people.
type NotifyContactsTask struct {
	People  []string
	Message string
}

func (NotifyContactsTask) Action() string { return "notify_contacts" }

// Messenger sends messages through the delivery collaborator, logging every
// send to the messages collection.
type Messenger struct {
	st      *store.Store
	dir     *directory.Directory
	deliver delivery.Deliverer
	logger  *slog.Logger
	now     func() time.Time
	titler  cases.Caser
}

// NewMessenger returns the message-delivery agent.
func NewMessenger(st *store.Store, dir *directory.Directory, deliver delivery.Deliverer, logger *slog.Logger) *Messenger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Messenger{
		st:      st,
		dir:     dir,
		deliver: deliver,
		logger:  logger,
		now:     time.Now,
		titler:  cases.Title(language.English),
	}
}

// Name implements Agent.
func (m *Messenger) Name() string { return "MessageDeliveryAgent" }

// Execute implements Agent.
func (m *Messenger) Execute(ctx context.Context, task Task) (Result, error) {
	switch t := task.(type) {
	case SendMessageTask:
		return m.send(ctx, t)
	case StatusUpdateTask:
		return m.statusUpdate(ctx, t)
	case NotifyContactsTask:
		return m.notify(ctx, t)
	default:
		return unknownAction(m.Name(), task), nil
	}
}

func (m *Messenger) send(ctx context.Context, t SendMessageTask) (Result, error) {
	steps := []string{fmt.Sprintf("✅ MessageDeliveryAgent: Message sent to %s", t.Person)}

	contact, known := m.dir.FindContact(t.Person)

	channel := "queued"
	if known {
		channel = "chat"
	}
	id, err := m.log(t.Person, t.Message, "delivered", channel)
	if err != nil {
		return Result{}, err
	}

	receipt, derr := m.deliver.IntelligentSend(ctx, t.Person, t.Message)
	switch {
	case derr != nil:
		m.logger.Warn("delivery failed", "to", t.Person, "error", derr)
		steps = append(steps, fmt.Sprintf("📨 Message queued for %s", t.Person))
	case known && receipt.Status == "success":
		steps = append(steps, fmt.Sprintf("📨 Message delivered to %s via %s", contact.Name, m.titler.String(receipt.App)))
	case known:
		steps = append(steps, fmt.Sprintf("📨 Message sent to %s (Simulated)", contact.Name))
	default:
		steps = append(steps, fmt.Sprintf("📨 Message delivered to general channel for %s", t.Person))
	}

	return Result{Steps: steps, Status: "delivered", MessageID: id}, nil
}

func (m *Messenger) statusUpdate(ctx context.Context, t StatusUpdateTask) (Result, error) {
	steps := []string{fmt.Sprintf("✅ MessageDeliveryAgent: Sent to %s", t.Person)}

	_, known := m.dir.FindContact(t.Person)

	id, err := m.log(t.Person, t.Message, "delivered", "chat")
	if err != nil {
		return Result{}, err
	}

	if known {
		_, _ = m.deliver.IntelligentSend(ctx, t.Person, "STATUS UPDATE: "+t.Message)
		// The team sees status updates too.
		_ = m.deliver.Broadcast(ctx, "social", fmt.Sprintf("📢 STATUS UPDATE: %s (cc: %s)", t.Message, t.Person))
	} else {
		_ = m.deliver.Broadcast(ctx, "social", "📢 STATUS UPDATE: "+t.Message)
	}
	steps = append(steps, "📤 Message in #social", "✅ Status: DELIVERED")

	return Result{Steps: steps, Status: "delivered", MessageID: id}, nil
}

func (m *Messenger) notify(ctx context.Context, t NotifyContactsTask) (Result, error) {
	var steps []string
	for _, person := range t.People {
		if contact, ok := m.dir.FindContact(person); ok {
			_, _ = m.deliver.IntelligentSend(ctx, person, "ALERT: "+t.Message)
			steps = append(steps, fmt.Sprintf("📤 Notified %s", contact.Name))
		} else {
			steps = append(steps, fmt.Sprintf("📝 %s: message queued", person))
		}
	}
	steps = append(steps, fmt.Sprintf("📢 %d contacts notified", len(t.People)))
	return Result{Steps: steps, Status: "completed"}, nil
}

func (m *Messenger) log(to, body, status, channel string) (string, error) {
	id := store.GenID("MSG")
	var messages []MessageLog
	if err := m.st.Load("messages", &messages); err != nil {
		return "", fmt.Errorf("messages: %w", err)
	}
	messages = append(messages, MessageLog{
		ID:      id,
		To:      to,
		Body:    body,
		SentAt:  m.now().Format(time.RFC3339),
		Status:  status,
		Channel: channel,
	})
	if err := m.st.Save("messages", messages); err != nil {
		return "", fmt.Errorf("messages: %w", err)
	}
	return id, nil
}
