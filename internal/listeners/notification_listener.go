package listeners

import (
	"context"
	"fmt"
	"html"

	"employee-management/internal/events"
	"employee-management/pkg/eventbus"
	"employee-management/pkg/mailer"

	"go.uber.org/zap"
)

const (
	welcomeSubject         = "Welcome aboard"
	passwordChangedSubject = "Your password was changed"
)

// NotificationListener mails employees about account events.
type NotificationListener struct {
	mailer mailer.Mailer
	logger *zap.Logger
}

func NewNotificationListener(m mailer.Mailer, logger *zap.Logger) *NotificationListener {
	return &NotificationListener{mailer: m, logger: logger}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.UserRegisteredName, l.handleUserRegistered)
	bus.Subscribe(events.PasswordChangedName, l.handlePasswordChanged)
	l.logger.Info("NotificationListener subscribed",
		zap.Strings("events", []string{events.UserRegisteredName, events.PasswordChangedName}))
}

func (l *NotificationListener) handleUserRegistered(ctx context.Context, e eventbus.Event) error {
	ev, ok := e.(events.UserRegistered)
	if !ok {
		return fmt.Errorf("unexpected event type %T", e)
	}
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your account has been created. Your employee ID is <strong>%s</strong> and your user name is <strong>%s</strong>.</p>",
		html.EscapeString(ev.FullName), html.EscapeString(ev.EmpID), html.EscapeString(ev.Username))

	if _, err := l.mailer.Send(ctx, ev.Email, body, welcomeSubject); err != nil {
		return fmt.Errorf("failed to send welcome mail to %s: %w", ev.EmpID, err)
	}
	l.logger.Info("Welcome mail sent", zap.String("emp_id", ev.EmpID))
	return nil
}

func (l *NotificationListener) handlePasswordChanged(ctx context.Context, e eventbus.Event) error {
	ev, ok := e.(events.PasswordChanged)
	if !ok {
		return fmt.Errorf("unexpected event type %T", e)
	}
	body := "<p>Hello,</p><p>The password of your account was just changed. If this was not you, contact HR immediately.</p>"

	if _, err := l.mailer.Send(ctx, ev.Email, body, passwordChangedSubject); err != nil {
		return fmt.Errorf("failed to send password change notice: %w", err)
	}
	return nil
}
