package mail

import "context"

// Message is one outbound email.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	HTML    string
}

// Mailer sends a single message. Implementations must honor ctx for
// connection deadlines; callers decide whether a failure is fatal.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type noopMailer struct{}

func (noopMailer) Send(ctx context.Context, msg Message) error { return nil }

// Noop returns a mailer that silently discards every message. Used when
// no SMTP host is configured.
func Noop() Mailer {
	return noopMailer{}
}
