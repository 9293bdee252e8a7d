package notifier

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/kovalyov-valentin/autoblog/internal/model"
	"github.com/wneessen/go-mail"
)

const senderName = "Automation Blog Bot"

// Тот кто реально отправляет письма. *mail.Client ему удовлетворяет.
type MailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type Email struct {
	sender        MailSender
	from          string
	to            string
	reviewBaseURL string
}

// NewSMTPClient - SMTP клиент с авторизацией и обязательным STARTTLS
func NewSMTPClient(host string, port int, user, pass string) (*mail.Client, error) {
	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(user),
		mail.WithPassword(pass),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("notifier.NewSMTPClient: %w", err)
	}
	return client, nil
}

func NewEmail(sender MailSender, from, to, reviewBaseURL string) *Email {
	return &Email{
		sender:        sender,
		from:          from,
		to:            to,
		reviewBaseURL: reviewBaseURL,
	}
}

func (e *Email) NotifyDraft(ctx context.Context, draft model.Draft) error {
	const op = "notifier.Email.NotifyDraft"

	msg, err := e.message(draft)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := e.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (e *Email) message(draft model.Draft) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if err := msg.FromFormat(senderName, e.from); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := msg.To(e.to); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}

	msg.Subject(Subject(draft))

	body, err := emailBody(draft, ReviewLink(e.reviewBaseURL, draft.ID))
	if err != nil {
		return nil, err
	}
	msg.SetBodyString(mail.TypeTextHTML, body)

	return msg, nil
}

func Subject(draft model.Draft) string {
	return fmt.Sprintf("New Draft Ready for Review: %q", draft.Title)
}

var emailTemplate = template.Must(template.New("email").Parse(`<h1>New Draft Created</h1>
<p>A new draft is ready for your review.</p>
<p><strong>ID:</strong> {{.Draft.ID}}</p>
<p><strong>Title:</strong> {{.Draft.Title}}</p>
<p><a href="{{.Link}}">Review the draft</a></p>
`))

func emailBody(draft model.Draft, link string) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, struct {
		Draft model.Draft
		Link  string
	}{draft, link}); err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}
