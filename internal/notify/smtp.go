package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	htmltpl "html/template"
	"strings"
	texttpl "text/template"

	mail "github.com/go-mail/mail"

	"github.com/dropDatabas3/trackr-identity/internal/observability/logger"
)

// Sender envía un email con contenido HTML y texto plano.
type Sender interface {
	Send(to []string, subject, htmlBody, textBody string) error
}

// SMTPSender implementa Sender usando SMTP.
type SMTPSender struct {
	Host               string
	Port               int
	From               string
	User               string
	Pass               string
	TLSMode            string // "auto" | "starttls" | "ssl" | "none"
	InsecureSkipVerify bool
}

// Send envía el mensaje como multipart/alternative (txt + html).
func (s *SMTPSender) Send(to []string, subject, htmlBody, textBody string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)

	if textBody != "" {
		m.SetBody("text/plain", textBody)
	}
	if htmlBody != "" {
		if textBody == "" {
			m.SetBody("text/html", htmlBody)
		} else {
			m.AddAlternative("text/html", htmlBody)
		}
	}

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{
		ServerName:         s.Host,
		InsecureSkipVerify: s.InsecureSkipVerify, // solo dev
	}

	switch s.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.TLSConfig = &tls.Config{InsecureSkipVerify: s.InsecureSkipVerify}
	default:
		// "auto"/"starttls": go-mail negocia STARTTLS si corresponde
	}

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

const pendingSubject = "Cuenta pendiente de aprobación: {{.Email}}"

const pendingText = `Se creó una cuenta nueva en el primer login y está deshabilitada.

Email:  {{.Email}}
Nombre: {{.FirstName}} {{.LastName}}
ID:     {{.CredentialID}}

Habilitala con: trackrctl account enable {{.CredentialID}}
`

const pendingHTML = `<p>Se creó una cuenta nueva en el primer login y está <strong>deshabilitada</strong>.</p>
<ul>
  <li>Email: {{.Email}}</li>
  <li>Nombre: {{.FirstName}} {{.LastName}}</li>
  <li>ID: <code>{{.CredentialID}}</code></li>
</ul>
<p>Habilitala con <code>trackrctl account enable {{.CredentialID}}</code>.</p>
`

var (
	subjectTpl = texttpl.Must(texttpl.New("pending_subject").Parse(pendingSubject))
	textTpl    = texttpl.Must(texttpl.New("pending_txt").Parse(pendingText))
	htmlTpl    = htmltpl.Must(htmltpl.New("pending_html").Parse(pendingHTML))
)

// MailNotifier envía el aviso por email a una lista fija de destinatarios.
type MailNotifier struct {
	sender     Sender
	recipients []string
}

// NewMail crea un Notifier por email. Sin destinatarios retorna Noop.
func NewMail(sender Sender, recipients []string) Notifier {
	clean := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			clean = append(clean, r)
		}
	}
	if sender == nil || len(clean) == 0 {
		return Noop{}
	}
	return &MailNotifier{sender: sender, recipients: clean}
}

func (n *MailNotifier) AccountPending(ctx context.Context, acc PendingAccount) error {
	if acc.Email == "" {
		return errors.New("notify: pending account without email")
	}

	subject, text, html, err := render(acc)
	if err != nil {
		return fmt.Errorf("notify: render: %w", err)
	}

	if err := n.sender.Send(n.recipients, subject, html, text); err != nil {
		return err
	}

	logger.From(ctx).Debug("pending account notification sent",
		logger.Component("notify"),
		logger.CredentialID(acc.CredentialID),
		logger.Int("recipients", len(n.recipients)),
	)
	return nil
}

func render(acc PendingAccount) (subject, text, html string, err error) {
	var sb, tb, hb bytes.Buffer
	if err = subjectTpl.Execute(&sb, acc); err != nil {
		return
	}
	if err = textTpl.Execute(&tb, acc); err != nil {
		return
	}
	if err = htmlTpl.Execute(&hb, acc); err != nil {
		return
	}
	return sb.String(), tb.String(), hb.String(), nil
}
