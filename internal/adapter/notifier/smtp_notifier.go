package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"

	"github.com/mgiraldo/storefront/internal/port"
)

// SMTPNotifier sends the shipped notification over plain SMTP. The caller
// treats delivery as fire-and-forget; errors surface for logging only.
type SMTPNotifier struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPNotifier(host string, port int, username, password, from string) *SMTPNotifier {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPNotifier{
		addr: fmt.Sprintf("%s:%d", host, port),
		auth: auth,
		from: from,
	}
}

func (n *SMTPNotifier) SendShipped(ctx context.Context, notice port.ShippedNotice) error {
	t := translationFor(notice.Language)

	e := email.NewEmail()
	e.From = n.from
	e.To = []string{notice.To}
	e.Subject = interpolate(t.Subject, notice)
	e.HTML = []byte(renderShippedBody(t, notice))

	if err := e.Send(n.addr, n.auth); err != nil {
		return fmt.Errorf("send shipped email: %w", err)
	}
	return nil
}

func interpolate(s string, notice port.ShippedNotice) string {
	s = strings.ReplaceAll(s, "{id}", shortRef(notice.OrderID))
	name := notice.CustomerName
	if name == "" {
		name = "Cliente"
	}
	return strings.ReplaceAll(s, "{name}", name)
}

func shortRef(orderID string) string {
	if len(orderID) > 8 {
		return orderID[:8]
	}
	return orderID
}

func renderShippedBody(t shippedCopy, notice port.ShippedNotice) string {
	var b strings.Builder

	b.WriteString("<h1>" + t.Title + "</h1>")
	b.WriteString("<p>" + interpolate(t.Greeting, notice) + "</p>")
	b.WriteString("<p>" + interpolate(t.Intro, notice) + "</p>")

	if notice.Carrier != "" {
		b.WriteString("<p><strong>" + t.Carrier + "</strong> " + notice.Carrier + "</p>")
	}
	if notice.TrackingNumber != "" {
		b.WriteString("<p><strong>" + t.Tracking + "</strong> " + notice.TrackingNumber + "</p>")
	}

	if len(notice.Lines) > 0 {
		b.WriteString("<h3>" + t.Items + "</h3><ul>")
		for _, line := range notice.Lines {
			item := line.Name
			if line.Size != "" {
				item += " (" + line.Size + ")"
			}
			b.WriteString(fmt.Sprintf("<li>%s x%d</li>", item, line.Quantity))
		}
		b.WriteString("</ul>")
	}

	b.WriteString("<p>" + t.Outro + "</p>")
	return b.String()
}
