package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"storefront-be/internal/order"

	"gopkg.in/gomail.v2"
)

type mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// To receives every notification.
	To string
	// BaseURL links the message back to the admin dashboard.
	BaseURL string
}

// EmailSink mails an HTML summary of each order to the shop owner.
type EmailSink struct {
	mailer  mailer
	from    string
	to      string
	baseURL string
}

func NewEmailSink(cfg EmailConfig) *EmailSink {
	return &EmailSink{
		mailer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.Username,
		to:      cfg.To,
		baseURL: cfg.BaseURL,
	}
}

func (s *EmailSink) Name() string { return "email" }

// Send ignores ctx cancellation once the SMTP exchange has started.
func (s *EmailSink) Send(ctx context.Context, o order.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := renderOrderEmail(o, s.baseURL)
	if err != nil {
		return fmt.Errorf("render order email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, "Storefront")
	m.SetHeader("To", s.to)
	m.SetHeader("Subject", fmt.Sprintf("New Order from %s", o.CustomerName()))
	m.SetBody("text/html", body)

	if err := s.mailer.DialAndSend(m); err != nil {
		return fmt.Errorf("send order email: %w", err)
	}
	return nil
}

var orderEmail = template.Must(template.New("order").Parse(`<div style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: auto; padding: 20px;">
  <h2 style="text-align: center; color: #2b2b2b;">New Order Received</h2>
  <p><strong>Name:</strong> {{.Order.FirstName}} {{.Order.LastName}}</p>
  <p><strong>Email:</strong> {{.Order.Email}}</p>
  <p><strong>Phone:</strong> {{.Order.Phone}}</p>
  <p><strong>Address:</strong> {{.Order.Address}}, {{.Order.City}}, {{.Order.PostalCode}}</p>
  <p><strong>Notes:</strong> {{if .Order.Notes}}{{.Order.Notes}}{{else}}None{{end}}</p>
  <p><strong>Total:</strong> {{.Order.Total.StringFixed 2}} TND</p>
  <p><strong>Shipping Method:</strong> {{.Order.ShippingMethod}}</p>
  <p><strong>Payment Method:</strong> {{.Order.PaymentMethod}}</p>
  <h3 style="margin-top: 30px;">Products:</h3>
  <table style="width: 100%; border-collapse: collapse;">
  {{- range .Order.Products}}
    <tr>
      <td style="padding: 10px; border-bottom: 1px solid #eee;"><img src="{{.Image}}" alt="{{.Title}}" width="60" style="border-radius: 6px; border: 1px solid #ccc;" /></td>
      <td style="padding: 10px;"><strong>{{.Title}}</strong><br/>Size: {{.Size}}<br/>Quantity: {{.Quantity}}<br/>Price: {{.Price.StringFixed 2}} TND</td>
    </tr>
  {{- end}}
  </table>
  {{- if .AdminURL}}
  <p style="margin-top: 20px;"><a href="{{.AdminURL}}">Open in dashboard</a></p>
  {{- end}}
  <p style="margin-top: 30px; font-size: 13px; color: #777;">Thank you for your order!</p>
</div>`))

func renderOrderEmail(o order.Order, baseURL string) (string, error) {
	data := struct {
		Order    order.Order
		AdminURL string
	}{Order: o}
	if baseURL != "" {
		data.AdminURL = baseURL + "/admin/orders"
	}

	var buf bytes.Buffer
	if err := orderEmail.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
