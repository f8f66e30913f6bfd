// Package notify fans storefront events out to mail notifications.
package notify

import (
	"fmt"
	"strings"

	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"

	"github.com/saajjewels/storefront/internal/domain"
)

// Event topics
const (
	TopicOrderPaid       = "order:paid"
	TopicContactReceived = "contact:received"
)

// Notifier publishes domain events and mails the shop owner about them
type Notifier struct {
	bus    EventBus.Bus
	mailer Mailer
	to     string
}

// NewNotifier subscribes the mail handlers asynchronously so publishers
// never wait on SMTP.
func NewNotifier(mailer Mailer, to string) *Notifier {
	n := &Notifier{bus: EventBus.New(), mailer: mailer, to: to}
	_ = n.bus.SubscribeAsync(TopicOrderPaid, n.onOrderPaid, false)
	_ = n.bus.SubscribeAsync(TopicContactReceived, n.onContact, false)
	return n
}

// OrderPaid publishes a paid order
func (n *Notifier) OrderPaid(o domain.Order) {
	n.bus.Publish(TopicOrderPaid, o)
}

// ContactReceived publishes a new contact message
func (n *Notifier) ContactReceived(m domain.ContactMessage) {
	n.bus.Publish(TopicContactReceived, m)
}

// Wait blocks until queued notifications are delivered
func (n *Notifier) Wait() {
	n.bus.WaitAsync()
}

func (n *Notifier) onOrderPaid(o domain.Order) {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s has been paid.\n\n", o.OrderNumber)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "  %d x %s @ %.2f\n", it.Quantity, it.Name, it.UnitPrice)
	}
	fmt.Fprintf(&b, "\nTotal: %.2f\nPayment: %s\nShip to: %s\n", o.TotalAmount, o.PaymentID, o.ShippingAddress)
	n.deliver("Order paid: "+o.OrderNumber, b.String())
}

func (n *Notifier) onContact(m domain.ContactMessage) {
	body := fmt.Sprintf("From: %s <%s>\nPhone: %s\nSubject: %s\n\n%s\n", m.Name, m.Email, m.Phone, m.Subject, m.Message)
	n.deliver("New contact message from "+m.Name, body)
}

func (n *Notifier) deliver(subject, body string) {
	if err := n.mailer.Send(n.to, subject, body); err != nil {
		zap.L().Error("notification mail failed", zap.String("subject", subject), zap.Error(err))
	}
}
