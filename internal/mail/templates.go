package mail

import (
	"fmt"
	"html"
	"strings"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

// OrderOperatorMessage composes the full-detail notification sent to the
// platform operator when an order is placed.
func OrderOperatorMessage(from, to string, order *domain.Order) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>New order %s</h2>", order.ID)
	fmt.Fprintf(&b, "<p>Buyer: %s %s &lt;%s&gt;, phone %s</p>",
		html.EscapeString(order.FirstName),
		html.EscapeString(order.LastName),
		html.EscapeString(order.Email),
		html.EscapeString(order.Phone),
	)
	fmt.Fprintf(&b, "<p>Ship to: %s, apt %s, %s, %s</p>",
		html.EscapeString(order.Street),
		html.EscapeString(order.Apartment),
		html.EscapeString(order.City),
		html.EscapeString(order.Country),
	)
	if order.Notes != "" {
		fmt.Fprintf(&b, "<p>Notes: %s</p>", html.EscapeString(order.Notes))
	}
	writeItemsTable(&b, order)

	return Message{
		From:    from,
		To:      to,
		ReplyTo: order.Email,
		Subject: fmt.Sprintf("New order from %s %s", order.FirstName, order.LastName),
		HTML:    b.String(),
	}
}

// OrderBuyerMessage composes the confirmation sent to the buyer.
func OrderBuyerMessage(from string, order *domain.Order) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Thank you for your order, %s!</h2>", html.EscapeString(order.FirstName))
	b.WriteString("<p>We received your order and will deliver it as soon as possible. Payment is cash on delivery.</p>")
	writeItemsTable(&b, order)

	return Message{
		From:    from,
		To:      order.Email,
		Subject: "Your order confirmation",
		HTML:    b.String(),
	}
}

// OrderSellerMessage composes the sale notification sent to one seller,
// listing only that seller's lines.
func OrderSellerMessage(from, to string, order *domain.Order, sellerID uuid.UUID) Message {
	var b strings.Builder
	b.WriteString("<h2>You made a sale!</h2>")
	b.WriteString("<table border=\"1\" cellpadding=\"4\"><tr><th>Product</th><th>Qty</th><th>Price</th><th>Total</th></tr>")
	for _, item := range order.Items {
		if item.SellerID != sellerID {
			continue
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td><td>%.2f</td><td>%.2f</td></tr>",
			html.EscapeString(item.Title), item.Quantity, item.Price, item.Total)
	}
	b.WriteString("</table>")
	b.WriteString("<p>Please prepare the items for dispatch.</p>")

	return Message{
		From:    from,
		To:      to,
		Subject: "You have a new sale",
		HTML:    b.String(),
	}
}

// ContactOperatorMessage composes the operator notification for a contact
// form submission, with reply-to set to the sender.
func ContactOperatorMessage(from, to string, msg *domain.ContactMessage) Message {
	subject := msg.Subject
	if subject == "" {
		subject = "New contact message"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<p>From: %s &lt;%s&gt;</p>",
		html.EscapeString(msg.Name), html.EscapeString(msg.Email))
	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(msg.Message))

	return Message{
		From:    from,
		To:      to,
		ReplyTo: msg.Email,
		Subject: subject,
		HTML:    b.String(),
	}
}

func writeItemsTable(b *strings.Builder, order *domain.Order) {
	b.WriteString("<table border=\"1\" cellpadding=\"4\"><tr><th>Product</th><th>Qty</th><th>Price</th><th>Total</th></tr>")
	for _, item := range order.Items {
		fmt.Fprintf(b, "<tr><td>%s</td><td>%d</td><td>%.2f</td><td>%.2f</td></tr>",
			html.EscapeString(item.Title), item.Quantity, item.Price, item.Total)
	}
	b.WriteString("</table>")
	fmt.Fprintf(b, "<p><strong>Total: %.2f</strong></p>", order.TotalPrice)
}
