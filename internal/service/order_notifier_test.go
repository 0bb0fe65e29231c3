package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func notifierFixture(mailer *mockMailer) Notifier {
	return NewMailNotifier(mailer,
		config.SMTPConfig{From: "noreply@store.example.com"},
		config.StoreConfig{OperatorEmail: "ops@store.example.com"},
		zap.NewNop(),
	)
}

func placedOrder(sellerA, sellerB uuid.UUID) *domain.Order {
	return &domain.Order{
		ID:        uuid.New(),
		BuyerID:   uuid.New(),
		FirstName: "Nora",
		LastName:  "Klavina",
		Email:     "nora@example.com",
		Items: []domain.OrderItem{
			{Title: "Mug", Quantity: 2, Price: 10, Total: 20, SellerID: sellerA},
			{Title: "Plate", Quantity: 1, Price: 15, Total: 15, SellerID: sellerB},
		},
		TotalPrice: 35,
	}
}

func TestOrderPlaced_FanOutOrderAndRecipients(t *testing.T) {
	mailer := &mockMailer{}
	notifier := notifierFixture(mailer)

	sellerA := uuid.New()
	sellerB := uuid.New()
	order := placedOrder(sellerA, sellerB)

	notifier.OrderPlaced(context.Background(), order, []repository.SellerContact{
		{ID: sellerA, Email: "a@example.com"},
		{ID: sellerB, Email: "b@example.com"},
	})

	sent := mailer.sent()
	if len(sent) != 4 {
		t.Fatalf("sent %d messages, want 4", len(sent))
	}

	// Operator first, then buyer, then sellers in order.
	if sent[0].To != "ops@store.example.com" {
		t.Errorf("first message to %q, want operator", sent[0].To)
	}
	if sent[1].To != "nora@example.com" {
		t.Errorf("second message to %q, want buyer", sent[1].To)
	}
	if sent[2].To != "a@example.com" || sent[3].To != "b@example.com" {
		t.Errorf("seller messages to %q, %q", sent[2].To, sent[3].To)
	}

	// Each seller message lists only that seller's lines.
	if !strings.Contains(sent[2].HTML, "Mug") || strings.Contains(sent[2].HTML, "Plate") {
		t.Errorf("seller A message leaks foreign lines: %s", sent[2].HTML)
	}
	if !strings.Contains(sent[3].HTML, "Plate") || strings.Contains(sent[3].HTML, "Mug") {
		t.Errorf("seller B message leaks foreign lines: %s", sent[3].HTML)
	}

	// Operator mail replies to the buyer.
	if sent[0].ReplyTo != "nora@example.com" {
		t.Errorf("operator reply-to = %q", sent[0].ReplyTo)
	}
}

func TestOrderPlaced_SkipsOperatorWhenUnconfigured(t *testing.T) {
	mailer := &mockMailer{}
	notifier := NewMailNotifier(mailer,
		config.SMTPConfig{From: "noreply@store.example.com"},
		config.StoreConfig{},
		zap.NewNop(),
	)

	notifier.OrderPlaced(context.Background(), placedOrder(uuid.New(), uuid.New()), nil)

	sent := mailer.sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1 (buyer only)", len(sent))
	}
	if sent[0].To != "nora@example.com" {
		t.Errorf("message to %q, want buyer", sent[0].To)
	}
}

func TestOrderPlaced_MailFailureIsSwallowed(t *testing.T) {
	mailer := &mockMailer{fail: errors.New("smtp down")}
	notifier := notifierFixture(mailer)

	// Must not panic or propagate; the order is already committed.
	notifier.OrderPlaced(context.Background(), placedOrder(uuid.New(), uuid.New()), nil)
}

func TestOrderPlaced_SurvivesCancelledRequestContext(t *testing.T) {
	mailer := &mockMailer{}
	notifier := notifierFixture(mailer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	notifier.OrderPlaced(ctx, placedOrder(uuid.New(), uuid.New()), nil)

	// The fan-out detaches from the request context, so a cancelled
	// request must not suppress delivery.
	if len(mailer.sent()) != 2 {
		t.Errorf("sent %d messages, want 2", len(mailer.sent()))
	}
}
