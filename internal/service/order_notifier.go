package service

import (
	"context"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/mail"
	"storefront/internal/repository"

	"go.uber.org/zap"
)

type mailNotifier struct {
	mailer  mail.Mailer
	from    string
	opEmail string
	logger  *zap.Logger
}

// NewMailNotifier creates the production Notifier: operator first, then
// the buyer's confirmation, then one message per distinct seller, all
// awaited under a single bounded timeout. Failures are logged and
// swallowed; the order is already committed.
func NewMailNotifier(mailer mail.Mailer, smtp config.SMTPConfig, store config.StoreConfig, logger *zap.Logger) Notifier {
	return &mailNotifier{
		mailer:  mailer,
		from:    smtp.From,
		opEmail: store.OperatorEmail,
		logger:  logger,
	}
}

func (n *mailNotifier) OrderPlaced(ctx context.Context, order *domain.Order, sellers []repository.SellerContact) {
	// Detach from the request context: its cancellation must not cut the
	// fan-out short, only the explicit timeout may.
	mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), NotificationTimeout)
	defer cancel()

	if n.opEmail != "" {
		n.send(mctx, "operator", mail.OrderOperatorMessage(n.from, n.opEmail, order))
	}

	n.send(mctx, "buyer", mail.OrderBuyerMessage(n.from, order))

	for _, seller := range sellers {
		n.send(mctx, "seller", mail.OrderSellerMessage(n.from, seller.Email, order, seller.ID))
	}
}

func (n *mailNotifier) send(ctx context.Context, recipient string, msg mail.Message) {
	if err := n.mailer.Send(ctx, msg); err != nil {
		n.logger.Warn("Order notification failed",
			zap.String("recipient", recipient),
			zap.String("to", msg.To),
			zap.Error(err),
		)
	}
}
