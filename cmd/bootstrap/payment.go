package bootstrap

import (
	"stayhub/internal/handler/api"
	"stayhub/internal/infra/payment"
	"stayhub/internal/pkg/config"
	"stayhub/internal/usecase/commands"

	"go.uber.org/fx"
)

var PaymentModule = fx.Module("payment",
	fx.Provide(
		NewStripeGateway,
		func(g *payment.StripeGateway) commands.PaymentGateway { return g },
		func(g *payment.StripeGateway) api.WebhookGateway { return g },
	),
)

func NewStripeGateway(cfg config.Config) *payment.StripeGateway {
	return payment.NewStripeGateway(cfg.Stripe)
}
