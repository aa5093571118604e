package payment_service_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"clubfees/internal/api/controllers"
	"clubfees/internal/repositories"
	"clubfees/internal/services"
)

var Module = fx.Provide(
	providePaymentRepo, services.NewPaymentService, providePaymentController,
)

func providePaymentRepo(db *gorm.DB) repositories.IPaymentRepository {
	return repositories.NewPaymentRepository(db)
}

func providePaymentController(paymentService services.PaymentService) *controllers.PaymentController {
	return controllers.NewPaymentController(paymentService)
}
