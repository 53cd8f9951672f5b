package handler

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// handlerMetrics counts the business events worth watching: payment orders
// opened and captured, and customer questions submitted.
type handlerMetrics struct {
	ordersCreated  metric.Int64Counter
	ordersCaptured metric.Int64Counter
	questionsAsked metric.Int64Counter
}

func newHandlerMetrics() handlerMetrics {
	meter := otel.GetMeterProvider().Meter("solar-store/handler")

	ordersCreated, _ := meter.Int64Counter("payment.orders.created",
		metric.WithDescription("Payment provider orders opened"))
	ordersCaptured, _ := meter.Int64Counter("payment.orders.captured",
		metric.WithDescription("Payment provider orders captured"))
	questionsAsked, _ := meter.Int64Counter("questions.asked",
		metric.WithDescription("Customer questions submitted"))

	return handlerMetrics{
		ordersCreated:  ordersCreated,
		ordersCaptured: ordersCaptured,
		questionsAsked: questionsAsked,
	}
}
