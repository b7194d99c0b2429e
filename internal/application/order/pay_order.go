package order

import (
	"context"
	"errors"
	"time"

	domain "github.com/paylab/orderpay/internal/domain/order"
	domoutbox "github.com/paylab/orderpay/internal/domain/outbox"
	"github.com/paylab/orderpay/internal/observability"
	"github.com/paylab/orderpay/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	useCasePayOrder = "order.pay"
	payOrderSpan    = spanPrefix + "PayOrder"

	paidEventPeer     = "outbox"
	paidEventEndpoint = "order.paid"
	paidEventTimeout  = 300 * time.Millisecond

	msgOrderNotFound   = "Order not found"
	gatewayErrorPrefix = "Payment failed: "
)

type PayOrderCommand struct {
	OrderID string
}

// PayOrderResult is the single outcome record handed back to drivers.
// Exactly one of TransactionID (success) or ErrorMessage (failure) is set.
type PayOrderResult struct {
	Success       bool
	OrderID       string
	TransactionID string
	ErrorMessage  string
}

// PayOrderUseCase orchestrates load -> domain pay -> charge -> save. Side
// effects are strictly ordered: no charge before a successful Pay, no save
// before a successful charge.
type PayOrderUseCase struct {
	repo      domain.Repository
	gateway   PaymentPort
	publisher domoutbox.Publisher
	tel       observability.Telemetry

	log          observability.Logger
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

// NewPayOrderUseCase wires the dependencies required to execute the use case.
// publisher may be nil; the paid event is then skipped.
func NewPayOrderUseCase(
	repo domain.Repository,
	gateway PaymentPort,
	publisher domoutbox.Publisher,
	tel observability.Telemetry,
) *PayOrderUseCase {
	if tel == nil {
		tel = observability.NopTelemetry()
	}
	return &PayOrderUseCase{
		repo:         repo,
		gateway:      gateway,
		publisher:    publisher,
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", serviceName)),
		reqCounter:   tel.Counter(observability.MUsecaseRequests),
		durHistogram: tel.Histogram(observability.MUsecaseDuration),
		extCounter:   tel.Counter(observability.MExternalRequests),
		extHistogram: tel.Histogram(observability.MExternalRequestDuration),
	}
}

// Execute runs one payment attempt. It is the sole error boundary: domain and
// port failures come back inside the result, never as a Go error.
func (uc *PayOrderUseCase) Execute(ctx context.Context, cmd PayOrderCommand) *PayOrderResult {
	logger := logctx.FromOr(ctx, uc.log).With(
		observability.F("use_case", useCasePayOrder),
		observability.F("order_id", cmd.OrderID),
	)

	ctx, span := uc.tel.Tracer().Start(ctx, payOrderSpan,
		attribute.String("use_case", useCasePayOrder),
		attribute.String("order.id", cmd.OrderID),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	result := &PayOrderResult{OrderID: cmd.OrderID}
	var publishErr error

	defer func() {
		latency := time.Since(start).Seconds()

		if span != nil {
			if result.ErrorMessage != "" {
				span.SetStatus(codes.Error, statusText)
			} else {
				span.SetAttributes(attribute.String("payment.transaction_id", result.TransactionID))
				span.SetStatus(codes.Ok, statusText)
			}
			span.End()
		}

		uc.reqCounter.Add(1,
			observability.L("use_case", useCasePayOrder),
			observability.L("outcome", outcome),
		)
		uc.durHistogram.Observe(latency,
			observability.L("use_case", useCasePayOrder),
		)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", latency),
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if publishErr != nil {
			fields = append(fields, observability.F("event_publish_error", publishErr.Error()))
		}
		if result.ErrorMessage != "" {
			fields = append(fields, observability.F("error", result.ErrorMessage))
		}
		logger.Info("use_case_done", fields...)
	}()

	entity, err := uc.repo.GetByID(ctx, cmd.OrderID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		outcome, statusText = "error", "ORDER_NOT_FOUND"
		result.ErrorMessage = msgOrderNotFound
		return result
	case err != nil:
		outcome, statusText = "error", "ORDER_LOOKUP_FAILED"
		result.ErrorMessage = gatewayErrorPrefix + err.Error()
		return result
	}

	if err := entity.Pay(); err != nil {
		// Invariant violations surface verbatim; nothing was charged or saved.
		outcome, statusText = "error", "DOMAIN_REJECTED"
		span.RecordError(err)
		result.ErrorMessage = err.Error()
		return result
	}

	transactionID, err := uc.gateway.Charge(ctx, entity.ID, entity.TotalAmount())
	if err != nil {
		// The previously stored order stays unpaid: no save after a failed charge.
		outcome, statusText = "error", "CHARGE_FAILED"
		span.RecordError(err)
		result.ErrorMessage = gatewayErrorPrefix + err.Error()
		return result
	}

	if err := uc.repo.Save(ctx, entity); err != nil {
		outcome, statusText = "error", "REPO_SAVE_FAILED"
		span.RecordError(err)
		result.ErrorMessage = gatewayErrorPrefix + err.Error()
		return result
	}

	if uc.publisher != nil {
		publishErr = uc.publishPaid(ctx, entity, transactionID)
		if publishErr != nil {
			// Best effort; the payment itself already succeeded.
			statusText = "EVENT_PUBLISH_FAILED"
		}
	}

	span.AddEvent("order.paid",
		trace.WithAttributes(attribute.String("order.id", entity.ID)),
	)

	result.Success = true
	result.TransactionID = transactionID
	return result
}

func (uc *PayOrderUseCase) publishPaid(ctx context.Context, entity *domain.Order, transactionID string) error {
	pubCtx, cancel := context.WithTimeout(ctx, paidEventTimeout)
	defer cancel()

	pubStart := time.Now()
	pubOutcome := "success"

	err := uc.publisher.Publish(pubCtx, domain.NewOrderPaidEvent(entity, transactionID))
	if err != nil {
		pubOutcome = "error"
	}

	uc.extCounter.Add(1,
		observability.L("peer", paidEventPeer),
		observability.L("endpoint", paidEventEndpoint),
		observability.L("outcome", pubOutcome),
	)
	uc.extHistogram.Observe(time.Since(pubStart).Seconds(),
		observability.L("peer", paidEventPeer),
		observability.L("endpoint", paidEventEndpoint),
	)
	return err
}
