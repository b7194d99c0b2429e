package order

import (
	"context"
	"errors"
	"fmt"
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
	serviceName        = "order-service"
	useCaseOrderCreate = "order.create"
	spanPrefix         = "UC."

	createdEventPeer     = "outbox"
	createdEventEndpoint = "order.created"
	createdEventTimeout  = 300 * time.Millisecond
)

var (
	ErrRepository = errors.New("order: repository failure")
	ErrValidation = errors.New("validation")
)

type OrderLineInput struct {
	ProductID string
	Quantity  int
	UnitPrice domain.Money
}

type CreateOrderInput struct {
	CustomerID string
	Lines      []OrderLineInput
}

type CreateOrderResult struct {
	OrderID string
	Status  domain.Status
	Total   domain.Money
}

// CreateOrderUseCase builds a new pending order with its lines and persists it.
type CreateOrderUseCase struct {
	repo        domain.Repository
	idGenerator IDGenerator
	publisher   domoutbox.Publisher
	tel         observability.Telemetry

	log          observability.Logger
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

// NewCreateOrderUseCase wires the dependencies required to execute the use case.
func NewCreateOrderUseCase(
	repo domain.Repository,
	idGen IDGenerator,
	publisher domoutbox.Publisher,
	tel observability.Telemetry,
) *CreateOrderUseCase {
	if tel == nil {
		tel = observability.NopTelemetry()
	}
	return &CreateOrderUseCase{
		repo:         repo,
		idGenerator:  idGen,
		publisher:    publisher,
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", serviceName)),
		reqCounter:   tel.Counter(observability.MUsecaseRequests),
		durHistogram: tel.Histogram(observability.MUsecaseDuration),
		extCounter:   tel.Counter(observability.MExternalRequests),
		extHistogram: tel.Histogram(observability.MExternalRequestDuration),
	}
}

// Execute performs the order creation flow.
func (uc *CreateOrderUseCase) Execute(ctx context.Context, cmd CreateOrderInput) (_ *CreateOrderResult, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(observability.F("use_case", useCaseOrderCreate))

	var publishErr error

	ctx, span := uc.tel.Tracer().Start(ctx, spanPrefix+"CreateOrder",
		attribute.String("use_case", useCaseOrderCreate),
		attribute.String("order.customer_id", cmd.CustomerID),
		attribute.Int("order.line_count", len(cmd.Lines)),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		latency := time.Since(start).Seconds()

		if span != nil {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, statusText)
			} else {
				span.SetStatus(codes.Ok, statusText)
			}
			span.End()
		}

		uc.reqCounter.Add(1,
			observability.L("use_case", useCaseOrderCreate),
			observability.L("outcome", outcome),
		)
		uc.durHistogram.Observe(latency,
			observability.L("use_case", useCaseOrderCreate),
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
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	if cmd.CustomerID == "" {
		outcome, statusText = "error", "CUSTOMER_ID_REQUIRED"
		return nil, newValidation("customer id is required")
	}
	if err := ctx.Err(); err != nil {
		outcome, statusText = "error", "CONTEXT_CANCELED"
		return nil, err
	}

	entity := domain.New(uc.idGenerator.NewID(), cmd.CustomerID)
	for _, line := range cmd.Lines {
		if lineErr := entity.AddLine(line.ProductID, line.Quantity, line.UnitPrice); lineErr != nil {
			outcome, statusText = "error", "LINE_REJECTED"
			return nil, newValidation(lineErr.Error())
		}
	}

	if err := uc.repo.Save(ctx, entity); err != nil {
		outcome, statusText = "error", "REPO_SAVE_FAILED"
		return nil, fmt.Errorf("%w: %w", ErrRepository, err)
	}

	if uc.publisher != nil {
		pubCtx, cancel := context.WithTimeout(ctx, createdEventTimeout)
		pubStart := time.Now()
		pubOutcome := "success"

		publishErr = uc.publisher.Publish(pubCtx, domain.NewOrderCreatedEvent(entity))
		if publishErr != nil {
			pubOutcome = "error"
			statusText = "EVENT_PUBLISH_FAILED"
		}
		cancel()

		uc.extCounter.Add(1,
			observability.L("peer", createdEventPeer),
			observability.L("endpoint", createdEventEndpoint),
			observability.L("outcome", pubOutcome),
		)
		uc.extHistogram.Observe(time.Since(pubStart).Seconds(),
			observability.L("peer", createdEventPeer),
			observability.L("endpoint", createdEventEndpoint),
		)
	}

	span.AddEvent("order.created",
		trace.WithAttributes(attribute.String("order.id", entity.ID)),
	)

	return &CreateOrderResult{
		OrderID: entity.ID,
		Status:  entity.Status,
		Total:   entity.TotalAmount(),
	}, nil
}

func newValidation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
