package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appOrder "github.com/paylab/orderpay/internal/application/order"
	httptransport "github.com/paylab/orderpay/internal/infrastructure/http"
	"github.com/paylab/orderpay/internal/infrastructure/id"
	"github.com/paylab/orderpay/internal/infrastructure/memory"
	"github.com/paylab/orderpay/internal/infrastructure/observability/oteltrace"
	"github.com/paylab/orderpay/internal/infrastructure/observability/prometrics"
	"github.com/paylab/orderpay/internal/infrastructure/observability/telemetry"
	"github.com/paylab/orderpay/internal/infrastructure/observability/zaplogger"
	"github.com/paylab/orderpay/internal/infrastructure/outbox"
	"github.com/paylab/orderpay/internal/infrastructure/payment"
	"github.com/paylab/orderpay/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	serviceName := getenvDefault("SERVICE_NAME", "orderpay")
	env := getenvDefault("ENV", "dev")
	addr := getenvDefault("HTTP_ADDR", ":8080")

	logger := zaplogger.New(
		observability.F("service", serviceName),
		observability.F("env", env),
	)

	metrics := prometrics.New("", "")
	counters := map[observability.MetricKey]observability.Counter{
		observability.MUsecaseRequests: metrics.Counter(
			string(observability.MUsecaseRequests),
			"Total number of use case invocations.",
			"use_case", "outcome",
		),
		observability.MExternalRequests: metrics.Counter(
			string(observability.MExternalRequests),
			"Total number of calls to external collaborators.",
			"peer", "endpoint", "outcome",
		),
		observability.MOrdersPaid: metrics.Counter(
			string(observability.MOrdersPaid),
			"Count of orders paid successfully.",
			"currency",
		),
	}
	histograms := map[observability.MetricKey]observability.Histogram{
		observability.MUsecaseDuration: metrics.Histogram(
			string(observability.MUsecaseDuration),
			"Duration of use case execution in seconds.",
			prometheus.DefBuckets,
			"use_case",
		),
		observability.MExternalRequestDuration: metrics.Histogram(
			string(observability.MExternalRequestDuration),
			"Duration of external calls in seconds.",
			prometheus.DefBuckets,
			"peer", "endpoint",
		),
	}

	tel := telemetry.New(oteltrace.New(serviceName), logger, counters, histograms)

	orderRepo := memory.NewOrderRepository()
	gateway := payment.NewFakeGateway()
	idGenerator := id.NewUUIDGenerator()

	bus := outbox.NewBus(logger)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	createOrder := appOrder.NewCreateOrderUseCase(orderRepo, idGenerator, bus, tel)
	payOrder := appOrder.NewPayOrderUseCase(orderRepo, gateway, bus, tel)

	paidWorker := appOrder.NewPaidOrderWorker(bus, tel)
	paidWorker.Start()

	handler := httptransport.NewHandler(createOrder, payOrder)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("http_server_start",
			observability.F("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error",
				observability.F("error", err.Error()),
			)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error",
			observability.F("error", err.Error()),
		)
	} else {
		logger.Info("http_server_stopped")
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
