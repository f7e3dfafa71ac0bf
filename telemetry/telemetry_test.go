package telemetry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/pitabwire/i18nutils/telemetry"
)

type TelemetrySuite struct {
	suite.Suite

	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	tp     *sdktrace.TracerProvider
	mp     *sdkmetric.MeterProvider
}

func TestTelemetrySuite(t *testing.T) {
	suite.Run(t, new(TelemetrySuite))
}

func (s *TelemetrySuite) SetupSuite() {
	s.spans = tracetest.NewSpanRecorder()
	s.tp = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(s.spans))

	s.reader = sdkmetric.NewManualReader()
	s.mp = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(s.reader),
		sdkmetric.WithView(telemetry.Views("i18ntest")...),
	)

	otel.SetTracerProvider(s.tp)
	otel.SetMeterProvider(s.mp)
}

func (s *TelemetrySuite) TearDownSuite() {
	ctx := context.Background()
	s.NoError(s.tp.Shutdown(ctx))
	s.NoError(s.mp.Shutdown(ctx))
}

func (s *TelemetrySuite) TestTracerRecordsSpansAndLatency() {
	ctx := context.Background()
	tracer := telemetry.NewTracer("i18ntest")

	opCtx, span := tracer.Start(ctx, "create")
	tracer.End(opCtx, span, nil)

	opCtx, span = tracer.Start(ctx, "update")
	tracer.End(opCtx, span, errors.New("column missing"))

	ended := s.spans.Ended()
	s.Require().GreaterOrEqual(len(ended), 2)
	ended = ended[len(ended)-2:]
	s.Equal("i18ntest/create", ended[0].Name())
	s.Equal(codes.Ok, ended[0].Status().Code)
	s.Equal("i18ntest/update", ended[1].Name())
	s.Equal(codes.Error, ended[1].Status().Code)
	s.Len(ended[1].Events(), 1)

	var rm metricdata.ResourceMetrics
	s.Require().NoError(s.reader.Collect(ctx, &rm))

	var names []string
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names = append(names, m.Name)
		}
	}
	s.ElementsMatch([]string{"i18ntest/latency", "i18ntest/completed_calls"}, names)
}

func (s *TelemetrySuite) TestEndWithoutStartContext() {
	tracer := telemetry.NewTracer("i18ntest")
	_, span := tracer.Start(context.Background(), "delete")

	s.NotPanics(func() { tracer.End(context.Background(), span, nil) })
}

func (s *TelemetrySuite) TestErrorCode() {
	s.Equal("ok", telemetry.ErrorCode(nil))
	s.Equal("canceled", telemetry.ErrorCode(fmt.Errorf("query: %w", context.Canceled)))
	s.Equal("deadline exceeded", telemetry.ErrorCode(context.DeadlineExceeded))
	s.Equal("err", telemetry.ErrorCode(errors.New("boom")))
}
