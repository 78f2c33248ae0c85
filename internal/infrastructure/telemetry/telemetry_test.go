package telemetry

import (
	"context"
	"testing"

	"github.com/Miraku17/Exam-Permit/internal/domain/payment"
	"github.com/Miraku17/Exam-Permit/internal/domain/permit"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if data, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	return sums
}

func newTestMetrics(t *testing.T) (*BusinessMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	bm, err := NewBusinessMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return bm, reader
}

func TestBusinessMetrics_Handle(t *testing.T) {
	bm, reader := newTestMetrics(t)
	ctx := context.Background()

	accepted := &payment.PaymentAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(payment.EventTypePaymentAccepted, payment.AggregateTypePayment, uuid.New()),
		TransactionID:   "TRX1",
		Applied:         valueobject.NewMoneyFromInt(1500),
		Unapplied:       valueobject.NewMoneyFromCents(2550),
	}
	rejected := &payment.PaymentRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(payment.EventTypePaymentRejected, payment.AggregateTypePayment, uuid.New()),
	}
	issued := &permit.PermitIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(permit.EventTypePermitIssued, permit.AggregateTypePermit, uuid.New()),
		Term:            "Midterm",
	}

	require.NoError(t, bm.Handle(ctx, accepted))
	require.NoError(t, bm.Handle(ctx, rejected))
	require.NoError(t, bm.Handle(ctx, issued))
	bm.RecordDeliveryFailure(ctx, "receipt")

	sums := collectSums(t, reader)
	assert.Equal(t, int64(2), sums["tuition_payments_verified_total"])
	assert.Equal(t, int64(150000), sums["tuition_amount_allocated_total"])
	assert.Equal(t, int64(2550), sums["tuition_amount_unapplied_total"])
	assert.Equal(t, int64(1), sums["tuition_permits_issued_total"])
	assert.Equal(t, int64(1), sums["tuition_delivery_failures_total"])
}

func TestBusinessMetrics_EventTypes(t *testing.T) {
	bm, _ := newTestMetrics(t)
	assert.ElementsMatch(t, []string{
		payment.EventTypePaymentAccepted,
		payment.EventTypePaymentRejected,
		permit.EventTypePermitIssued,
	}, bm.EventTypes())
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	_, err := NewBusinessMetrics(nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestSetup_Disabled(t *testing.T) {
	tel, err := Setup(context.Background(), config.TelemetryConfig{ServiceName: "tuition-portal"}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, tel.Tracer.IsEnabled())
	assert.False(t, tel.Logs.IsEnabled())
	assert.False(t, tel.Profiler.IsEnabled())
	assert.NotNil(t, tel.Tracer.Tracer("test"))
	assert.NotNil(t, tel.Meter.Meter("test"))

	logger := zap.NewNop()
	assert.Same(t, logger, tel.Logs.Bridge(logger, "tuition-portal", zapcore.InfoLevel))
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestNewProfiler_Validation(t *testing.T) {
	_, err := NewProfiler(ProfilerConfig{Enabled: true, ApplicationName: "app"}, zap.NewNop())
	assert.Error(t, err)
	_, err = NewProfiler(ProfilerConfig{Enabled: true, ServerAddress: "http://pyroscope:4040"}, zap.NewNop())
	assert.Error(t, err)

	p, err := NewProfiler(ProfilerConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOn")
	assert.Contains(t, samplerFor(0).Description(), "AlwaysOff")
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased")
}

func TestLevelFilterCore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	filtered := &levelFilterCore{Core: core, minLevel: zapcore.WarnLevel}
	logger := zap.New(filtered).With(zap.String("component", "test"))

	logger.Info("dropped")
	logger.Warn("kept")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, "test", entry.ContextMap()["component"])
}
