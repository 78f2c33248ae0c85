package telemetry

import (
	"context"
	"errors"

	"github.com/Miraku17/Exam-Permit/internal/domain/payment"
	"github.com/Miraku17/Exam-Permit/internal/domain/permit"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = errors.New("meter cannot be nil")

// BusinessMetrics counts verification and permit activity. It subscribes
// to the event bus for domain events; receipt failures are reported by
// the verification service directly.
type BusinessMetrics struct {
	paymentsVerified *Counter
	amountAllocated  *Counter
	amountUnapplied  *Counter
	permitsIssued    *Counter
	deliveryFailures *Counter
}

// NewBusinessMetrics registers the portal counters on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var err error
	bm := &BusinessMetrics{}
	if bm.paymentsVerified, err = NewCounter(meter,
		"tuition_payments_verified_total", "Payments accepted or rejected by administrators", "{payments}"); err != nil {
		return nil, err
	}
	if bm.amountAllocated, err = NewCounter(meter,
		"tuition_amount_allocated_total", "Accepted money applied to term balances, in centavos", "{centavos}"); err != nil {
		return nil, err
	}
	if bm.amountUnapplied, err = NewCounter(meter,
		"tuition_amount_unapplied_total", "Accepted money exceeding the outstanding balance, in centavos", "{centavos}"); err != nil {
		return nil, err
	}
	if bm.permitsIssued, err = NewCounter(meter,
		"tuition_permits_issued_total", "Examination permits issued", "{permits}"); err != nil {
		return nil, err
	}
	if bm.deliveryFailures, err = NewCounter(meter,
		"tuition_delivery_failures_total", "Receipt and permit emails that could not be rendered or sent", "{emails}"); err != nil {
		return nil, err
	}
	return bm, nil
}

// Handle implements shared.EventHandler
func (bm *BusinessMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *payment.PaymentAcceptedEvent:
		bm.paymentsVerified.Inc(ctx, AttrOutcome.String("accepted"))
		bm.amountAllocated.Add(ctx, e.Applied.Cents())
		if e.Unapplied.IsPositive() {
			bm.amountUnapplied.Add(ctx, e.Unapplied.Cents())
		}
	case *payment.PaymentRejectedEvent:
		bm.paymentsVerified.Inc(ctx, AttrOutcome.String("rejected"))
	case *permit.PermitIssuedEvent:
		bm.permitsIssued.Inc(ctx, AttrTermName.String(e.Term))
	}
	return nil
}

// EventTypes implements shared.EventHandler
func (bm *BusinessMetrics) EventTypes() []string {
	return []string{
		payment.EventTypePaymentAccepted,
		payment.EventTypePaymentRejected,
		permit.EventTypePermitIssued,
	}
}

// RecordDeliveryFailure counts a receipt or permit email that was not sent.
// kind is "receipt" or "permit".
func (bm *BusinessMetrics) RecordDeliveryFailure(ctx context.Context, kind string) {
	bm.deliveryFailures.Inc(ctx, AttrReason.String(kind))
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)
