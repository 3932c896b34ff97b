package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/garyjia/claims-intake/internal/domain/adjudication"
	"github.com/garyjia/claims-intake/internal/domain/event"
)

// Metrics provides observability for claim intake and adjudication.
type Metrics struct {
	// Verdicts by status: Approved, Manual Review, Rejected
	Verdicts *prometheus.CounterVec

	// Fired guardrails by name, one increment per finding
	GuardrailsFired *prometheus.CounterVec

	ClaimsCreated prometheus.Counter

	PhotoUploadBytes prometheus.Histogram
}

// New registers the metrics with reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Verdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "claims_adjudication_verdicts_total",
			Help: "Total auto-adjudication verdicts by status",
		}, []string{"status"}),

		GuardrailsFired: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "claims_adjudication_guardrails_fired_total",
			Help: "Total guardrail findings by guardrail",
		}, []string{"guardrail"}),

		ClaimsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "claims_created_total",
			Help: "Total claims filed",
		}),

		PhotoUploadBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "claims_photo_upload_bytes",
			Help:    "Size of uploaded claim photos",
			Buckets: prometheus.ExponentialBuckets(16*1024, 4, 7), // 16KiB .. 64MiB
		}),
	}
}

// RecordVerdict counts the verdict and each guardrail it fired.
func (m *Metrics) RecordVerdict(verdict adjudication.Verdict) {
	if m == nil {
		return
	}
	m.Verdicts.WithLabelValues(verdict.Status.String()).Inc()
	for _, g := range verdict.Guardrails() {
		m.GuardrailsFired.WithLabelValues(string(g)).Inc()
	}
}

// RecordClaimCreated counts a filed claim.
func (m *Metrics) RecordClaimCreated() {
	if m != nil {
		m.ClaimsCreated.Inc()
	}
}

// RecordPhotoUploaded observes the stored photo size.
func (m *Metrics) RecordPhotoUploaded(bytes int) {
	if m != nil {
		m.PhotoUploadBytes.Observe(float64(bytes))
	}
}

// HandleEvent feeds committed claim events into the metrics. It matches the
// dispatcher's handler signature.
func (m *Metrics) HandleEvent(_ context.Context, evt *event.Event) error {
	switch evt.Type {
	case event.TypeClaimCreated:
		m.RecordClaimCreated()
	case event.TypePhotoUploaded:
		m.RecordPhotoUploaded(int(evt.GetPayloadInt(event.KeySizeBytes)))
	case event.TypeClaimAdjudicated:
		if verdict, ok := evt.Verdict(); ok {
			m.RecordVerdict(verdict)
		}
	}
	return nil
}
