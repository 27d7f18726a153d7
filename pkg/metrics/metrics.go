package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Métricas de dominio del servicio de fichajes.
type Metrics struct {
	ClockEventsTotal        metric.Int64Counter
	RemindersScheduledTotal metric.Int64Counter
	RemindersCancelledTotal metric.Int64Counter
	AnomaliesCorrectedTotal metric.Int64Counter
	EmailsSentTotal         metric.Int64Counter
	ReportsExportedTotal    metric.Int64Counter
}

var (
	m     *Metrics
	meter = otel.Meter("fichaje")
)

func Init() error {
	var err error
	m = &Metrics{}

	if m.ClockEventsTotal, err = meter.Int64Counter(
		"clock_events_total",
		metric.WithDescription("Clock-in and clock-out events recorded"),
		metric.WithUnit("{event}"),
	); err != nil {
		return err
	}

	if m.RemindersScheduledTotal, err = meter.Int64Counter(
		"reminders_scheduled_total",
		metric.WithDescription("Clock-out reminders scheduled"),
		metric.WithUnit("{reminder}"),
	); err != nil {
		return err
	}

	if m.RemindersCancelledTotal, err = meter.Int64Counter(
		"reminders_cancelled_total",
		metric.WithDescription("Clock-out reminders cancelled"),
		metric.WithUnit("{reminder}"),
	); err != nil {
		return err
	}

	if m.AnomaliesCorrectedTotal, err = meter.Int64Counter(
		"forgotten_shifts_corrected_total",
		metric.WithDescription("Forgotten shifts auto-closed with a corrective clock-out"),
		metric.WithUnit("{shift}"),
	); err != nil {
		return err
	}

	if m.EmailsSentTotal, err = meter.Int64Counter(
		"missing_clockout_emails_total",
		metric.WithDescription("Missing clock-out reminder emails sent"),
		metric.WithUnit("{email}"),
	); err != nil {
		return err
	}

	if m.ReportsExportedTotal, err = meter.Int64Counter(
		"reports_exported_total",
		metric.WithDescription("CSV reports generated"),
		metric.WithUnit("{report}"),
	); err != nil {
		return err
	}

	return nil
}

// RecordClockEvent registra un fichaje (entrada/salida, user/auto_close).
func RecordClockEvent(ctx context.Context, entryType, source string) {
	if m == nil {
		return
	}
	m.ClockEventsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entry_type", entryType),
		attribute.String("source", source),
	))
}

func RecordReminderScheduled(ctx context.Context) {
	if m == nil {
		return
	}
	m.RemindersScheduledTotal.Add(ctx, 1)
}

func RecordReminderCancelled(ctx context.Context) {
	if m == nil {
		return
	}
	m.RemindersCancelledTotal.Add(ctx, 1)
}

func RecordAnomalyCorrected(ctx context.Context, severity string) {
	if m == nil {
		return
	}
	m.AnomaliesCorrectedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("severity", severity),
	))
}

func RecordEmailSent(ctx context.Context, ok bool) {
	if m == nil {
		return
	}
	m.EmailsSentTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("success", ok),
	))
}

func RecordReportExported(ctx context.Context) {
	if m == nil {
		return
	}
	m.ReportsExportedTotal.Add(ctx, 1)
}
