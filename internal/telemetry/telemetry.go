// Package telemetry exposes the run's business metrics through an
// OpenTelemetry meter backed by a Prometheus exporter. The instruments are
// deliberately low-cardinality: outcome and phase labels come from fixed
// sets, never from file names.
package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Telemetry holds the meter provider and instruments.
type Telemetry struct {
	meterProvider metric.MeterProvider
	meter         metric.Meter
	exporter      *prometheus.Exporter

	uploadsTotal     metric.Int64Counter
	downloadsTotal   metric.Int64Counter
	batchesTotal     metric.Int64Counter
	tabSwitchesTotal metric.Int64Counter
}

// New creates a new telemetry instance.
func New(serviceName string) (*Telemetry, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	otel.SetMeterProvider(meterProvider)

	t := &Telemetry{
		meterProvider: meterProvider,
		meter:         otel.Meter(serviceName),
		exporter:      exporter,
	}

	if err := t.initializeMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return t, nil
}

func (t *Telemetry) initializeMetrics() error {
	var err error

	if t.uploadsTotal, err = t.meter.Int64Counter(
		"restyler_uploads_total",
		metric.WithDescription("Upload sequences submitted"),
	); err != nil {
		return err
	}

	if t.downloadsTotal, err = t.meter.Int64Counter(
		"restyler_downloads_total",
		metric.WithDescription("Download verifications by outcome"),
	); err != nil {
		return err
	}

	if t.batchesTotal, err = t.meter.Int64Counter(
		"restyler_batches_total",
		metric.WithDescription("Batches driven to the Done state"),
	); err != nil {
		return err
	}

	if t.tabSwitchesTotal, err = t.meter.Int64Counter(
		"restyler_tab_switches_total",
		metric.WithDescription("Focus changes made by the rotation scheduler"),
	); err != nil {
		return err
	}

	return nil
}

// RecordUpload counts one submitted upload sequence.
func (t *Telemetry) RecordUpload(ctx context.Context) {
	if t == nil || t.uploadsTotal == nil {
		return
	}

	t.uploadsTotal.Add(ctx, 1)
}

// RecordDownload counts one verified download by outcome.
func (t *Telemetry) RecordDownload(ctx context.Context, outcome string) {
	if t == nil || t.downloadsTotal == nil {
		return
	}

	t.downloadsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordBatch counts one finished batch.
func (t *Telemetry) RecordBatch(ctx context.Context) {
	if t == nil || t.batchesTotal == nil {
		return
	}

	t.batchesTotal.Add(ctx, 1)
}

// RecordTabSwitch counts one rotation focus change.
func (t *Telemetry) RecordTabSwitch(ctx context.Context) {
	if t == nil || t.tabSwitchesTotal == nil {
		return
	}

	t.tabSwitchesTotal.Add(ctx, 1)
}

// PrometheusHandler returns the scrape endpoint handler.
func (t *Telemetry) PrometheusHandler() http.Handler {
	return promhttp.Handler()
}
