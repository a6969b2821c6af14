// SPDX-License-Identifier: MIT

package kernels

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("github.com/katalvlaran/ptens/kernels")

var (
	launchTotal    metric.Int64Counter
	launchDuration metric.Float64Histogram
	itemsTotal     metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments against the global meter provider.
// Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		launchTotal, err = meter.Int64Counter(
			"ptens_kernel_launches_total",
			metric.WithDescription("Number of reduce/broadcast kernel launches"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		launchDuration, err = meter.Float64Histogram(
			"ptens_kernel_duration_seconds",
			metric.WithDescription("Execution time of reduce/broadcast kernels"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		itemsTotal, err = meter.Int64Counter(
			"ptens_kernel_items_total",
			metric.WithDescription("Items processed by reduce/broadcast kernels"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})

	return metricsErr
}

// recordLaunch records one finished kernel.
func recordLaunch(ctx context.Context, backend, op string, items int, d time.Duration) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("op", op),
	)
	launchTotal.Add(ctx, 1, attrs)
	launchDuration.Record(ctx, d.Seconds(), attrs)
	itemsTotal.Add(ctx, int64(items), attrs)
}
