package service

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("github.com/inkwell/internal/service")

// 全局 MeterProvider 未配置时这些计数器是 no-op。
var (
	viewCounter, _   = meter.Int64Counter("inkwell.post.views", metric.WithDescription("Tracked post views"))
	ratingCounter, _ = meter.Int64Counter("inkwell.rating.submissions", metric.WithDescription("Accepted rating submissions"))
)
