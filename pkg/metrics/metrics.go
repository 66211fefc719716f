// Package metrics 提供 Prometheus helper，包含桥接服务的业务指标
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/mt5bridge/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal prometheus.Counter
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 已接受订单计数
	OrdersAccepted prometheus.Counter
	// 被拒绝订单计数（所有成交模式均被拒）
	OrdersRejected prometheus.Counter
	// 单次提交尝试计数（按成交模式）
	OrderAttempts *prometheus.CounterVec
	// 已平仓计数
	PositionsClosed prometheus.Counter
	// 订单执行耗时
	OrderDuration prometheus.Histogram

	// 终端连接状态（1 已连接 / 0 断开）
	TerminalConnected prometheus.Gauge
	// 终端探测失败计数
	TerminalProbeFailures prometheus.Counter

	// 行情查询计数
	QuoteRequestsTotal prometheus.Counter
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bridge",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bridge",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		OrdersAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bridge",
			Subsystem: serviceName,
			Name:      "orders_accepted_total",
			Help:      "Orders accepted by the venue",
		}),
		OrdersRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bridge",
			Subsystem: serviceName,
			Name:      "orders_rejected_total",
			Help:      "Orders rejected after exhausting all filling modes",
		}),
		OrderAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bridge",
			Subsystem: serviceName,
			Name:      "order_attempts_total",
			Help:      "Order submission attempts by filling mode and outcome",
		}, []string{"filling_mode", "outcome"}),
		PositionsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bridge",
			Subsystem: serviceName,
			Name:      "positions_closed_total",
			Help:      "Positions closed through the bridge",
		}),
		OrderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bridge",
			Subsystem: serviceName,
			Name:      "order_duration_seconds",
			Help:      "Order execution duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		TerminalConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bridge",
			Subsystem: serviceName,
			Name:      "terminal_connected",
			Help:      "Terminal session connectivity (1 connected, 0 disconnected)",
		}),
		TerminalProbeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bridge",
			Subsystem: serviceName,
			Name:      "terminal_probe_failures_total",
			Help:      "Failed terminal connectivity probes",
		}),

		QuoteRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bridge",
			Subsystem: serviceName,
			Name:      "quote_requests_total",
			Help:      "Quote lookups served",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.OrdersAccepted,
		m.OrdersRejected,
		m.OrderAttempts,
		m.PositionsClosed,
		m.OrderDuration,
		m.TerminalConnected,
		m.TerminalProbeFailures,
		m.QuoteRequestsTotal,
	}

	for _, c := range collectors {
		if err := prometheus.DefaultRegisterer.Register(c); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	logger.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// StartHTTPServer 启动 Prometheus HTTP 服务器
func StartHTTPServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	http.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "Starting Prometheus HTTP server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Error(context.Background(), "Failed to start Prometheus HTTP server", "error", err)
		}
	}()

	return nil
}
