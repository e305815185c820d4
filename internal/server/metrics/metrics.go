// Package metrics exposes lobby server counters and gauges to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "netsession"

// 操作结果标签
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics 大厅服务器指标
type Metrics struct {
	Registry *prometheus.Registry

	Connections    prometheus.Gauge
	Messages       *prometheus.CounterVec
	SessionOps     *prometheus.CounterVec
	JoinResults    *prometheus.CounterVec
	ProcessCPU     prometheus.Gauge
	ProcessRSS     prometheus.Gauge
	RejectedByRate prometheus.Counter
}

// New 创建并注册指标；每个服务器实例使用独立的 Registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Currently connected lobby clients.",
		}),
		Messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Messages received, by type.",
		}, []string{"type"}),
		SessionOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_operations_total",
			Help:      "Session operations handled, by operation and result.",
		}, []string{"op", "result"}),
		JoinResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "join_results_total",
			Help:      "Join attempts, by join result.",
		}, []string{"result"}),
		ProcessCPU: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_cpu_percent",
			Help:      "Lobby process CPU usage sampled by the monitor loop.",
		}),
		ProcessRSS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_rss_bytes",
			Help:      "Lobby process resident memory sampled by the monitor loop.",
		}),
		RejectedByRate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_rate_limited_total",
			Help:      "Messages rejected by the per-connection rate limiter.",
		}),
	}

	reg.MustRegister(
		m.Connections,
		m.Messages,
		m.SessionOps,
		m.JoinResults,
		m.ProcessCPU,
		m.ProcessRSS,
		m.RejectedByRate,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveOp 记录一次会话操作
func (m *Metrics) ObserveOp(op string, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.SessionOps.WithLabelValues(op, result).Inc()
}

// ObserveJoin 记录一次加入结果
func (m *Metrics) ObserveJoin(result string) {
	if m == nil {
		return
	}
	m.JoinResults.WithLabelValues(result).Inc()
}

// ObserveMessage 记录收到的消息
func (m *Metrics) ObserveMessage(msgType string) {
	if m == nil {
		return
	}
	m.Messages.WithLabelValues(msgType).Inc()
}
