package prom

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nimasrn/banking-ledger/pkg/logger"
)

const (
	SystemLedger = "ledger"
)

const (
	// MetricOperations counts dashboard and registration operations,
	// labeled by operation and outcome.
	MetricOperations = "operations_total"
	// MetricTransactionAmount observes credited/debited amounts by type.
	MetricTransactionAmount = "transaction_amount"
)

var lockCreateMetricLock = &sync.Mutex{}
var namespace = "none"

var MetricSystemEnabled = false

var MetricCollectionCounterVec = make(map[string]*prometheus.CounterVec)
var MetricCollectionHistogramVec = make(map[string]*prometheus.HistogramVec)

var defaultLabels prometheus.Labels

func Create(host string, env string, nameSpace string) error {
	defaultLabels = make(prometheus.Labels)
	defaultLabels["env"] = env
	defaultLabels["instance"] = host
	namespace = nameSpace
	MetricSystemEnabled = true

	var err error
	hasError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	hasError(createCounterVec(SystemLedger, MetricOperations, []string{"operation", "outcome"}))
	hasError(createHistogramVec(SystemLedger, MetricTransactionAmount, []string{"type"}))

	return err
}

// ListenAndServe exposes /metrics style debug endpoint on addr. Blocking.
func ListenAndServe(addr string, url string) {
	mux := http.NewServeMux()
	mux.Handle(url, promhttp.Handler())
	logger.Info("[metrics-server] listening...", "addr", addr, "url", url)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Panic("[metrics-server] http listen error", "error", err)
	}
}

// IncOperation bumps the operation counter. No-op when the metric system
// was never enabled, so callers need no guards.
func IncOperation(operation string, outcome string) {
	if !MetricSystemEnabled {
		return
	}
	if c, ok := MetricCollectionCounterVec[SystemLedger+MetricOperations]; ok {
		c.WithLabelValues(operation, outcome).Inc()
	}
}

// ObserveAmount records a transaction amount by type ("credit"/"debit").
func ObserveAmount(txType string, amount float64) {
	if !MetricSystemEnabled {
		return
	}
	if h, ok := MetricCollectionHistogramVec[SystemLedger+MetricTransactionAmount]; ok {
		h.WithLabelValues(txType).Observe(amount)
	}
}

func createCounterVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionCounterVec[subsystem+name] = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(MetricCollectionCounterVec[subsystem+name])
}

func createHistogramVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionHistogramVec[subsystem+name] = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(MetricCollectionHistogramVec[subsystem+name])
}
