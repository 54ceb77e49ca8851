package metrics

import (
	"sync"

	"github.com/krancour/dqueue/pkg/consumer"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "dqueue"

// Metrics is a consumer.Observer that exposes consumer progress as
// Prometheus metrics.
type Metrics struct {
	itemsConsumed     *prometheus.CounterVec // by queue
	sentinelsRepushed *prometheus.CounterVec // by queue
	consumerFailures  *prometheus.CounterVec // by queue
	consumers         *prometheus.GaugeVec   // by queue, state

	mu sync.Mutex
	// states tracks each known consumer's last reported state so that the
	// consumers gauge can be moved from one state to the next.
	states map[string]consumer.State
}

// New creates a new Metrics instance and registers all metrics with the
// provided registerer. Returns an error if any metric registration fails.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		itemsConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "items_consumed_total",
			Help:      "Total real items consumed, by queue",
		}, []string{"queue"}),
		sentinelsRepushed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "sentinels_repushed_total",
			Help:      "Total times a consumer re-pushed the sentinel, by queue",
		}, []string{"queue"}),
		consumerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "consumer_failures_total",
			Help:      "Total consumers that stopped without observing the sentinel",
		}, []string{"queue"}),
		consumers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "consumers",
			Help:      "Number of consumers in each state, by queue",
		}, []string{"queue", "state"}),
		states: map[string]consumer.State{},
	}
	for _, collector := range []prometheus.Collector{
		m.itemsConsumed,
		m.sentinelsRepushed,
		m.consumerFailures,
		m.consumers,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ConsumerStarted implements consumer.Observer.
func (m *Metrics) ConsumerStarted(consumerID, queueName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[consumerID] = consumer.StateIdle
	m.consumers.WithLabelValues(queueName, string(consumer.StateIdle)).Inc()
}

// ItemConsumed implements consumer.Observer.
func (m *Metrics) ItemConsumed(_, queueName string, _ int) {
	m.itemsConsumed.WithLabelValues(queueName).Inc()
}

// StateChanged implements consumer.Observer.
func (m *Metrics) StateChanged(
	consumerID string,
	queueName string,
	state consumer.State,
) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if previous, ok := m.states[consumerID]; ok {
		m.consumers.WithLabelValues(queueName, string(previous)).Dec()
	}
	m.states[consumerID] = state
	m.consumers.WithLabelValues(queueName, string(state)).Inc()
	if state == consumer.StateDone {
		m.sentinelsRepushed.WithLabelValues(queueName).Inc()
	}
}

// ConsumerStopped implements consumer.Observer.
func (m *Metrics) ConsumerStopped(consumerID, queueName string, err error) {
	if err != nil {
		m.consumerFailures.WithLabelValues(queueName).Inc()
	}
	// The gauge already counts the consumer in its terminal state
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, consumerID)
}
