package eventbus

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector отдаёт статистику шины в Prometheus в момент сбора.
// Регистрируется в реестре metrics.Recorder.
type Collector struct {
	bus EventBus

	published *prometheus.Desc
	consumed  *prometheus.Desc
	dropped   *prometheus.Desc
	inflight  *prometheus.Desc
}

// NewCollector создаёт коллектор для шины
func NewCollector(bus EventBus) *Collector {
	return &Collector{
		bus:       bus,
		published: prometheus.NewDesc("tileworld_eventbus_messages_published_total", "Общее число опубликованных сообщений.", nil, nil),
		consumed:  prometheus.NewDesc("tileworld_eventbus_messages_consumed_total", "Общее число доставленных сообщений подписчикам.", nil, nil),
		dropped:   prometheus.NewDesc("tileworld_eventbus_messages_dropped_total", "Сообщений, отброшенных из-за ошибок или back-pressure.", nil, nil),
		inflight:  prometheus.NewDesc("tileworld_eventbus_messages_inflight", "Сообщений в очереди, ещё не доставленных.", nil, nil),
	}
}

// Describe реализует prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.published
	ch <- c.consumed
	ch <- c.dropped
	ch <- c.inflight
}

// Collect реализует prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.bus.Metrics()
	ch <- prometheus.MustNewConstMetric(c.published, prometheus.CounterValue, float64(s.Published))
	ch <- prometheus.MustNewConstMetric(c.consumed, prometheus.CounterValue, float64(s.Consumed))
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(s.Dropped))
	ch <- prometheus.MustNewConstMetric(c.inflight, prometheus.GaugeValue, float64(s.InFlight))
}
