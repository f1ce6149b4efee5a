// Package metrics exposes lamp counters in the Prometheus text format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the lamp collectors on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	publishes prometheus.Counter
	version   prometheus.Gauge
	commands  *prometheus.CounterVec
	effects   *prometheus.CounterVec
	applies   prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		publishes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lamp_state_publishes_total",
			Help: "State snapshots published to the bus.",
		}),
		version: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lamp_state_version",
			Help: "Version of the last published state.",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lamp_commands_total",
			Help: "Commands handled by result code.",
		}, []string{"result"}),
		effects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lamp_effect_starts_total",
			Help: "Effect starts by effect name.",
		}, []string{"effect"}),
		applies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lamp_actuator_applies_total",
			Help: "Writes of a changed output tuple to the actuator.",
		}),
	}
	m.Registry.MustRegister(m.publishes, m.version, m.commands, m.effects, m.applies)
	return m
}

func (m *Metrics) StatePublished(version uint64) {
	if m == nil {
		return
	}
	m.publishes.Inc()
	m.version.Set(float64(version))
}

// Command counts one handled command; result is an error code string.
func (m *Metrics) Command(result string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(result).Inc()
}

func (m *Metrics) EffectStarted(effect string) {
	if m == nil {
		return
	}
	m.effects.WithLabelValues(effect).Inc()
}

func (m *Metrics) ActuatorApplied() {
	if m == nil {
		return
	}
	m.applies.Inc()
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, log hclog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shut, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shut)
	}()

	log.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
