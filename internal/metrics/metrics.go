// Package metrics инкапсулирует Prometheus-метрики симуляции.
// Все методы Recorder допускают nil-получатель: без метрик мир работает так же.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/tile-world/internal/logging"
)

const namespace = "tileworld"

// Источники чанка
const (
	SourceGenerated = "generated"
	SourceLoaded    = "loaded"
)

// Recorder собирает метрики хранилища чанков, физики и поиска пути
type Recorder struct {
	registry *prometheus.Registry

	chunksResolved *prometheus.CounterVec
	chunksSaved    prometheus.Counter
	chunksEvicted  prometheus.Counter
	chunkErrors    *prometheus.CounterVec
	resident       prometheus.Gauge
	entities       prometheus.Gauge
	physicsSteps   prometheus.Counter
	stepDuration   prometheus.Histogram
	pathRecomputes prometheus.Counter
	pathFallbacks  prometheus.Counter
	processRSS     prometheus.Gauge
	processCPU     prometheus.Gauge

	startTime time.Time
}

// NewRecorder создаёт метрики в собственном реестре
func NewRecorder() *Recorder {
	r := &Recorder{
		registry:  prometheus.NewRegistry(),
		startTime: time.Now(),
		chunksResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_resolved_total",
			Help:      "Чанки, ставшие резидентными, по источнику (generated, loaded).",
		}, []string{"source"}),
		chunksSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_saved_total",
			Help:      "Чанки, успешно записанные в хранилище.",
		}),
		chunksEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_evicted_total",
			Help:      "Чанки, выгруженные из памяти вне окна удержания.",
		}),
		chunkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunk_io_errors_total",
			Help:      "Ошибки чтения и записи чанков (операция считается несостоявшейся).",
		}, []string{"op"}),
		resident: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chunks_resident",
			Help:      "Количество чанков в памяти.",
		}),
		entities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entities",
			Help:      "Количество живых сущностей.",
		}),
		physicsSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "physics_steps_total",
			Help:      "Выполненные шаги физики мира.",
		}),
		stepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "update_duration_seconds",
			Help:      "Длительность одного обновления мира (стриминг, физика, пути).",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		pathRecomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "path_recomputes_total",
			Help:      "Запуски A*.",
		}),
		pathFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "path_fallbacks_total",
			Help:      "Поиски, завершившиеся прямым запасным путём.",
		}),
		processRSS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_rss_bytes",
			Help:      "Резидентная память процесса.",
		}),
		processCPU: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_cpu_percent",
			Help:      "Загрузка CPU процессом.",
		}),
	}

	r.registry.MustRegister(
		r.chunksResolved, r.chunksSaved, r.chunksEvicted, r.chunkErrors,
		r.resident, r.entities, r.physicsSteps, r.stepDuration,
		r.pathRecomputes, r.pathFallbacks, r.processRSS, r.processCPU,
	)
	return r
}

// Registry возвращает реестр для экспорта
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ChunkResolved учитывает чанк, ставший резидентным
func (r *Recorder) ChunkResolved(source string) {
	if r == nil {
		return
	}
	r.chunksResolved.WithLabelValues(source).Inc()
}

// ChunkSaved учитывает записанный чанк
func (r *Recorder) ChunkSaved() {
	if r == nil {
		return
	}
	r.chunksSaved.Inc()
}

// ChunkEvicted учитывает выгруженный чанк
func (r *Recorder) ChunkEvicted() {
	if r == nil {
		return
	}
	r.chunksEvicted.Inc()
}

// ChunkError учитывает ошибку операции op (load, save)
func (r *Recorder) ChunkError(op string) {
	if r == nil {
		return
	}
	r.chunkErrors.WithLabelValues(op).Inc()
}

// SetResident задаёт число резидентных чанков
func (r *Recorder) SetResident(n int) {
	if r == nil {
		return
	}
	r.resident.Set(float64(n))
}

// SetEntities задаёт число сущностей
func (r *Recorder) SetEntities(n int) {
	if r == nil {
		return
	}
	r.entities.Set(float64(n))
}

// PhysicsStep учитывает шаг физики
func (r *Recorder) PhysicsStep() {
	if r == nil {
		return
	}
	r.physicsSteps.Inc()
}

// ObserveUpdate записывает длительность обновления
func (r *Recorder) ObserveUpdate(d time.Duration) {
	if r == nil {
		return
	}
	r.stepDuration.Observe(d.Seconds())
}

// PathSearches учитывает запуски A* и запасные пути
func (r *Recorder) PathSearches(recomputes, fallbacks int) {
	if r == nil {
		return
	}
	r.pathRecomputes.Add(float64(recomputes))
	r.pathFallbacks.Add(float64(fallbacks))
}

// Exporter обслуживает HTTP-эндпоинт /metrics
type Exporter struct {
	server *http.Server
}

// StartHTTP запускает HTTP-эндпоинт Prometheus на указанном адресе (например, ":2112").
// Метод неблокирующий: HTTP-сервер стартует в отдельной горутине.
func (r *Recorder) StartHTTP(addr string) *Exporter {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	return &Exporter{server: srv}
}

// Stop останавливает HTTP-сервер
func (e *Exporter) Stop(ctx context.Context) error {
	if e == nil {
		return nil
	}
	return e.server.Shutdown(ctx)
}
