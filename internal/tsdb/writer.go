// Package tsdb exports received device status to InfluxDB.
package tsdb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"climate_control/internal/logger"
	"climate_control/internal/models"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultBatchSize      = 100
	defaultFlushInterval  = 10 * time.Second

	measurementStatus = "device_status"
)

var (
	ErrDisabled         = errors.New("influxdb: disabled in configuration")
	ErrConnectionFailed = errors.New("influxdb: connection failed")
)

// Config selects the InfluxDB server and write batching.
type Config struct {
	Enabled       bool
	URL           string
	Token         string
	Org           string
	Bucket        string
	BatchSize     int
	FlushInterval time.Duration
}

// Writer batches status points through the non-blocking write API.
type Writer struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	log      *logger.Logger

	mu     sync.RWMutex
	closed bool
}

// Connect pings the server and opens a write API for the configured bucket.
func Connect(cfg Config, log *logger.Logger) (*Writer, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	if log == nil {
		log = logger.Nop()
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	flush := cfg.FlushInterval
	if flush <= 0 {
		flush = defaultFlushInterval
	}

	client := influxdb2.NewClientWithOptions(
		cfg.URL,
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(uint(batch)).
			SetFlushInterval(uint(flush.Milliseconds())),
	)

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()
	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	w := &Writer{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
		log:      log,
	}
	go w.drainErrors(w.writeAPI.Errors())
	return w, nil
}

func (w *Writer) drainErrors(errs <-chan error) {
	for err := range errs {
		w.log.Warnw("influx_write_failed", "err", err)
	}
}

// Record queues one point for rec. Delivery is asynchronous; failures surface in the log.
func (w *Writer) Record(ctx context.Context, rec models.StatusRecord) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return nil
	}
	w.writeAPI.WritePoint(statusPoint(rec))
	return nil
}

// Close flushes pending points and releases the client.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()
	w.writeAPI.Flush()
	w.client.Close()
}

// statusPoint maps a status snapshot to a line-protocol point. Temperatures stay in °C.
func statusPoint(rec models.StatusRecord) *write.Point {
	st := rec.Status
	return write.NewPoint(
		measurementStatus,
		map[string]string{
			"adapter":   rec.Adapter,
			"device_id": rec.DeviceID,
			"mode":      st.OperatingMode.String(),
		},
		map[string]interface{}{
			"actual_temp_c":  st.ActualTemp,
			"target_temp_c":  st.TargetTemp,
			"ambient_temp_c": st.AmbientTemp,
			"fan_percent":    int64(st.FanStep),
			"remaining_s":    int64(st.RemainingDuration.Secs),
			"shutdown_code":  st.ShutdownCode.String(),
		},
		rec.ReceivedAt,
	)
}
