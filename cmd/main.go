package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"climate_control/internal/cache"
	"climate_control/internal/config"
	"climate_control/internal/handlers"
	"climate_control/internal/link"
	"climate_control/internal/link/mqttlink"
	"climate_control/internal/link/simlink"
	"climate_control/internal/logger"
	"climate_control/internal/repository"
	"climate_control/internal/repository/db"
	"climate_control/internal/server"
	"climate_control/internal/service"
	"climate_control/internal/tsdb"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// load configs/config.yml (+ CLIMATE_* env)
	cfg, cfgErr := config.Load("configs")

	// init logger
	log := logger.Get(cfg.Log.Level)
	if cfgErr != nil {
		log.Fatalw("error reading config", "err", cfgErr)
	}

	// open DB
	sqlDB, err := openDB(cfg.DB, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// device link
	dev, closeLink, err := openLink(ctx, cfg.Link, log)
	if err != nil {
		log.Fatalw("failed to open device link", "driver", cfg.Link.Driver, "err", err)
	}
	defer closeLink()

	// optional telemetry sink
	var recorders []service.StatusRecorder
	if w, err := openTelemetry(cfg.InfluxDB, log); err == nil {
		recorders = append(recorders, w)
		defer w.Close()
	}

	// wire dependencies
	services := service.NewService(service.Deps{
		Repos:     repository.NewRepository(sqlDB),
		Link:      dev,
		Cache:     cache.NewStatusCache(),
		Recorders: recorders,
		Auth:      service.AuthConfig{SigningKey: cfg.Auth.SigningKey, TokenTTL: cfg.Auth.TokenTTL},
		Log:       log,
	})
	apiHandler := handlers.NewHandler(services, log)

	// attach to the configured adapter; the API can switch later
	if info, err := services.Activate(ctx, cfg.Session.Adapter); err != nil {
		log.Warnw("session not activated at startup", "adapter", cfg.Session.Adapter, "err", err)
	} else {
		log.Infow("session activated", "adapter", info.Adapter, "state", info.State)
	}

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, services, log)
}

// openDB initializes the SQLite database using configuration.
func openDB(cfg config.DB, log *logger.Logger) (*sql.DB, error) {
	dbPath := cfg.Path
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "app.db")
		dbPath = "app.db"
	}
	return db.InitDB(dbPath)
}

// openLink builds the configured device link and starts what it needs in the background.
func openLink(ctx context.Context, cfg config.Link, log *logger.Logger) (link.Link, func(), error) {
	switch cfg.Driver {
	case config.DriverMQTT:
		var active atomic.Pointer[mqttlink.Link]
		broker, err := mqttlink.Dial(mqttlink.BrokerConfig{
			Host:     cfg.MQTT.Host,
			Port:     cfg.MQTT.Port,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
			QoS:      byte(cfg.MQTT.QoS),
		}, mqttlink.ConnectionHooks{
			OnConnect: func() {
				if l := active.Load(); l != nil {
					l.Reconnected()
				}
			},
			OnLost: func(err error) {
				if l := active.Load(); l != nil {
					l.ConnectionLost(err)
				}
			},
		})
		if err != nil {
			return nil, nil, err
		}
		l := mqttlink.New(broker, mqttlink.Options{
			Prefix:         cfg.MQTT.Prefix,
			AckTimeout:     cfg.MQTT.AckTimeout,
			RequestTimeout: cfg.MQTT.RequestTimeout,
		}, log.Named("mqtt"))
		active.Store(l)
		if err := l.Start(); err != nil {
			broker.Close()
			return nil, nil, err
		}
		log.Infow("mqtt link started", "host", cfg.MQTT.Host, "port", cfg.MQTT.Port, "prefix", cfg.MQTT.Prefix)
		return l, func() {
			l.Close()
			broker.Close()
		}, nil
	default:
		sim := simlink.NewSimulator(cfg.Sim.Adapters, cfg.Sim.Devices)
		go sim.Run(ctx, cfg.Sim.Tick)
		log.Infow("simulated link started", "adapters", cfg.Sim.Adapters, "devices", cfg.Sim.Devices, "tick", cfg.Sim.Tick)
		return sim, sim.Drop, nil
	}
}

// openTelemetry connects the InfluxDB writer when enabled.
func openTelemetry(cfg config.InfluxDB, log *logger.Logger) (*tsdb.Writer, error) {
	w, err := tsdb.Connect(tsdb.Config{
		Enabled:       cfg.Enabled,
		URL:           cfg.URL,
		Token:         cfg.Token,
		Org:           cfg.Org,
		Bucket:        cfg.Bucket,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
	}, log.Named("influxdb"))
	switch {
	case errors.Is(err, tsdb.ErrDisabled):
		log.Infow("influxdb telemetry disabled")
	case err != nil:
		log.Warnw("influxdb telemetry unavailable; continuing without it", "url", cfg.URL, "err", err)
	}
	return w, err
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, services *service.Service, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}

	// release the status stream, then stop background goroutines
	if err := services.Deactivate(ctx); err != nil {
		log.Warnw("session deactivate failed", "err", err)
	}
	cancel()
}
