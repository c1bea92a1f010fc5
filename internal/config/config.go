// Package config loads configs/config.yml with CLIMATE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "CLIMATE"

// Link drivers.
const (
	DriverSim  = "sim"
	DriverMQTT = "mqtt"
)

type Config struct {
	Port     string   `mapstructure:"port"`
	Log      Log      `mapstructure:"log"`
	DB       DB       `mapstructure:"db"`
	Auth     Auth     `mapstructure:"auth"`
	Link     Link     `mapstructure:"link"`
	Session  Session  `mapstructure:"session"`
	InfluxDB InfluxDB `mapstructure:"influxdb"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

type DB struct {
	Path string `mapstructure:"path"`
}

type Auth struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

type Link struct {
	Driver string `mapstructure:"driver"`
	MQTT   MQTT   `mapstructure:"mqtt"`
	Sim    Sim    `mapstructure:"sim"`
}

type MQTT struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ClientID       string        `mapstructure:"client_id"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	QoS            int           `mapstructure:"qos"`
	Prefix         string        `mapstructure:"prefix"`
	AckTimeout     time.Duration `mapstructure:"ack_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type Sim struct {
	Adapters []string      `mapstructure:"adapters"`
	Devices  []string      `mapstructure:"devices"`
	Tick     time.Duration `mapstructure:"tick"`
}

// Session picks the adapter activated at startup. Empty means the first one found.
type Session struct {
	Adapter string `mapstructure:"adapter"`
}

type InfluxDB struct {
	Enabled       bool          `mapstructure:"enabled"`
	URL           string        `mapstructure:"url"`
	Token         string        `mapstructure:"token"`
	Org           string        `mapstructure:"org"`
	Bucket        string        `mapstructure:"bucket"`
	BatchSize     int           `mapstructure:"batch_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

var (
	ErrUnknownDriver = errors.New("config: link.driver must be sim or mqtt")
	ErrNoSigningKey  = errors.New("config: auth.signing_key is required")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("db.path", "app.db")
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", 12*time.Hour)
	v.SetDefault("link.driver", DriverSim)
	v.SetDefault("link.mqtt.host", "127.0.0.1")
	v.SetDefault("link.mqtt.port", 1883)
	v.SetDefault("link.mqtt.client_id", "climate-control")
	v.SetDefault("link.mqtt.qos", 1)
	v.SetDefault("link.mqtt.prefix", "bedjet")
	v.SetDefault("link.mqtt.ack_timeout", 10*time.Second)
	v.SetDefault("link.mqtt.request_timeout", 5*time.Second)
	v.SetDefault("link.sim.adapters", []string{"hci0"})
	v.SetDefault("link.sim.devices", []string{"bedjet-1"})
	v.SetDefault("link.sim.tick", time.Second)
	v.SetDefault("influxdb.batch_size", 100)
	v.SetDefault("influxdb.flush_interval", 10*time.Second)
}

// Load reads config.yml from the given directories. A missing file is not an
// error; defaults and environment still apply.
func Load(paths ...string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Link.Driver {
	case DriverSim, DriverMQTT:
	default:
		return fmt.Errorf("%w, got %q", ErrUnknownDriver, c.Link.Driver)
	}
	if c.Auth.SigningKey == "" {
		return ErrNoSigningKey
	}
	return nil
}
