// Package config loads process configuration from defaults, an optional
// config file named by FACTORING_CONFIG and the environment, in increasing
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Ban68/LePret-sub001/internal/domain/service"
)

// ConfigFileEnv names the optional config file.
const ConfigFileEnv = "FACTORING_CONFIG"

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type KafkaConfig struct {
	Brokers          []string
	EventsTopic      string
	DelinquencyTopic string
	ConsumerGroup    string
	ClientID         string
	TLS              bool
	SASLEnabled      bool
	SASLMechanism    string
	SASLUsername     string
	SASLPassword     string
}

// Enabled reports whether a broker is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type LogConfig struct {
	Level  string
	Format string
}

type JWTConfig struct {
	Secret       string
	PublicKeyPEM string
	Issuer       string
	Expiration   time.Duration
}

// GRPCConfig holds optional transport settings of the gRPC server.
type GRPCConfig struct {
	TLSCertFile string
	TLSKeyFile  string
	Reflection  bool
}

// TLSEnabled reports whether both TLS files are configured.
func (g GRPCConfig) TLSEnabled() bool {
	return g.TLSCertFile != "" && g.TLSKeyFile != ""
}

type Config struct {
	GRPCPort      int
	HTTPPort      int
	GRPC          GRPCConfig
	StorageDriver string
	DB            DatabaseConfig
	Kafka         KafkaConfig
	Log           LogConfig
	JWT           JWTConfig
	// NotifyBuffer bounds the event dispatcher queue.
	NotifyBuffer int
	Offer        service.OfferPolicy
	ServiceName  string
}

func setDefaults(v *viper.Viper) {
	policy := service.DefaultOfferPolicy()

	v.SetDefault("grpc_port", 9090)
	v.SetDefault("http_port", 8080)
	v.SetDefault("grpc_tls_cert_file", "")
	v.SetDefault("grpc_tls_key_file", "")
	v.SetDefault("grpc_reflection", false)
	v.SetDefault("storage_driver", StoragePostgres)
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_user", "factoring")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "factoring")
	v.SetDefault("db_sslmode", "require")
	v.SetDefault("kafka_brokers", "")
	v.SetDefault("kafka_events_topic", "factoring.events")
	v.SetDefault("kafka_delinquency_topic", "factoring.delinquency")
	v.SetDefault("kafka_consumer_group", "factoring-engine")
	v.SetDefault("kafka_client_id", "factoring-engine")
	v.SetDefault("kafka_tls", false)
	v.SetDefault("kafka_sasl_enabled", false)
	v.SetDefault("kafka_sasl_mechanism", "PLAIN")
	v.SetDefault("kafka_sasl_username", "")
	v.SetDefault("kafka_sasl_password", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_public_key", "")
	v.SetDefault("jwt_issuer", "factoring")
	v.SetDefault("jwt_expiration", "1h")
	v.SetDefault("notify_buffer", 256)
	v.SetDefault("offer_processing_fee_rate", policy.ProcessingFeeRate.String())
	v.SetDefault("offer_min_processing_fee", policy.MinProcessingFee.String())
	v.SetDefault("offer_max_processing_fee", policy.MaxProcessingFee.String())
	v.SetDefault("offer_wire_fee", policy.WireFee.String())
	v.SetDefault("offer_valid_days", policy.ValidForDays)
	v.SetDefault("offer_default_annual_rate", policy.DefaultAnnualRate.String())
	v.SetDefault("offer_default_advance_pct", policy.DefaultAdvancePct.String())
}

// Load reads the configuration. Environment keys are the upper-case form of
// the config file keys, e.g. DB_HOST for db_host.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	offer, err := offerPolicy(v)
	if err != nil {
		return Config{}, err
	}

	return Config{
		GRPCPort: v.GetInt("grpc_port"),
		HTTPPort: v.GetInt("http_port"),
		GRPC: GRPCConfig{
			TLSCertFile: v.GetString("grpc_tls_cert_file"),
			TLSKeyFile:  v.GetString("grpc_tls_key_file"),
			Reflection:  v.GetBool("grpc_reflection"),
		},
		StorageDriver: strings.ToLower(v.GetString("storage_driver")),
		DB: DatabaseConfig{
			Host:     v.GetString("db_host"),
			Port:     v.GetInt("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			Name:     v.GetString("db_name"),
			SSLMode:  v.GetString("db_sslmode"),
		},
		Kafka: KafkaConfig{
			Brokers:          splitList(v.GetString("kafka_brokers")),
			EventsTopic:      v.GetString("kafka_events_topic"),
			DelinquencyTopic: v.GetString("kafka_delinquency_topic"),
			ConsumerGroup:    v.GetString("kafka_consumer_group"),
			ClientID:         v.GetString("kafka_client_id"),
			TLS:              v.GetBool("kafka_tls"),
			SASLEnabled:      v.GetBool("kafka_sasl_enabled"),
			SASLMechanism:    v.GetString("kafka_sasl_mechanism"),
			SASLUsername:     v.GetString("kafka_sasl_username"),
			SASLPassword:     v.GetString("kafka_sasl_password"),
		},
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
		JWT: JWTConfig{
			Secret:       v.GetString("jwt_secret"),
			PublicKeyPEM: v.GetString("jwt_public_key"),
			Issuer:       v.GetString("jwt_issuer"),
			Expiration:   v.GetDuration("jwt_expiration"),
		},
		NotifyBuffer: v.GetInt("notify_buffer"),
		Offer:        offer,
		ServiceName:  "factoring-engine",
	}, nil
}

func offerPolicy(v *viper.Viper) (service.OfferPolicy, error) {
	p := service.OfferPolicy{ValidForDays: v.GetInt("offer_valid_days")}
	fields := []struct {
		key string
		dst *decimal.Decimal
	}{
		{"offer_processing_fee_rate", &p.ProcessingFeeRate},
		{"offer_min_processing_fee", &p.MinProcessingFee},
		{"offer_max_processing_fee", &p.MaxProcessingFee},
		{"offer_wire_fee", &p.WireFee},
		{"offer_default_annual_rate", &p.DefaultAnnualRate},
		{"offer_default_advance_pct", &p.DefaultAdvancePct},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(v.GetString(f.key))
		if err != nil {
			return service.OfferPolicy{}, fmt.Errorf("%s: %w", strings.ToUpper(f.key), err)
		}
		*f.dst = d
	}
	return p, nil
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var errs []error
	switch c.StorageDriver {
	case StoragePostgres:
		if c.DB.Password == "" {
			errs = append(errs, errors.New("DB_PASSWORD is required for the postgres storage driver"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StoragePostgres, StorageMemory, c.StorageDriver))
	}
	if (c.GRPC.TLSCertFile == "") != (c.GRPC.TLSKeyFile == "") {
		errs = append(errs, errors.New("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together"))
	}
	if c.NotifyBuffer <= 0 {
		errs = append(errs, errors.New("NOTIFY_BUFFER must be > 0"))
	}
	if err := c.Offer.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("offer policy: %w", err))
	}
	return errors.Join(errs...)
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
