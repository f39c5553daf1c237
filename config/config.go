package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/skyfare/layby/internal/layby"
)

type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Booking     BookingConfig     `yaml:"booking"`
	PaymentPlan PaymentPlanConfig `yaml:"payment_plan"`
	Worker      WorkerConfig      `yaml:"worker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	HoldTTLMinutes  int `yaml:"hold_ttl_minutes"`
	FlightsCacheTTL int `yaml:"flights_cache_ttl_seconds"`
	ConfirmationTTL int `yaml:"confirmation_ttl_minutes"`
}

// PaymentPlanConfig tunes the lay-by calculator. Zero values fall back to the
// calculator defaults so a config file may omit the section entirely.
type PaymentPlanConfig struct {
	AdminFeeRate           float64 `yaml:"admin_fee_rate"`
	LayByFeeRate           float64 `yaml:"lay_by_fee_rate"`
	DepositPercentage      float64 `yaml:"deposit_percentage"`
	MinimumAdvanceDays     int     `yaml:"minimum_advance_days"`
	MaxInstallmentWeeks    int     `yaml:"max_installment_weeks"`
	MinGapBeforeTravelDays int     `yaml:"min_gap_before_travel_days"`
}

// LayByConfig converts the yaml section into the calculator's config,
// defaulting any unset threshold.
func (p PaymentPlanConfig) LayByConfig() layby.Config {
	cfg := layby.DefaultConfig()
	if p.AdminFeeRate > 0 {
		cfg.AdminFeeRate = decimal.NewFromFloat(p.AdminFeeRate)
	}
	if p.LayByFeeRate > 0 {
		cfg.LayByFeeRate = decimal.NewFromFloat(p.LayByFeeRate)
	}
	if p.DepositPercentage > 0 {
		cfg.DepositPercentage = decimal.NewFromFloat(p.DepositPercentage)
	}
	if p.MinimumAdvanceDays > 0 {
		cfg.MinimumAdvanceDays = p.MinimumAdvanceDays
	}
	if p.MaxInstallmentWeeks > 0 {
		cfg.MaxInstallmentWeeks = p.MaxInstallmentWeeks
	}
	if p.MinGapBeforeTravelDays > 0 {
		cfg.MinGapBeforeTravelDays = p.MinGapBeforeTravelDays
	}
	return cfg
}

type WorkerConfig struct {
	ExpirationSweepMinutes int `yaml:"expiration_sweep_minutes"`
	ReminderSweepMinutes   int `yaml:"reminder_sweep_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
