package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Redis    RedisConfig    `yaml:"redis"`
	Delivery DeliveryConfig `yaml:"delivery"`
	Timeouts TimeoutConfig  `yaml:"timeouts"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type RedisConfig struct {
	Addr            string `yaml:"addr"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	SalesExpireDays int    `yaml:"sales_expire_days"`
}

type DeliveryConfig struct {
	ShopAddress      string `yaml:"shop_address"`
	GeocodeEndpoint  string `yaml:"geocode_endpoint"`
	GeocodeKey       string `yaml:"geocode_key"`
	MaxDistanceMeter int    `yaml:"max_distance_meters"`
}

// TimeoutConfig holds the residency times of the four delay queues, in seconds.
// Stage 1 plus stage 2 add up to the total deadline of a pipeline.
type TimeoutConfig struct {
	PaymentStage1Sec  int `yaml:"payment_stage1_seconds"`
	PaymentStage2Sec  int `yaml:"payment_stage2_seconds"`
	DeliveryStage1Sec int `yaml:"delivery_stage1_seconds"`
	DeliveryStage2Sec int `yaml:"delivery_stage2_seconds"`
}

func (t TimeoutConfig) PaymentStage1() time.Duration {
	return time.Duration(t.PaymentStage1Sec) * time.Second
}

func (t TimeoutConfig) PaymentStage2() time.Duration {
	return time.Duration(t.PaymentStage2Sec) * time.Second
}

func (t TimeoutConfig) DeliveryStage1() time.Duration {
	return time.Duration(t.DeliveryStage1Sec) * time.Second
}

func (t TimeoutConfig) DeliveryStage2() time.Duration {
	return time.Duration(t.DeliveryStage2Sec) * time.Second
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Timeouts.PaymentStage1Sec == 0 {
		c.Timeouts.PaymentStage1Sec = 10
	}
	if c.Timeouts.PaymentStage2Sec == 0 {
		c.Timeouts.PaymentStage2Sec = 890 // 10s + 890s = 15 минут суммарно
	}
	if c.Timeouts.DeliveryStage1Sec == 0 {
		c.Timeouts.DeliveryStage1Sec = 3600
	}
	if c.Timeouts.DeliveryStage2Sec == 0 {
		c.Timeouts.DeliveryStage2Sec = 82800 // 60m + 23h = 24 часа суммарно
	}
	if c.Redis.SalesExpireDays == 0 {
		c.Redis.SalesExpireDays = 30
	}
	if c.Delivery.MaxDistanceMeter == 0 {
		c.Delivery.MaxDistanceMeter = 5000
	}
}
