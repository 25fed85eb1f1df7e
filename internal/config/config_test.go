package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db.local
  port: 5432
  user: app
  password: secret
  database: takeaway
rabbitmq:
  host: mq.local
  port: 5672
  user: app
  password: secret
redis:
  addr: cache.local:6379
timeouts:
  payment_stage1_seconds: 5
  payment_stage2_seconds: 25
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "db.local", cfg.Database.Host)
	assert.Equal(t, "mq.local", cfg.RabbitMQ.Host)
	assert.Equal(t, "cache.local:6379", cfg.Redis.Addr)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.PaymentStage1())
	assert.Equal(t, 25*time.Second, cfg.Timeouts.PaymentStage2())
}

// Незаданные тайминги получают значения по умолчанию: 15 минут на оплату и
// 24 часа на доставку суммарно по двум стадиям.
func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Timeouts.PaymentStage1())
	assert.Equal(t, 890*time.Second, cfg.Timeouts.PaymentStage2())
	assert.Equal(t, 15*time.Minute, cfg.Timeouts.PaymentStage1()+cfg.Timeouts.PaymentStage2())

	assert.Equal(t, time.Hour, cfg.Timeouts.DeliveryStage1())
	assert.Equal(t, 23*time.Hour, cfg.Timeouts.DeliveryStage2())
	assert.Equal(t, 24*time.Hour, cfg.Timeouts.DeliveryStage1()+cfg.Timeouts.DeliveryStage2())

	assert.Equal(t, 30, cfg.Redis.SalesExpireDays)
	assert.Equal(t, 5000, cfg.Delivery.MaxDistanceMeter)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
