package amqp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, string, string, map[string]interface{})         {}
func (nopLogger) Debug(string, string, string, map[string]interface{})        {}
func (nopLogger) Warn(string, string, string, map[string]interface{})         {}
func (nopLogger) Error(string, string, string, map[string]interface{}, error) {}

type fakeEvaluator struct {
	calls []call
}

type call struct {
	stage   string
	orderID int64
}

func (e *fakeEvaluator) HandlePaymentStage1(_ context.Context, orderID int64) error {
	e.calls = append(e.calls, call{"payment1", orderID})
	return nil
}

func (e *fakeEvaluator) HandlePaymentStage2(_ context.Context, orderID int64) error {
	e.calls = append(e.calls, call{"payment2", orderID})
	return nil
}

func (e *fakeEvaluator) HandleDeliveryStage1(_ context.Context, orderID int64) error {
	e.calls = append(e.calls, call{"delivery1", orderID})
	return nil
}

func (e *fakeEvaluator) HandleDeliveryStage2(_ context.Context, orderID int64) error {
	e.calls = append(e.calls, call{"delivery2", orderID})
	return nil
}

func TestHandleParsesOrderID(t *testing.T) {
	evaluator := &fakeEvaluator{}
	h := NewTimeoutHandler(evaluator, nopLogger{})

	require.NoError(t, h.HandlePaymentStage1(context.Background(), []byte("42")))
	require.NoError(t, h.HandleDeliveryStage2(context.Background(), []byte(" 7\n")))

	require.Len(t, evaluator.calls, 2)
	assert.Equal(t, call{"payment1", 42}, evaluator.calls[0])
	assert.Equal(t, call{"delivery2", 7}, evaluator.calls[1])
}

// Нечитаемое тело нельзя requeue'ить - оно зациклится. Дропаем без ошибки.
func TestHandleDropsMalformedBody(t *testing.T) {
	evaluator := &fakeEvaluator{}
	h := NewTimeoutHandler(evaluator, nopLogger{})

	require.NoError(t, h.HandlePaymentStage2(context.Background(), []byte("not-a-number")))
	require.NoError(t, h.HandlePaymentStage2(context.Background(), nil))

	assert.Empty(t, evaluator.calls)
}
