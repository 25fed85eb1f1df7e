package timeout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YelzhanWeb/takeaway/internal/domain"
	"github.com/YelzhanWeb/takeaway/internal/interfaces"
)

var testNow = time.Date(2025, 3, 14, 12, 30, 45, 0, time.UTC)

func newTestService() (*Service, *fakeOrderRepo, *fakePublisher) {
	orders := newFakeOrderRepo()
	publisher := &fakePublisher{}

	svc := NewService(orders, publisher, nopLogger{})
	svc.now = func() time.Time { return testNow }

	return svc, orders, publisher
}

func TestPaymentStage1Escalates(t *testing.T) {
	svc, orders, publisher := newTestService()
	id := orders.seed(&domain.Order{Status: domain.StatusPendingPayment})

	require.NoError(t, svc.HandlePaymentStage1(context.Background(), id))

	require.Len(t, publisher.timeouts, 1)
	assert.Equal(t, interfaces.RouteDelayPaymentStage2, publisher.timeouts[0].route)
	assert.Equal(t, id, publisher.timeouts[0].orderID)

	// Stage 1 никогда не пишет в заказ
	assert.Equal(t, 0, orders.writes)
}

func TestPaymentStage1AlreadyPaid(t *testing.T) {
	svc, orders, publisher := newTestService()
	id := orders.seed(&domain.Order{Status: domain.StatusToBeConfirmed})

	require.NoError(t, svc.HandlePaymentStage1(context.Background(), id))

	assert.Empty(t, publisher.timeouts)
}

func TestPaymentStage2Cancels(t *testing.T) {
	svc, orders, _ := newTestService()
	id := orders.seed(&domain.Order{Status: domain.StatusPendingPayment})

	require.NoError(t, svc.HandlePaymentStage2(context.Background(), id))

	stored := orders.get(id)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	require.NotNil(t, stored.CancelReason)
	assert.Equal(t, "payment timeout", *stored.CancelReason)
	require.NotNil(t, stored.CancelTime)
	assert.Equal(t, testNow, *stored.CancelTime)
}

func TestPaymentStage2AlreadyPaid(t *testing.T) {
	svc, orders, _ := newTestService()
	id := orders.seed(&domain.Order{Status: domain.StatusToBeConfirmed})

	require.NoError(t, svc.HandlePaymentStage2(context.Background(), id))

	stored := orders.get(id)
	assert.Equal(t, domain.StatusToBeConfirmed, stored.Status)
	assert.Equal(t, 0, orders.writes)
}

func TestDeliveryStage1Escalates(t *testing.T) {
	svc, orders, publisher := newTestService()
	id := orders.seed(&domain.Order{Status: domain.StatusDeliveryInProgress})

	require.NoError(t, svc.HandleDeliveryStage1(context.Background(), id))

	require.Len(t, publisher.timeouts, 1)
	assert.Equal(t, interfaces.RouteDelayDeliveryStage2, publisher.timeouts[0].route)
}

func TestDeliveryStage2Cancels(t *testing.T) {
	svc, orders, _ := newTestService()
	id := orders.seed(&domain.Order{Status: domain.StatusDeliveryInProgress})

	require.NoError(t, svc.HandleDeliveryStage2(context.Background(), id))

	stored := orders.get(id)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	require.NotNil(t, stored.CancelReason)
	assert.Equal(t, "delivery timeout", *stored.CancelReason)
}

func TestDeliveryStage2AlreadyCompleted(t *testing.T) {
	svc, orders, _ := newTestService()
	id := orders.seed(&domain.Order{Status: domain.StatusCompleted})

	require.NoError(t, svc.HandleDeliveryStage2(context.Background(), id))

	stored := orders.get(id)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
}

func TestMissingOrderIsNoOp(t *testing.T) {
	svc, orders, publisher := newTestService()

	require.NoError(t, svc.HandlePaymentStage1(context.Background(), 404))
	require.NoError(t, svc.HandlePaymentStage2(context.Background(), 404))

	assert.Empty(t, publisher.timeouts)
	assert.Equal(t, 0, orders.writes)
}

// Заказ меняется между чтением и CAS - ситуация одновременной отмены
// пользователем. Ровно один писатель выигрывает, evaluator молча отступает.
func TestStage2LostRace(t *testing.T) {
	svc, orders, _ := newTestService()
	id := orders.seed(&domain.Order{Status: domain.StatusPendingPayment})

	reason := "cancelled by user"
	orders.beforeUpdate = func() {
		orders.casDirect(id, domain.StatusPendingPayment, domain.OrderUpdate{
			Status:       domain.StatusCancelled,
			CancelReason: &reason,
		})
	}

	require.NoError(t, svc.HandlePaymentStage2(context.Background(), id))

	stored := orders.get(id)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	require.NotNil(t, stored.CancelReason)
	assert.Equal(t, "cancelled by user", *stored.CancelReason)
	assert.Equal(t, 1, orders.writes)
}

// ----- fakes -----

type nopLogger struct{}

func (nopLogger) Info(string, string, string, map[string]interface{})         {}
func (nopLogger) Debug(string, string, string, map[string]interface{})        {}
func (nopLogger) Warn(string, string, string, map[string]interface{})         {}
func (nopLogger) Error(string, string, string, map[string]interface{}, error) {}

type fakeOrderRepo struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*domain.Order
	writes int

	// beforeUpdate runs between the service's read and its CAS write,
	// simulating a concurrent writer.
	beforeUpdate func()
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]*domain.Order)}
}

func (r *fakeOrderRepo) seed(o *domain.Order) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	o.ID = r.nextID
	r.orders[o.ID] = o
	return o.ID
}

func (r *fakeOrderRepo) get(id int64) *domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r.orders[id]
	return &cp
}

func (r *fakeOrderRepo) Insert(_ context.Context, order *domain.Order, _ []domain.OrderDetail) error {
	r.seed(order)
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) GetByNumber(_ context.Context, number string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.Number == number {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *fakeOrderRepo) ConditionalUpdate(_ context.Context, id int64, expected domain.Status, upd domain.OrderUpdate) (bool, error) {
	if r.beforeUpdate != nil {
		hook := r.beforeUpdate
		r.beforeUpdate = nil
		hook()
	}
	return r.casDirect(id, expected, upd), nil
}

func (r *fakeOrderRepo) casDirect(id int64, expected domain.Status, upd domain.OrderUpdate) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != expected {
		return false
	}
	o.Status = upd.Status
	if upd.PayStatus != nil {
		o.PayStatus = *upd.PayStatus
	}
	if upd.CancelTime != nil {
		o.CancelTime = upd.CancelTime
	}
	if upd.CancelReason != nil {
		o.CancelReason = upd.CancelReason
	}
	r.writes++
	return true
}

func (r *fakeOrderRepo) ListDetails(context.Context, int64) ([]domain.OrderDetail, error) {
	return nil, nil
}

func (r *fakeOrderRepo) PageByUser(context.Context, int64, *domain.Status, int, int) ([]*domain.Order, int64, error) {
	return nil, 0, nil
}

func (r *fakeOrderRepo) Page(context.Context, domain.OrderPageQuery) ([]*domain.Order, int64, error) {
	return nil, 0, nil
}

func (r *fakeOrderRepo) CountByStatus(context.Context, domain.Status) (int64, error) {
	return 0, nil
}

type publishedTimeout struct {
	route   string
	orderID int64
}

type fakePublisher struct {
	mu       sync.Mutex
	timeouts []publishedTimeout
}

func (p *fakePublisher) PublishTimeout(_ context.Context, route string, orderID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timeouts = append(p.timeouts, publishedTimeout{route: route, orderID: orderID})
	return nil
}

func (p *fakePublisher) PublishNotification(context.Context, interfaces.Notification) error {
	return nil
}
