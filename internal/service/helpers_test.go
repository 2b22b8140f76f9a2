package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"heriken-shop/internal/client"
	"heriken-shop/internal/model"
	"heriken-shop/internal/repository"
	"heriken-shop/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sentSMS struct {
	Phones  []string
	Message string
}

type fakeSms struct {
	mu   sync.Mutex
	sent []sentSMS
	fail bool
}

func (f *fakeSms) record(phones []string, message string) (*client.SmsResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, &client.GatewayError{Gateway: "mimsms", Op: "send sms", Code: "500", Message: "down"}
	}
	f.sent = append(f.sent, sentSMS{Phones: phones, Message: message})
	return &client.SmsResult{StatusCode: "200", Status: "Success"}, nil
}

func (f *fakeSms) SendSMS(_ context.Context, phone, message string) (*client.SmsResult, error) {
	return f.record([]string{phone}, message)
}

func (f *fakeSms) SendBulkSMS(_ context.Context, phones []string, message string, _ client.SmsTransactionType) (*client.SmsResult, error) {
	return f.record(phones, message)
}

func (f *fakeSms) CheckBalance(context.Context) (*client.SmsBalance, error) {
	return &client.SmsBalance{Balance: 42.5, Status: "Success"}, nil
}

func (f *fakeSms) messages() []sentSMS {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentSMS(nil), f.sent...)
}

type fakeBkash struct {
	mu        sync.Mutex
	created   []client.BkashCreatePaymentRequest
	executed  []string
	refunds   []client.BkashRefundRequest
	createErr error
	execErr   error
	execState string
}

func (f *fakeBkash) CreatePayment(_ context.Context, req client.BkashCreatePaymentRequest) (*client.BkashCreatePaymentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	return &client.BkashCreatePaymentResult{
		PaymentID: "PAY-" + req.OrderNumber,
		BkashURL:  "https://sandbox.bka.sh/pay/" + req.OrderNumber,
	}, nil
}

func (f *fakeBkash) ExecutePayment(_ context.Context, paymentID string) (*client.BkashExecuteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, paymentID)
	if f.execErr != nil {
		return nil, f.execErr
	}
	state := f.execState
	if state == "" {
		state = "Completed"
	}
	return &client.BkashExecuteResult{PaymentID: paymentID, TrxID: "TRX123", TransactionStatus: state}, nil
}

func (f *fakeBkash) QueryPayment(_ context.Context, paymentID string) (*client.BkashQueryResult, error) {
	return &client.BkashQueryResult{PaymentID: paymentID, TransactionStatus: "Initiated"}, nil
}

func (f *fakeBkash) RefundPayment(_ context.Context, req client.BkashRefundRequest) (*client.BkashRefundResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refunds = append(f.refunds, req)
	return &client.BkashRefundResult{RefundTrxID: "RFD456", TransactionStatus: "Completed"}, nil
}

func (f *fakeBkash) SearchTransaction(_ context.Context, trxID string) (*client.BkashTransaction, error) {
	if trxID == "" {
		return nil, errors.New("missing trx id")
	}
	return &client.BkashTransaction{TrxID: trxID, TransactionStatus: "Completed"}, nil
}

type testEnv struct {
	db       *gorm.DB
	mr       *miniredis.Miniredis
	sessions repository.SessionStore
	products repository.ProductRepository
	orders   repository.OrderRepository
	payments repository.PaymentRepository
	users    repository.UserRepository
	audit    repository.AuditLogRepository
	sms      *fakeSms
	bkash    *fakeBkash
	notifier NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	mr, rdb := testutil.NewRedis(t)
	sms := &fakeSms{}

	return &testEnv{
		db:       db,
		mr:       mr,
		sessions: repository.NewSessionStore(rdb, time.Hour),
		products: repository.NewProductRepository(db),
		orders:   repository.NewOrderRepository(db),
		payments: repository.NewPaymentRepository(db),
		users:    repository.NewUserRepository(db),
		audit:    repository.NewAuditLogRepository(db),
		sms:      sms,
		bkash:    &fakeBkash{},
		notifier: NewNotificationService(sms),
	}
}

func (e *testEnv) orderService(opts ...OrderOption) OrderService {
	return NewOrderService(e.db, e.products, e.orders, e.audit, e.notifier, opts...)
}

func (e *testEnv) paymentService() PaymentService {
	return NewPaymentService(e.db, e.bkash, "https://shop.example.com/", e.payments, e.orders, e.audit, e.notifier)
}

func (e *testEnv) checkoutService() CheckoutService {
	return NewCheckoutService(e.sessions, e.orderService(), e.paymentService(), e.notifier)
}

func (e *testEnv) addProduct(t *testing.T, name string, price int64) *model.Product {
	t.Helper()
	p := &model.Product{Name: name, Price: decimal.NewFromInt(price), Stock: 10, IsActive: true}
	require.NoError(t, e.products.Create(context.Background(), p))
	return p
}

func (e *testEnv) addUser(t *testing.T, role model.Role) *model.User {
	t.Helper()
	u := &model.User{Name: "Karim", Role: role, IsActive: true}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) countRows(t *testing.T, table interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(table).Count(&n).Error)
	return n
}

func testShipping() model.ShippingAddress {
	return model.ShippingAddress{Name: "Rahim", Phone: "01712345678", Address: "House 1, Dhanmondi", City: "Dhaka"}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
