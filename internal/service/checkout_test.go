package service

import (
	"context"
	"errors"
	"testing"

	"heriken-shop/internal/client"
	"heriken-shop/internal/dto"
	"heriken-shop/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shippingRequest() dto.ShippingRequest {
	return dto.ShippingRequest(testShipping())
}

// loggedInWithCart stores a session holding one cart line priced at 500
// while the product costs 600 in the database.
func loggedInWithCart(t *testing.T, env *testEnv) (*model.Session, *model.Product) {
	t.Helper()
	user := env.addUser(t, model.RoleUser)
	p := env.addProduct(t, "Jamdani", 600)

	cart, err := model.Cart{}.Add(model.CartItem{ProductID: p.ID, Name: p.Name, Price: decimal.NewFromInt(500), Quantity: 2})
	require.NoError(t, err)
	session := &model.Session{ID: "sid-1", UserID: user.ID, Role: user.Role, Cart: cart}
	require.NoError(t, env.sessions.Save(context.Background(), session))
	return session, p
}

func TestCheckoutCashOnDelivery(t *testing.T) {
	env := newTestEnv(t)
	session, _ := loggedInWithCart(t, env)
	ctx := context.Background()

	resp, err := env.checkoutService().Process(ctx, session, dto.CheckoutRequest{ShippingAddress: shippingRequest()})
	require.NoError(t, err)

	assert.True(t, resp.Total.Equal(decimal.NewFromInt(1200)), resp.Total.String())
	assert.Equal(t, "/checkout/success/"+itoa(resp.OrderID), resp.Redirect)

	stored, err := env.sessions.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, stored.Cart.IsEmpty())
	assert.EqualValues(t, session.UserID, stored.UserID)

	msgs := env.sms.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Message, resp.OrderNumber)
	assert.Contains(t, msgs[0].Message, "ক্যাশ অন ডেলিভারি: ৳1200")
}

func TestCheckoutRequestItemsOverrideCart(t *testing.T) {
	env := newTestEnv(t)
	session, p := loggedInWithCart(t, env)

	resp, err := env.checkoutService().Process(context.Background(), session, dto.CheckoutRequest{
		Items:           []dto.OrderItemRequest{{ProductID: p.ID, Quantity: 1}},
		ShippingAddress: shippingRequest(),
	})
	require.NoError(t, err)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(600)))
}

func TestCheckoutRejectedOrderKeepsCart(t *testing.T) {
	env := newTestEnv(t)
	session, p := loggedInWithCart(t, env)
	ctx := context.Background()

	_, err := env.checkoutService().Process(ctx, session, dto.CheckoutRequest{
		Items:           []dto.OrderItemRequest{{ProductID: p.ID, Quantity: 0}},
		ShippingAddress: shippingRequest(),
	})
	require.ErrorIs(t, err, model.ErrValidation)

	stored, err := env.sessions.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Cart.Count())
	assert.Zero(t, env.countRows(t, &model.Order{}))
}

func TestCheckoutRequiresLogin(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.checkoutService().Process(context.Background(), &model.Session{ID: "anon"}, dto.CheckoutRequest{})
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestCheckoutBkashRedirect(t *testing.T) {
	env := newTestEnv(t)
	session, _ := loggedInWithCart(t, env)

	resp, err := env.checkoutService().Process(context.Background(), session, dto.CheckoutRequest{
		ShippingAddress: shippingRequest(),
		PaymentMethod:   string(model.PaymentMethodBkash),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://sandbox.bka.sh/pay/"+resp.OrderNumber, resp.Redirect)

	require.Len(t, env.bkash.created, 1)
	req := env.bkash.created[0]
	assert.Equal(t, "https://shop.example.com/api/payment/bkash/callback", req.CallbackURL)
	assert.True(t, req.Amount.Equal(decimal.NewFromInt(1200)))

	payment, err := env.payments.FindByPaymentID(context.Background(), nil, "PAY-"+resp.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentInitiated, payment.Status)
	assert.Equal(t, resp.OrderID, payment.OrderID)
	assert.Empty(t, env.sms.messages())

	stored, err := env.sessions.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.True(t, stored.Cart.IsEmpty())
}

func TestCheckoutBkashFailureKeepsOrder(t *testing.T) {
	env := newTestEnv(t)
	env.bkash.createErr = &client.GatewayError{Op: "create payment", Code: "2001", Message: "Invalid App Key"}
	session, _ := loggedInWithCart(t, env)

	_, err := env.checkoutService().Process(context.Background(), session, dto.CheckoutRequest{
		ShippingAddress: shippingRequest(),
		PaymentMethod:   string(model.PaymentMethodBkash),
	})
	var initErr *PaymentInitError
	require.True(t, errors.As(err, &initErr))
	assert.NotZero(t, initErr.OrderID)

	var gwErr *client.GatewayError
	assert.True(t, errors.As(err, &gwErr))

	order, err := env.orderService().GetOrder(context.Background(), initErr.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, model.PaymentStatusPending, order.PaymentStatus)

	// the shopper can retry from the same cart
	stored, err := env.sessions.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Cart.Count())
	assert.Equal(t, 1, session.Cart.Count())
}

func TestCheckoutSummary(t *testing.T) {
	env := newTestEnv(t)
	session, _ := loggedInWithCart(t, env)
	svc := env.checkoutService()

	summary, err := svc.Summary(context.Background(), session.ID)
	require.NoError(t, err)
	assert.True(t, summary.Summary.Subtotal.Equal(decimal.NewFromInt(1000)))
	assert.True(t, summary.Summary.Shipping.Equal(decimal.NewFromInt(50)))

	_, err = svc.Summary(context.Background(), "empty")
	assert.ErrorIs(t, err, model.ErrValidation)
}
