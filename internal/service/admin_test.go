package service

import (
	"bytes"
	"context"
	"testing"

	"heriken-shop/internal/dto"
	"heriken-shop/internal/model"
	"heriken-shop/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func (e *testEnv) adminService() AdminService {
	return NewAdminService(e.products, e.orders, e.users, e.notifier)
}

func TestDashboardAndCustomers(t *testing.T) {
	env := newTestEnv(t)
	owner, order := placeOrder(t, env)
	env.addUser(t, model.RoleAdmin)
	ctx := context.Background()

	_, err := env.orderService().UpdatePaymentStatus(ctx, 0, order.ID, model.PaymentStatusPaid)
	require.NoError(t, err)

	dash, err := env.adminService().Dashboard(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, dash.TotalProducts)
	assert.EqualValues(t, 1, dash.TotalOrders)
	assert.EqualValues(t, 1, dash.PendingOrders)
	assert.EqualValues(t, 1, dash.TotalCustomers)
	assert.True(t, dash.Revenue.Equal(decimal.NewFromInt(3200)), dash.Revenue.String())
	require.Len(t, dash.RecentOrders, 1)

	customers, err := env.adminService().Customers(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, customers.Customers, 1)
	assert.Equal(t, owner.ID, customers.Customers[0].ID)
	assert.EqualValues(t, 1, customers.Customers[0].OrderCount)
	assert.Equal(t, customerPageSize, customers.Pagination.Limit)
}

func TestAdminListOrders(t *testing.T) {
	env := newTestEnv(t)
	_, first := placeOrder(t, env)
	placeOrder(t, env)
	ctx := context.Background()

	_, err := env.orderService().UpdateStatus(ctx, 0, first.ID, model.OrderStatusShipped)
	require.NoError(t, err)

	all, err := env.adminService().ListOrders(ctx, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Orders, 2)
	assert.Equal(t, orderPageSize, all.Pagination.Limit)
	assert.EqualValues(t, 1, all.Summary[model.OrderStatusShipped])
	assert.EqualValues(t, 1, all.Summary[model.OrderStatusPending])
	assert.EqualValues(t, 0, all.Summary[model.OrderStatusCancelled])

	shipped, err := env.adminService().ListOrders(ctx, repository.OrderFilter{Status: model.OrderStatusShipped})
	require.NoError(t, err)
	require.Len(t, shipped.Orders, 1)
	assert.Equal(t, first.ID, shipped.Orders[0].ID)
	// the summary ignores the status filter
	assert.EqualValues(t, 1, shipped.Summary[model.OrderStatusPending])

	bySearch, err := env.adminService().ListOrders(ctx, repository.OrderFilter{Search: first.OrderNumber})
	require.NoError(t, err)
	assert.Len(t, bySearch.Orders, 1)

	_, err = env.adminService().ListOrders(ctx, repository.OrderFilter{Status: "lost"})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestExportOrders(t *testing.T) {
	env := newTestEnv(t)
	_, order := placeOrder(t, env)

	var buf bytes.Buffer
	require.NoError(t, env.adminService().ExportOrders(context.Background(), repository.OrderFilter{Page: 3, Limit: 1}, &buf))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	assert.Equal(t, "Orders", sheet.Name)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Order Number", sheet.Rows[0].Cells[0].String())

	row := sheet.Rows[1]
	assert.Equal(t, order.OrderNumber, row.Cells[0].String())
	assert.Equal(t, "Rahim", row.Cells[2].String())
	assert.Equal(t, "3200.00", row.Cells[7].String())
	assert.Equal(t, "pending", row.Cells[10].String())
}

func TestNotifyPreorder(t *testing.T) {
	env := newTestEnv(t)
	user := env.addUser(t, model.RoleUser)
	p := env.addProduct(t, "Eid Panjabi", 2500)
	ctx := context.Background()

	var numbers []string
	for _, phone := range []string{"01712345678", "01712345678", "01812345678"} {
		shipping := testShipping()
		shipping.Phone = phone
		order, err := env.orderService().CreateOrder(ctx, CreateOrderInput{
			UserID:   user.ID,
			Items:    []model.OrderLine{{ProductID: p.ID, Quantity: 1}},
			Shipping: shipping,
		})
		require.NoError(t, err)
		numbers = append(numbers, order.OrderNumber)
	}
	// delivered orders are not waiting any more
	_, err := env.orderService().UpdateStatus(ctx, 0, 1, model.OrderStatusDelivered)
	require.NoError(t, err)
	delivered := len(env.sms.messages())

	resp, err := env.adminService().NotifyPreorder(ctx, dto.PreorderNotifyRequest{ProductID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Recipients)
	assert.Equal(t, 2, resp.Sent)

	msgs := env.sms.messages()[delivered:]
	require.Len(t, msgs, 1)
	assert.ElementsMatch(t, []string{"8801712345678", "8801812345678"}, msgs[0].Phones)
	assert.Contains(t, msgs[0].Message, "Eid Panjabi")

	personal, err := env.adminService().NotifyPreorder(ctx, dto.PreorderNotifyRequest{ProductID: p.ID, IncludeOrderNumber: true})
	require.NoError(t, err)
	assert.Equal(t, 2, personal.Recipients)
	assert.Equal(t, 2, personal.Sent)
	msgs = env.sms.messages()[delivered+1:]
	require.Len(t, msgs, 2)
	combined := msgs[0].Message + msgs[1].Message
	assert.Contains(t, combined, numbers[1])
	assert.Contains(t, combined, numbers[2])
	assert.NotContains(t, combined, numbers[0])

	env.sms.fail = true
	failed, err := env.adminService().NotifyPreorder(ctx, dto.PreorderNotifyRequest{ProductID: p.ID, IncludeOrderNumber: true})
	require.NoError(t, err)
	assert.Equal(t, 2, failed.Failed)

	_, err = env.adminService().NotifyPreorder(ctx, dto.PreorderNotifyRequest{ProductID: 9999})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSmsBalance(t *testing.T) {
	env := newTestEnv(t)
	balance, err := env.adminService().SmsBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42.5, balance.Balance)
}
