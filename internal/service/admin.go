package service

import (
	"context"
	"errors"
	"fmt"
	"heriken-shop/internal/client"
	"heriken-shop/internal/dto"
	"heriken-shop/internal/model"
	"heriken-shop/internal/repository"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

const (
	orderPageSize    = 10
	customerPageSize = 20
	recentOrderLimit = 5
	exportTimeLayout = "2006-01-02 15:04:05"
)

type AdminService interface {
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
	Customers(ctx context.Context, page, limit int) (*dto.CustomerListResponse, error)
	ListOrders(ctx context.Context, filter repository.OrderFilter) (*dto.OrderListResponse, error)
	ExportOrders(ctx context.Context, filter repository.OrderFilter, w io.Writer) error
	NotifyPreorder(ctx context.Context, req dto.PreorderNotifyRequest) (*dto.PreorderNotifyResponse, error)
	SmsBalance(ctx context.Context) (*client.SmsBalance, error)
}

type adminServiceImpl struct {
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	userRepo    repository.UserRepository
	notifier    NotificationService
}

func NewAdminService(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	notifier NotificationService,
) AdminService {
	return &adminServiceImpl{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

func (s *adminServiceImpl) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	products, err := s.productRepo.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	customers, err := s.userRepo.CountCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	stats, err := s.orderRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	recent, err := s.orderRepo.Recent(ctx, recentOrderLimit)
	if err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}

	return &dto.DashboardResponse{
		Success:        true,
		TotalProducts:  products,
		TotalOrders:    stats.TotalOrders,
		TotalCustomers: customers,
		PendingOrders:  stats.PendingOrders,
		Revenue:        stats.Revenue,
		RecentOrders:   recent,
	}, nil
}

func (s *adminServiceImpl) Customers(ctx context.Context, page, limit int) (*dto.CustomerListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = customerPageSize
	}

	customers, total, err := s.userRepo.ListCustomers(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return &dto.CustomerListResponse{
		Success:    true,
		Customers:  customers,
		Pagination: dto.NewPagination(page, limit, total),
	}, nil
}

func (s *adminServiceImpl) ListOrders(ctx context.Context, filter repository.OrderFilter) (*dto.OrderListResponse, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, model.NewValidationError("status", "Invalid status")
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = orderPageSize
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	summary, err := s.orderRepo.CountByStatus(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}

	return &dto.OrderListResponse{
		Success:    true,
		Orders:     orders,
		Pagination: dto.NewPagination(filter.Page, filter.Limit, total),
		Summary:    summary,
	}, nil
}

var exportHeaders = []string{
	"Order Number", "Date", "Customer", "Phone", "Address", "City",
	"Items", "Total", "Payment Method", "Payment Status", "Status", "Fulfillment",
}

// ExportOrders writes every order matching filter, ignoring pagination, as
// an xlsx workbook.
func (s *adminServiceImpl) ExportOrders(ctx context.Context, filter repository.OrderFilter, w io.Writer) error {
	if filter.Status != "" && !filter.Status.Valid() {
		return model.NewValidationError("status", "Invalid status")
	}
	filter.Page, filter.Limit = 0, 0

	orders, _, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetValue(h)
	}

	for _, o := range orders {
		var qty int
		for _, item := range o.Items {
			qty += item.Quantity
		}

		row := sheet.AddRow()
		row.AddCell().SetValue(o.OrderNumber)
		row.AddCell().SetValue(o.CreatedAt.Format(exportTimeLayout))
		row.AddCell().SetValue(o.ShippingName)
		row.AddCell().SetValue(o.ShippingPhone)
		row.AddCell().SetValue(o.ShippingAddress)
		row.AddCell().SetValue(o.ShippingCity)
		row.AddCell().SetValue(qty)
		row.AddCell().SetValue(o.TotalAmount.StringFixed(2))
		row.AddCell().SetValue(string(o.PaymentMethod))
		row.AddCell().SetValue(string(o.PaymentStatus))
		row.AddCell().SetValue(string(o.Status))
		row.AddCell().SetValue(string(o.FulfillmentStatus))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// NotifyPreorder tells every customer with an open order for the product
// that it is available. With IncludeOrderNumber each customer gets a
// personal message, otherwise one bulk message goes to the unique numbers.
func (s *adminServiceImpl) NotifyPreorder(ctx context.Context, req dto.PreorderNotifyRequest) (*dto.PreorderNotifyResponse, error) {
	if req.ProductID == 0 {
		return nil, model.NewValidationError("productId", "productId is required")
	}

	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	recipients, err := s.orderRepo.OpenOrdersForProduct(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("list open orders: %w", err)
	}

	resp := &dto.PreorderNotifyResponse{Success: true}
	if len(recipients) == 0 {
		return resp, nil
	}

	if req.IncludeOrderNumber {
		resp.Recipients = len(recipients)
		for _, r := range recipients {
			if err := s.notifier.SendPreorderRelease(ctx, r.Phone, product.Name, r.OrderNumber); err != nil {
				resp.Failed++
				continue
			}
			resp.Sent++
		}
	} else {
		seen := make(map[string]struct{}, len(recipients))
		phones := make([]string, 0, len(recipients))
		for _, r := range recipients {
			phone := client.FormatPhoneNumber(r.Phone)
			if _, ok := seen[phone]; ok {
				continue
			}
			seen[phone] = struct{}{}
			phones = append(phones, phone)
		}
		resp.Recipients = len(phones)
		if err := s.notifier.SendBulk(ctx, phones, preorderReleaseMessage(product.Name, "")); err != nil {
			resp.Failed = len(phones)
		} else {
			resp.Sent = len(phones)
		}
	}

	log.WithFields(log.Fields{
		"product_id": req.ProductID,
		"recipients": resp.Recipients,
		"sent":       resp.Sent,
		"failed":     resp.Failed,
	}).Info("Preorder release notifications sent")

	return resp, nil
}

func (s *adminServiceImpl) SmsBalance(ctx context.Context) (*client.SmsBalance, error) {
	return s.notifier.Balance(ctx)
}
