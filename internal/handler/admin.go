package handler

import (
	"bytes"
	"heriken-shop/internal/dto"
	"heriken-shop/internal/middleware"
	"heriken-shop/internal/model"
	"heriken-shop/internal/repository"
	"heriken-shop/internal/service"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	dateLayout = "2006-01-02"
	xlsxType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type AdminHandler struct {
	adminService   service.AdminService
	catalogService service.CatalogService
	orderService   service.OrderService
	paymentService service.PaymentService
}

func NewAdminHandler(
	adminService service.AdminService,
	catalogService service.CatalogService,
	orderService service.OrderService,
	paymentService service.PaymentService,
) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		catalogService: catalogService,
		orderService:   orderService,
		paymentService: paymentService,
	}
}

func orderFilter(c echo.Context) (repository.OrderFilter, error) {
	filter := repository.OrderFilter{
		Search: strings.TrimSpace(c.QueryParam("search")),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	}
	if status := c.QueryParam("status"); status != "" && !strings.EqualFold(status, "all") {
		filter.Status = model.OrderStatus(strings.ToLower(status))
	}

	for name, dst := range map[string]**time.Time{
		"startDate": &filter.StartDate,
		"endDate":   &filter.EndDate,
	} {
		raw := c.QueryParam(name)
		if raw == "" {
			continue
		}
		t, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return filter, model.NewValidationError(name, "Invalid date, expected YYYY-MM-DD")
		}
		*dst = &t
	}
	return filter, nil
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
	resp, err := h.adminService.Dashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// products

func (h *AdminHandler) ListProducts(c echo.Context) error {
	resp, err := h.catalogService.ListProducts(c.Request().Context(), productFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) CreateProduct(c echo.Context) error {
	var req dto.ProductInput
	if err := bind(c, &req); err != nil {
		return err
	}

	product, err := h.catalogService.CreateProduct(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"success": true, "product": product})
}

func (h *AdminHandler) UpdateProduct(c echo.Context) error {
	productID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ProductInput
	if err := bind(c, &req); err != nil {
		return err
	}

	product, err := h.catalogService.UpdateProduct(c.Request().Context(), productID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "product": product})
}

func (h *AdminHandler) DeleteProduct(c echo.Context) error {
	productID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.catalogService.DeleteProduct(c.Request().Context(), productID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &dto.Response{Success: true, Message: "Product deleted"})
}

// categories

func (h *AdminHandler) Categories(c echo.Context) error {
	categories, err := h.catalogService.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &dto.CategoryListResponse{Success: true, Categories: categories})
}

func (h *AdminHandler) CreateCategory(c echo.Context) error {
	var req dto.CategoryInput
	if err := bind(c, &req); err != nil {
		return err
	}

	category, err := h.catalogService.CreateCategory(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"success": true, "category": category})
}

func (h *AdminHandler) DeleteCategory(c echo.Context) error {
	categoryID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.catalogService.DeleteCategory(c.Request().Context(), categoryID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &dto.Response{Success: true, Message: "Category deleted"})
}

// orders

func (h *AdminHandler) ListOrders(c echo.Context) error {
	filter, err := orderFilter(c)
	if err != nil {
		return err
	}

	resp, err := h.adminService.ListOrders(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) ExportOrders(c echo.Context) error {
	filter, err := orderFilter(c)
	if err != nil {
		return err
	}

	// buffered so a failed export still gets a JSON error
	var buf bytes.Buffer
	if err := h.adminService.ExportOrders(c.Request().Context(), filter, &buf); err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.xlsx"`)
	return c.Blob(http.StatusOK, xlsxType, buf.Bytes())
}

func (h *AdminHandler) Order(c echo.Context) error {
	orderID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orderService.GetOrder(c.Request().Context(), orderID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &dto.OrderResponse{Success: true, Order: order})
}

func (h *AdminHandler) UpdateOrder(c echo.Context) error {
	orderID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	in := service.UpdateOrderInput{
		Notes:          req.Notes,
		TrackingNumber: req.TrackingNumber,
		TrackingURL:    req.TrackingURL,
	}
	if req.Status != nil {
		status := model.OrderStatus(*req.Status)
		in.Status = &status
	}
	if req.FulfillmentStatus != nil {
		fulfillment := model.FulfillmentStatus(*req.FulfillmentStatus)
		in.FulfillmentStatus = &fulfillment
	}

	order, err := h.orderService.UpdateOrder(c.Request().Context(), middleware.UserID(c), orderID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &dto.OrderResponse{Success: true, Message: "Order updated", Order: order})
}

func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	orderID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.OrderStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	order, err := h.orderService.UpdateStatus(c.Request().Context(), middleware.UserID(c), orderID, model.OrderStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &dto.OrderResponse{Success: true, Message: "Order status updated", Order: order})
}

func (h *AdminHandler) UpdatePaymentStatus(c echo.Context) error {
	orderID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.PaymentStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	order, err := h.orderService.UpdatePaymentStatus(c.Request().Context(), middleware.UserID(c), orderID, model.PaymentStatus(req.PaymentStatus))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &dto.OrderResponse{Success: true, Message: "Payment status updated", Order: order})
}

func (h *AdminHandler) Customers(c echo.Context) error {
	resp, err := h.adminService.Customers(c.Request().Context(), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// payments

func (h *AdminHandler) QueryPayment(c echo.Context) error {
	result, err := h.paymentService.Query(c.Request().Context(), c.Param("paymentId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "payment": result})
}

func (h *AdminHandler) RefundPayment(c echo.Context) error {
	var req dto.RefundRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	payment, err := h.paymentService.Refund(c.Request().Context(), middleware.UserID(c), c.Param("paymentId"), service.RefundInput{
		Amount: req.Amount,
		Reason: req.Reason,
		SKU:    req.SKU,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Refund processed",
		"payment": payment,
	})
}

func (h *AdminHandler) SearchTransaction(c echo.Context) error {
	trx, err := h.paymentService.SearchTransaction(c.Request().Context(), c.Param("trxId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "transaction": trx})
}

// notifications

func (h *AdminHandler) NotifyPreorder(c echo.Context) error {
	var req dto.PreorderNotifyRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.ProductID == 0 {
		return model.NewValidationError("productId", "Product ID is required")
	}

	resp, err := h.adminService.NotifyPreorder(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) SmsBalance(c echo.Context) error {
	balance, err := h.adminService.SmsBalance(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "balance": balance})
}
