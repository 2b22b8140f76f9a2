package handler

import (
	"fmt"
	"heriken-shop/internal/dto"
	"heriken-shop/internal/middleware"
	"heriken-shop/internal/service"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
	paymentService  service.PaymentService
	baseURL         string
}

func NewCheckoutHandler(checkoutService service.CheckoutService, paymentService service.PaymentService, baseURL string) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		paymentService:  paymentService,
		baseURL:         strings.TrimRight(baseURL, "/"),
	}
}

func (h *CheckoutHandler) Summary(c echo.Context) error {
	summary, err := h.checkoutService.Summary(c.Request().Context(), middleware.SessionFrom(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *CheckoutHandler) Process(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session := middleware.SessionFrom(c)
	resp, err := h.checkoutService.Process(ctx, session, req)
	if err != nil {
		return err
	}
	middleware.SetSession(c, session)

	return c.JSON(http.StatusOK, resp)
}

// BkashCallback is where bKash sends the customer after the payment page.
// The customer always ends up on the storefront, so errors redirect too.
func (h *CheckoutHandler) BkashCallback(c echo.Context) error {
	ctx := c.Request().Context()

	paymentID := c.QueryParam("paymentID")
	status := c.QueryParam("status")

	result, err := h.paymentService.HandleCallback(ctx, paymentID, status)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"payment_id": paymentID,
			"status":     status,
		}).Error("bKash callback failed")
		return c.Redirect(http.StatusFound, h.baseURL+"/checkout/failed")
	}

	outcome := "failed"
	if result.Success {
		outcome = "success"
	}
	return c.Redirect(http.StatusFound, fmt.Sprintf("%s/checkout/%s/%d", h.baseURL, outcome, result.OrderID))
}
