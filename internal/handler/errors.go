package handler

import (
	"errors"
	"heriken-shop/internal/client"
	"heriken-shop/internal/dto"
	"heriken-shop/internal/model"
	"heriken-shop/internal/service"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	gatewayErrorMessage  = "Payment gateway error. Please try again later."
	internalErrorMessage = "Something went wrong"
)

// ErrorResponse maps an error onto a status code and envelope.
func ErrorResponse(err error) (int, dto.ErrorResponse) {
	resp := dto.ErrorResponse{Success: false}

	var (
		vErr    *model.ValidationError
		sErr    *model.StatusError
		initErr *service.PaymentInitError
		gwErr   *client.GatewayError
		httpErr *echo.HTTPError
	)

	switch {
	case errors.As(err, &vErr):
		resp.Message, resp.Field = vErr.Message, vErr.Field
		return http.StatusBadRequest, resp
	case errors.As(err, &initErr):
		resp.Message = "Order created but payment could not be started. Your cart has been kept, please try again."
		resp.OrderID = initErr.OrderID
		return http.StatusBadGateway, resp
	case errors.As(err, &sErr):
		resp.Message = sErr.Error()
		return statusFor(sErr.Unwrap()), resp
	case errors.Is(err, gorm.ErrRecordNotFound):
		resp.Message = "Not found"
		return http.StatusNotFound, resp
	case errors.As(err, &gwErr):
		resp.Message = gatewayErrorMessage
		return http.StatusBadGateway, resp
	case errors.As(err, &httpErr):
		resp.Message = http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok {
			resp.Message = m
		}
		return httpErr.Code, resp
	}

	resp.Message = internalErrorMessage
	return http.StatusInternalServerError, resp
}

func statusFor(kind error) int {
	switch kind {
	case model.ErrNotFound:
		return http.StatusNotFound
	case model.ErrValidation:
		return http.StatusBadRequest
	case model.ErrUnauthorized:
		return http.StatusUnauthorized
	case model.ErrForbidden:
		return http.StatusForbidden
	case model.ErrRateLimited:
		return http.StatusTooManyRequests
	case model.ErrConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// HTTPErrorHandler is installed as echo's error handler so every handler can
// simply return its error.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, resp := ErrorResponse(err)
	if code >= http.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"method": c.Request().Method,
			"uri":    c.Request().RequestURI,
			"status": code,
		}).Error("Request failed")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, resp)
	}
	if err != nil {
		log.WithError(err).Error("Failed to write error response")
	}
}

func badRequest(message string) error {
	return model.NewStatusError(model.ErrValidation, message)
}

func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, model.NewValidationError(name, "Invalid %s", name)
	}
	return uint(id), nil
}

func queryInt(c echo.Context, name string) int {
	n, _ := strconv.Atoi(c.QueryParam(name))
	return n
}

func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return badRequest("Invalid request body")
	}
	return nil
}
