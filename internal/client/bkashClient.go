package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"heriken-shop/internal/config"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	bkashSuccessCode = "0000"
	// the cached token is dropped this long before bKash expires it
	bkashTokenLeeway = 300 * time.Second
)

type BkashClient interface {
	CreatePayment(ctx context.Context, req BkashCreatePaymentRequest) (*BkashCreatePaymentResult, error)
	ExecutePayment(ctx context.Context, paymentID string) (*BkashExecuteResult, error)
	QueryPayment(ctx context.Context, paymentID string) (*BkashQueryResult, error)
	RefundPayment(ctx context.Context, req BkashRefundRequest) (*BkashRefundResult, error)
	SearchTransaction(ctx context.Context, trxID string) (*BkashTransaction, error)
}

type bkashClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	username   string
	password   string
	appKey     string
	appSecret  string
	now        func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

type BkashOption func(*bkashClientImpl)

func WithBkashHTTPClient(hc *http.Client) BkashOption {
	return func(c *bkashClientImpl) { c.httpClient = hc }
}

func WithBkashClock(now func() time.Time) BkashOption {
	return func(c *bkashClientImpl) { c.now = now }
}

type BkashCreatePaymentRequest struct {
	Amount         decimal.Decimal
	OrderNumber    string
	PayerReference string
	CallbackURL    string
}

type BkashRefundRequest struct {
	PaymentID string
	TrxID     string
	Amount    decimal.Decimal
	Reason    string
	SKU       string
}

// bkashStatus is embedded by every response. Failures arrive either as a
// non 0000 statusCode or as errorCode/errorMessage.
type bkashStatus struct {
	StatusCode    string `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
	ErrorCode     string `json:"errorCode,omitempty"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
}

func (s *bkashStatus) status() *bkashStatus { return s }

func (s *bkashStatus) code() string {
	if s.StatusCode != "" {
		return s.StatusCode
	}
	return s.ErrorCode
}

func (s *bkashStatus) message() string {
	if s.StatusMessage != "" {
		return s.StatusMessage
	}
	return s.ErrorMessage
}

type bkashResponse interface {
	status() *bkashStatus
}

type bkashTokenResult struct {
	bkashStatus
	IDToken      string `json:"id_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

type BkashCreatePaymentResult struct {
	bkashStatus
	PaymentID            string `json:"paymentID"`
	BkashURL             string `json:"bkashURL"`
	CallbackURL          string `json:"callbackURL"`
	SuccessCallbackURL   string `json:"successCallbackURL"`
	FailureCallbackURL   string `json:"failureCallbackURL"`
	CancelledCallbackURL string `json:"cancelledCallbackURL"`
	Amount               string `json:"amount"`
	Intent               string `json:"intent"`
	Currency             string `json:"currency"`
}

type BkashExecuteResult struct {
	bkashStatus
	PaymentID             string `json:"paymentID"`
	TrxID                 string `json:"trxID"`
	TransactionStatus     string `json:"transactionStatus"`
	Amount                string `json:"amount"`
	Currency              string `json:"currency"`
	Intent                string `json:"intent"`
	PaymentExecuteTime    string `json:"paymentExecuteTime"`
	MerchantInvoiceNumber string `json:"merchantInvoiceNumber"`
	PayerReference        string `json:"payerReference"`
}

func (r *BkashExecuteResult) Completed() bool {
	return r.TransactionStatus == "Completed"
}

type BkashQueryResult struct {
	bkashStatus
	PaymentID             string `json:"paymentID"`
	Mode                  string `json:"mode"`
	TrxID                 string `json:"trxID"`
	TransactionStatus     string `json:"transactionStatus"`
	Amount                string `json:"amount"`
	Currency              string `json:"currency"`
	Intent                string `json:"intent"`
	PaymentCreateTime     string `json:"paymentCreateTime"`
	PaymentExecuteTime    string `json:"paymentExecuteTime"`
	MerchantInvoiceNumber string `json:"merchantInvoiceNumber"`
	PayerReference        string `json:"payerReference"`
}

type BkashRefundResult struct {
	bkashStatus
	RefundTrxID       string `json:"refundTrxID"`
	OriginalTrxID     string `json:"originalTrxID"`
	TransactionStatus string `json:"transactionStatus"`
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	Charge            string `json:"charge"`
	RefundTime        string `json:"refundTime"`
}

type BkashTransaction struct {
	bkashStatus
	TrxID             string `json:"trxID"`
	TransactionStatus string `json:"transactionStatus"`
	TransactionType   string `json:"transactionType"`
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	CustomerMsisdn    string `json:"customerMsisdn"`
	InitiationTime    string `json:"initiationTime"`
	CompletedTime     string `json:"completedTime"`
}

func NewBkashClient(bkashCfg *config.Bkash, opts ...BkashOption) BkashClient {
	c := &bkashClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: bkashCfg.BaseApiURL,
		username:   bkashCfg.Username,
		password:   bkashCfg.Password,
		appKey:     bkashCfg.AppKey,
		appSecret:  bkashCfg.AppSecret,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getToken returns the cached id_token, granting a new one when it is
// missing or expired. The lock is held across the grant so concurrent
// callers share one request.
func (c *bkashClientImpl) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	payload := map[string]string{
		"app_key":    c.appKey,
		"app_secret": c.appSecret,
	}
	headers := map[string]string{
		"username": c.username,
		"password": c.password,
	}

	var res bkashTokenResult
	if err := c.do(ctx, "token grant", "/token/grant", headers, payload, &res); err != nil {
		return "", err
	}
	if res.IDToken == "" {
		return "", &GatewayError{Op: "token grant", Code: res.code(), Message: "empty id_token"}
	}

	ttl := time.Duration(res.ExpiresIn)*time.Second - bkashTokenLeeway
	if ttl < 0 {
		ttl = 0
	}
	c.token = res.IDToken
	c.tokenExpiry = c.now().Add(ttl)

	return c.token, nil
}

func (c *bkashClientImpl) authorized(ctx context.Context, op, path string, payload any, out bkashResponse) error {
	token, err := c.getToken(ctx)
	if err != nil {
		return fmt.Errorf("get bkash token: %w", err)
	}

	headers := map[string]string{
		"authorization": token,
		"x-app-key":     c.appKey,
	}
	return c.do(ctx, op, path, headers, payload, out)
}

func (c *bkashClientImpl) do(ctx context.Context, op, path string, headers map[string]string, payload any, out bkashResponse) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bkash %s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read bkash %s response: %w", op, err)
	}

	// error bodies are decoded on a best effort basis for the message
	decodeErr := json.Unmarshal(respBody, out)
	st := out.status()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := st.message()
		if msg == "" {
			msg = string(respBody)
		}
		return &GatewayError{Op: op, HTTPStatus: resp.StatusCode, Code: st.code(), Message: msg}
	}
	if decodeErr != nil {
		return fmt.Errorf("decode bkash %s response: %w", op, decodeErr)
	}
	if st.code() != bkashSuccessCode {
		return &GatewayError{Op: op, HTTPStatus: resp.StatusCode, Code: st.code(), Message: st.message()}
	}

	return nil
}

func (c *bkashClientImpl) CreatePayment(ctx context.Context, req BkashCreatePaymentRequest) (*BkashCreatePaymentResult, error) {
	payload := map[string]string{
		"mode":                  "0011",
		"payerReference":        req.PayerReference,
		"callbackURL":           req.CallbackURL,
		"amount":                req.Amount.StringFixed(2),
		"currency":              "BDT",
		"intent":                "sale",
		"merchantInvoiceNumber": req.OrderNumber,
	}

	var result BkashCreatePaymentResult
	if err := c.authorized(ctx, "create payment", "/create", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *bkashClientImpl) ExecutePayment(ctx context.Context, paymentID string) (*BkashExecuteResult, error) {
	var result BkashExecuteResult
	if err := c.authorized(ctx, "execute payment", "/execute", map[string]string{"paymentID": paymentID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *bkashClientImpl) QueryPayment(ctx context.Context, paymentID string) (*BkashQueryResult, error) {
	var result BkashQueryResult
	if err := c.authorized(ctx, "query payment", "/payment/status", map[string]string{"paymentID": paymentID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *bkashClientImpl) RefundPayment(ctx context.Context, req BkashRefundRequest) (*BkashRefundResult, error) {
	sku := req.SKU
	if sku == "" {
		sku = "refund"
	}
	payload := map[string]string{
		"paymentID": req.PaymentID,
		"amount":    req.Amount.StringFixed(2),
		"trxID":     req.TrxID,
		"sku":       sku,
		"reason":    req.Reason,
	}

	var result BkashRefundResult
	if err := c.authorized(ctx, "refund payment", "/payment/refund", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *bkashClientImpl) SearchTransaction(ctx context.Context, trxID string) (*BkashTransaction, error) {
	var result BkashTransaction
	if err := c.authorized(ctx, "search transaction", "/general/searchTransaction", map[string]string{"trxID": trxID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
