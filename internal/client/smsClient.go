package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"heriken-shop/internal/config"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const smsSuccessCode = "200"

type SmsTransactionType string

const (
	SmsTransactional SmsTransactionType = "T"
	SmsPromotional   SmsTransactionType = "P"
)

type SmsClient interface {
	SendSMS(ctx context.Context, phone, message string) (*SmsResult, error)
	SendBulkSMS(ctx context.Context, phones []string, message string, kind SmsTransactionType) (*SmsResult, error)
	CheckBalance(ctx context.Context) (*SmsBalance, error)
}

type smsClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	username   string
	apiKey     string
	senderName string
}

type SmsResult struct {
	StatusCode     string `json:"statusCode"`
	Status         string `json:"status"`
	TrxnID         string `json:"trxnId,omitempty"`
	ResponseResult string `json:"responseResult"`
}

type SmsBalance struct {
	Balance float64 `json:"balance"`
	Status  string  `json:"status"`
}

type smsPayload struct {
	UserName        string             `json:"UserName"`
	Apikey          string             `json:"Apikey"`
	MobileNumber    string             `json:"MobileNumber,omitempty"`
	CampaignId      string             `json:"CampaignId,omitempty"`
	SenderName      string             `json:"SenderName,omitempty"`
	TransactionType SmsTransactionType `json:"TransactionType,omitempty"`
	Message         string             `json:"Message,omitempty"`
}

type SmsOption func(*smsClientImpl)

func WithSmsHTTPClient(hc *http.Client) SmsOption {
	return func(c *smsClientImpl) { c.httpClient = hc }
}

func NewSmsClient(smsCfg *config.MimSMS, opts ...SmsOption) SmsClient {
	c := &smsClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: strings.TrimRight(smsCfg.BaseApiURL, "/"),
		username:   smsCfg.Username,
		apiKey:     smsCfg.ApiKey,
		senderName: smsCfg.SenderName,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *smsClientImpl) SendSMS(ctx context.Context, phone, message string) (*SmsResult, error) {
	payload := smsPayload{
		UserName:        c.username,
		Apikey:          c.apiKey,
		MobileNumber:    FormatPhoneNumber(phone),
		CampaignId:      "null",
		SenderName:      c.senderName,
		TransactionType: SmsTransactional,
		Message:         message,
	}

	var result SmsResult
	if err := c.post(ctx, "send sms", "/api/SmsSending/SMS", payload, &result); err != nil {
		return nil, err
	}
	if result.StatusCode != smsSuccessCode {
		return &result, &GatewayError{Gateway: "mimsms", Op: "send sms", HTTPStatus: http.StatusOK, Code: result.StatusCode, Message: result.ResponseResult}
	}
	return &result, nil
}

func (c *smsClientImpl) SendBulkSMS(ctx context.Context, phones []string, message string, kind SmsTransactionType) (*SmsResult, error) {
	if len(phones) == 0 {
		return nil, fmt.Errorf("send bulk sms: no recipients")
	}
	if kind == "" {
		kind = SmsPromotional
	}

	formatted := make([]string, 0, len(phones))
	for _, p := range phones {
		formatted = append(formatted, FormatPhoneNumber(p))
	}

	payload := smsPayload{
		UserName:        c.username,
		Apikey:          c.apiKey,
		MobileNumber:    strings.Join(formatted, ","),
		CampaignId:      "null",
		SenderName:      c.senderName,
		TransactionType: kind,
		Message:         message,
	}

	var result SmsResult
	if err := c.post(ctx, "send bulk sms", "/api/SmsSending/OneToMany", payload, &result); err != nil {
		return nil, err
	}
	if result.StatusCode != smsSuccessCode {
		return &result, &GatewayError{Gateway: "mimsms", Op: "send bulk sms", HTTPStatus: http.StatusOK, Code: result.StatusCode, Message: result.ResponseResult}
	}
	return &result, nil
}

func (c *smsClientImpl) CheckBalance(ctx context.Context) (*SmsBalance, error) {
	payload := smsPayload{
		UserName: c.username,
		Apikey:   c.apiKey,
	}

	var result SmsResult
	if err := c.post(ctx, "balance check", "/api/SmsSending/balanceCheck", payload, &result); err != nil {
		return nil, err
	}

	balance, err := strconv.ParseFloat(strings.TrimSpace(result.ResponseResult), 64)
	if err != nil {
		balance = 0
	}
	return &SmsBalance{Balance: balance, Status: result.Status}, nil
}

func (c *smsClientImpl) post(ctx context.Context, op, path string, payload any, out any) error {
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

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mimsms %s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &GatewayError{Gateway: "mimsms", Op: op, HTTPStatus: resp.StatusCode, Message: string(respBody)}
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode mimsms %s response: %w", op, err)
	}
	return nil
}

var (
	nonDigits    = regexp.MustCompile(`\D`)
	bdMobileExpr = regexp.MustCompile(`^880[1][3-9]\d{8}$`)
)

// FormatPhoneNumber normalises a Bangladesh number to the 880 prefixed form.
// Numbers it does not recognise are returned as bare digits.
func FormatPhoneNumber(phone string) string {
	cleaned := nonDigits.ReplaceAllString(phone, "")

	switch {
	case strings.HasPrefix(cleaned, "880"):
		return cleaned
	case strings.HasPrefix(cleaned, "0"):
		return "88" + cleaned
	case len(cleaned) == 11 && strings.HasPrefix(cleaned, "1"):
		return "880" + cleaned
	case len(cleaned) == 10:
		return "8801" + cleaned
	}
	return cleaned
}

func IsValidBangladeshPhone(phone string) bool {
	return bdMobileExpr.MatchString(FormatPhoneNumber(phone))
}
