package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"heriken-shop/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPhoneNumber(t *testing.T) {
	cases := map[string]string{
		"+880 1712-345678": "8801712345678",
		"01712345678":      "8801712345678",
		"1712345678":       "8801712345678",
		"17123456789":      "88017123456789",
		"12345":            "12345",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatPhoneNumber(in), in)
	}
}

func TestIsValidBangladeshPhone(t *testing.T) {
	assert.True(t, IsValidBangladeshPhone("01712345678"))
	assert.True(t, IsValidBangladeshPhone("8801912345678"))
	assert.False(t, IsValidBangladeshPhone("01212345678"))
	assert.False(t, IsValidBangladeshPhone("0171234567"))
	assert.False(t, IsValidBangladeshPhone("hello"))
}

func newTestSms(t *testing.T, h http.HandlerFunc) SmsClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewSmsClient(&config.MimSMS{
		BaseApiURL: srv.URL,
		Username:   "heriken",
		ApiKey:     "key",
		SenderName: "Heriken",
	}, WithSmsHTTPClient(srv.Client()))
}

func TestNewSmsClientOptions(t *testing.T) {
	cfg := &config.MimSMS{BaseApiURL: "https://api.mimsms.com/"}

	c := NewSmsClient(cfg).(*smsClientImpl)
	require.NotNil(t, c.httpClient)
	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
	assert.Equal(t, "https://api.mimsms.com", c.baseApiURL)

	hc := &http.Client{Timeout: time.Second}
	c = NewSmsClient(cfg, WithSmsHTTPClient(hc)).(*smsClientImpl)
	assert.Same(t, hc, c.httpClient)
}

func TestSendSMS(t *testing.T) {
	var got smsPayload
	c := newTestSms(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/SmsSending/SMS", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, map[string]string{"statusCode": "200", "status": "Success", "trxnId": "T1"})
	})

	res, err := c.SendSMS(context.Background(), "01712345678", "hello")
	require.NoError(t, err)

	assert.Equal(t, "T1", res.TrxnID)
	assert.Equal(t, "8801712345678", got.MobileNumber)
	assert.Equal(t, SmsTransactional, got.TransactionType)
	assert.Equal(t, "null", got.CampaignId)
	assert.Equal(t, "heriken", got.UserName)
	assert.Equal(t, "key", got.Apikey)
}

func TestSendSMSFailureStatus(t *testing.T) {
	c := newTestSms(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"statusCode": "208", "status": "Failed", "responseResult": "Invalid number"})
	})

	_, err := c.SendSMS(context.Background(), "01712345678", "hello")

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "208", gwErr.Code)
}

func TestSendBulkSMS(t *testing.T) {
	var got smsPayload
	c := newTestSms(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/SmsSending/OneToMany", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, map[string]string{"statusCode": "200", "status": "Success"})
	})

	_, err := c.SendBulkSMS(context.Background(), []string{"01712345678", "8801812345678"}, "news", "")
	require.NoError(t, err)

	assert.Equal(t, "8801712345678,8801812345678", got.MobileNumber)
	assert.Equal(t, SmsPromotional, got.TransactionType)

	_, err = c.SendBulkSMS(context.Background(), nil, "news", "")
	assert.Error(t, err)
}

func TestCheckBalance(t *testing.T) {
	c := newTestSms(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/SmsSending/balanceCheck", r.URL.Path)
		writeJSON(w, map[string]string{"statusCode": "200", "status": "Success", "responseResult": "152.75"})
	})

	bal, err := c.CheckBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 152.75, bal.Balance)
	assert.Equal(t, "Success", bal.Status)
}

func TestSmsHTTPError(t *testing.T) {
	c := newTestSms(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.CheckBalance(context.Background())

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusBadGateway, gwErr.HTTPStatus)
}
