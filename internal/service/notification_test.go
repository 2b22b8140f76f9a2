package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageTemplates(t *testing.T) {
	assert.Contains(t, otpMessage("482913"), "482913")

	msg := orderConfirmationMessage("HK-1", decimal.NewFromInt(1500), decimal.NewFromInt(500), decimal.NewFromInt(1000))
	assert.Contains(t, msg, "#HK-1")
	assert.Contains(t, msg, "৳1500")
	assert.Contains(t, msg, "অগ্রিম পেমেন্ট: ৳500")
	assert.Contains(t, msg, "ক্যাশ অন ডেলিভারি: ৳1000")

	plain := orderConfirmationMessage("HK-1", decimal.NewFromInt(1500), decimal.Zero, decimal.Zero)
	assert.NotContains(t, plain, "অগ্রিম")
	assert.NotContains(t, plain, "ক্যাশ")

	shipped := orderShippedMessage("HK-2", "TRK9", "https://track.example/TRK9")
	assert.Contains(t, shipped, "TRK9")
	assert.Contains(t, shipped, "https://track.example/TRK9")
	assert.NotContains(t, orderShippedMessage("HK-2", "", ""), "ট্র্যাক")

	assert.Contains(t, paymentReceivedMessage("HK-3", decimal.NewFromInt(700), "bKash"), "bKash")
	assert.Contains(t, orderDeliveredMessage("HK-4"), "#HK-4")
	assert.Contains(t, preorderReleaseMessage("Panjabi", "HK-5"), "#HK-5")
	assert.NotContains(t, preorderReleaseMessage("Panjabi", ""), "#")
}

func TestNotificationErrorsAreReturned(t *testing.T) {
	sms := &fakeSms{fail: true}
	svc := NewNotificationService(sms)

	err := svc.SendOTP(context.Background(), "8801712345678", "123456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send otp sms")

	assert.Error(t, svc.SendBulk(context.Background(), []string{"8801712345678"}, "hi"))
}
