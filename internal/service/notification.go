package service

import (
	"context"
	"fmt"
	"heriken-shop/internal/client"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type NotificationService interface {
	SendOTP(ctx context.Context, phone, code string) error
	SendOrderConfirmation(ctx context.Context, phone, orderNumber string, total, prepaid, cod decimal.Decimal) error
	SendPaymentReceived(ctx context.Context, phone, orderNumber string, amount decimal.Decimal, method string) error
	SendOrderShipped(ctx context.Context, phone, orderNumber, trackingNumber, trackingURL string) error
	SendOrderDelivered(ctx context.Context, phone, orderNumber string) error
	SendPreorderRelease(ctx context.Context, phone, productName, orderNumber string) error
	SendBulk(ctx context.Context, phones []string, message string) error
	Balance(ctx context.Context) (*client.SmsBalance, error)
}

type notificationServiceImpl struct {
	smsClient client.SmsClient
}

func NewNotificationService(smsClient client.SmsClient) NotificationService {
	return &notificationServiceImpl{
		smsClient: smsClient,
	}
}

func otpMessage(code string) string {
	return fmt.Sprintf("আপনার Heriken যাচাইকরণ কোড: %s। এই কোডটি ৫ মিনিটের জন্য বৈধ। কোডটি কারো সাথে শেয়ার করবেন না।", code)
}

func orderConfirmationMessage(orderNumber string, total, prepaid, cod decimal.Decimal) string {
	msg := fmt.Sprintf("আপনার অর্ডার #%s নিশ্চিত হয়েছে। মোট: ৳%s", orderNumber, total)
	if prepaid.IsPositive() {
		msg += fmt.Sprintf(", অগ্রিম পেমেন্ট: ৳%s", prepaid)
	}
	if cod.IsPositive() {
		msg += fmt.Sprintf(", ক্যাশ অন ডেলিভারি: ৳%s", cod)
	}
	return msg + "। ধন্যবাদ - Heriken"
}

func paymentReceivedMessage(orderNumber string, amount decimal.Decimal, method string) string {
	return fmt.Sprintf("আপনার অর্ডার #%s এর ৳%s টাকা %s এর মাধ্যমে সফলভাবে পেমেন্ট হয়েছে। ধন্যবাদ - Heriken", orderNumber, amount, method)
}

func orderShippedMessage(orderNumber, trackingNumber, trackingURL string) string {
	msg := fmt.Sprintf("আপনার অর্ডার #%s পাঠানো হয়েছে।", orderNumber)
	if trackingNumber != "" {
		msg += " ট্র্যাকিং নম্বর: " + trackingNumber
	}
	if trackingURL != "" {
		msg += " ট্র্যাক করুন: " + trackingURL
	}
	return msg + " - Heriken"
}

func orderDeliveredMessage(orderNumber string) string {
	return fmt.Sprintf("আপনার অর্ডার #%s সফলভাবে ডেলিভার হয়েছে। Heriken এর সাথে কেনাকাটার জন্য ধন্যবাদ!", orderNumber)
}

func preorderReleaseMessage(productName, orderNumber string) string {
	msg := fmt.Sprintf("সুখবর! আপনার প্রি-অর্ডার পণ্য \"%s\" এখন উপলব্ধ।", productName)
	if orderNumber != "" {
		msg += " অর্ডার #" + orderNumber
	}
	return msg + " - Heriken"
}

func (s *notificationServiceImpl) send(ctx context.Context, kind, phone, message string) error {
	if _, err := s.smsClient.SendSMS(ctx, phone, message); err != nil {
		log.WithError(err).WithFields(log.Fields{"kind": kind, "phone": phone}).Error("Failed to send SMS")
		return fmt.Errorf("send %s sms: %w", kind, err)
	}
	return nil
}

func (s *notificationServiceImpl) SendOTP(ctx context.Context, phone, code string) error {
	return s.send(ctx, "otp", phone, otpMessage(code))
}

func (s *notificationServiceImpl) SendOrderConfirmation(ctx context.Context, phone, orderNumber string, total, prepaid, cod decimal.Decimal) error {
	return s.send(ctx, "order confirmation", phone, orderConfirmationMessage(orderNumber, total, prepaid, cod))
}

func (s *notificationServiceImpl) SendPaymentReceived(ctx context.Context, phone, orderNumber string, amount decimal.Decimal, method string) error {
	return s.send(ctx, "payment received", phone, paymentReceivedMessage(orderNumber, amount, method))
}

func (s *notificationServiceImpl) SendOrderShipped(ctx context.Context, phone, orderNumber, trackingNumber, trackingURL string) error {
	return s.send(ctx, "order shipped", phone, orderShippedMessage(orderNumber, trackingNumber, trackingURL))
}

func (s *notificationServiceImpl) SendOrderDelivered(ctx context.Context, phone, orderNumber string) error {
	return s.send(ctx, "order delivered", phone, orderDeliveredMessage(orderNumber))
}

func (s *notificationServiceImpl) SendPreorderRelease(ctx context.Context, phone, productName, orderNumber string) error {
	return s.send(ctx, "preorder release", phone, preorderReleaseMessage(productName, orderNumber))
}

func (s *notificationServiceImpl) SendBulk(ctx context.Context, phones []string, message string) error {
	if _, err := s.smsClient.SendBulkSMS(ctx, phones, message, client.SmsPromotional); err != nil {
		log.WithError(err).WithField("recipients", len(phones)).Error("Failed to send bulk SMS")
		return fmt.Errorf("send bulk sms: %w", err)
	}
	return nil
}

func (s *notificationServiceImpl) Balance(ctx context.Context) (*client.SmsBalance, error) {
	balance, err := s.smsClient.CheckBalance(ctx)
	if err != nil {
		return nil, fmt.Errorf("check sms balance: %w", err)
	}
	return balance, nil
}
