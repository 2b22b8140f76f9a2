package client

import "fmt"

var bkashErrorMessages = map[string]string{
	"0001": "Insufficient Balance",
	"0002": "Transaction Limit Exceeded",
	"0003": "Invalid Merchant",
	"0004": "Invalid Amount",
	"0005": "Transaction Failed",
	"0006": "Transaction Cancelled",
	"0007": "Invalid Request",
	"0008": "Duplicate Transaction",
	"0009": "System Error",
	"0010": "Invalid Token",
}

// GatewayError is a failed call to an external gateway, either a non 2xx
// response or an application level failure code.
type GatewayError struct {
	Gateway    string
	Op         string
	HTTPStatus int
	Code       string
	Message    string
}

func (e *GatewayError) Error() string {
	gateway := e.Gateway
	if gateway == "" {
		gateway = "bkash"
	}
	return fmt.Sprintf("%s %s failed: status=%d code=%s message=%s", gateway, e.Op, e.HTTPStatus, e.Code, e.Message)
}

// Describe maps known bKash codes to a customer readable message.
func (e *GatewayError) Describe() string {
	if msg, ok := bkashErrorMessages[e.Code]; ok {
		return msg
	}
	if e.Message != "" {
		return e.Message
	}
	return "Unknown error occurred"
}
