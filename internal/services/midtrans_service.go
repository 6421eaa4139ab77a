package services

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

// MidtransService is the alternative gateway adapter. The worker also
// uses its status API to re-check stale pending payments.
type MidtransService struct {
	SnapClient coreClients
	serverKey  string
}

type coreClients struct {
	Snap snap.Client
	Core coreapi.Client
}

func NewMidtransService() *MidtransService {
	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	clientKey := os.Getenv("MIDTRANS_CLIENT_KEY")
	envStr := os.Getenv("MIDTRANS_IS_PRODUCTION")

	env := midtrans.Sandbox
	if envStr == "true" {
		env = midtrans.Production
	}

	var s snap.Client
	s.New(serverKey, env)

	var c coreapi.Client
	c.New(serverKey, env)

	midtrans.ServerKey = serverKey
	midtrans.ClientKey = clientKey
	midtrans.Environment = env

	return &MidtransService{
		SnapClient: coreClients{Snap: s, Core: c},
		serverKey:  serverKey,
	}
}

// CreateTransaction creates a Snap transaction and returns the redirect URL and token
func (s *MidtransService) CreateTransaction(orderID string, amount int64, param *snap.Request) (*snap.Response, error) {
	if param == nil {
		param = &snap.Request{
			TransactionDetails: midtrans.TransactionDetails{
				OrderID:  orderID,
				GrossAmt: amount,
			},
		}
	} else {
		if param.TransactionDetails.OrderID == "" {
			param.TransactionDetails.OrderID = orderID
		}
		if param.TransactionDetails.GrossAmt == 0 {
			param.TransactionDetails.GrossAmt = amount
		}
	}

	resp, err := s.SnapClient.Snap.CreateTransaction(param)
	if err != nil {
		return nil, fmt.Errorf("midtrans create transaction error: %v", err)
	}

	return resp, nil
}

// CheckTransaction fetches the current status of an order from midtrans
func (s *MidtransService) CheckTransaction(orderID string) (*coreapi.TransactionStatusResponse, error) {
	resp, err := s.SnapClient.Core.CheckTransaction(orderID)
	if err != nil {
		return nil, fmt.Errorf("midtrans check transaction error: %v", err)
	}
	return resp, nil
}

// CancelTransaction cancels a pending order at midtrans
func (s *MidtransService) CancelTransaction(orderID string) error {
	_, err := s.SnapClient.Core.CancelTransaction(orderID)
	if err != nil {
		return fmt.Errorf("midtrans cancel transaction error: %v", err)
	}
	return nil
}

// VerifySignature checks the notification signature:
// SHA512(order_id + status_code + gross_amount + server key)
func (s *MidtransService) VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + s.serverKey))
	return hex.EncodeToString(sum[:]) == signatureKey
}

// IsSettled reports whether a midtrans transaction_status means paid
func IsSettled(status string) bool {
	return status == "settlement" || status == "capture"
}

// IsDenied reports whether a midtrans transaction_status is a terminal failure
func IsDenied(status string) bool {
	switch status {
	case "deny", "expire", "cancel", "failure":
		return true
	}
	return false
}
