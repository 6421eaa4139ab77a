package services

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
)

// ccavenueIV is the fixed initialization vector mandated by the CCAvenue
// wire protocol. It is NOT a security choice of ours: the gateway expects
// this exact scheme and will not decrypt anything else. Do not reuse this
// cipher outside the CCAvenue adapter.
var ccavenueIV = []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f}

// CCAvenueService builds encrypted gateway requests and decrypts the
// asynchronous callback payloads
type CCAvenueService struct {
	MerchantID string
	AccessCode string
	WorkingKey string
	GatewayURL string
	AppURL     string
}

func NewCCAvenueService() *CCAvenueService {
	gatewayURL := os.Getenv("CCAVENUE_GATEWAY_URL")
	if gatewayURL == "" {
		gatewayURL = "https://secure.ccavenue.com/transaction/transaction.do?command=initiateTransaction"
	}
	return &CCAvenueService{
		MerchantID: os.Getenv("CCAVENUE_MERCHANT_ID"),
		AccessCode: os.Getenv("CCAVENUE_ACCESS_CODE"),
		WorkingKey: os.Getenv("CCAVENUE_WORKING_KEY"),
		GatewayURL: gatewayURL,
		AppURL:     os.Getenv("APP_URL"),
	}
}

// CCAvenueEncrypt encrypts a plaintext payload into the hex string the
// gateway expects: AES-128-CBC with an MD5-derived key, fixed IV and
// PKCS#7 padding.
func CCAvenueEncrypt(plaintext, workingKey string) (string, error) {
	key := md5.Sum([]byte(workingKey))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	encrypted := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, ccavenueIV).CryptBlocks(encrypted, padded)

	return hex.EncodeToString(encrypted), nil
}

// CCAvenueDecrypt reverses CCAvenueEncrypt for inbound callbacks
func CCAvenueDecrypt(encHex, workingKey string) (string, error) {
	encrypted, err := hex.DecodeString(encHex)
	if err != nil {
		return "", fmt.Errorf("invalid hex payload: %w", err)
	}
	if len(encrypted) == 0 || len(encrypted)%aes.BlockSize != 0 {
		return "", fmt.Errorf("payload length %d is not block aligned", len(encrypted))
	}

	key := md5.Sum([]byte(workingKey))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return "", err
	}

	plain := make([]byte, len(encrypted))
	cipher.NewCBCDecrypter(block, ccavenueIV).CryptBlocks(plain, encrypted)

	plain, err = pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty padded payload")
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return nil, fmt.Errorf("invalid padding byte %d", padding)
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, fmt.Errorf("corrupt padding")
		}
	}
	return data[:len(data)-padding], nil
}

// GatewayRequest carries the billing fields CCAvenue requires on the
// outbound redirect. Field names are contractual.
type GatewayRequest struct {
	OrderID        string
	Amount         float64
	Currency       string
	BillingName    string
	BillingAddress string
	BillingCity    string
	BillingState   string
	BillingZip     string
	BillingCountry string
	BillingTel     string
	BillingEmail   string
	RedirectPath   string
	CancelPath     string
	MerchantParam1 string
}

// BuildEncryptedRequest encodes and encrypts the outbound transaction
// payload. The returned string is posted to the gateway as encRequest.
func (s *CCAvenueService) BuildEncryptedRequest(req GatewayRequest) (string, error) {
	if s.MerchantID == "" || s.WorkingKey == "" {
		return "", fmt.Errorf("ccavenue credentials not configured")
	}
	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	v := url.Values{}
	v.Set("merchant_id", s.MerchantID)
	v.Set("order_id", req.OrderID)
	v.Set("currency", currency)
	v.Set("amount", fmt.Sprintf("%.2f", req.Amount))
	v.Set("redirect_url", s.AppURL+req.RedirectPath)
	v.Set("cancel_url", s.AppURL+req.CancelPath)
	v.Set("language", "EN")
	v.Set("billing_name", req.BillingName)
	v.Set("billing_address", req.BillingAddress)
	v.Set("billing_city", req.BillingCity)
	v.Set("billing_state", req.BillingState)
	v.Set("billing_zip", req.BillingZip)
	v.Set("billing_country", req.BillingCountry)
	v.Set("billing_tel", req.BillingTel)
	v.Set("billing_email", req.BillingEmail)
	if req.MerchantParam1 != "" {
		v.Set("merchant_param1", req.MerchantParam1)
	}

	return CCAvenueEncrypt(v.Encode(), s.WorkingKey)
}

// GatewayCallback is the parsed result of a decrypted encResp payload
type GatewayCallback struct {
	OrderID       string
	TrackingID    string
	OrderStatus   string
	StatusMessage string
	Amount        string
	Raw           url.Values
}

// DecryptCallback decrypts and parses the gateway's encResp payload
func (s *CCAvenueService) DecryptCallback(encResp string) (*GatewayCallback, error) {
	plain, err := CCAvenueDecrypt(encResp, s.WorkingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt gateway response: %w", err)
	}

	values, err := url.ParseQuery(plain)
	if err != nil {
		return nil, fmt.Errorf("failed to parse gateway response: %w", err)
	}

	cb := &GatewayCallback{
		OrderID:       values.Get("order_id"),
		TrackingID:    values.Get("tracking_id"),
		OrderStatus:   values.Get("order_status"),
		StatusMessage: values.Get("status_message"),
		Amount:        values.Get("amount"),
		Raw:           values,
	}
	if cb.OrderID == "" {
		return nil, fmt.Errorf("gateway response missing order_id")
	}
	return cb, nil
}

// IsSuccessStatus reports whether a gateway order_status value counts as
// a successful payment. CCAvenue reports success under several labels.
func IsSuccessStatus(status string) bool {
	switch status {
	case "Success", "Shipped", "Successful":
		return true
	}
	return false
}
