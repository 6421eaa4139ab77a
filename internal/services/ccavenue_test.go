package services

import (
	"encoding/hex"
	"net/url"
	"strings"
	"testing"
)

const testWorkingKey = "0123456789ABCDEF0123456789ABCDEF"

func TestCCAvenueEncryptDecryptRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		plaintext string
	}{
		{
			name:      "typical order payload",
			plaintext: "merchant_id=12345&order_id=ORD17000000011234&currency=INR&amount=1500.00",
		},
		{
			name:      "empty string",
			plaintext: "",
		},
		{
			name:      "exactly one block",
			plaintext: "0123456789abcdef",
		},
		{
			name:      "payload with unicode",
			plaintext: "billing_name=Ravi+Kumar&note=₹500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := CCAvenueEncrypt(tt.plaintext, testWorkingKey)
			if err != nil {
				t.Fatalf("CCAvenueEncrypt() error = %v", err)
			}

			// The gateway expects lowercase hex, block aligned
			raw, err := hex.DecodeString(enc)
			if err != nil {
				t.Fatalf("ciphertext is not valid hex: %v", err)
			}
			if len(raw)%16 != 0 {
				t.Errorf("ciphertext length %d is not block aligned", len(raw))
			}
			if enc != strings.ToLower(enc) {
				t.Errorf("ciphertext contains uppercase hex: %s", enc)
			}

			dec, err := CCAvenueDecrypt(enc, testWorkingKey)
			if err != nil {
				t.Fatalf("CCAvenueDecrypt() error = %v", err)
			}
			if dec != tt.plaintext {
				t.Errorf("round trip = %q; want %q", dec, tt.plaintext)
			}
		})
	}
}

func TestCCAvenueEncryptDeterministic(t *testing.T) {
	// Fixed key and IV mean identical input always yields identical
	// ciphertext. The gateway relies on this scheme.
	a, err := CCAvenueEncrypt("order_id=1", testWorkingKey)
	if err != nil {
		t.Fatal(err)
	}
	b, err := CCAvenueEncrypt("order_id=1", testWorkingKey)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("same plaintext produced different ciphertexts: %s vs %s", a, b)
	}
}

func TestCCAvenueDecryptRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not hex", input: "zzzz"},
		{name: "empty", input: ""},
		{name: "not block aligned", input: "abcd12"},
		{name: "garbage blocks", input: hex.EncodeToString(make([]byte, 16))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CCAvenueDecrypt(tt.input, testWorkingKey); err == nil {
				t.Errorf("CCAvenueDecrypt(%q) expected error, got nil", tt.input)
			}
		})
	}
}

func TestCCAvenueDecryptWrongKey(t *testing.T) {
	enc, err := CCAvenueEncrypt("order_id=ORD1&order_status=Success", testWorkingKey)
	if err != nil {
		t.Fatal(err)
	}

	dec, err := CCAvenueDecrypt(enc, "another-working-key-entirely")
	if err == nil && dec == "order_id=ORD1&order_status=Success" {
		t.Error("decryption with the wrong key recovered the plaintext")
	}
}

func TestBuildEncryptedRequest(t *testing.T) {
	svc := &CCAvenueService{
		MerchantID: "98765",
		AccessCode: "AVXX00XX00",
		WorkingKey: testWorkingKey,
		AppURL:     "https://club.example.com",
	}

	enc, err := svc.BuildEncryptedRequest(GatewayRequest{
		OrderID:      "ORD17000000011234",
		Amount:       2500,
		BillingName:  "Ravi Kumar",
		BillingEmail: "ravi@example.com",
		BillingTel:   "9876543210",
		RedirectPath: "/payment/ccavenue-booking-response",
		CancelPath:   "/payment/ccavenue-booking-response",
	})
	if err != nil {
		t.Fatalf("BuildEncryptedRequest() error = %v", err)
	}

	plain, err := CCAvenueDecrypt(enc, testWorkingKey)
	if err != nil {
		t.Fatalf("could not decrypt own request: %v", err)
	}
	values, err := url.ParseQuery(plain)
	if err != nil {
		t.Fatalf("payload is not a query string: %v", err)
	}

	checks := map[string]string{
		"merchant_id":  "98765",
		"order_id":     "ORD17000000011234",
		"currency":     "INR",
		"amount":       "2500.00",
		"redirect_url": "https://club.example.com/payment/ccavenue-booking-response",
		"billing_name": "Ravi Kumar",
	}
	for key, want := range checks {
		if got := values.Get(key); got != want {
			t.Errorf("payload %s = %q; want %q", key, got, want)
		}
	}
}

func TestBuildEncryptedRequestMissingCredentials(t *testing.T) {
	svc := &CCAvenueService{}
	if _, err := svc.BuildEncryptedRequest(GatewayRequest{OrderID: "ORD1"}); err == nil {
		t.Error("expected error when credentials are not configured")
	}
}

func TestDecryptCallback(t *testing.T) {
	svc := &CCAvenueService{WorkingKey: testWorkingKey}

	payload := url.Values{}
	payload.Set("order_id", "ORD17000000011234")
	payload.Set("tracking_id", "313006798489")
	payload.Set("order_status", "Success")
	payload.Set("amount", "1500.00")
	enc, err := CCAvenueEncrypt(payload.Encode(), testWorkingKey)
	if err != nil {
		t.Fatal(err)
	}

	cb, err := svc.DecryptCallback(enc)
	if err != nil {
		t.Fatalf("DecryptCallback() error = %v", err)
	}
	if cb.OrderID != "ORD17000000011234" {
		t.Errorf("OrderID = %q", cb.OrderID)
	}
	if cb.OrderStatus != "Success" {
		t.Errorf("OrderStatus = %q", cb.OrderStatus)
	}
	if cb.TrackingID != "313006798489" {
		t.Errorf("TrackingID = %q", cb.TrackingID)
	}
}

func TestDecryptCallbackMissingOrderID(t *testing.T) {
	svc := &CCAvenueService{WorkingKey: testWorkingKey}

	enc, err := CCAvenueEncrypt("order_status=Success", testWorkingKey)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.DecryptCallback(enc); err == nil {
		t.Error("expected error for payload without order_id")
	}
}

func TestIsSuccessStatus(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{"Success", true},
		{"Shipped", true},
		{"Successful", true},
		{"Failure", false},
		{"Aborted", false},
		{"Invalid", false},
		{"success", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsSuccessStatus(tt.status); got != tt.want {
			t.Errorf("IsSuccessStatus(%q) = %v; want %v", tt.status, got, tt.want)
		}
	}
}
