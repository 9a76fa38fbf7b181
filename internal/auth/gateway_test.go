package auth

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"
)

// helper: builds a payload with a valid sig and the given auth_date
func buildPayload(secret string, authDate time.Time, extra map[string]string) string {
	params := url.Values{}
	params.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	for k, v := range extra {
		params.Set(k, v)
	}

	var pairs []string
	for key, values := range params {
		for _, v := range values {
			pairs = append(pairs, fmt.Sprintf("%s=%s", key, v))
		}
	}
	sort.Strings(pairs)
	dataCheckString := strings.Join(pairs, "\n")

	sig := hmacSHA256([]byte(secret), []byte(dataCheckString))
	params.Set("sig", hex.EncodeToString(sig))

	return params.Encode()
}

func TestValidateGatewayPayload_ValidSig(t *testing.T) {
	secret := "test-gateway-secret"

	payload := buildPayload(secret, time.Now().Add(-30*time.Second), map[string]string{
		"email":     "backer@example.com",
		"full_name": "Test Backer",
	})

	result, err := ValidateGatewayPayload(payload, secret, 5*time.Minute)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if result.Get("email") != "backer@example.com" {
		t.Errorf("expected email=backer@example.com, got %s", result.Get("email"))
	}
}

func TestValidateGatewayPayload_ExpiredAuthDate(t *testing.T) {
	secret := "test-gateway-secret"

	payload := buildPayload(secret, time.Now().Add(-10*time.Minute), map[string]string{
		"email": "backer@example.com",
	})

	_, err := ValidateGatewayPayload(payload, secret, 5*time.Minute)
	if err == nil {
		t.Fatal("expected error for expired payload")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Errorf("expected 'expired' in error, got: %s", err.Error())
	}
}

func TestValidateGatewayPayload_FutureAuthDate(t *testing.T) {
	secret := "test-gateway-secret"

	payload := buildPayload(secret, time.Now().Add(5*time.Minute), map[string]string{
		"email": "backer@example.com",
	})

	_, err := ValidateGatewayPayload(payload, secret, 5*time.Minute)
	if err == nil {
		t.Fatal("expected error for future auth_date")
	}
	if !strings.Contains(err.Error(), "future") {
		t.Errorf("expected 'future' in error, got: %s", err.Error())
	}
}

func TestValidateGatewayPayload_DefaultMaxAge(t *testing.T) {
	secret := "test-gateway-secret"

	payload := buildPayload(secret, time.Now().Add(-10*time.Second), map[string]string{
		"email": "backer@example.com",
	})

	_, err := ValidateGatewayPayload(payload, secret, 0)
	if err != nil {
		t.Fatalf("expected no error with default maxAge, got: %v", err)
	}
}

func TestValidateGatewayPayload_InvalidSig(t *testing.T) {
	params := url.Values{}
	params.Set("auth_date", strconv.FormatInt(time.Now().Unix(), 10))
	params.Set("email", "backer@example.com")
	params.Set("sig", "invalidsig")

	_, err := ValidateGatewayPayload(params.Encode(), "test-gateway-secret", 5*time.Minute)
	if err == nil {
		t.Fatal("expected error for invalid sig")
	}
}

func TestValidateGatewayPayload_MissingSig(t *testing.T) {
	params := url.Values{}
	params.Set("auth_date", strconv.FormatInt(time.Now().Unix(), 10))
	params.Set("email", "backer@example.com")

	_, err := ValidateGatewayPayload(params.Encode(), "secret", 5*time.Minute)
	if err == nil {
		t.Fatal("expected error for missing sig")
	}
}

func TestValidateGatewayPayload_MissingEmail(t *testing.T) {
	secret := "test-gateway-secret"

	payload := buildPayload(secret, time.Now(), map[string]string{
		"full_name": "No Email",
	})

	_, err := ValidateGatewayPayload(payload, secret, 5*time.Minute)
	if err == nil {
		t.Fatal("expected error for missing email")
	}
}

func TestValidateGatewayPayload_TamperedField(t *testing.T) {
	secret := "test-gateway-secret"

	payload := buildPayload(secret, time.Now(), map[string]string{
		"email": "backer@example.com",
	})
	tampered := strings.Replace(payload, "backer%40example.com", "attacker%40example.com", 1)

	_, err := ValidateGatewayPayload(tampered, secret, 5*time.Minute)
	if err == nil {
		t.Fatal("expected error for tampered email")
	}
}
