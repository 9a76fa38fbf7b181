package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultPayloadTTL is the maximum accepted age of auth_date in a
	// gateway payload. The identity gateway re-signs on every login, so a
	// short window is enough.
	DefaultPayloadTTL = 5 * time.Minute
)

// ValidateGatewayPayload checks an HMAC-SHA256 signed identity payload from
// the frontend gateway. The payload is urlencoded key=value pairs carrying at
// least email, auth_date and sig; sig covers every other pair, sorted by key
// and joined with newlines.
//
// maxAge caps the accepted age of auth_date. If <= 0, DefaultPayloadTTL is
// used.
func ValidateGatewayPayload(payload string, secret string, maxAge time.Duration) (url.Values, error) {
	if maxAge <= 0 {
		maxAge = DefaultPayloadTTL
	}

	vals, err := url.ParseQuery(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid payload format: %w", err)
	}

	receivedSig := vals.Get("sig")
	if receivedSig == "" {
		return nil, fmt.Errorf("sig is missing from payload")
	}

	if vals.Get("email") == "" {
		return nil, fmt.Errorf("email is missing from payload")
	}

	authDateStr := vals.Get("auth_date")
	if authDateStr == "" {
		return nil, fmt.Errorf("auth_date is missing from payload")
	}
	authDateUnix, err := strconv.ParseInt(authDateStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("auth_date is not a valid unix timestamp")
	}
	authDate := time.Unix(authDateUnix, 0)
	if time.Since(authDate) > maxAge {
		return nil, fmt.Errorf("payload expired: auth_date is %s old (max %s)", time.Since(authDate).Round(time.Second), maxAge)
	}
	// clock skew tolerance is 1 minute
	if authDate.After(time.Now().Add(1 * time.Minute)) {
		return nil, fmt.Errorf("auth_date is in the future")
	}

	var pairs []string
	for key, values := range vals {
		if key == "sig" {
			continue
		}
		for _, v := range values {
			pairs = append(pairs, fmt.Sprintf("%s=%s", key, v))
		}
	}
	sort.Strings(pairs)
	dataCheckString := strings.Join(pairs, "\n")

	calculatedSig := hex.EncodeToString(hmacSHA256([]byte(secret), []byte(dataCheckString)))
	if !hmac.Equal([]byte(calculatedSig), []byte(receivedSig)) {
		return nil, fmt.Errorf("invalid sig: data integrity check failed")
	}

	return vals, nil
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}
