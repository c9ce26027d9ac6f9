package generator

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"strconv"
	"time"
)

const (
	urlSafeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	// ShortIDLength gives 64^8 possible ids.
	ShortIDLength = 8
)

func GenerateShortID() (string, error) {
	return randomString(ShortIDLength)
}

func randomString(length int) (string, error) {
	b := make([]byte, length)
	max := big.NewInt(int64(len(urlSafeChars)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}

		b[i] = urlSafeChars[n.Int64()]
	}

	return string(b), nil
}

// VisitorID derives a visitor id on the server side when the landing page
// did not supply a fingerprint. The time component makes it unique per visit,
// so it never deduplicates repeat visitors.
func VisitorID(ip, userAgent string, now time.Time) string {
	sum := sha256.Sum256([]byte(ip + userAgent + strconv.FormatInt(now.UnixNano(), 10)))
	ts := strconv.FormatInt(now.UnixMilli(), 36)
	if len(ts) > 4 {
		ts = ts[len(ts)-4:]
	}
	return "v_" + hex.EncodeToString(sum[:6]) + "_" + ts
}
