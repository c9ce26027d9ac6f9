package detector

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLocation(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		city    string
		want    Location
	}{
		{
			name: "no headers",
			want: Location{City: "Unknown", Country: "Unknown"},
		},
		{
			name:    "cloudflare headers",
			headers: map[string]string{"CF-IPCountry": "ID", "CF-IPCity": "Jakarta"},
			want:    Location{City: "Jakarta", Country: "ID"},
		},
		{
			name:    "body city wins",
			headers: map[string]string{"CF-IPCountry": "ID", "CF-IPCity": "Jakarta"},
			city:    "Bandung",
			want:    Location{City: "Bandung", Country: "ID"},
		},
		{
			name:    "vercel encoded city",
			headers: map[string]string{"X-Vercel-IP-Country": "BR", "X-Vercel-IP-City": "S%C3%A3o%20Paulo"},
			want:    Location{City: "São Paulo", Country: "BR"},
		},
		{
			name:    "cloudflare unknown country",
			headers: map[string]string{"CF-IPCountry": "XX"},
			want:    Location{City: "Unknown", Country: "Unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tt.headers {
				h.Set(k, v)
			}
			assert.Equal(t, tt.want, DetectLocation(h, tt.city))
		})
	}
}

func TestGetClientIP(t *testing.T) {
	assert.Equal(t, "198.51.100.1", GetClientIP("10.0.0.1:5555", "198.51.100.1, 10.0.0.2", ""))
	assert.Equal(t, "198.51.100.9", GetClientIP("10.0.0.1:5555", "", "198.51.100.9"))
	assert.Equal(t, "10.0.0.1", GetClientIP("10.0.0.1:5555", "", ""))
	assert.Equal(t, "localhost", GetClientIP("localhost", "", ""))
}
