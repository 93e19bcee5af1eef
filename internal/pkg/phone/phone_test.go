package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhatsAppLink(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"local number", "081234567890", "https://wa.me/6281234567890", true},
		{"formatted local number", "0812-3456 7890", "https://wa.me/6281234567890", true},
		{"already international", "+62 812 3456 7890", "https://wa.me/6281234567890", true},
		{"only the first zero is replaced", "00812", "https://wa.me/620812", true},
		{"empty", "", "", false},
		{"no digits", "n/a", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := WhatsAppLink(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "6281234567890", Normalize("081234567890"))
	assert.Equal(t, "", Normalize(""))
}
