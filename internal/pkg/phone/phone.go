// Package phone turns borrower phone numbers into WhatsApp chat links.
package phone

import "strings"

// WhatsAppBase is the chat-link URL scheme
const WhatsAppBase = "https://wa.me/"

// CountryCode replaces the leading trunk zero of local numbers
const CountryCode = "62"

// Digits strips every non-digit character
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize returns the international form of a phone number: digits only,
// leading "0" replaced by the country code.
func Normalize(raw string) string {
	cleaned := Digits(raw)
	if strings.HasPrefix(cleaned, "0") {
		cleaned = CountryCode + cleaned[1:]
	}
	return cleaned
}

// WhatsAppLink builds the chat link for a phone number.
// ok is false when there is nothing to link to.
func WhatsAppLink(raw string) (link string, ok bool) {
	cleaned := Normalize(raw)
	if cleaned == "" {
		return "", false
	}
	return WhatsAppBase + cleaned, true
}
