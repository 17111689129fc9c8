// Package messaging builds WhatsApp deep links and delivers WhatsApp
// messages through Twilio.
package messaging

import (
	"strings"
)

// CountryCode is prepended to every phone number.
const CountryCode = "55"

const upperhex = "0123456789ABCDEF"

// WhatsAppLink returns the wa.me deep link that opens a chat with phone
// pre-filled with message. Every non-digit is stripped from phone.
func WhatsAppLink(phone, message string) string {
	return "https://wa.me/" + CountryCode + Digits(phone) + "?text=" + encodeURIComponent(message)
}

// Digits keeps only the ASCII digits of s.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// encodeURIComponent percent-encodes the UTF-8 bytes of s, leaving
// A-Z a-z 0-9 and - _ . ! ~ * ' ( ) as they are.
func encodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
