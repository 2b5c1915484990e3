// Package pix builds the static "copia e cola" payload shown next to the PIX
// QR code at checkout.
package pix

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	gui             = "BR.GOV.BCB.PIX"
	maxNameLength   = 25
	maxCityLength   = 15
	maxDescription  = 72
	defaultTxID     = "***"
	currencyBRL     = "986"
	countryBR       = "BR"
	noCategoryCode  = "0000"
	payloadFormatID = "01"
)

// Charge is what the storefront shows the customer before they pay.
type Charge struct {
	Key          string          `json:"pixKey"`
	MerchantName string          `json:"merchantName"`
	MerchantCity string          `json:"merchantCity"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"-"`
}

// Payload renders c as an EMV BR Code string, CRC included.
func (c Charge) Payload() string {
	account := field("00", gui) + field("01", c.Key)
	if desc := ascii(c.Description, maxDescription); desc != "" {
		account += field("02", desc)
	}

	var b strings.Builder
	b.WriteString(field("00", payloadFormatID))
	b.WriteString(field("26", account))
	b.WriteString(field("52", noCategoryCode))
	b.WriteString(field("53", currencyBRL))
	if c.Amount.IsPositive() {
		b.WriteString(field("54", c.Amount.StringFixed(2)))
	}
	b.WriteString(field("58", countryBR))
	b.WriteString(field("59", strings.ToUpper(ascii(c.MerchantName, maxNameLength))))
	b.WriteString(field("60", strings.ToUpper(ascii(c.MerchantCity, maxCityLength))))
	b.WriteString(field("62", field("05", defaultTxID)))
	b.WriteString("6304")

	body := b.String()
	return body + fmt.Sprintf("%04X", crc16(body))
}

func field(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

// ascii drops accents and anything outside printable ASCII, then cuts to max.
func ascii(s string, max int) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(stripper, strings.TrimSpace(s))
	if err != nil {
		plain = s
	}

	out := make([]byte, 0, len(plain))
	for _, r := range plain {
		if r >= 0x20 && r < 0x7f {
			out = append(out, byte(r))
		}
	}
	if len(out) > max {
		out = out[:max]
	}
	return strings.TrimSpace(string(out))
}

// crc16 is CRC-16/CCITT-FALSE (poly 0x1021, init 0xFFFF).
func crc16(s string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(s); i++ {
		crc ^= uint16(s[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
