package web

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Amount decodes a money field sent either as a JSON number or a numeric
// string. null and "" decode as zero. Set reports whether the key was present.
type Amount struct {
	decimal.Decimal
	Set bool
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	a.Set = true
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		a.Decimal = decimal.Zero
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(s)
	}
	d, err := decimal.NewFromString(string(bytes.TrimSpace(b)))
	if err != nil {
		return err
	}
	a.Decimal = d
	return nil
}

// Apply overwrites dst when the field was sent.
func (a Amount) Apply(dst *decimal.Decimal) {
	if a.Set {
		*dst = a.Decimal
	}
}
