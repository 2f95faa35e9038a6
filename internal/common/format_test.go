package common

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	r := NewReport(&buf, 10)

	r.Header("Balances")
	r.Section("alice")
	r.Item(false, "agon %s", "10.00")
	r.Item(true, "chips %s", "5.00")

	lines := strings.Split(strings.TrimPrefix(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"==========",
		"Balances",
		"==========",
		"┌─ alice",
		"│  agon 10.00",
		"└  chips 5.00",
		"",
	}, lines)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "12.50", FormatAmount(decimal.RequireFromString("12.5")))
	assert.Equal(t, "+3.00", FormatSigned(decimal.NewFromInt(3)))
	assert.Equal(t, "-0.01", FormatSigned(decimal.RequireFromString("-0.01")))
	assert.Equal(t, "0.00", FormatSigned(decimal.Zero))
}
