package conversation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kutkeldi-dev/telegram-financial-bot/internal/errors"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{name: "plain integer", input: "1500", want: "1500"},
		{name: "dot decimal", input: "1500.50", want: "1500.5"},
		{name: "comma decimal", input: "1500,50", want: "1500.5"},
		{name: "inner whitespace stripped", input: "1 500", want: "1500"},
		{name: "non-breaking space stripped", input: "1 500,25", want: "1500.25"},
		{name: "surrounding whitespace", input: "  42  ", want: "42"},
		{name: "zero", input: "0", want: "0"},
		{name: "zero with decimals", input: "0.00", want: "0"},
		{name: "max amount", input: "10000000", want: "10000000"},
		{name: "max amount with decimals", input: "10000000.00", want: "10000000"},
		{name: "just above max", input: "10000000.01", wantErr: txtErrAmountTooLarge},
		{name: "negative", input: "-1", wantErr: txtErrAmountNegative},
		{name: "three decimal places", input: "10.123", wantErr: txtErrAmountPrecision},
		{name: "words", input: "тысяча", wantErr: txtErrAmountFormat},
		{name: "empty", input: "", wantErr: txtErrAmountFormat},
		{name: "whitespace only", input: "   ", wantErr: txtErrAmountFormat},
		{name: "double separator", input: "1.2.3", wantErr: txtErrAmountFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)

			if tt.wantErr != "" {
				require.Error(t, err)

				var appErr *apperrors.AppError
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, "E100", appErr.Code)
				assert.Equal(t, tt.wantErr, appErr.UserMessage)
				return
			}

			require.NoError(t, err)
			want, parseErr := decimal.NewFromString(tt.want)
			require.NoError(t, parseErr)
			assert.True(t, got.Equal(want), "got %s, want %s", got, want)
		})
	}
}

func TestValidatePurpose(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{name: "plain text", input: "продукты", want: "продукты"},
		{name: "trimmed", input: "  бензин  ", want: "бензин"},
		{name: "digits with words", input: "обед 250 сом", want: "обед 250 сом"},
		{name: "empty", input: "", wantErr: txtErrPurposeEmpty},
		{name: "whitespace only", input: "   ", wantErr: txtErrPurposeEmpty},
		{name: "digits only", input: "12345", wantErr: txtErrPurposeDigits},
		{name: "too long", input: longPurpose(501), wantErr: txtErrPurposeTooLong},
		{name: "exactly 500 runes", input: longPurpose(500), want: longPurpose(500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidatePurpose(tt.input)

			if tt.wantErr != "" {
				require.Error(t, err)

				var appErr *apperrors.AppError
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, tt.wantErr, appErr.UserMessage)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func longPurpose(n int) string {
	runes := make([]rune, n)
	for i := range runes {
		runes[i] = 'п'
	}

	return string(runes)
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "0", want: "0.00"},
		{input: "42", want: "42.00"},
		{input: "1500.5", want: "1 500.50"},
		{input: "1234567.89", want: "1 234 567.89"},
		{input: "10000000", want: "10 000 000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, FormatAmount(d))
		})
	}
}
