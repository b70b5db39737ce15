package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVATRate(t *testing.T) {
	tests := []struct {
		in      string
		want    VATRate
		wantErr bool
	}{
		{"23", Rate23, false},
		{"23%", Rate23, false},
		{" 8 % ", Rate8, false},
		{"5", Rate5, false},
		{"0", Rate0, false},
		{"ZW", RateZW, false},
		{"np", RateNP, false},
		{"7", VATRate{}, true},
		{"-23", VATRate{}, true},
		{"EX", VATRate{}, true},
		{"", VATRate{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVATRate(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidVATRate)
				assert.False(t, got.IsValid())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVATRate_Label(t *testing.T) {
	assert.Equal(t, "23%", Rate23.Label())
	assert.Equal(t, "0%", Rate0.Label())
	assert.Equal(t, "ZW", RateZW.Label())
	assert.Equal(t, "NP", RateNP.Label())
	assert.Equal(t, "", VATRate{}.Label())
}

func TestVATRate_JSON(t *testing.T) {
	type wrapper struct {
		Rate VATRate `json:"rate"`
	}

	out, err := json.Marshal(wrapper{Rate: Rate23})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rate":23}`, string(out))

	out, err = json.Marshal(wrapper{Rate: RateZW})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rate":"ZW"}`, string(out))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"rate":8}`), &w))
	assert.Equal(t, Rate8, w.Rate)

	require.NoError(t, json.Unmarshal([]byte(`{"rate":"np"}`), &w))
	assert.Equal(t, RateNP, w.Rate)

	require.NoError(t, json.Unmarshal([]byte(`{"rate":"5%"}`), &w))
	assert.Equal(t, Rate5, w.Rate)

	assert.Error(t, json.Unmarshal([]byte(`{"rate":12}`), &w))
	assert.Error(t, json.Unmarshal([]byte(`{"rate":true}`), &w))
}

func TestInvoiceTotals_RateLabels(t *testing.T) {
	totals := InvoiceTotals{Breakdown: map[string]Amounts{
		"ZW": {}, "5%": {}, "23%": {}, "NP": {}, "0%": {}, "8%": {},
	}}
	assert.Equal(t, []string{"23%", "8%", "5%", "0%", "NP", "ZW"}, totals.RateLabels())
}
