package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractArchiveDate(t *testing.T) {
	tests := []struct {
		name      string
		filename  string
		wantYear  string
		wantMonth string
		wantOK    bool
	}{
		{
			name:      "energy price snapshot",
			filename:  "251025_161234_energy_price_forecast.json",
			wantYear:  "2025",
			wantMonth: "10",
			wantOK:    true,
		},
		{
			name:      "sun forecast snapshot",
			filename:  "260101_000000_sun_forecast.json",
			wantYear:  "2026",
			wantMonth: "01",
			wantOK:    true,
		},
		{
			name:     "no timestamp prefix",
			filename: "energy_price_forecast.json",
			wantOK:   false,
		},
		{
			name:     "date too short",
			filename: "2510_161234_energy_price_forecast.json",
			wantOK:   false,
		},
		{
			name:     "time too short",
			filename: "251025_1612_energy_price_forecast.json",
			wantOK:   false,
		},
		{
			name:     "wrong extension",
			filename: "251025_161234_energy_price_forecast.csv",
			wantOK:   false,
		},
		{
			name:     "trailing garbage after extension",
			filename: "251025_161234_energy_price_forecast.json.bak",
			wantOK:   false,
		},
		{
			name:     "letters in date",
			filename: "25oct5_161234_energy_price_forecast.json",
			wantOK:   false,
		},
		{
			name:     "missing underscore separator",
			filename: "251025161234_energy_price_forecast.json",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, month, ok := extractArchiveDate(tt.filename)

			assert.Equal(t, tt.wantOK, ok)

			if tt.wantOK {
				assert.Equal(t, tt.wantYear, year)
				assert.Equal(t, tt.wantMonth, month)
			}
		})
	}
}
