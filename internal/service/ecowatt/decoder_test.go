package ecowatt

import (
	"testing"
	"time"

	"ecogw/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{"signals": [
  {"GenerationFichier": "2022-12-05T23:00:00+01:00", "jour": "2022-12-06T00:00:00+01:00",
   "dvalue": 2, "message": "Risque de coupures", "values": [{"pas": 0, "hvalue": 1}]},
  {"GenerationFichier": "2022-12-05T23:00:00+01:00", "jour": "2022-12-07T00:00:00+01:00",
   "dvalue": 1, "message": "Pas d'alerte", "values": []}
]}`

func TestDecode(t *testing.T) {
	got, err := Decode([]byte(samplePayload))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, models.DailySignal{
		Date:    models.Date{Year: 2022, Month: time.December, Day: 6},
		Value:   2,
		Message: "Risque de coupures",
	}, got[0])
	assert.Equal(t, models.Date{Year: 2022, Month: time.December, Day: 7}, got[1].Date)
	assert.Equal(t, uint16(1), got[1].Value)
}

func TestDecodeFormatFailures(t *testing.T) {
	cases := map[string]string{
		"not json":       `Bad Gateway`,
		"no signals":     `{"error": "invalid_token"}`,
		"bad jour":       `{"signals": [{"jour": "demain", "dvalue": 1}]}`,
		"missing dvalue": `{"signals": [{"jour": "2022-12-06T00:00:00+01:00"}]}`,
		"negative":       `{"signals": [{"jour": "2022-12-06T00:00:00+01:00", "dvalue": -2}]}`,
		"string dvalue":  `{"signals": [{"jour": "2022-12-06T00:00:00+01:00", "dvalue": "two"}]}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(payload))
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrFormat)
		})
	}
}
