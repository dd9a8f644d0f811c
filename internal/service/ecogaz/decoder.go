// Package ecogaz talks to the ODRE open data platform, which publishes the GRTgaz
// "ecogaz" gas network tension signal.
package ecogaz

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"ecogw/internal/domain/models"
	"ecogw/pkg/util"

	json "github.com/goccy/go-json"
)

// colorIndex accepts indice_de_couleur as a JSON number or a numeric string.
type colorIndex struct {
	v   int64
	set bool
}

func (c *colorIndex) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		s = string(b)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("indice_de_couleur %q: not an integer", s)
	}
	c.v, c.set = v, true
	return nil
}

type record struct {
	GasDay string     `json:"gas_day"`
	Color  string     `json:"color"`
	Index  colorIndex `json:"indice_de_couleur"`
}

// Decode turns an ODRE export (a JSON array of days) into daily signals.
func Decode(payload []byte) ([]models.DailySignal, error) {
	var records []record
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("%w: ecogaz payload: %w", models.ErrFormat, err)
	}

	out := make([]models.DailySignal, 0, len(records))
	for i, r := range records {
		day, ok := util.ParseDate(r.GasDay)
		if !ok {
			return nil, fmt.Errorf("%w: ecogaz record %d: bad gas_day %q", models.ErrFormat, i, r.GasDay)
		}
		if !r.Index.set {
			return nil, fmt.Errorf("%w: ecogaz record %d: missing indice_de_couleur", models.ErrFormat, i)
		}
		if r.Index.v < 0 || r.Index.v > math.MaxUint16 {
			return nil, fmt.Errorf("%w: ecogaz record %d: indice_de_couleur %d out of range", models.ErrFormat, i, r.Index.v)
		}
		out = append(out, models.DailySignal{Date: models.DateOf(day), Value: uint16(r.Index.v)})
	}
	return out, nil
}
