// Package ecowatt talks to the RTE data platform "ecowatt" API, the electricity
// network tension signal.
package ecowatt

import (
	"fmt"
	"math"

	"ecogw/internal/domain/models"
	"ecogw/pkg/util"

	json "github.com/goccy/go-json"
)

type signal struct {
	Jour    string `json:"jour"`
	DValue  *int64 `json:"dvalue"`
	Message string `json:"message"`
}

type payload struct {
	Signals *[]signal `json:"signals"`
}

// Decode turns an ecowatt v4 "signals" document into daily signals. The day of each
// signal is read in the offset RTE wrote it with.
func Decode(raw []byte) ([]models.DailySignal, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: ecowatt payload: %w", models.ErrFormat, err)
	}
	if p.Signals == nil {
		return nil, fmt.Errorf("%w: ecowatt payload: missing signals", models.ErrFormat)
	}

	out := make([]models.DailySignal, 0, len(*p.Signals))
	for i, s := range *p.Signals {
		day, ok := util.ParseDate(s.Jour)
		if !ok {
			return nil, fmt.Errorf("%w: ecowatt signal %d: bad jour %q", models.ErrFormat, i, s.Jour)
		}
		if s.DValue == nil {
			return nil, fmt.Errorf("%w: ecowatt signal %d: missing dvalue", models.ErrFormat, i)
		}
		if *s.DValue < 0 || *s.DValue > math.MaxUint16 {
			return nil, fmt.Errorf("%w: ecowatt signal %d: dvalue %d out of range", models.ErrFormat, i, *s.DValue)
		}
		out = append(out, models.DailySignal{
			Date:    models.DateOf(day),
			Value:   uint16(*s.DValue),
			Message: s.Message,
		})
	}
	return out, nil
}
