package models

// Requests for status HTTP endpoints. Defined in domain for consistency and reuse.

type RegisterRequest struct {
	Start int `query:"start" json:"start" default:"0" validate:"gte=0,lte=65535"`
	Count int `query:"count" json:"count" default:"1" validate:"gte=1,lte=125"`
}

type SignalsRequest struct {
	Job string `query:"job" json:"job" validate:"omitempty,oneof=ecogaz ecowatt"`
}
