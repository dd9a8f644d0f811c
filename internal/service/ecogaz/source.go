package ecogaz

import (
	"context"
	"fmt"

	"ecogw/internal/domain/models"
	xhttp "ecogw/pkg/http"
)

// DefaultURL selects the last 7 published gas days, newest first.
const DefaultURL = "https://odre.opendatasoft.com/api/v2/catalog/datasets/signal-ecogaz/exports/" +
	"json?select=gas_day,color,indice_de_couleur&order_by=gas_day%20desc&limit=7"

// Source fetches the raw ecogaz export. The endpoint is public: no authentication.
type Source struct {
	url    string
	client *xhttp.Client
}

// NewSource creates an ecogaz source; an empty url selects DefaultURL.
func NewSource(url string, client *xhttp.Client) *Source {
	if url == "" {
		url = DefaultURL
	}
	if client == nil {
		client = xhttp.NewClient()
	}
	return &Source{url: url, client: client}
}

func (s *Source) Name() string { return "ecogaz" }

// Fetch returns the export body; every failure is an ErrTransport.
func (s *Source) Fetch(ctx context.Context) ([]byte, error) {
	body, err := s.client.GetBytes(ctx, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: ecogaz: %w", models.ErrTransport, err)
	}
	return body, nil
}
