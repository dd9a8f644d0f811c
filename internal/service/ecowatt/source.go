package ecowatt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"ecogw/internal/domain/models"
	xhttp "ecogw/pkg/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	DefaultTokenURL   = "https://digital.iservices.rte-france.com/token/oauth/"
	DefaultSignalsURL = "https://digital.iservices.rte-france.com/open_api/ecowatt/v4/signals"
	SandboxSignalsURL = "https://digital.iservices.rte-france.com/open_api/ecowatt/v4/sandbox/signals"
)

var errNoCredentials = errors.New("client id/secret not configured")

// Config holds the RTE application credentials and endpoints.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	SignalsURL   string
	Sandbox      bool
}

// Source runs the two-step RTE exchange: a client-credentials token, then the
// signals resource with that bearer token. Tokens are cached until they expire.
type Source struct {
	cfg    Config
	client *xhttp.Client
	creds  *clientcredentials.Config

	mu   sync.Mutex
	last *oauth2.Token
}

// NewSource creates an ecowatt source. Missing credentials are not an error here:
// every Fetch fails with ErrTransport until they are supplied.
func NewSource(cfg Config, client *xhttp.Client) *Source {
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.SignalsURL == "" {
		cfg.SignalsURL = DefaultSignalsURL
		if cfg.Sandbox {
			cfg.SignalsURL = SandboxSignalsURL
		}
	}
	if client == nil {
		client = xhttp.NewClient()
	}

	s := &Source{cfg: cfg, client: client}
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		s.creds = &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
	}
	return s
}

func (s *Source) Name() string { return "ecowatt" }

// Fetch returns the signals document; auth and network failures are ErrTransport.
func (s *Source) Fetch(ctx context.Context) ([]byte, error) {
	if s.creds == nil {
		return nil, fmt.Errorf("%w: ecowatt: %w", models.ErrTransport, errNoCredentials)
	}

	tok, err := s.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: ecowatt token: %w", models.ErrTransport, err)
	}

	headers := map[string]string{"Authorization": tokenType(tok) + " " + tok.AccessToken}
	body, err := s.client.GetBytes(ctx, s.cfg.SignalsURL, headers)
	if err != nil {
		return nil, fmt.Errorf("%w: ecowatt signals: %w", models.ErrTransport, err)
	}
	return body, nil
}

// token returns the cached token while it is valid, otherwise requests a new one
// bounded by ctx.
func (s *Source) token(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, s.client.HTTPClient())
	tok, err := oauth2.ReuseTokenSource(s.last, s.creds.TokenSource(tokenCtx)).Token()
	if err != nil {
		return nil, err
	}
	s.last = tok
	return tok, nil
}

func tokenType(tok *oauth2.Token) string {
	if t := tok.Type(); !strings.EqualFold(t, "bearer") {
		return t
	}
	return "Bearer"
}
