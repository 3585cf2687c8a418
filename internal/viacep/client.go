// Package viacep is a thin client for the ViaCEP postal-code service, used
// to prefill address form fields.
package viacep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrNotFound   = errors.New("viacep: cep not found")
	ErrInvalidCEP = errors.New("viacep: malformed cep")
)

type Address struct {
	CEP          string `json:"cep"`
	Street       string `json:"logradouro"`
	Complement   string `json:"complemento"`
	Neighborhood string `json:"bairro"`
	City         string `json:"localidade"`
	State        string `json:"uf"`
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Lookup resolves an 8-digit CEP. The service reports an unknown code with
// an "erro" flag and HTTP 200; that is mapped to ErrNotFound.
func (c *Client) Lookup(ctx context.Context, cep string) (*Address, error) {
	if !validCEP(cep) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCEP, cep)
	}

	url := fmt.Sprintf("%s/ws/%s/json/", c.BaseURL, cep)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("viacep: build request: %w", err)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("viacep: request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("viacep: unexpected status %s", res.Status)
	}

	var payload struct {
		Address
		Erro bool `json:"erro"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("viacep: decode response: %w", err)
	}
	if payload.Erro {
		return nil, ErrNotFound
	}

	addr := payload.Address
	return &addr, nil
}

func validCEP(cep string) bool {
	if len(cep) != 8 {
		return false
	}
	for _, r := range cep {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
