package viacep

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ws/01310100/json/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"cep": "01310-100",
			"logradouro": "Avenida Paulista",
			"bairro": "Bela Vista",
			"localidade": "São Paulo",
			"uf": "SP"
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	addr, err := c.Lookup(context.Background(), "01310100")
	require.NoError(t, err)
	require.Equal(t, "Avenida Paulista", addr.Street)
	require.Equal(t, "Bela Vista", addr.Neighborhood)
	require.Equal(t, "São Paulo", addr.City)
}

func TestLookupUnknownCEP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"erro": true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Lookup(context.Background(), "99999999")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLookupMalformedCEP(t *testing.T) {
	c := NewClient("http://unused")

	_, err := c.Lookup(context.Background(), "1234567")
	require.ErrorIs(t, err, ErrInvalidCEP)

	_, err = c.Lookup(context.Background(), "12345-678")
	require.ErrorIs(t, err, ErrInvalidCEP)
}
