package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"saubio/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSuggestions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/smart-match/suggestions", r.URL.Path)

		var req models.SuggestionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Rue de Rivoli 1", req.Address)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"providers":[{"providerId":"p1","name":"Clean Co","score":0.9}],"fallbackTeams":[{"id":"t1","name":"Team A","providerIds":["p2","p3"]}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/api/", nil)
	result, err := client.FetchSuggestions(context.Background(), models.SuggestionRequest{Address: "Rue de Rivoli 1"})
	require.NoError(t, err)
	require.Len(t, result.Providers, 1)
	assert.Equal(t, "p1", result.Providers[0].ProviderID)
	require.Len(t, result.FallbackTeams, 1)
	assert.Equal(t, "t1", result.FallbackTeams[0].ID)
}

func TestFetchSuggestions_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "matching unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, nil).FetchSuggestions(context.Background(), models.SuggestionRequest{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "matching unavailable", apiErr.Body)
}

func TestListBookings(t *testing.T) {
	since := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bookings", r.URL.Path)
		assert.Equal(t, "2026-03-01T12:00:00Z", r.URL.Query().Get("updatedSince"))
		_, _ = w.Write([]byte(`[{"id":"b1","clientId":"c1","status":"confirmed","address":{"city":"Lyon"}}]`))
	}))
	defer server.Close()

	bookings, err := NewClient(server.URL, nil).ListBookings(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, models.BookingStatusConfirmed, bookings[0].Status)
	assert.Equal(t, "Lyon", bookings[0].Address.City)
}

func TestListBookings_ZeroSinceOmitsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	bookings, err := NewClient(server.URL, nil).ListBookings(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Empty(t, bookings)
}
