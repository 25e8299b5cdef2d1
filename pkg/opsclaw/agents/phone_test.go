package agents

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhone_MissingCredentials(t *testing.T) {
	t.Parallel()
	p := NewPhone(PhoneConfig{}, slog.Default())

	res, err := p.Execute(context.Background(), CallTask{Number: "+15550001111", Goal: "check in"})
	require.NoError(t, err)

	assert.Equal(t, "error", res.Status)
	require.Len(t, res.Steps, 1)
	assert.Contains(t, res.Steps[0], "❌")
	assert.Contains(t, res.Steps[0], "not configured")
}

func TestPhone_MissingNumber(t *testing.T) {
	t.Parallel()
	p := NewPhone(PhoneConfig{APIKey: "k", PhoneNumberID: "pn"}, slog.Default())

	res, err := p.Execute(context.Background(), CallTask{Goal: "check in"})
	require.NoError(t, err)

	assert.Equal(t, "error", res.Status)
	require.Len(t, res.Steps, 1)
	assert.Contains(t, res.Steps[0], "No phone number")
}

func TestPhone_Call(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"call-123"}`))
	}))
	defer srv.Close()

	p := NewPhone(PhoneConfig{APIKey: "k", PhoneNumberID: "pn", APIURL: srv.URL}, slog.Default())

	res, err := p.Execute(context.Background(), CallTask{Number: "+15550001111", Goal: "reschedule the standup"})
	require.NoError(t, err)

	assert.Equal(t, "success", res.Status)
	assert.Equal(t, "call-123", res.CallID)
	require.Len(t, res.Steps, 3)
	assert.Contains(t, res.Steps[0], "+15550001111")
	assert.Contains(t, res.Steps[1], "reschedule the standup")
	assert.Contains(t, res.Steps[2], "call-123")

	assert.Equal(t, "pn", got["phoneNumberId"])
	customer, _ := got["customer"].(map[string]any)
	assert.Equal(t, "+15550001111", customer["number"])
}

func TestPhone_APIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()

	p := NewPhone(PhoneConfig{APIKey: "k", PhoneNumberID: "pn", APIURL: srv.URL}, slog.Default())

	res, err := p.Execute(context.Background(), CallTask{Number: "+15550001111"})
	require.NoError(t, err)

	assert.Equal(t, "error", res.Status)
	require.Len(t, res.Steps, 2)
	assert.Contains(t, res.Steps[1], "API error (401)")
}
