package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:        srv.URL,
		APIKey:         "test-key",
		SenderEmail:    "web@leycura.org",
		SenderName:     "Sitio Ley C.U.R.A.",
		RecipientEmail: "contacto@leycura.org",
		RecipientName:  "Equipo Ley C.U.R.A.",
		HTTPClient:     srv.Client(),
	})
}

func TestSendContactEmail(t *testing.T) {
	var captured map[string]any
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/smtp/email", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusCreated)
	})

	err := client.SendContactEmail(context.Background(), ContactMessage{
		Name:       "Ana Pérez",
		ReplyEmail: "ana@example.com",
		Subject:    "Consulta sobre la ley",
		Body:       "Hola,\n¿dónde leo el texto completo?",
	})
	require.NoError(t, err)

	sender := captured["sender"].(map[string]any)
	assert.Equal(t, "web@leycura.org", sender["email"])

	to := captured["to"].([]any)[0].(map[string]any)
	assert.Equal(t, "contacto@leycura.org", to["email"])

	replyTo := captured["replyTo"].(map[string]any)
	assert.Equal(t, "ana@example.com", replyTo["email"])
	assert.Equal(t, "Ana Pérez", replyTo["name"])

	assert.Equal(t, "Consulta sobre la ley", captured["subject"])
	html := captured["htmlContent"].(string)
	assert.Contains(t, html, "Ana Pérez")
	assert.Contains(t, html, "<br>")
}

func TestSendContactEmail_DefaultSubjectAndEscaping(t *testing.T) {
	var captured map[string]any
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusCreated)
	})

	err := client.SendContactEmail(context.Background(), ContactMessage{
		Name:       "<script>alert(1)</script>",
		ReplyEmail: "x@example.com",
		Body:       "hola",
	})
	require.NoError(t, err)

	assert.Equal(t, "Nuevo mensaje desde leycura.org", captured["subject"])
	html := captured["htmlContent"].(string)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestUpsertContact(t *testing.T) {
	var captured map[string]any
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/contacts", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusCreated)
	})

	err := client.UpsertContact(context.Background(), Contact{
		Email: "vecina@example.com",
		Attributes: map[string]string{
			"ORIGEN":    "sumate",
			"NOMBRE":    "María",
			"PROVINCIA": "Córdoba",
		},
		ListIDs: []int64{7},
	})
	require.NoError(t, err)

	assert.Equal(t, "vecina@example.com", captured["email"])
	assert.Equal(t, true, captured["updateEnabled"])
	attrs := captured["attributes"].(map[string]any)
	assert.Equal(t, "sumate", attrs["ORIGEN"])
	assert.Equal(t, []any{float64(7)}, captured["listIds"])
}

func TestUpsertContact_NoListsOmitsField(t *testing.T) {
	var captured map[string]any
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.UpsertContact(context.Background(), Contact{Email: "solo@example.com"})
	require.NoError(t, err)

	_, hasLists := captured["listIds"]
	assert.False(t, hasLists)
}

func TestClient_UpstreamErrorIncludesStatusAndBody(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Key not found"}`))
	})

	err := client.UpsertContact(context.Background(), Contact{Email: "x@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "Key not found")
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(Config{BaseURL: srv.URL, APIKey: "k"})
	srv.Close()

	err := client.SendContactEmail(context.Background(), ContactMessage{ReplyEmail: "x@example.com", Body: "hola"})
	require.Error(t, err)
}
