package relay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GMOnyx/Commandlessapp-sub004/internal/botconfig"
)

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, "test-key", "test-secret", NewHTTPPool(1), 2*time.Second)
}

func TestFetchConfigFullResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/relay/config", r.URL.Path)
		assert.Equal(t, "bot42", r.URL.Query().Get("botId"))
		assert.Equal(t, "3", r.URL.Query().Get("version"))
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"version":        4,
			"enabled":        true,
			"channelMode":    "blacklist",
			"permissionMode": "all",
			"freeRateLimit":  10,
		})
	}))
	defer ts.Close()

	cfg, upToDate, err := newTestClient(ts.URL).FetchConfig("bot42", 3)
	require.NoError(t, err)
	assert.False(t, upToDate)
	require.NotNil(t, cfg)
	assert.Equal(t, int64(4), cfg.Version)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, botconfig.ChannelModeBlacklist, cfg.ChannelMode)
	assert.Equal(t, 10, cfg.FreeRateLimit)
}

func TestFetchConfigUpToDate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"upToDate":true}`)
	}))
	defer ts.Close()

	cfg, upToDate, err := newTestClient(ts.URL).FetchConfig("bot42", 5)
	require.NoError(t, err)
	assert.True(t, upToDate)
	assert.Nil(t, cfg)
}

func TestFetchConfigNon2xxIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer ts.Close()

	cfg, _, err := newTestClient(ts.URL).FetchConfig("bot42", 0)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "403")
}

func TestFetchConfigMalformedBodyIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"version": "not-a-number"`)
	}))
	defer ts.Close()

	cfg, _, err := newTestClient(ts.URL).FetchConfig("bot42", 0)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestFetchConfigTransportErrorIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // closed before use

	cfg, _, err := newTestClient(ts.URL).FetchConfig("bot42", 0)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestForwardMessageSignsBody(t *testing.T) {
	var gotBody []byte
	var gotSignature, gotRequestID string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/relay/message", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		gotSignature = r.Header.Get("x-signature")
		gotRequestID = r.Header.Get("x-request-id")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	err := newTestClient(ts.URL).ForwardMessage(&ForwardedMessage{
		BotID:     "bot42",
		MessageID: "M1",
		ChannelID: "C1",
		AuthorID:  "U1",
		Content:   "ban the spammer",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, gotRequestID)

	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write(gotBody)
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), gotSignature)

	var decoded ForwardedMessage
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, "bot42", decoded.BotID)
	assert.Equal(t, "ban the spammer", decoded.Content)
	assert.Empty(t, decoded.GuildID)
}

func TestForwardMessageNon2xxIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	err := newTestClient(ts.URL).ForwardMessage(&ForwardedMessage{BotID: "bot42"})
	assert.Error(t, err)
}
