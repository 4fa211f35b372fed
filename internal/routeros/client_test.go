package routeros

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/nas"
	xerrors "github.com/jejak-awan/ja-kdua-sub010/internal/pkg/errors"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	return NewClient(&nas.Nas{
		IPAddress:   u.Hostname(),
		APIUsername: "api",
		APIPassword: "api-pass",
		APIPort:     port,
	}, 2*time.Second)
}

func TestIsReachable(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "api", user)
		assert.Equal(t, "api-pass", pass)
		assert.Equal(t, "/rest/system/identity", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"name": "bras-01"})
	}))

	assert.True(t, c.IsReachable(context.Background()))
}

func TestIsReachable_Down(t *testing.T) {
	c := NewClient(&nas.Nas{IPAddress: "127.0.0.1", APIPort: 1}, 200*time.Millisecond)
	assert.False(t, c.IsReachable(context.Background()))
}

func TestFindActiveSession(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/ppp/active", r.URL.Path)
		assert.Equal(t, "budi.pppoe", r.URL.Query().Get("name"))
		_ = json.NewEncoder(w).Encode([]Session{{
			ID: "*1", Name: "budi.pppoe", Address: "10.20.0.5", Uptime: "2h3m", Service: "pppoe",
		}})
	}))

	session, err := c.FindActiveSession(context.Background(), "budi.pppoe")
	require.NoError(t, err)
	assert.Equal(t, "10.20.0.5", session.Address)
}

func TestFindActiveSession_None(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Session{})
	}))

	_, err := c.FindActiveSession(context.Background(), "budi.pppoe")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestInterfaceStatus(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/interface", r.URL.Path)
		_, _ = w.Write([]byte(`[{".id":"*A","name":"<pppoe-budi.pppoe>","type":"pppoe-in","running":"true","disabled":"false"}]`))
	}))

	iface, err := c.InterfaceStatus(context.Background(), "<pppoe-budi.pppoe>")
	require.NoError(t, err)
	assert.True(t, iface.Running)
	assert.False(t, iface.Disabled)
}

func TestPingExternal(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/ping", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "1.1.1.1", body["address"])
		assert.Equal(t, "10.20.0.5", body["src-address"])

		_, _ = w.Write([]byte(`[{"sent":"1","received":"1"},{"sent":"2","received":"2"}]`))
	}))

	up, err := c.PingExternal(context.Background(), "1.1.1.1", "10.20.0.5")
	require.NoError(t, err)
	assert.True(t, up)
}

func TestPingExternal_AllLost(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"sent":"3","received":"0"}]`))
	}))

	up, err := c.PingExternal(context.Background(), "1.1.1.1", "")
	require.NoError(t, err)
	assert.False(t, up)
}

func TestBadCredentials(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := c.FindActiveSession(context.Background(), "budi.pppoe")
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}
