// Package routeros is a thin client for the RouterOS v7 REST API, scoped to
// the read and probe calls the diagnostic pipeline needs.
package routeros

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/nas"
	xerrors "github.com/jejak-awan/ja-kdua-sub010/internal/pkg/errors"
)

// Session is one active PPP session on the router.
type Session struct {
	ID       string `json:".id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Uptime   string `json:"uptime"`
	CallerID string `json:"caller-id"`
	Service  string `json:"service"`
}

// Interface is the state of one router interface.
type Interface struct {
	ID       string `json:".id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Running  bool   `json:"running,string"`
	Disabled bool   `json:"disabled,string"`
}

type pingReply struct {
	Received string `json:"received"`
	Sent     string `json:"sent"`
}

// Client talks to a single router. Routers sit on the management VLAN, so
// plain HTTP is the common deployment; TLS with the router's self-signed
// certificate is opt-in per NAS record.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

// NewClient builds a client for the given NAS record.
func NewClient(router *nas.Nas, timeout time.Duration) *Client {
	scheme := "http"
	port := router.APIPort
	if router.UseTLS {
		scheme = "https"
		if port == 0 {
			port = 443
		}
	}
	if port == 0 {
		port = 80
	}

	httpClient := &http.Client{Timeout: timeout}
	if router.UseTLS {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // routers serve self-signed certificates
		}
	}

	return &Client{
		baseURL:  fmt.Sprintf("%s://%s:%d/rest", scheme, router.IPAddress, port),
		username: router.APIUsername,
		password: router.APIPassword,
		http:     httpClient,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", xerrors.ErrTransportUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: router rejected API credentials", xerrors.ErrUnauthorized)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: router API returned %s", xerrors.ErrProtocol, resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode router response: %v", xerrors.ErrProtocol, err)
		}
	}
	return nil
}

// IsReachable probes the API with the cheapest authenticated call.
func (c *Client) IsReachable(ctx context.Context) bool {
	var out json.RawMessage
	return c.do(ctx, http.MethodGet, "/system/identity", nil, &out) == nil
}

// FindActiveSession looks up the PPP session for the given login. No session
// yields ErrNotFound.
func (c *Client) FindActiveSession(ctx context.Context, login string) (*Session, error) {
	var sessions []Session
	path := "/ppp/active?name=" + url.QueryEscape(login)
	if err := c.do(ctx, http.MethodGet, path, nil, &sessions); err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, xerrors.ErrNotFound
	}
	return &sessions[0], nil
}

// InterfaceStatus reads the dynamic interface a PPP session creates,
// conventionally named "<pppoe-login>". ErrNotFound when absent.
func (c *Client) InterfaceStatus(ctx context.Context, name string) (*Interface, error) {
	var interfaces []Interface
	path := "/interface?name=" + url.QueryEscape(name)
	if err := c.do(ctx, http.MethodGet, path, nil, &interfaces); err != nil {
		return nil, err
	}
	if len(interfaces) == 0 {
		return nil, xerrors.ErrNotFound
	}
	return &interfaces[0], nil
}

// PingExternal pings target from the router, sourcing from the subscriber's
// address so the reply path exercises the customer's route. Returns true when
// at least one reply came back.
func (c *Client) PingExternal(ctx context.Context, target, sourceAddr string) (bool, error) {
	body := map[string]string{
		"address": target,
		"count":   "3",
	}
	if sourceAddr != "" {
		body["src-address"] = sourceAddr
	}

	var replies []pingReply
	if err := c.do(ctx, http.MethodPost, "/ping", body, &replies); err != nil {
		return false, err
	}

	for _, r := range replies {
		if received, err := strconv.Atoi(strings.TrimSpace(r.Received)); err == nil && received > 0 {
			return true, nil
		}
	}
	return false, nil
}
