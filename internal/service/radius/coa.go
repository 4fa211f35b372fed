// internal/service/radius/coa.go
package radius

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net"
	"time"

	xerrors "github.com/jejak-awan/ja-kdua-sub010/internal/pkg/errors"
)

// RFC 5176 packet codes.
const (
	codeDisconnectRequest = 40
	codeDisconnectACK     = 41
	codeDisconnectNAK     = 42
)

// RADIUS attribute types used in Disconnect-Requests.
const (
	attrTypeUserName        = 1
	attrTypeFramedIPAddress = 8
	attrTypeErrorCause      = 101
)

// Error-Cause values of interest (RFC 5176 §3.5).
const errorCauseSessionNotFound = 503

// DisconnectResult reports the NAS's answer to a Disconnect-Request.
// NoSession means the NAS NAKed because no matching session exists, which is
// not a delivery failure.
type DisconnectResult struct {
	Acked     bool
	NoSession bool
	Cause     string
}

// CoAClient transmits RFC 5176 Disconnect-Requests over UDP. The deployment
// has no CoA proxy, so packets go straight to each NAS's dynamic
// authorization port.
type CoAClient struct {
	timeout time.Duration
	retries int
}

func NewCoAClient(timeout time.Duration, retries int) *CoAClient {
	if timeout == 0 {
		timeout = 3 * time.Second
	}
	if retries < 1 {
		retries = 1
	}
	return &CoAClient{timeout: timeout, retries: retries}
}

// Disconnect asks the NAS at target (host:port) to drop the session owned by
// login so the client re-authenticates and picks up freshly synced
// attributes. Transport failures are distinct from a NAK.
func (c *CoAClient) Disconnect(ctx context.Context, target, secret, login, framedIP string) (*DisconnectResult, error) {
	var ident [1]byte
	if _, err := rand.Read(ident[:]); err != nil {
		return nil, fmt.Errorf("failed to draw packet identifier: %w", err)
	}

	attrs := encodeAttribute(attrTypeUserName, []byte(login))
	if ip := net.ParseIP(framedIP); ip != nil && ip.To4() != nil {
		attrs = append(attrs, encodeAttribute(attrTypeFramedIPAddress, ip.To4())...)
	}

	request := buildDisconnectRequest(ident[0], secret, attrs)

	conn, err := (&net.Dialer{}).DialContext(ctx, "udp", target)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", xerrors.ErrTransportUnavailable, target, err)
	}
	defer conn.Close()

	buf := make([]byte, 4096)
	for attempt := 0; attempt < c.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", xerrors.ErrTransportUnavailable, err)
		}

		if _, err := conn.Write(request); err != nil {
			return nil, fmt.Errorf("%w: send to %s: %v", xerrors.ErrTransportUnavailable, target, err)
		}

		_ = conn.SetReadDeadline(time.Now().Add(c.timeout))
		n, err := conn.Read(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue // retransmit
			}
			return nil, fmt.Errorf("%w: read from %s: %v", xerrors.ErrTransportUnavailable, target, err)
		}

		return parseDisconnectResponse(buf[:n], request, secret)
	}

	return nil, fmt.Errorf("%w: no answer from %s after %d attempts", xerrors.ErrTransportUnavailable, target, c.retries)
}

// buildDisconnectRequest assembles a Disconnect-Request packet. The request
// authenticator is MD5 over the packet with a zeroed authenticator field,
// followed by the shared secret (RFC 5176 §2.3).
func buildDisconnectRequest(ident byte, secret string, attrs []byte) []byte {
	length := 20 + len(attrs)

	packet := make([]byte, length)
	packet[0] = codeDisconnectRequest
	packet[1] = ident
	binary.BigEndian.PutUint16(packet[2:4], uint16(length))
	// bytes 4..20 stay zero for the digest
	copy(packet[20:], attrs)

	h := md5.New()
	h.Write(packet)
	h.Write([]byte(secret))
	copy(packet[4:20], h.Sum(nil))

	return packet
}

func encodeAttribute(attrType byte, value []byte) []byte {
	attr := make([]byte, 2+len(value))
	attr[0] = attrType
	attr[1] = byte(2 + len(value))
	copy(attr[2:], value)
	return attr
}

// parseDisconnectResponse validates and interprets an ACK/NAK.
func parseDisconnectResponse(resp, request []byte, secret string) (*DisconnectResult, error) {
	if len(resp) < 20 {
		return nil, fmt.Errorf("%w: response too short (%d bytes)", xerrors.ErrProtocol, len(resp))
	}
	length := int(binary.BigEndian.Uint16(resp[2:4]))
	if length < 20 || length > len(resp) {
		return nil, fmt.Errorf("%w: bad response length %d", xerrors.ErrProtocol, length)
	}
	resp = resp[:length]

	if resp[1] != request[1] {
		return nil, fmt.Errorf("%w: identifier mismatch", xerrors.ErrProtocol)
	}

	// Response authenticator is MD5(Code+ID+Length+RequestAuth+Attributes+Secret)
	h := md5.New()
	h.Write(resp[0:4])
	h.Write(request[4:20])
	h.Write(resp[20:])
	h.Write([]byte(secret))
	if !bytes.Equal(h.Sum(nil), resp[4:20]) {
		return nil, fmt.Errorf("%w: response authenticator mismatch", xerrors.ErrProtocol)
	}

	switch resp[0] {
	case codeDisconnectACK:
		return &DisconnectResult{Acked: true}, nil
	case codeDisconnectNAK:
		cause := decodeErrorCause(resp[20:])
		if cause == errorCauseSessionNotFound {
			return &DisconnectResult{NoSession: true, Cause: "no active session"}, nil
		}
		return &DisconnectResult{Cause: fmt.Sprintf("disconnect rejected (error-cause %d)", cause)}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected response code %d", xerrors.ErrProtocol, resp[0])
	}
}

// decodeErrorCause extracts the Error-Cause attribute, 0 if absent.
func decodeErrorCause(attrs []byte) uint32 {
	for len(attrs) >= 2 {
		attrLen := int(attrs[1])
		if attrLen < 2 || attrLen > len(attrs) {
			return 0
		}
		if attrs[0] == attrTypeErrorCause && attrLen == 6 {
			return binary.BigEndian.Uint32(attrs[2:6])
		}
		attrs = attrs[attrLen:]
	}
	return 0
}
