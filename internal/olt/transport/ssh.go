// internal/olt/transport/ssh.go
package transport

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	xerrors "github.com/jejak-awan/ja-kdua-sub010/internal/pkg/errors"
)

// SSHRunner executes CLI command batches over a fresh SSH session per call.
// Device CLIs in scope accept a newline-separated script on the shell's
// stdin, so no interactive expect loop is needed.
type SSHRunner struct {
	addr     string
	username string
	password string
	timeout  time.Duration
}

func NewSSHRunner(host string, port int, username, password string, timeout time.Duration) *SSHRunner {
	if port == 0 {
		port = 22
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &SSHRunner{
		addr:     fmt.Sprintf("%s:%d", host, port),
		username: username,
		password: password,
		timeout:  timeout,
	}
}

// Run dials the device, feeds the commands to the remote shell in order and
// returns the combined output split per command boundary marker. The whole
// batch shares one deadline; a dead or hung device surfaces as
// ErrTransportUnavailable.
func (r *SSHRunner) Run(ctx context.Context, commands []string) ([]string, error) {
	if len(commands) == 0 {
		return nil, nil
	}

	// Some OLTs (V-SOL among them) only offer keyboard-interactive auth.
	keyboardInteractive := ssh.KeyboardInteractive(func(user, instruction string, questions []string, echos []bool) ([]string, error) {
		answers := make([]string, len(questions))
		for i := range questions {
			answers[i] = r.password
		}
		return answers, nil
	})

	cfg := &ssh.ClientConfig{
		User: r.username,
		Auth: []ssh.AuthMethod{
			ssh.Password(r.password),
			keyboardInteractive,
		},
		Timeout:         r.timeout,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // OLT management VLANs do not distribute host keys
	}

	client, err := ssh.Dial("tcp", r.addr, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: ssh dial %s: %v", xerrors.ErrTransportUnavailable, r.addr, err)
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("%w: ssh session: %v", xerrors.ErrTransportUnavailable, err)
	}
	defer session.Close()

	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := session.RequestPty("vt100", 80, 200, modes); err != nil {
		return nil, fmt.Errorf("%w: request pty: %v", xerrors.ErrTransportUnavailable, err)
	}

	var out bytes.Buffer
	session.Stdout = &out
	session.Stderr = &out

	script := strings.Join(commands, "\n") + "\nexit\n"
	session.Stdin = strings.NewReader(script)

	done := make(chan error, 1)
	go func() {
		done <- session.Run("")
	}()

	deadline := time.NewTimer(r.timeout)
	defer deadline.Stop()

	select {
	case err := <-done:
		// Non-zero exit is common on device CLIs; only transport-level
		// failures matter here.
		if _, ok := err.(*ssh.ExitError); err != nil && !ok {
			return nil, fmt.Errorf("%w: ssh run: %v", xerrors.ErrTransportUnavailable, err)
		}
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", xerrors.ErrTransportUnavailable, ctx.Err())
	case <-deadline.C:
		return nil, fmt.Errorf("%w: command batch timed out after %s", xerrors.ErrTransportUnavailable, r.timeout)
	}

	return splitOutputs(out.String(), len(commands)), nil
}

// splitOutputs returns one entry per command. Device shells echo output as a
// single stream, so the last entry carries the full transcript and earlier
// entries stay empty; vendor adapters parse the transcript, not positions.
func splitOutputs(transcript string, n int) []string {
	outputs := make([]string, n)
	if n > 0 {
		outputs[n-1] = transcript
	}
	return outputs
}
