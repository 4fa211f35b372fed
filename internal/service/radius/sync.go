// internal/service/radius/sync.go
package radius

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/customer"
	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/nas"
	xerrors "github.com/jejak-awan/ja-kdua-sub010/internal/pkg/errors"
)

// AAAStore is the slice of the AAA schema repository the sync client needs.
type AAAStore interface {
	UpsertCheck(ctx context.Context, username, attribute, op, value string) error
	UpsertReply(ctx context.Context, username, attribute, op, value string) error
	UpsertGroup(ctx context.Context, username, groupname string, priority int) error
	DeleteReply(ctx context.Context, username, attribute string) error
	DeleteGroup(ctx context.Context, username string) error
	DeleteUser(ctx context.Context, username string) error
}

// managedReplyAttrs are the reply attributes this service owns. A sync that
// omits one of these must remove any stale row left by an earlier state.
var managedReplyAttrs = []string{AttrFramedIPAddress, AttrRateLimit}

// NasResolver looks up the customer's edge router.
type NasResolver interface {
	FindByID(ctx context.Context, id int64) (*nas.Nas, error)
}

// CoASender transmits a Disconnect-Request to one NAS.
type CoASender interface {
	Disconnect(ctx context.Context, target, secret, login, framedIP string) (*DisconnectResult, error)
}

// Service projects application-level (login, secret, attribute bag) triples
// onto the AAA store and triggers forced re-authentication. The store and
// NAS targets are per-deployment configuration resolved once at wiring time.
type Service struct {
	store  AAAStore
	nas    NasResolver
	coa    CoASender
	logger *zap.Logger
}

func NewService(store AAAStore, nasRepo NasResolver, coa CoASender, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		nas:    nasRepo,
		coa:    coa,
		logger: logger,
	}
}

// SyncUser upserts the login's password, reply attributes and group
// membership. Replaying the same state is a no-op on the stored rows.
func (s *Service) SyncUser(ctx context.Context, login, secret, group string, attrs map[string]string) error {
	if login == "" || secret == "" {
		return fmt.Errorf("%w: login and secret are required", xerrors.ErrValidation)
	}

	if err := s.store.UpsertCheck(ctx, login, AttrCleartextPassword, OpSet, secret); err != nil {
		return err
	}

	// Deterministic attribute order keeps replays byte-identical in the
	// store's statement log.
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.store.UpsertReply(ctx, login, name, OpEqual, attrs[name]); err != nil {
			return err
		}
	}

	for _, name := range managedReplyAttrs {
		if _, present := attrs[name]; present {
			continue
		}
		if err := s.store.DeleteReply(ctx, login, name); err != nil {
			return err
		}
	}

	if group != "" {
		if err := s.store.UpsertGroup(ctx, login, group, 1); err != nil {
			return err
		}
	} else if err := s.store.DeleteGroup(ctx, login); err != nil {
		return err
	}

	return nil
}

// RemoveUser deletes every AAA row for the login. A login with no rows is a
// no-op, not an error.
func (s *Service) RemoveUser(ctx context.Context, login string) error {
	if login == "" {
		return fmt.Errorf("%w: login is required", xerrors.ErrValidation)
	}
	return s.store.DeleteUser(ctx, login)
}

// SendDisconnect resolves the customer's NAS and fires a Disconnect-Request
// at its dynamic-authorization port. A NAK for a session that does not exist
// is reported in the result, not as an error.
func (s *Service) SendDisconnect(ctx context.Context, c *customer.Customer) (*DisconnectResult, error) {
	if c.Login == "" {
		return nil, fmt.Errorf("%w: customer has no AAA login", xerrors.ErrValidation)
	}
	if !c.RouterID.Valid {
		return nil, fmt.Errorf("%w: customer has no router assigned", xerrors.ErrValidation)
	}

	router, err := s.nas.FindByID(ctx, c.RouterID.Int64)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve NAS for customer %d: %w", c.ID, err)
	}

	coaPort := router.CoAPort
	if coaPort == 0 {
		coaPort = 3799
	}
	target := net.JoinHostPort(router.IPAddress, strconv.Itoa(coaPort))

	result, err := s.coa.Disconnect(ctx, target, router.Secret, c.Login, "")
	if err != nil {
		return nil, err
	}

	s.logger.Info("disconnect request answered",
		zap.String("login", c.Login),
		zap.String("nas", router.ShortName),
		zap.Bool("acked", result.Acked),
		zap.Bool("no_session", result.NoSession),
	)
	return result, nil
}
