package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/NikhilSingh0745/mr-interview/internal/apierr"
	"github.com/NikhilSingh0745/mr-interview/internal/auth"
)

// ErrNotFound is returned by stores when no record matches.
var ErrNotFound = errors.New("identity not found")

// DefaultRole is the role claim issued to logged-in users.
const DefaultRole = "USER"

const (
	summaryCacheTTL     = 5 * time.Minute
	summaryCacheCleanup = 10 * time.Minute
)

// Store persists identity records.
type Store interface {
	// FindByEmail returns ErrNotFound when no user has the email.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByGasID returns ErrNotFound when no user has the external id.
	FindByGasID(ctx context.Context, gasID primitive.ObjectID) (*User, error)
	// FindOrCreate upserts on the (email, gasId) pair in a single
	// conditional write and reports whether a record was created.
	// A concurrent creation that collides on a unique index surfaces
	// as a duplicate-key error.
	FindOrCreate(ctx context.Context, u *User) (*User, bool, error)
	// TouchLastLogin stamps lastLoggedIn and returns the updated user.
	TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) (*User, error)
	// FindByIDs returns the users matching ids; missing ids are skipped.
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]User, error)
	// IsDuplicateKey reports whether err is a unique-index violation.
	IsDuplicateKey(err error) bool
}

// Service implements the login flow and identity lookups.
type Service interface {
	// Login resolves or creates the identity for the credentials and
	// issues a bearer token.
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	// Summaries resolves identity summaries for denormalized listings.
	Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]Summary, error)
}

type service struct {
	store  Store
	tokens *auth.Tokens
	logger *zap.Logger
	cache  *gocache.Cache
	now    func() time.Time
}

// NewService creates the identity service.
func NewService(store Store, tokens *auth.Tokens, logger *zap.Logger) (Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if tokens == nil {
		return nil, errors.New("token service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		store:  store,
		tokens: tokens,
		logger: logger,
		cache:  gocache.New(summaryCacheTTL, summaryCacheCleanup),
		now:    time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	return s.login(ctx, req, true)
}

// login classifies the four credential scenarios. retry permits one
// re-classification after a duplicate-key race on creation.
func (s *service) login(ctx context.Context, req LoginRequest, retry bool) (*LoginResult, error) {
	byEmail, err := s.lookupByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	byGasID, err := s.lookupByGasID(ctx, req.GasID)
	if err != nil {
		return nil, err
	}

	switch {
	case byEmail != nil && byGasID != nil:
		if byEmail.ID != byGasID.ID {
			return nil, apierr.Conflict("Email and GasId belong to different users. Please check your credentials.")
		}
		user, err := s.store.TouchLastLogin(ctx, byEmail.ID, s.now())
		if err != nil {
			return nil, fmt.Errorf("failed to stamp last login: %w", err)
		}
		return s.result(user, false)

	case byEmail != nil:
		return nil, apierr.Conflict("Email exists but GasId does not match. Please check your GasId.")

	case byGasID != nil:
		return nil, apierr.Conflict("GasId exists but email does not match. Please check your email.")
	}

	now := s.now()
	user, created, err := s.store.FindOrCreate(ctx, &User{
		Email:        req.Email,
		GasID:        req.GasID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		LastLoggedIn: &now,
	})
	if err != nil {
		// Two concurrent first logins can race here. The winner holds
		// the unique index; re-classify so the caller sees the proper
		// mismatch conflict, never a raw driver error.
		if s.store.IsDuplicateKey(err) && retry {
			s.logger.Warn("login creation raced, re-classifying",
				zap.String("email", req.Email))
			return s.login(ctx, req, false)
		}
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	if created {
		s.logger.Info("identity created on first login",
			zap.String("user_id", user.ID.Hex()))
	}
	return s.result(user, created)
}

func (s *service) result(user *User, created bool) (*LoginResult, error) {
	token, err := s.tokens.Issue(&auth.Principal{
		UserID:   user.ID.Hex(),
		FullName: user.FullName(),
		Email:    user.Email,
		GasID:    user.GasID.Hex(),
		Roles:    DefaultRole,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &LoginResult{User: user, Token: token, Created: created}, nil
}

func (s *service) lookupByEmail(ctx context.Context, email string) (*User, error) {
	u, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	return u, nil
}

func (s *service) lookupByGasID(ctx context.Context, gasID primitive.ObjectID) (*User, error) {
	u, err := s.store.FindByGasID(ctx, gasID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up gasId: %w", err)
	}
	return u, nil
}

// Summaries resolves identity summaries, serving recently seen ids
// from a short-lived cache to keep denormalized listings cheap.
func (s *service) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]Summary, error) {
	out := make(map[primitive.ObjectID]Summary, len(ids))
	var misses []primitive.ObjectID

	for _, id := range ids {
		if id.IsZero() {
			continue
		}
		if cached, ok := s.cache.Get(id.Hex()); ok {
			out[id] = cached.(Summary)
			continue
		}
		misses = append(misses, id)
	}

	if len(misses) == 0 {
		return out, nil
	}

	users, err := s.store.FindByIDs(ctx, misses)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identity summaries: %w", err)
	}
	for _, u := range users {
		summary := Summary{ID: u.ID, FullName: u.FullName(), Email: u.Email}
		out[u.ID] = summary
		s.cache.Set(u.ID.Hex(), summary, gocache.DefaultExpiration)
	}
	return out, nil
}
