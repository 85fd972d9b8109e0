package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/NikhilSingh0745/mr-interview/internal/apierr"
	"github.com/NikhilSingh0745/mr-interview/internal/auth"
)

// fakeStore is an in-memory Store enforcing the unique indexes the
// real collection carries.
type fakeStore struct {
	users   []*User
	findIDs int
	// injectDup makes the next FindOrCreate fail with a duplicate-key
	// outcome, simulating a concurrent first login.
	injectDup func(*fakeStore)
}

type dupError struct{}

func (dupError) Error() string { return "E11000 duplicate key error" }

func (f *fakeStore) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) FindByGasID(_ context.Context, gasID primitive.ObjectID) (*User, error) {
	for _, u := range f.users {
		if u.GasID == gasID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) FindOrCreate(ctx context.Context, u *User) (*User, bool, error) {
	if f.injectDup != nil {
		inject := f.injectDup
		f.injectDup = nil
		inject(f)
		return nil, false, dupError{}
	}
	for _, existing := range f.users {
		if existing.Email == u.Email && existing.GasID == u.GasID {
			existing.LastLoggedIn = u.LastLoggedIn
			copied := *existing
			return &copied, false, nil
		}
		if existing.Email == u.Email || existing.GasID == u.GasID {
			return nil, false, dupError{}
		}
	}
	now := time.Now()
	created := *u
	created.ID = primitive.NewObjectID()
	created.CreatedAt = now
	created.UpdatedAt = now
	f.users = append(f.users, &created)
	copied := created
	return &copied, true, nil
}

func (f *fakeStore) TouchLastLogin(_ context.Context, id primitive.ObjectID, at time.Time) (*User, error) {
	for _, u := range f.users {
		if u.ID == id {
			u.LastLoggedIn = &at
			u.UpdatedAt = at
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]User, error) {
	f.findIDs++
	var out []User
	for _, u := range f.users {
		for _, id := range ids {
			if u.ID == id {
				out = append(out, *u)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) IsDuplicateKey(err error) bool {
	_, ok := err.(dupError)
	return ok
}

func newTestService(t *testing.T, store Store) Service {
	t.Helper()
	tokens, err := auth.NewTokens("test-secret", time.Hour)
	require.NoError(t, err)
	svc, err := NewService(store, tokens, zap.NewNop())
	require.NoError(t, err)
	return svc
}

func TestLoginCreatesOnFirstSignIn(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(t, store)

	req := LoginRequest{Email: "Asha@Example.com ", GasID: primitive.NewObjectID(), FirstName: "Asha", LastName: "Rao"}
	res, err := svc.Login(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, res.Created)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "asha@example.com", res.User.Email)
	require.NotNil(t, res.User.LastLoggedIn)
	assert.Len(t, store.users, 1)
}

func TestLoginSecondSignInDoesNotDuplicate(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(t, store)
	req := LoginRequest{Email: "asha@example.com", GasID: primitive.NewObjectID()}

	first, err := svc.Login(context.Background(), req)
	require.NoError(t, err)
	require.True(t, first.Created)

	second, err := svc.Login(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Len(t, store.users, 1)
}

func TestLoginCredentialMismatches(t *testing.T) {
	existing := &User{
		ID:    primitive.NewObjectID(),
		Email: "asha@example.com",
		GasID: primitive.NewObjectID(),
	}
	other := &User{
		ID:    primitive.NewObjectID(),
		Email: "vik@example.com",
		GasID: primitive.NewObjectID(),
	}
	store := &fakeStore{users: []*User{existing, other}}
	svc := newTestService(t, store)

	tests := []struct {
		name    string
		req     LoginRequest
		wantMsg string
	}{
		{
			name:    "email exists, gasId does not match",
			req:     LoginRequest{Email: "asha@example.com", GasID: primitive.NewObjectID()},
			wantMsg: "GasId does not match",
		},
		{
			name:    "gasId exists, email does not match",
			req:     LoginRequest{Email: "new@example.com", GasID: existing.GasID},
			wantMsg: "email does not match",
		},
		{
			name:    "email and gasId belong to different users",
			req:     LoginRequest{Email: existing.Email, GasID: other.GasID},
			wantMsg: "different users",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.req)
			require.Error(t, err)
			apiErr := apierr.From(err)
			assert.Equal(t, apierr.KindConflict, apiErr.Kind)
			assert.Contains(t, apiErr.Message, tt.wantMsg)
			assert.Len(t, store.users, 2, "no identity may be created on mismatch")
		})
	}
}

func TestLoginDuplicateKeyRace(t *testing.T) {
	gasID := primitive.NewObjectID()
	store := &fakeStore{}
	// Simulate a concurrent login that wins the insert with the same
	// email but a different gasId.
	store.injectDup = func(f *fakeStore) {
		now := time.Now()
		f.users = append(f.users, &User{
			ID:           primitive.NewObjectID(),
			Email:        "asha@example.com",
			GasID:        primitive.NewObjectID(),
			LastLoggedIn: &now,
		})
	}
	svc := newTestService(t, store)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "asha@example.com", GasID: gasID})
	require.Error(t, err)
	apiErr := apierr.From(err)
	assert.Equal(t, apierr.KindConflict, apiErr.Kind, "race must surface as a mismatch conflict, not a raw driver error")
	assert.Contains(t, apiErr.Message, "GasId does not match")
}

func TestSummariesUsesCache(t *testing.T) {
	now := time.Now()
	user := &User{
		ID:        primitive.NewObjectID(),
		Email:     "asha@example.com",
		FirstName: "Asha",
		LastName:  "Rao",
		CreatedAt: now,
		UpdatedAt: now,
	}
	store := &fakeStore{users: []*User{user}}
	svc := newTestService(t, store)

	first, err := svc.Summaries(context.Background(), []primitive.ObjectID{user.ID})
	require.NoError(t, err)
	require.Contains(t, first, user.ID)
	assert.Equal(t, "Asha Rao", first[user.ID].FullName)

	_, err = svc.Summaries(context.Background(), []primitive.ObjectID{user.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, store.findIDs, "second lookup should be served from cache")
}

func TestSummariesSkipsZeroIDs(t *testing.T) {
	svc := newTestService(t, &fakeStore{})
	out, err := svc.Summaries(context.Background(), []primitive.ObjectID{primitive.NilObjectID})
	require.NoError(t, err)
	assert.Empty(t, out)
}
