package identity

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/NikhilSingh0745/mr-interview/internal/store"
)

const collectionName = "users"

// mongoStore implements Store on a mongo collection.
type mongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates the users store.
func NewMongoStore(client *store.Client) Store {
	return &mongoStore{coll: client.Collection(collectionName)}
}

func (m *mongoStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := m.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if store.IsNoDocuments(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find by email: %w", err)
	}
	return &u, nil
}

func (m *mongoStore) FindByGasID(ctx context.Context, gasID primitive.ObjectID) (*User, error) {
	var u User
	err := m.coll.FindOne(ctx, bson.M{"gasId": gasID}).Decode(&u)
	if store.IsNoDocuments(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find by gasId: %w", err)
	}
	return &u, nil
}

// FindOrCreate is a single conditional upsert on the (email, gasId)
// pair. When a concurrent login already created a user with the same
// email or gasId but a different counterpart, the unique index rejects
// the insert with a duplicate-key error.
func (m *mongoStore) FindOrCreate(ctx context.Context, u *User) (*User, bool, error) {
	now := time.Now()
	filter := bson.M{"email": u.Email, "gasId": u.GasID}
	update := bson.M{
		"$set": bson.M{"lastLoggedIn": u.LastLoggedIn, "updatedAt": now},
		"$setOnInsert": bson.M{
			"email":     u.Email,
			"gasId":     u.GasID,
			"firstName": u.FirstName,
			"lastName":  u.LastName,
			"createdAt": now,
		},
	}

	before := m.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.Before))

	var existing User
	err := before.Decode(&existing)
	if store.IsNoDocuments(err) {
		// Nothing matched before the write: this call inserted.
		created, err := m.FindByEmail(ctx, u.Email)
		if err != nil {
			return nil, false, fmt.Errorf("reload created user: %w", err)
		}
		return created, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	reloaded, err := m.FindByEmail(ctx, u.Email)
	if err != nil {
		return nil, false, fmt.Errorf("reload user: %w", err)
	}
	return reloaded, false, nil
}

func (m *mongoStore) TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) (*User, error) {
	after := m.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"lastLoggedIn": at, "updatedAt": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var u User
	err := after.Decode(&u)
	if store.IsNoDocuments(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("touch last login: %w", err)
	}
	return &u, nil
}

func (m *mongoStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]User, error) {
	cursor, err := m.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find by ids: %w", err)
	}
	var users []User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (m *mongoStore) IsDuplicateKey(err error) bool {
	return store.IsDuplicateKey(err)
}
