package question

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

const collectionName = "questions"

// mongoStore implements Store on a mongo collection.
type mongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates the questions store.
func NewMongoStore(client *store.Client) Store {
	return &mongoStore{coll: client.Collection(collectionName)}
}

func (m *mongoStore) Insert(ctx context.Context, q *Question) error {
	if _, err := m.coll.InsertOne(ctx, q); err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (m *mongoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*Question, error) {
	var q Question
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&q)
	if store.IsNoDocuments(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find question: %w", err)
	}
	return &q, nil
}

func (m *mongoStore) Update(ctx context.Context, id primitive.ObjectID, in UpdateInput, at time.Time) (*Question, error) {
	set := bson.M{"updatedAt": at}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.IndustryType != nil {
		set["industryType"] = in.IndustryType
	}
	if in.Question != nil {
		set["question"] = *in.Question
	}
	if in.Tags != nil {
		set["tags"] = in.Tags
	}
	if in.IsActive != nil {
		set["isActive"] = *in.IsActive
	}
	if in.RequiredSample != nil {
		set["requiredSample"] = *in.RequiredSample
	}

	after := m.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var q Question
	err := after.Decode(&q)
	if store.IsNoDocuments(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	return &q, nil
}

func (m *mongoStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoStore) List(ctx context.Context, page, pageSize int) ([]Question, int64, error) {
	total, err := m.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count questions: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))
	cursor, err := m.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list questions: %w", err)
	}

	items := []Question{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decode questions: %w", err)
	}
	return items, total, nil
}

func (m *mongoStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]Question, error) {
	cursor, err := m.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find questions by ids: %w", err)
	}
	var questions []Question
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return questions, nil
}
