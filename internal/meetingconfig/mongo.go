package meetingconfig

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

const collectionName = "meeting_details"

// mongoStore implements Store on a mongo collection.
type mongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates the meeting details store.
func NewMongoStore(client *store.Client) Store {
	return &mongoStore{coll: client.Collection(collectionName)}
}

func (m *mongoStore) Insert(ctx context.Context, d *Details) error {
	if _, err := m.coll.InsertOne(ctx, d); err != nil {
		return fmt.Errorf("insert meeting details: %w", err)
	}
	return nil
}

func (m *mongoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*Details, error) {
	var d Details
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if store.IsNoDocuments(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find meeting details: %w", err)
	}
	return &d, nil
}

func (m *mongoStore) Update(ctx context.Context, id primitive.ObjectID, in UpdateInput, updatedBy primitive.ObjectID, at time.Time) (*Details, error) {
	set := bson.M{"updatedBy": updatedBy, "updatedAt": at}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.QuestionID != nil {
		set["questionId"] = *in.QuestionID
	}
	if in.AdditionalQuestionIDs != nil {
		set["additionalQuestionIds"] = in.AdditionalQuestionIDs
	}
	if in.DurationMinutes != nil {
		set["durationMinutes"] = *in.DurationMinutes
	}
	if in.MaxParticipantsPerSession != nil {
		set["maxParticipantsPerSession"] = *in.MaxParticipantsPerSession
	}
	if in.TimeZone != nil {
		set["timeZone"] = *in.TimeZone
	}
	if in.Language != nil {
		set["language"] = *in.Language
	}
	if in.TargetLocation != nil {
		set["targetLocation"] = *in.TargetLocation
	}
	if in.RequireAuthentication != nil {
		set["requireAuthentication"] = *in.RequireAuthentication
	}
	if in.AllowRecording != nil {
		set["allowRecording"] = *in.AllowRecording
	}
	if in.RecordingRetentionDays != nil {
		set["recordingRetentionDays"] = *in.RecordingRetentionDays
	}
	if in.IsActive != nil {
		set["isActive"] = *in.IsActive
	}

	after := m.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var d Details
	err := after.Decode(&d)
	if store.IsNoDocuments(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update meeting details: %w", err)
	}
	return &d, nil
}

func (m *mongoStore) SoftDelete(ctx context.Context, id primitive.ObjectID, updatedBy primitive.ObjectID, at time.Time) (*Details, error) {
	after := m.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isDeleted": true, "updatedBy": updatedBy, "updatedAt": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var d Details
	err := after.Decode(&d)
	if store.IsNoDocuments(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete meeting details: %w", err)
	}
	return &d, nil
}

func (m *mongoStore) List(ctx context.Context, filter ListFilter) ([]Details, int64, error) {
	match := bson.M{}
	if filter.IsActive != nil {
		match["isActive"] = *filter.IsActive
	}
	if filter.IsDeleted != nil {
		match["isDeleted"] = *filter.IsDeleted
	} else {
		match["isDeleted"] = false
	}

	total, err := m.coll.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, fmt.Errorf("count meeting details: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.PageSize)).
		SetLimit(int64(filter.PageSize))
	cursor, err := m.coll.Find(ctx, match, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list meeting details: %w", err)
	}

	items := []Details{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decode meeting details: %w", err)
	}
	return items, total, nil
}

func (m *mongoStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]Details, error) {
	cursor, err := m.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find meeting details by ids: %w", err)
	}
	var items []Details
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode meeting details: %w", err)
	}
	return items, nil
}
