package meetingsession

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

const collectionName = "meeting_sessions"

// mongoStore implements Store on a mongo collection.
type mongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates the meeting sessions store.
func NewMongoStore(client *store.Client) Store {
	return &mongoStore{coll: client.Collection(collectionName)}
}

func (m *mongoStore) Insert(ctx context.Context, s *Session) error {
	if _, err := m.coll.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("insert meeting session: %w", err)
	}
	return nil
}

func (m *mongoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*Session, error) {
	var s Session
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if store.IsNoDocuments(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find meeting session: %w", err)
	}
	return &s, nil
}

func (m *mongoStore) Update(ctx context.Context, id primitive.ObjectID, in UpdateInput, updatedBy primitive.ObjectID, at time.Time) (*Session, error) {
	set := bson.M{"updatedBy": updatedBy, "updatedAt": at}
	if in.SessionName != nil {
		set["sessionName"] = *in.SessionName
	}
	if in.SessionDescription != nil {
		set["sessionDescription"] = *in.SessionDescription
	}
	if in.ScheduledStartTime != nil {
		set["scheduledStartTime"] = *in.ScheduledStartTime
	}
	if in.ScheduledEndTime != nil {
		set["scheduledEndTime"] = *in.ScheduledEndTime
	}
	if in.MaxParticipants != nil {
		set["maxParticipants"] = *in.MaxParticipants
	}
	if in.MeetingLink != nil {
		set["meetingLink"] = *in.MeetingLink
	}
	if in.RecordingURL != nil {
		set["recordingUrl"] = *in.RecordingURL
	}
	if in.SessionNotes != nil {
		set["sessionNotes"] = *in.SessionNotes
	}
	if in.HostNotes != nil {
		set["hostNotes"] = *in.HostNotes
	}
	if in.IsActive != nil {
		set["isActive"] = *in.IsActive
	}

	after := m.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var s Session
	err := after.Decode(&s)
	if store.IsNoDocuments(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update meeting session: %w", err)
	}
	return &s, nil
}

// UpdateStatus guards the write on the current status so two racing
// transitions cannot both apply.
func (m *mongoStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, from Status, in StatusInput, updatedBy primitive.ObjectID, at time.Time) (*Session, error) {
	set := bson.M{"status": in.Status, "updatedBy": updatedBy, "updatedAt": at}
	if in.Status == StatusInProgress && in.ActualStartTime != nil {
		set["actualStartTime"] = *in.ActualStartTime
	}
	if in.Status == StatusCompleted && in.ActualEndTime != nil {
		set["actualEndTime"] = *in.ActualEndTime
	}

	after := m.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var s Session
	err := after.Decode(&s)
	if store.IsNoDocuments(err) {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("update session status: %w", err)
	}
	return &s, nil
}

// AddParticipant encodes capacity and absence in the filter, so a
// concurrent add can never overfill the session or duplicate an
// identity.
func (m *mongoStore) AddParticipant(ctx context.Context, id primitive.ObjectID, p Participant, updatedBy primitive.ObjectID, at time.Time) (*Session, error) {
	filter := bson.M{
		"_id":                        id,
		"participants.participantId": bson.M{"$ne": p.ParticipantID},
		"$expr": bson.M{"$lt": bson.A{
			bson.M{"$size": "$participants"},
			"$maxParticipants",
		}},
	}
	update := bson.M{
		"$push": bson.M{"participants": p},
		"$set":  bson.M{"updatedBy": updatedBy, "updatedAt": at},
	}

	after := m.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var s Session
	err := after.Decode(&s)
	if store.IsNoDocuments(err) {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("add participant: %w", err)
	}
	return &s, nil
}

func (m *mongoStore) RemoveParticipant(ctx context.Context, id primitive.ObjectID, participantID primitive.ObjectID, updatedBy primitive.ObjectID, at time.Time) (*Session, error) {
	filter := bson.M{
		"_id":                        id,
		"participants.participantId": participantID,
	}
	update := bson.M{
		"$pull": bson.M{"participants": bson.M{"participantId": participantID}},
		"$set":  bson.M{"updatedBy": updatedBy, "updatedAt": at},
	}

	after := m.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var s Session
	err := after.Decode(&s)
	if store.IsNoDocuments(err) {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("remove participant: %w", err)
	}
	return &s, nil
}

func (m *mongoStore) SoftDelete(ctx context.Context, id primitive.ObjectID, updatedBy primitive.ObjectID, at time.Time) (*Session, error) {
	after := m.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isDeleted": true, "updatedBy": updatedBy, "updatedAt": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var s Session
	err := after.Decode(&s)
	if store.IsNoDocuments(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete meeting session: %w", err)
	}
	return &s, nil
}

func (m *mongoStore) List(ctx context.Context, filter ListFilter) ([]Session, int64, error) {
	match := bson.M{}
	if filter.MeetingDetailsID != nil {
		match["meetingDetailsId"] = *filter.MeetingDetailsID
	}
	if filter.Status != nil {
		match["status"] = *filter.Status
	}
	if filter.IsActive != nil {
		match["isActive"] = *filter.IsActive
	}
	if filter.IsDeleted != nil {
		match["isDeleted"] = *filter.IsDeleted
	} else {
		match["isDeleted"] = false
	}
	if filter.StartDate != nil || filter.EndDate != nil {
		window := bson.M{}
		if filter.StartDate != nil {
			window["$gte"] = *filter.StartDate
		}
		if filter.EndDate != nil {
			window["$lte"] = *filter.EndDate
		}
		match["scheduledStartTime"] = window
	}

	total, err := m.coll.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, fmt.Errorf("count meeting sessions: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "scheduledStartTime", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.PageSize)).
		SetLimit(int64(filter.PageSize))
	cursor, err := m.coll.Find(ctx, match, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list meeting sessions: %w", err)
	}

	items := []Session{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decode meeting sessions: %w", err)
	}
	return items, total, nil
}
