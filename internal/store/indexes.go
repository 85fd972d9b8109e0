package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the query paths rely on. Safe to
// call on every startup; existing indexes are left alone.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "gasId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}, {Key: "gasId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"questions": {
			{Keys: bson.D{{Key: "industryType", Value: 1}}},
			{Keys: bson.D{{Key: "isActive", Value: 1}}},
		},
		"meeting_details": {
			{Keys: bson.D{{Key: "questionId", Value: 1}}},
			{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "isDeleted", Value: 1}}},
			{Keys: bson.D{{Key: "createdBy", Value: 1}}},
		},
		"meeting_sessions": {
			{Keys: bson.D{{Key: "meetingDetailsId", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "scheduledStartTime", Value: 1}}},
			{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "isDeleted", Value: 1}}},
			{Keys: bson.D{{Key: "createdBy", Value: 1}}},
			{Keys: bson.D{{Key: "participants.participantId", Value: 1}}},
			{Keys: bson.D{{Key: "scheduledStartTime", Value: 1}, {Key: "scheduledEndTime", Value: 1}}},
		},
	}

	for collection, models := range specs {
		if _, err := c.db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
