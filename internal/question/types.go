package question

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Question is an interview question definition. Questions are
// hard-deleted; there is no soft-delete flag on this collection.
type Question struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name           string               `bson:"name" json:"name"`
	IndustryType   []primitive.ObjectID `bson:"industryType" json:"industryType"`
	Question       string               `bson:"question" json:"question"`
	Tags           []string             `bson:"tags" json:"tags"`
	IsActive       bool                 `bson:"isActive" json:"isActive"`
	RequiredSample int                  `bson:"requiredSample" json:"requiredSample"`
	CreatedBy      primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// Summary is the denormalized shape embedded in listings that
// reference a question.
type Summary struct {
	ID       primitive.ObjectID `json:"_id"`
	Name     string             `json:"name"`
	Question string             `json:"question"`
}

// CreateInput carries the validated fields for a new question.
type CreateInput struct {
	Name           string
	IndustryType   []primitive.ObjectID
	Question       string
	Tags           []string
	IsActive       *bool
	RequiredSample int
}

// UpdateInput carries a partial update. Nil fields are left untouched.
type UpdateInput struct {
	Name           *string
	IndustryType   []primitive.ObjectID
	Question       *string
	Tags           []string
	IsActive       *bool
	RequiredSample *int
}

// Empty reports whether the update would change nothing.
func (in UpdateInput) Empty() bool {
	return in.Name == nil && in.IndustryType == nil && in.Question == nil &&
		in.Tags == nil && in.IsActive == nil && in.RequiredSample == nil
}
