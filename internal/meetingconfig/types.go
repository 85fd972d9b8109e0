package meetingconfig

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/NikhilSingh0745/mr-interview/internal/identity"
	"github.com/NikhilSingh0745/mr-interview/internal/question"
)

// TargetLocation scopes a meeting configuration to a geography.
type TargetLocation struct {
	Country string `bson:"country" json:"country"`
	City    string `bson:"city" json:"city"`
}

// Details is a reusable meeting configuration. Deleting is logical:
// isDeleted is flipped and the record stays addressable by id.
type Details struct {
	ID                        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name                      string               `bson:"name" json:"name"`
	Description               string               `bson:"description" json:"description"`
	QuestionID                primitive.ObjectID   `bson:"questionId" json:"questionId"`
	AdditionalQuestionIDs     []primitive.ObjectID `bson:"additionalQuestionIds" json:"additionalQuestionIds"`
	DurationMinutes           int                  `bson:"durationMinutes" json:"durationMinutes"`
	MaxParticipantsPerSession int                  `bson:"maxParticipantsPerSession" json:"maxParticipantsPerSession"`
	TimeZone                  string               `bson:"timeZone" json:"timeZone"`
	Language                  string               `bson:"language" json:"language"`
	TargetLocation            TargetLocation       `bson:"targetLocation" json:"targetLocation"`
	RequireAuthentication     bool                 `bson:"requireAuthentication" json:"requireAuthentication"`
	AllowRecording            bool                 `bson:"allowRecording" json:"allowRecording"`
	RecordingRetentionDays    int                  `bson:"recordingRetentionDays" json:"recordingRetentionDays"`
	IsActive                  bool                 `bson:"isActive" json:"isActive"`
	IsDeleted                 bool                 `bson:"isDeleted" json:"isDeleted"`
	CreatedBy                 primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	UpdatedBy                 primitive.ObjectID   `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedAt                 time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt                 time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// Summary is the denormalized shape embedded in listings that
// reference a meeting configuration.
type Summary struct {
	ID              primitive.ObjectID `json:"_id"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	DurationMinutes int                `json:"durationMinutes"`
}

// Listed is a Details row enriched with the referenced question and
// creator summaries for listings.
type Listed struct {
	Details
	Question            *question.Summary  `json:"question,omitempty"`
	AdditionalQuestions []question.Summary `json:"additionalQuestions,omitempty"`
	Creator             *identity.Summary  `json:"creator,omitempty"`
}

// CreateInput carries the validated fields for a new configuration.
type CreateInput struct {
	Name                      string
	Description               string
	QuestionID                primitive.ObjectID
	AdditionalQuestionIDs     []primitive.ObjectID
	DurationMinutes           int
	MaxParticipantsPerSession int
	TimeZone                  string
	Language                  string
	TargetLocation            TargetLocation
	RequireAuthentication     *bool
	AllowRecording            *bool
	RecordingRetentionDays    *int
	IsActive                  *bool
}

// UpdateInput carries a partial update. Nil fields are left untouched.
type UpdateInput struct {
	Name                      *string
	Description               *string
	QuestionID                *primitive.ObjectID
	AdditionalQuestionIDs     []primitive.ObjectID
	DurationMinutes           *int
	MaxParticipantsPerSession *int
	TimeZone                  *string
	Language                  *string
	TargetLocation            *TargetLocation
	RequireAuthentication     *bool
	AllowRecording            *bool
	RecordingRetentionDays    *int
	IsActive                  *bool
}

// ListFilter narrows listings. Nil flags mean "do not filter on it",
// except IsDeleted: nil excludes deleted records.
type ListFilter struct {
	Page      int
	PageSize  int
	IsActive  *bool
	IsDeleted *bool
}
