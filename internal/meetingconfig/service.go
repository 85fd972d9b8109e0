package meetingconfig

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/NikhilSingh0745/mr-interview/internal/apierr"
	"github.com/NikhilSingh0745/mr-interview/internal/identity"
	"github.com/NikhilSingh0745/mr-interview/internal/question"
)

// ErrNotFound is returned by stores when no configuration matches.
var ErrNotFound = errors.New("meeting details not found")

const (
	defaultTimeZone      = "UTC"
	defaultLanguage      = "en"
	defaultRetentionDays = 30
)

// Store persists meeting configurations.
type Store interface {
	Insert(ctx context.Context, d *Details) error
	// FindByID returns the record regardless of its isDeleted flag,
	// or ErrNotFound.
	FindByID(ctx context.Context, id primitive.ObjectID) (*Details, error)
	// Update applies the non-nil fields of in, stamps updatedBy, and
	// returns the updated record, or ErrNotFound.
	Update(ctx context.Context, id primitive.ObjectID, in UpdateInput, updatedBy primitive.ObjectID, at time.Time) (*Details, error)
	// SoftDelete flips isDeleted and stamps updatedBy, or returns
	// ErrNotFound.
	SoftDelete(ctx context.Context, id primitive.ObjectID, updatedBy primitive.ObjectID, at time.Time) (*Details, error)
	// List returns a page sorted by createdAt descending plus the
	// total count matching the filter.
	List(ctx context.Context, filter ListFilter) ([]Details, int64, error)
	// FindByIDs returns the records matching ids; missing ids are
	// skipped.
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]Details, error)
}

// QuestionDirectory resolves question summaries for denormalization.
type QuestionDirectory interface {
	Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]question.Summary, error)
}

// UserDirectory resolves identity summaries for denormalization.
type UserDirectory interface {
	Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]identity.Summary, error)
}

// Service implements meeting configuration CRUD with logical delete.
type Service interface {
	Create(ctx context.Context, createdBy primitive.ObjectID, in CreateInput) (*Details, error)
	// Get returns the enriched record even when soft-deleted.
	Get(ctx context.Context, id primitive.ObjectID) (*Listed, error)
	List(ctx context.Context, filter ListFilter) ([]Listed, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, updatedBy primitive.ObjectID, in UpdateInput) (*Details, error)
	// Delete is logical: the record stays addressable by id.
	Delete(ctx context.Context, id primitive.ObjectID, updatedBy primitive.ObjectID) (*Details, error)
	// Summaries resolves configuration summaries for denormalized
	// session listings.
	Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]Summary, error)
}

type service struct {
	store     Store
	questions QuestionDirectory
	users     UserDirectory
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates the meeting configuration service.
func NewService(store Store, questions QuestionDirectory, users UserDirectory, logger *zap.Logger) (Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if questions == nil {
		return nil, errors.New("question directory is required")
	}
	if users == nil {
		return nil, errors.New("user directory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		store:     store,
		questions: questions,
		users:     users,
		logger:    logger,
		now:       time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, createdBy primitive.ObjectID, in CreateInput) (*Details, error) {
	now := s.now()
	d := &Details{
		ID:                        primitive.NewObjectID(),
		Name:                      in.Name,
		Description:               in.Description,
		QuestionID:                in.QuestionID,
		AdditionalQuestionIDs:     in.AdditionalQuestionIDs,
		DurationMinutes:           in.DurationMinutes,
		MaxParticipantsPerSession: in.MaxParticipantsPerSession,
		TimeZone:                  in.TimeZone,
		Language:                  in.Language,
		TargetLocation:            in.TargetLocation,
		RequireAuthentication:     true,
		AllowRecording:            false,
		RecordingRetentionDays:    defaultRetentionDays,
		IsActive:                  true,
		CreatedBy:                 createdBy,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}
	if d.AdditionalQuestionIDs == nil {
		d.AdditionalQuestionIDs = []primitive.ObjectID{}
	}
	if d.TimeZone == "" {
		d.TimeZone = defaultTimeZone
	}
	if d.Language == "" {
		d.Language = defaultLanguage
	}
	if in.RequireAuthentication != nil {
		d.RequireAuthentication = *in.RequireAuthentication
	}
	if in.AllowRecording != nil {
		d.AllowRecording = *in.AllowRecording
	}
	if in.RecordingRetentionDays != nil {
		d.RecordingRetentionDays = *in.RecordingRetentionDays
	}
	if in.IsActive != nil {
		d.IsActive = *in.IsActive
	}

	if err := s.store.Insert(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to create meeting details: %w", err)
	}
	s.logger.Info("meeting details created",
		zap.String("meeting_details_id", d.ID.Hex()),
		zap.String("created_by", createdBy.Hex()))
	return d, nil
}

func (s *service) Get(ctx context.Context, id primitive.ObjectID) (*Listed, error) {
	d, err := s.store.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apierr.NotFound("Meeting details not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch meeting details: %w", err)
	}

	enriched, err := s.enrich(ctx, []Details{*d})
	if err != nil {
		return nil, err
	}
	return &enriched[0], nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Listed, int64, error) {
	items, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list meeting details: %w", err)
	}
	enriched, err := s.enrich(ctx, items)
	if err != nil {
		return nil, 0, err
	}
	return enriched, total, nil
}

func (s *service) Update(ctx context.Context, id primitive.ObjectID, updatedBy primitive.ObjectID, in UpdateInput) (*Details, error) {
	d, err := s.store.Update(ctx, id, in, updatedBy, s.now())
	if errors.Is(err, ErrNotFound) {
		return nil, apierr.NotFound("Meeting details not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update meeting details: %w", err)
	}
	return d, nil
}

func (s *service) Delete(ctx context.Context, id primitive.ObjectID, updatedBy primitive.ObjectID) (*Details, error) {
	d, err := s.store.SoftDelete(ctx, id, updatedBy, s.now())
	if errors.Is(err, ErrNotFound) {
		return nil, apierr.NotFound("Meeting details not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete meeting details: %w", err)
	}
	s.logger.Info("meeting details deleted",
		zap.String("meeting_details_id", id.Hex()),
		zap.String("updated_by", updatedBy.Hex()))
	return d, nil
}

func (s *service) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]Summary, error) {
	lookup := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !id.IsZero() {
			lookup = append(lookup, id)
		}
	}
	if len(lookup) == 0 {
		return map[primitive.ObjectID]Summary{}, nil
	}
	items, err := s.store.FindByIDs(ctx, lookup)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve meeting details summaries: %w", err)
	}
	out := make(map[primitive.ObjectID]Summary, len(items))
	for _, d := range items {
		out[d.ID] = Summary{
			ID:              d.ID,
			Name:            d.Name,
			Description:     d.Description,
			DurationMinutes: d.DurationMinutes,
		}
	}
	return out, nil
}

// enrich joins question and creator summaries onto the rows. Dangling
// references are left nil rather than failing the listing.
func (s *service) enrich(ctx context.Context, items []Details) ([]Listed, error) {
	var questionIDs, userIDs []primitive.ObjectID
	for _, d := range items {
		questionIDs = append(questionIDs, d.QuestionID)
		questionIDs = append(questionIDs, d.AdditionalQuestionIDs...)
		userIDs = append(userIDs, d.CreatedBy)
	}

	questions, err := s.questions.Summaries(ctx, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve questions: %w", err)
	}
	users, err := s.users.Summaries(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve creators: %w", err)
	}

	out := make([]Listed, 0, len(items))
	for _, d := range items {
		row := Listed{Details: d}
		if q, ok := questions[d.QuestionID]; ok {
			row.Question = &q
		}
		for _, id := range d.AdditionalQuestionIDs {
			if q, ok := questions[id]; ok {
				row.AdditionalQuestions = append(row.AdditionalQuestions, q)
			}
		}
		if u, ok := users[d.CreatedBy]; ok {
			row.Creator = &u
		}
		out = append(out, row)
	}
	return out, nil
}
