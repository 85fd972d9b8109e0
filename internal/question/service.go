package question

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/NikhilSingh0745/mr-interview/internal/apierr"
)

// ErrNotFound is returned by stores when no question matches.
var ErrNotFound = errors.New("question not found")

// Store persists questions.
type Store interface {
	Insert(ctx context.Context, q *Question) error
	// FindByID returns ErrNotFound when no question has the id.
	FindByID(ctx context.Context, id primitive.ObjectID) (*Question, error)
	// Update applies the non-nil fields of in and returns the updated
	// question, or ErrNotFound.
	Update(ctx context.Context, id primitive.ObjectID, in UpdateInput, at time.Time) (*Question, error)
	// Delete removes the question permanently, or returns ErrNotFound.
	Delete(ctx context.Context, id primitive.ObjectID) error
	// List returns a page sorted by createdAt descending plus the
	// total count across all pages.
	List(ctx context.Context, page, pageSize int) ([]Question, int64, error)
	// FindByIDs returns the questions matching ids; missing ids are
	// skipped.
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]Question, error)
}

// Service implements question CRUD.
type Service interface {
	Create(ctx context.Context, createdBy primitive.ObjectID, in CreateInput) (*Question, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Question, error)
	List(ctx context.Context, page, pageSize int) ([]Question, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, in UpdateInput) (*Question, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// Summaries resolves question summaries for denormalized listings.
	Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]Summary, error)
}

type service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates the question service.
func NewService(store Store, logger *zap.Logger) (Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{store: store, logger: logger, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, createdBy primitive.ObjectID, in CreateInput) (*Question, error) {
	now := s.now()
	q := &Question{
		ID:             primitive.NewObjectID(),
		Name:           in.Name,
		IndustryType:   in.IndustryType,
		Question:       in.Question,
		Tags:           in.Tags,
		IsActive:       true,
		RequiredSample: in.RequiredSample,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.IsActive != nil {
		q.IsActive = *in.IsActive
	}
	if q.Tags == nil {
		q.Tags = []string{}
	}
	if err := s.store.Insert(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	s.logger.Info("question created",
		zap.String("question_id", q.ID.Hex()),
		zap.String("created_by", createdBy.Hex()))
	return q, nil
}

func (s *service) Get(ctx context.Context, id primitive.ObjectID) (*Question, error) {
	q, err := s.store.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apierr.NotFound("Question not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch question: %w", err)
	}
	return q, nil
}

func (s *service) List(ctx context.Context, page, pageSize int) ([]Question, int64, error) {
	items, total, err := s.store.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}
	return items, total, nil
}

func (s *service) Update(ctx context.Context, id primitive.ObjectID, in UpdateInput) (*Question, error) {
	if in.Empty() {
		return s.Get(ctx, id)
	}
	q, err := s.store.Update(ctx, id, in, s.now())
	if errors.Is(err, ErrNotFound) {
		return nil, apierr.NotFound("Question not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return q, nil
}

func (s *service) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return apierr.NotFound("Question not found")
	}
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	s.logger.Info("question deleted", zap.String("question_id", id.Hex()))
	return nil
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
	questions, err := s.store.FindByIDs(ctx, lookup)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve question summaries: %w", err)
	}
	out := make(map[primitive.ObjectID]Summary, len(questions))
	for _, q := range questions {
		out[q.ID] = Summary{ID: q.ID, Name: q.Name, Question: q.Question}
	}
	return out, nil
}
