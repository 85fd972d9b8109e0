package meetingsession

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/NikhilSingh0745/mr-interview/internal/apierr"
	"github.com/NikhilSingh0745/mr-interview/internal/identity"
	"github.com/NikhilSingh0745/mr-interview/internal/meetingconfig"
)

var (
	// ErrNotFound is returned by stores when no session matches.
	ErrNotFound = errors.New("meeting session not found")
	// ErrNoMatch is returned by conditional writes whose guard did
	// not hold, typically because a concurrent update won.
	ErrNoMatch = errors.New("session state changed")
)

// Store persists meeting sessions. Participant and status writes are
// conditional single-document updates so concurrent callers cannot
// overfill a session, duplicate a participant, or skip a lifecycle
// state.
type Store interface {
	Insert(ctx context.Context, s *Session) error
	// FindByID returns the record regardless of its isDeleted flag,
	// or ErrNotFound.
	FindByID(ctx context.Context, id primitive.ObjectID) (*Session, error)
	// Update applies the non-nil fields of in and stamps updatedBy,
	// or returns ErrNotFound.
	Update(ctx context.Context, id primitive.ObjectID, in UpdateInput, updatedBy primitive.ObjectID, at time.Time) (*Session, error)
	// UpdateStatus moves the session to in.Status only while its
	// current status equals from. Returns ErrNoMatch when the guard
	// fails.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from Status, in StatusInput, updatedBy primitive.ObjectID, at time.Time) (*Session, error)
	// AddParticipant appends p only while the session has free
	// capacity and p is absent. Returns ErrNoMatch when the guard
	// fails.
	AddParticipant(ctx context.Context, id primitive.ObjectID, p Participant, updatedBy primitive.ObjectID, at time.Time) (*Session, error)
	// RemoveParticipant pulls the participant only while present.
	// Returns ErrNoMatch when the guard fails.
	RemoveParticipant(ctx context.Context, id primitive.ObjectID, participantID primitive.ObjectID, updatedBy primitive.ObjectID, at time.Time) (*Session, error)
	// SoftDelete flips isDeleted and stamps updatedBy, or returns
	// ErrNotFound.
	SoftDelete(ctx context.Context, id primitive.ObjectID, updatedBy primitive.ObjectID, at time.Time) (*Session, error)
	// List returns a page sorted by scheduledStartTime descending
	// plus the total count matching the filter.
	List(ctx context.Context, filter ListFilter) ([]Session, int64, error)
}

// ConfigDirectory resolves meeting configuration summaries.
type ConfigDirectory interface {
	Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]meetingconfig.Summary, error)
}

// UserDirectory resolves identity summaries for denormalization.
type UserDirectory interface {
	Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]identity.Summary, error)
}

// Service implements the session lifecycle.
type Service interface {
	Create(ctx context.Context, createdBy primitive.ObjectID, in CreateInput) (*Session, error)
	// Get returns the enriched record even when soft-deleted.
	Get(ctx context.Context, id primitive.ObjectID) (*Listed, error)
	List(ctx context.Context, filter ListFilter) ([]Listed, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, updatedBy primitive.ObjectID, in UpdateInput) (*Session, error)
	// Transition moves the session along the lifecycle. Moves the
	// state diagram does not permit are rejected with a conflict.
	Transition(ctx context.Context, id primitive.ObjectID, updatedBy primitive.ObjectID, in StatusInput) (*Session, error)
	AddParticipant(ctx context.Context, id primitive.ObjectID, updatedBy primitive.ObjectID, in AddParticipantInput) (*Session, error)
	RemoveParticipant(ctx context.Context, id primitive.ObjectID, participantID primitive.ObjectID, updatedBy primitive.ObjectID) (*Session, error)
	// Delete is logical: the record stays addressable by id.
	Delete(ctx context.Context, id primitive.ObjectID, updatedBy primitive.ObjectID) (*Session, error)
}

type service struct {
	store   Store
	configs ConfigDirectory
	users   UserDirectory
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates the meeting session service.
func NewService(store Store, configs ConfigDirectory, users UserDirectory, logger *zap.Logger) (Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if configs == nil {
		return nil, errors.New("config directory is required")
	}
	if users == nil {
		return nil, errors.New("user directory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		store:   store,
		configs: configs,
		users:   users,
		logger:  logger,
		now:     time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, createdBy primitive.ObjectID, in CreateInput) (*Session, error) {
	configs, err := s.configs.Summaries(ctx, []primitive.ObjectID{in.MeetingDetailsID})
	if err != nil {
		return nil, fmt.Errorf("failed to verify meeting details: %w", err)
	}
	if _, ok := configs[in.MeetingDetailsID]; !ok {
		return nil, apierr.NotFound("Meeting details not found")
	}

	now := s.now()
	sess := &Session{
		ID:                 primitive.NewObjectID(),
		MeetingDetailsID:   in.MeetingDetailsID,
		SessionName:        in.SessionName,
		SessionDescription: in.SessionDescription,
		ScheduledStartTime: in.ScheduledStartTime,
		ScheduledEndTime:   in.ScheduledEndTime,
		Participants:       []Participant{},
		MaxParticipants:    in.MaxParticipants,
		Status:             StatusScheduled,
		MeetingLink:        in.MeetingLink,
		SessionNotes:       in.SessionNotes,
		HostNotes:          in.HostNotes,
		IsActive:           true,
		CreatedBy:          createdBy,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.store.Insert(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create meeting session: %w", err)
	}
	s.logger.Info("meeting session created",
		zap.String("session_id", sess.ID.Hex()),
		zap.String("meeting_details_id", in.MeetingDetailsID.Hex()))
	return sess, nil
}

func (s *service) Get(ctx context.Context, id primitive.ObjectID) (*Listed, error) {
	sess, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	enriched, err := s.enrich(ctx, []Session{*sess})
	if err != nil {
		return nil, err
	}
	return &enriched[0], nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Listed, int64, error) {
	items, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list meeting sessions: %w", err)
	}
	enriched, err := s.enrich(ctx, items)
	if err != nil {
		return nil, 0, err
	}
	return enriched, total, nil
}

func (s *service) Update(ctx context.Context, id primitive.ObjectID, updatedBy primitive.ObjectID, in UpdateInput) (*Session, error) {
	sess, err := s.store.Update(ctx, id, in, updatedBy, s.now())
	if errors.Is(err, ErrNotFound) {
		return nil, apierr.NotFound("Meeting session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update meeting session: %w", err)
	}
	return sess, nil
}

func (s *service) Transition(ctx context.Context, id primitive.ObjectID, updatedBy primitive.ObjectID, in StatusInput) (*Session, error) {
	if !in.Status.Valid() {
		return nil, apierr.Validation([]apierr.FieldError{{Field: "status", Message: "Invalid session status"}})
	}

	sess, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.Status.CanTransition(in.Status) {
		return nil, transitionConflict(sess.Status, in.Status)
	}

	updated, err := s.store.UpdateStatus(ctx, id, sess.Status, in, updatedBy, s.now())
	if errors.Is(err, ErrNoMatch) {
		// A concurrent transition won; re-read so the conflict names
		// the status the session actually holds.
		current, ferr := s.fetch(ctx, id)
		if ferr != nil {
			return nil, ferr
		}
		return nil, transitionConflict(current.Status, in.Status)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update session status: %w", err)
	}

	s.logger.Info("meeting session transitioned",
		zap.String("session_id", id.Hex()),
		zap.String("from", string(sess.Status)),
		zap.String("to", string(in.Status)))
	return updated, nil
}

func (s *service) AddParticipant(ctx context.Context, id primitive.ObjectID, updatedBy primitive.ObjectID, in AddParticipantInput) (*Session, error) {
	sess, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if conflict := addConflict(sess, in.ParticipantID); conflict != nil {
		return nil, conflict
	}

	p := Participant{
		ParticipantID:    in.ParticipantID,
		ParticipantName:  in.ParticipantName,
		ParticipantEmail: in.ParticipantEmail,
		AttendanceStatus: AttendanceNoShow,
	}
	updated, err := s.store.AddParticipant(ctx, id, p, updatedBy, s.now())
	if errors.Is(err, ErrNoMatch) {
		current, ferr := s.fetch(ctx, id)
		if ferr != nil {
			return nil, ferr
		}
		if conflict := addConflict(current, in.ParticipantID); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("failed to add participant: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add participant: %w", err)
	}

	s.logger.Info("participant added",
		zap.String("session_id", id.Hex()),
		zap.String("participant_id", in.ParticipantID.Hex()))
	return updated, nil
}

func (s *service) RemoveParticipant(ctx context.Context, id primitive.ObjectID, participantID primitive.ObjectID, updatedBy primitive.ObjectID) (*Session, error) {
	updated, err := s.store.RemoveParticipant(ctx, id, participantID, updatedBy, s.now())
	if errors.Is(err, ErrNoMatch) {
		if _, ferr := s.fetch(ctx, id); ferr != nil {
			return nil, ferr
		}
		return nil, apierr.NotFound("Participant not found in this session")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to remove participant: %w", err)
	}

	s.logger.Info("participant removed",
		zap.String("session_id", id.Hex()),
		zap.String("participant_id", participantID.Hex()))
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id primitive.ObjectID, updatedBy primitive.ObjectID) (*Session, error) {
	sess, err := s.store.SoftDelete(ctx, id, updatedBy, s.now())
	if errors.Is(err, ErrNotFound) {
		return nil, apierr.NotFound("Meeting session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete meeting session: %w", err)
	}
	s.logger.Info("meeting session deleted", zap.String("session_id", id.Hex()))
	return sess, nil
}

func (s *service) fetch(ctx context.Context, id primitive.ObjectID) (*Session, error) {
	sess, err := s.store.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apierr.NotFound("Meeting session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch meeting session: %w", err)
	}
	return sess, nil
}

func transitionConflict(from, to Status) error {
	return apierr.Conflict(fmt.Sprintf("Cannot transition session from %s to %s", from, to))
}

func addConflict(sess *Session, participantID primitive.ObjectID) error {
	if sess.Full() {
		return apierr.Conflict("Session is full, cannot add more participants")
	}
	if sess.HasParticipant(participantID) {
		return apierr.Conflict("Participant already added to this session")
	}
	return nil
}

// enrich joins configuration, audit and participant summaries onto
// the rows. Dangling references are left nil rather than failing the
// listing.
func (s *service) enrich(ctx context.Context, items []Session) ([]Listed, error) {
	var configIDs, userIDs []primitive.ObjectID
	for _, sess := range items {
		configIDs = append(configIDs, sess.MeetingDetailsID)
		userIDs = append(userIDs, sess.CreatedBy, sess.UpdatedBy)
		for _, p := range sess.Participants {
			userIDs = append(userIDs, p.ParticipantID)
		}
	}

	configs, err := s.configs.Summaries(ctx, configIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve meeting details: %w", err)
	}
	users, err := s.users.Summaries(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identities: %w", err)
	}

	out := make([]Listed, 0, len(items))
	for _, sess := range items {
		row := Listed{Session: sess, Participants: []ListedParticipant{}}
		if c, ok := configs[sess.MeetingDetailsID]; ok {
			row.MeetingDetails = &c
		}
		if u, ok := users[sess.CreatedBy]; ok {
			row.Creator = &u
		}
		if u, ok := users[sess.UpdatedBy]; ok {
			row.Updater = &u
		}
		for _, p := range sess.Participants {
			lp := ListedParticipant{Participant: p}
			if u, ok := users[p.ParticipantID]; ok {
				lp.User = &u
			}
			row.Participants = append(row.Participants, lp)
		}
		out = append(out, row)
	}
	return out, nil
}
