package meetingsession

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/NikhilSingh0745/mr-interview/internal/apierr"
	"github.com/NikhilSingh0745/mr-interview/internal/identity"
	"github.com/NikhilSingh0745/mr-interview/internal/meetingconfig"
)

// fakeStore mirrors the conditional-write semantics of the mongo
// store: guarded updates that fail their guard return ErrNoMatch.
type fakeStore struct {
	items map[primitive.ObjectID]*Session
	// beforeAdd and beforeStatus, when set, run just before the
	// corresponding guard is evaluated. Used to simulate a concurrent
	// writer.
	beforeAdd    func(*fakeStore)
	beforeStatus func(*fakeStore)
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: make(map[primitive.ObjectID]*Session)}
}

func (f *fakeStore) Insert(_ context.Context, s *Session) error {
	copied := *s
	f.items[s.ID] = &copied
	return nil
}

func (f *fakeStore) FindByID(_ context.Context, id primitive.ObjectID) (*Session, error) {
	s, ok := f.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s
	copied.Participants = append([]Participant{}, s.Participants...)
	return &copied, nil
}

func (f *fakeStore) Update(_ context.Context, id primitive.ObjectID, in UpdateInput, updatedBy primitive.ObjectID, at time.Time) (*Session, error) {
	s, ok := f.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if in.SessionName != nil {
		s.SessionName = *in.SessionName
	}
	if in.SessionDescription != nil {
		s.SessionDescription = *in.SessionDescription
	}
	if in.ScheduledStartTime != nil {
		s.ScheduledStartTime = *in.ScheduledStartTime
	}
	if in.ScheduledEndTime != nil {
		s.ScheduledEndTime = *in.ScheduledEndTime
	}
	if in.MaxParticipants != nil {
		s.MaxParticipants = *in.MaxParticipants
	}
	if in.RecordingURL != nil {
		s.RecordingURL = *in.RecordingURL
	}
	if in.IsActive != nil {
		s.IsActive = *in.IsActive
	}
	s.UpdatedBy = updatedBy
	s.UpdatedAt = at
	copied := *s
	return &copied, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id primitive.ObjectID, from Status, in StatusInput, updatedBy primitive.ObjectID, at time.Time) (*Session, error) {
	if f.beforeStatus != nil {
		hook := f.beforeStatus
		f.beforeStatus = nil
		hook(f)
	}
	s, ok := f.items[id]
	if !ok || s.Status != from {
		return nil, ErrNoMatch
	}
	s.Status = in.Status
	if in.Status == StatusInProgress && in.ActualStartTime != nil {
		s.ActualStartTime = in.ActualStartTime
	}
	if in.Status == StatusCompleted && in.ActualEndTime != nil {
		s.ActualEndTime = in.ActualEndTime
	}
	s.UpdatedBy = updatedBy
	s.UpdatedAt = at
	copied := *s
	return &copied, nil
}

func (f *fakeStore) AddParticipant(_ context.Context, id primitive.ObjectID, p Participant, updatedBy primitive.ObjectID, at time.Time) (*Session, error) {
	if f.beforeAdd != nil {
		hook := f.beforeAdd
		f.beforeAdd = nil
		hook(f)
	}
	s, ok := f.items[id]
	if !ok || s.Full() || s.HasParticipant(p.ParticipantID) {
		return nil, ErrNoMatch
	}
	s.Participants = append(s.Participants, p)
	s.UpdatedBy = updatedBy
	s.UpdatedAt = at
	copied := *s
	copied.Participants = append([]Participant{}, s.Participants...)
	return &copied, nil
}

func (f *fakeStore) RemoveParticipant(_ context.Context, id primitive.ObjectID, participantID primitive.ObjectID, updatedBy primitive.ObjectID, at time.Time) (*Session, error) {
	s, ok := f.items[id]
	if !ok || !s.HasParticipant(participantID) {
		return nil, ErrNoMatch
	}
	kept := s.Participants[:0]
	for _, p := range s.Participants {
		if p.ParticipantID != participantID {
			kept = append(kept, p)
		}
	}
	s.Participants = kept
	s.UpdatedBy = updatedBy
	s.UpdatedAt = at
	copied := *s
	copied.Participants = append([]Participant{}, s.Participants...)
	return &copied, nil
}

func (f *fakeStore) SoftDelete(_ context.Context, id primitive.ObjectID, updatedBy primitive.ObjectID, at time.Time) (*Session, error) {
	s, ok := f.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.IsDeleted = true
	s.UpdatedBy = updatedBy
	s.UpdatedAt = at
	copied := *s
	return &copied, nil
}

func (f *fakeStore) List(_ context.Context, filter ListFilter) ([]Session, int64, error) {
	var all []Session
	for _, s := range f.items {
		if filter.MeetingDetailsID != nil && s.MeetingDetailsID != *filter.MeetingDetailsID {
			continue
		}
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		if filter.IsActive != nil && s.IsActive != *filter.IsActive {
			continue
		}
		if filter.IsDeleted != nil {
			if s.IsDeleted != *filter.IsDeleted {
				continue
			}
		} else if s.IsDeleted {
			continue
		}
		if filter.StartDate != nil && s.ScheduledStartTime.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && s.ScheduledStartTime.After(*filter.EndDate) {
			continue
		}
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].ScheduledStartTime.After(all[j].ScheduledStartTime)
	})

	start := (filter.Page - 1) * filter.PageSize
	if start >= len(all) {
		return []Session{}, int64(len(all)), nil
	}
	end := start + filter.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

type fakeConfigs struct {
	byID map[primitive.ObjectID]meetingconfig.Summary
}

func (f *fakeConfigs) Summaries(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]meetingconfig.Summary, error) {
	out := map[primitive.ObjectID]meetingconfig.Summary{}
	for _, id := range ids {
		if s, ok := f.byID[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

type fakeUsers struct {
	byID map[primitive.ObjectID]identity.Summary
}

func (f *fakeUsers) Summaries(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]identity.Summary, error) {
	out := map[primitive.ObjectID]identity.Summary{}
	for _, id := range ids {
		if s, ok := f.byID[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

type fixture struct {
	svc      Service
	store    *fakeStore
	configs  *fakeConfigs
	users    *fakeUsers
	configID primitive.ObjectID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    newFakeStore(),
		configs:  &fakeConfigs{byID: map[primitive.ObjectID]meetingconfig.Summary{}},
		users:    &fakeUsers{byID: map[primitive.ObjectID]identity.Summary{}},
		configID: primitive.NewObjectID(),
	}
	f.configs.byID[f.configID] = meetingconfig.Summary{
		ID: f.configID, Name: "Retail panel", DurationMinutes: 30,
	}
	svc, err := NewService(f.store, f.configs, f.users, zap.NewNop())
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) create(t *testing.T, capacity int) *Session {
	t.Helper()
	start := time.Now().Add(time.Hour)
	sess, err := f.svc.Create(context.Background(), primitive.NewObjectID(), CreateInput{
		MeetingDetailsID:   f.configID,
		SessionName:        "Morning slot",
		ScheduledStartTime: start,
		ScheduledEndTime:   start.Add(30 * time.Minute),
		MaxParticipants:    capacity,
	})
	require.NoError(t, err)
	return sess
}

func addInput() AddParticipantInput {
	return AddParticipantInput{
		ParticipantID:    primitive.NewObjectID(),
		ParticipantName:  "Asha Rao",
		ParticipantEmail: "asha@example.com",
	}
}

func TestCreateStartsScheduledAndEmpty(t *testing.T) {
	f := newFixture(t)
	sess := f.create(t, 3)

	assert.Equal(t, StatusScheduled, sess.Status)
	assert.Empty(t, sess.Participants)
	assert.NotNil(t, sess.Participants)
	assert.True(t, sess.IsActive)
	assert.False(t, sess.IsDeleted)
	assert.Nil(t, sess.ActualStartTime)
}

func TestCreateRejectsUnknownMeetingDetails(t *testing.T) {
	f := newFixture(t)
	start := time.Now().Add(time.Hour)

	_, err := f.svc.Create(context.Background(), primitive.NewObjectID(), CreateInput{
		MeetingDetailsID:   primitive.NewObjectID(),
		SessionName:        "Orphan",
		ScheduledStartTime: start,
		ScheduledEndTime:   start.Add(time.Hour),
		MaxParticipants:    2,
	})
	require.Error(t, err)
	assert.True(t, apierr.IsKind(err, apierr.KindNotFound))
}

func TestTransitionHappyPath(t *testing.T) {
	f := newFixture(t)
	sess := f.create(t, 3)
	actor := primitive.NewObjectID()
	started := time.Now()

	inProgress, err := f.svc.Transition(context.Background(), sess.ID, actor, StatusInput{
		Status: StatusInProgress, ActualStartTime: &started,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, inProgress.Status)
	require.NotNil(t, inProgress.ActualStartTime)
	assert.Equal(t, actor, inProgress.UpdatedBy)

	ended := started.Add(30 * time.Minute)
	completed, err := f.svc.Transition(context.Background(), sess.ID, actor, StatusInput{
		Status: StatusCompleted, ActualEndTime: &ended,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, completed.Status)
	require.NotNil(t, completed.ActualEndTime)
}

func TestTransitionRejectsBackwardAndTerminal(t *testing.T) {
	f := newFixture(t)
	actor := primitive.NewObjectID()

	tests := []struct {
		name string
		from Status
		to   Status
	}{
		{"scheduled skips to completed", StatusScheduled, StatusCompleted},
		{"in progress back to scheduled", StatusInProgress, StatusScheduled},
		{"completed is terminal", StatusCompleted, StatusInProgress},
		{"cancelled is terminal", StatusCancelled, StatusInProgress},
		{"self transition", StatusScheduled, StatusScheduled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := f.create(t, 3)
			f.store.items[sess.ID].Status = tt.from

			_, err := f.svc.Transition(context.Background(), sess.ID, actor, StatusInput{Status: tt.to})
			require.Error(t, err)
			assert.True(t, apierr.IsKind(err, apierr.KindConflict))
			assert.Equal(t, tt.from, f.store.items[sess.ID].Status, "status must not move")
		})
	}
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	sess := f.create(t, 3)

	_, err := f.svc.Transition(context.Background(), sess.ID, primitive.NewObjectID(), StatusInput{Status: "PAUSED"})
	require.Error(t, err)
	assert.True(t, apierr.IsKind(err, apierr.KindValidation))
}

func TestTransitionLostRaceReportsCurrentStatus(t *testing.T) {
	f := newFixture(t)
	sess := f.create(t, 3)

	// Another writer cancels the session between the service read and
	// the guarded write.
	f.store.beforeStatus = func(store *fakeStore) {
		store.items[sess.ID].Status = StatusCancelled
	}

	_, err := f.svc.Transition(context.Background(), sess.ID, primitive.NewObjectID(), StatusInput{Status: StatusInProgress})
	require.Error(t, err)
	assert.True(t, apierr.IsKind(err, apierr.KindConflict))
	assert.Contains(t, apierr.From(err).Message, "CANCELLED")
}

func TestAddParticipant(t *testing.T) {
	f := newFixture(t)
	sess := f.create(t, 2)
	actor := primitive.NewObjectID()
	in := addInput()

	updated, err := f.svc.AddParticipant(context.Background(), sess.ID, actor, in)
	require.NoError(t, err)
	require.Len(t, updated.Participants, 1)

	p := updated.Participants[0]
	assert.Equal(t, in.ParticipantID, p.ParticipantID)
	assert.Equal(t, AttendanceNoShow, p.AttendanceStatus)
	assert.Nil(t, p.JoinedAt)
	assert.Equal(t, actor, updated.UpdatedBy)
}

func TestAddParticipantDuplicateConflict(t *testing.T) {
	f := newFixture(t)
	sess := f.create(t, 2)
	actor := primitive.NewObjectID()
	in := addInput()

	_, err := f.svc.AddParticipant(context.Background(), sess.ID, actor, in)
	require.NoError(t, err)

	_, err = f.svc.AddParticipant(context.Background(), sess.ID, actor, in)
	require.Error(t, err)
	assert.True(t, apierr.IsKind(err, apierr.KindConflict))
	assert.Equal(t, "Participant already added to this session", apierr.From(err).Message)
	assert.Len(t, f.store.items[sess.ID].Participants, 1, "list unchanged")
}

func TestAddParticipantCapacityConflict(t *testing.T) {
	f := newFixture(t)
	sess := f.create(t, 1)
	actor := primitive.NewObjectID()

	_, err := f.svc.AddParticipant(context.Background(), sess.ID, actor, addInput())
	require.NoError(t, err)

	_, err = f.svc.AddParticipant(context.Background(), sess.ID, actor, addInput())
	require.Error(t, err)
	assert.True(t, apierr.IsKind(err, apierr.KindConflict))
	assert.Equal(t, "Session is full, cannot add more participants", apierr.From(err).Message)
	assert.Len(t, f.store.items[sess.ID].Participants, 1)
}

func TestAddParticipantLostRace(t *testing.T) {
	f := newFixture(t)
	sess := f.create(t, 1)
	actor := primitive.NewObjectID()

	// A concurrent add fills the last slot between the service read
	// and the guarded write.
	f.store.beforeAdd = func(store *fakeStore) {
		store.items[sess.ID].Participants = append(store.items[sess.ID].Participants, Participant{
			ParticipantID:    primitive.NewObjectID(),
			ParticipantName:  "Racer",
			ParticipantEmail: "racer@example.com",
			AttendanceStatus: AttendanceNoShow,
		})
	}

	_, err := f.svc.AddParticipant(context.Background(), sess.ID, actor, addInput())
	require.Error(t, err)
	assert.True(t, apierr.IsKind(err, apierr.KindConflict))
	assert.Len(t, f.store.items[sess.ID].Participants, 1, "capacity never exceeded")
}

func TestRemoveParticipant(t *testing.T) {
	f := newFixture(t)
	sess := f.create(t, 2)
	actor := primitive.NewObjectID()
	in := addInput()

	_, err := f.svc.AddParticipant(context.Background(), sess.ID, actor, in)
	require.NoError(t, err)

	updated, err := f.svc.RemoveParticipant(context.Background(), sess.ID, in.ParticipantID, actor)
	require.NoError(t, err)
	assert.Empty(t, updated.Participants)
}

func TestRemoveParticipantNotPresent(t *testing.T) {
	f := newFixture(t)
	sess := f.create(t, 2)

	_, err := f.svc.RemoveParticipant(context.Background(), sess.ID, primitive.NewObjectID(), primitive.NewObjectID())
	require.Error(t, err)
	assert.True(t, apierr.IsKind(err, apierr.KindNotFound))
	assert.Equal(t, "Participant not found in this session", apierr.From(err).Message)
}

func TestRemoveParticipantMissingSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RemoveParticipant(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID())
	require.Error(t, err)
	assert.Equal(t, "Meeting session not found", apierr.From(err).Message)
}

func TestDeleteIsLogicalAndGetStillWorks(t *testing.T) {
	f := newFixture(t)
	sess := f.create(t, 2)
	actor := primitive.NewObjectID()

	deleted, err := f.svc.Delete(context.Background(), sess.ID, actor)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)

	got, err := f.svc.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)

	items, total, err := f.svc.List(context.Background(), ListFilter{Page: 1, PageSize: 50})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.EqualValues(t, 0, total)
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	base := time.Now()

	mk := func(start time.Time, status Status) *Session {
		sess := f.create(t, 2)
		f.store.items[sess.ID].ScheduledStartTime = start
		f.store.items[sess.ID].Status = status
		return sess
	}
	mk(base.Add(-48*time.Hour), StatusCompleted)
	inWindow := mk(base, StatusScheduled)
	mk(base.Add(48*time.Hour), StatusScheduled)

	status := StatusScheduled
	from := base.Add(-time.Hour)
	to := base.Add(time.Hour)
	items, total, err := f.svc.List(context.Background(), ListFilter{
		Page: 1, PageSize: 50,
		Status:    &status,
		StartDate: &from,
		EndDate:   &to,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, inWindow.ID, items[0].ID)
}

func TestListSortsByScheduledStartDesc(t *testing.T) {
	f := newFixture(t)
	base := time.Now()
	for i := 0; i < 3; i++ {
		sess := f.create(t, 2)
		f.store.items[sess.ID].ScheduledStartTime = base.Add(time.Duration(i) * time.Hour)
	}

	items, _, err := f.svc.List(context.Background(), ListFilter{Page: 1, PageSize: 50})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.True(t, items[0].ScheduledStartTime.After(items[1].ScheduledStartTime))
	assert.True(t, items[1].ScheduledStartTime.After(items[2].ScheduledStartTime))
}

func TestGetDenormalizesSummaries(t *testing.T) {
	f := newFixture(t)
	sess := f.create(t, 2)
	actor := primitive.NewObjectID()
	in := addInput()

	f.users.byID[in.ParticipantID] = identity.Summary{
		ID: in.ParticipantID, FullName: "Asha Rao", Email: "asha@example.com",
	}
	f.users.byID[sess.CreatedBy] = identity.Summary{
		ID: sess.CreatedBy, FullName: "Host Person", Email: "host@example.com",
	}

	_, err := f.svc.AddParticipant(context.Background(), sess.ID, actor, in)
	require.NoError(t, err)

	got, err := f.svc.Get(context.Background(), sess.ID)
	require.NoError(t, err)

	require.NotNil(t, got.MeetingDetails)
	assert.Equal(t, "Retail panel", got.MeetingDetails.Name)
	require.NotNil(t, got.Creator)
	assert.Equal(t, "Host Person", got.Creator.FullName)
	require.Len(t, got.Participants, 1)
	require.NotNil(t, got.Participants[0].User)
	assert.Equal(t, "Asha Rao", got.Participants[0].User.FullName)
}
