package meetingsession

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/NikhilSingh0745/mr-interview/internal/identity"
	"github.com/NikhilSingh0745/mr-interview/internal/meetingconfig"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusScheduled  Status = "SCHEDULED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// Statuses lists every valid status value.
var Statuses = []Status{StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled}

// transitions encodes the forward edges of the lifecycle. COMPLETED
// and CANCELLED are terminal.
var transitions = map[Status][]Status{
	StatusScheduled:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether the lifecycle permits moving from s
// to target.
func (s Status) CanTransition(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// AttendanceStatus tracks how a participant showed up.
type AttendanceStatus string

const (
	AttendanceJoined    AttendanceStatus = "JOINED"
	AttendanceNoShow    AttendanceStatus = "NO_SHOW"
	AttendanceLeftEarly AttendanceStatus = "LEFT_EARLY"
)

// AttendanceStatuses lists every valid attendance value.
var AttendanceStatuses = []AttendanceStatus{AttendanceJoined, AttendanceNoShow, AttendanceLeftEarly}

// Participant is an embedded value on a session; it carries no own
// document id.
type Participant struct {
	ParticipantID    primitive.ObjectID `bson:"participantId" json:"participantId"`
	ParticipantName  string             `bson:"participantName" json:"participantName"`
	ParticipantEmail string             `bson:"participantEmail" json:"participantEmail"`
	JoinedAt         *time.Time         `bson:"joinedAt,omitempty" json:"joinedAt,omitempty"`
	LeftAt           *time.Time         `bson:"leftAt,omitempty" json:"leftAt,omitempty"`
	AttendanceStatus AttendanceStatus   `bson:"attendanceStatus" json:"attendanceStatus"`
}

// Session is a scheduled run of a meeting configuration. Deleting is
/// logical: isDeleted is flipped and the record stays addressable.
type Session struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	MeetingDetailsID   primitive.ObjectID `bson:"meetingDetailsId" json:"meetingDetailsId"`
	SessionName        string             `bson:"sessionName" json:"sessionName"`
	SessionDescription string             `bson:"sessionDescription,omitempty" json:"sessionDescription,omitempty"`
	ScheduledStartTime time.Time          `bson:"scheduledStartTime" json:"scheduledStartTime"`
	ScheduledEndTime   time.Time          `bson:"scheduledEndTime" json:"scheduledEndTime"`
	ActualStartTime    *time.Time         `bson:"actualStartTime,omitempty" json:"actualStartTime,omitempty"`
	ActualEndTime      *time.Time         `bson:"actualEndTime,omitempty" json:"actualEndTime,omitempty"`
	Participants       []Participant      `bson:"participants" json:"participants"`
	MaxParticipants    int                `bson:"maxParticipants" json:"maxParticipants"`
	Status             Status             `bson:"status" json:"status"`
	MeetingLink        string             `bson:"meetingLink,omitempty" json:"meetingLink,omitempty"`
	RecordingURL       string             `bson:"recordingUrl,omitempty" json:"recordingUrl,omitempty"`
	SessionNotes       string             `bson:"sessionNotes,omitempty" json:"sessionNotes,omitempty"`
	HostNotes          string             `bson:"hostNotes,omitempty" json:"hostNotes,omitempty"`
	IsActive           bool               `bson:"isActive" json:"isActive"`
	IsDeleted          bool               `bson:"isDeleted" json:"isDeleted"`
	CreatedBy          primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	UpdatedBy          primitive.ObjectID `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasParticipant reports whether participantID is already on the
// session.
func (s *Session) HasParticipant(participantID primitive.ObjectID) bool {
	for _, p := range s.Participants {
		if p.ParticipantID == participantID {
			return true
		}
	}
	return false
}

// Full reports whether the session is at capacity.
func (s *Session) Full() bool {
	return len(s.Participants) >= s.MaxParticipants
}

// ListedParticipant is a Participant enriched with the identity
// summary of the user it references.
type ListedParticipant struct {
	Participant
	User *identity.Summary `json:"user,omitempty"`
}

// Listed is a Session row enriched with configuration, audit and
// participant summaries for listings.
type Listed struct {
	Session
	MeetingDetails *meetingconfig.Summary `json:"meetingDetails,omitempty"`
	Creator        *identity.Summary      `json:"creator,omitempty"`
	Updater        *identity.Summary      `json:"updater,omitempty"`
	Participants   []ListedParticipant    `json:"participants"`
}

// CreateInput carries the validated fields for a new session.
type CreateInput struct {
	MeetingDetailsID   primitive.ObjectID
	SessionName        string
	SessionDescription string
	ScheduledStartTime time.Time
	ScheduledEndTime   time.Time
	MaxParticipants    int
	MeetingLink        string
	SessionNotes       string
	HostNotes          string
}

// UpdateInput carries a partial update of descriptive and scheduling
// fields. Status never changes through this path.
type UpdateInput struct {
	SessionName        *string
	SessionDescription *string
	ScheduledStartTime *time.Time
	ScheduledEndTime   *time.Time
	MaxParticipants    *int
	MeetingLink        *string
	RecordingURL       *string
	SessionNotes       *string
	HostNotes          *string
	IsActive           *bool
}

// StatusInput carries a status transition request.
type StatusInput struct {
	Status          Status
	ActualStartTime *time.Time
	ActualEndTime   *time.Time
}

// AddParticipantInput identifies the user joining a session.
type AddParticipantInput struct {
	ParticipantID    primitive.ObjectID
	ParticipantName  string
	ParticipantEmail string
}

// ListFilter narrows session listings. Nil flags mean "do not filter
// on it", except IsDeleted: nil excludes deleted records. StartDate
// and EndDate bound scheduledStartTime.
type ListFilter struct {
	Page             int
	PageSize         int
	MeetingDetailsID *primitive.ObjectID
	Status           *Status
	StartDate        *time.Time
	EndDate          *time.Time
	IsActive         *bool
	IsDeleted        *bool
}
