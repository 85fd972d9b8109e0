package httpapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/NikhilSingh0745/mr-interview/internal/meetingsession"
	"github.com/NikhilSingh0745/mr-interview/internal/validate"
)

type createSessionRequest struct {
	MeetingDetailsID   string `json:"meetingDetailsId"`
	SessionName        string `json:"sessionName"`
	SessionDescription string `json:"sessionDescription,omitempty"`
	ScheduledStartTime string `json:"scheduledStartTime"`
	ScheduledEndTime   string `json:"scheduledEndTime"`
	MaxParticipants    int    `json:"maxParticipants"`
	MeetingLink        string `json:"meetingLink,omitempty"`
	SessionNotes       string `json:"sessionNotes,omitempty"`
	HostNotes          string `json:"hostNotes,omitempty"`
}

type updateSessionRequest struct {
	SessionName        *string `json:"sessionName,omitempty"`
	SessionDescription *string `json:"sessionDescription,omitempty"`
	ScheduledStartTime *string `json:"scheduledStartTime,omitempty"`
	ScheduledEndTime   *string `json:"scheduledEndTime,omitempty"`
	MaxParticipants    *int    `json:"maxParticipants,omitempty"`
	MeetingLink        *string `json:"meetingLink,omitempty"`
	RecordingURL       *string `json:"recordingUrl,omitempty"`
	SessionNotes       *string `json:"sessionNotes,omitempty"`
	HostNotes          *string `json:"hostNotes,omitempty"`
	IsActive           *bool   `json:"isActive,omitempty"`
}

type sessionStatusRequest struct {
	Status          string  `json:"status"`
	ActualStartTime *string `json:"actualStartTime,omitempty"`
	ActualEndTime   *string `json:"actualEndTime,omitempty"`
}

type addParticipantRequest struct {
	ParticipantID    string `json:"participantId"`
	ParticipantName  string `json:"participantName"`
	ParticipantEmail string `json:"participantEmail"`
}

func (s *Server) handleCreateSession(c echo.Context) error {
	var req createSessionRequest
	if err := validate.DecodeStrict(c.Request().Body, &req); err != nil {
		return err
	}

	v := validate.New()
	detailsID := v.ObjectID("meetingDetailsId", req.MeetingDetailsID)
	v.Require("sessionName", req.SessionName, "Session name is required")
	v.MaxLen("sessionName", req.SessionName, 255)
	start := v.Time("scheduledStartTime", req.ScheduledStartTime)
	end := v.Time("scheduledEndTime", req.ScheduledEndTime)
	if !start.IsZero() && !end.IsZero() {
		v.Refine(end.After(start), "scheduledEndTime", "Scheduled end time must be after start time")
	}
	v.Positive("maxParticipants", req.MaxParticipants, "Max participants must be positive")
	if req.MeetingLink != "" {
		v.URL("meetingLink", req.MeetingLink)
	}
	if err := v.Err(); err != nil {
		return err
	}

	sess, err := s.services.Session.Create(c.Request().Context(), actorID(c), meetingsession.CreateInput{
		MeetingDetailsID:   detailsID,
		SessionName:        req.SessionName,
		SessionDescription: req.SessionDescription,
		ScheduledStartTime: start,
		ScheduledEndTime:   end,
		MaxParticipants:    req.MaxParticipants,
		MeetingLink:        req.MeetingLink,
		SessionNotes:       req.SessionNotes,
		HostNotes:          req.HostNotes,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Meeting session created successfully", sess)
}

func (s *Server) handleListSessions(c echo.Context) error {
	v := validate.New()
	page, pageSize := pageWindow(c, v)

	filter := meetingsession.ListFilter{
		Page:      page,
		PageSize:  pageSize,
		IsActive:  queryBool(c, "isActive", v),
		IsDeleted: queryBool(c, "isDeleted", v),
	}
	if raw := c.QueryParam("meetingDetailsId"); raw != "" {
		id := v.ObjectID("meetingDetailsId", raw)
		filter.MeetingDetailsID = &id
	}
	if raw := c.QueryParam("status"); raw != "" {
		status := meetingsession.Status(raw)
		if !status.Valid() {
			v.Add("status", "Invalid session status")
		}
		filter.Status = &status
	}
	if raw := c.QueryParam("startDate"); raw != "" {
		t := v.Time("startDate", raw)
		filter.StartDate = &t
	}
	if raw := c.QueryParam("endDate"); raw != "" {
		t := v.Time("endDate", raw)
		filter.EndDate = &t
	}
	if err := v.Err(); err != nil {
		return err
	}

	items, total, err := s.services.Session.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return respondList(c, "Meeting sessions fetched successfully", items, NewPagination(page, pageSize, total))
}

func (s *Server) handleGetSession(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	sess, err := s.services.Session.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Meeting session fetched successfully", sess)
}

func (s *Server) handleUpdateSession(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req updateSessionRequest
	if err := validate.DecodeStrict(c.Request().Body, &req); err != nil {
		return err
	}

	v := validate.New()
	in := meetingsession.UpdateInput{
		SessionName:        req.SessionName,
		SessionDescription: req.SessionDescription,
		MaxParticipants:    req.MaxParticipants,
		MeetingLink:        req.MeetingLink,
		RecordingURL:       req.RecordingURL,
		SessionNotes:       req.SessionNotes,
		HostNotes:          req.HostNotes,
		IsActive:           req.IsActive,
	}
	if req.SessionName != nil {
		v.Require("sessionName", *req.SessionName, "Session name is required")
		v.MaxLen("sessionName", *req.SessionName, 255)
	}
	in.ScheduledStartTime = v.OptionalTime("scheduledStartTime", req.ScheduledStartTime)
	in.ScheduledEndTime = v.OptionalTime("scheduledEndTime", req.ScheduledEndTime)
	if req.MaxParticipants != nil {
		v.Positive("maxParticipants", *req.MaxParticipants, "Max participants must be positive")
	}
	if req.MeetingLink != nil && *req.MeetingLink != "" {
		v.URL("meetingLink", *req.MeetingLink)
	}
	if req.RecordingURL != nil && *req.RecordingURL != "" {
		v.URL("recordingUrl", *req.RecordingURL)
	}
	if err := v.Err(); err != nil {
		return err
	}

	sess, err := s.services.Session.Update(c.Request().Context(), id, actorID(c), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Meeting session updated successfully", sess)
}

func (s *Server) handleSessionStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req sessionStatusRequest
	if err := validate.DecodeStrict(c.Request().Body, &req); err != nil {
		return err
	}

	v := validate.New()
	status := meetingsession.Status(req.Status)
	if !status.Valid() {
		v.Add("status", "Invalid session status")
	}
	in := meetingsession.StatusInput{
		Status:          status,
		ActualStartTime: v.OptionalTime("actualStartTime", req.ActualStartTime),
		ActualEndTime:   v.OptionalTime("actualEndTime", req.ActualEndTime),
	}
	if err := v.Err(); err != nil {
		return err
	}

	sess, err := s.services.Session.Transition(c.Request().Context(), id, actorID(c), in)
	if err != nil {
		return err
	}
	message := fmt.Sprintf("Meeting session status updated to %s", status)
	return respond(c, http.StatusOK, message, sess)
}

func (s *Server) handleAddParticipant(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req addParticipantRequest
	if err := validate.DecodeStrict(c.Request().Body, &req); err != nil {
		return err
	}

	v := validate.New()
	participantID := v.ObjectID("participantId", req.ParticipantID)
	v.Require("participantName", req.ParticipantName, "Participant name is required")
	v.Email("participantEmail", req.ParticipantEmail)
	if err := v.Err(); err != nil {
		return err
	}

	sess, err := s.services.Session.AddParticipant(c.Request().Context(), id, actorID(c), meetingsession.AddParticipantInput{
		ParticipantID:    participantID,
		ParticipantName:  req.ParticipantName,
		ParticipantEmail: req.ParticipantEmail,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Participant added successfully", sess)
}

func (s *Server) handleRemoveParticipant(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	participantID, err := pathID(c, "participantId")
	if err != nil {
		return err
	}

	sess, err := s.services.Session.RemoveParticipant(c.Request().Context(), id, participantID, actorID(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Participant removed successfully", sess)
}

func (s *Server) handleDeleteSession(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	sess, err := s.services.Session.Delete(c.Request().Context(), id, actorID(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Meeting session deleted successfully", sess)
}
