package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/NikhilSingh0745/mr-interview/internal/meetingconfig"
	"github.com/NikhilSingh0745/mr-interview/internal/validate"
)

type targetLocationRequest struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

type createMeetingDetailsRequest struct {
	Name                      string                 `json:"name"`
	Description               string                 `json:"description"`
	QuestionID                string                 `json:"questionId"`
	AdditionalQuestionIDs     []string               `json:"additionalQuestionIds,omitempty"`
	DurationMinutes           int                    `json:"durationMinutes"`
	MaxParticipantsPerSession int                    `json:"maxParticipantsPerSession"`
	TimeZone                  string                 `json:"timeZone,omitempty"`
	Language                  string                 `json:"language,omitempty"`
	TargetLocation            *targetLocationRequest `json:"targetLocation"`
	RequireAuthentication     *bool                  `json:"requireAuthentication,omitempty"`
	AllowRecording            *bool                  `json:"allowRecording,omitempty"`
	RecordingRetentionDays    *int                   `json:"recordingRetentionDays,omitempty"`
	IsActive                  *bool                  `json:"isActive,omitempty"`
}

type updateMeetingDetailsRequest struct {
	Name                      *string                `json:"name,omitempty"`
	Description               *string                `json:"description,omitempty"`
	QuestionID                *string                `json:"questionId,omitempty"`
	AdditionalQuestionIDs     []string               `json:"additionalQuestionIds,omitempty"`
	DurationMinutes           *int                   `json:"durationMinutes,omitempty"`
	MaxParticipantsPerSession *int                   `json:"maxParticipantsPerSession,omitempty"`
	TimeZone                  *string                `json:"timeZone,omitempty"`
	Language                  *string                `json:"language,omitempty"`
	TargetLocation            *targetLocationRequest `json:"targetLocation,omitempty"`
	RequireAuthentication     *bool                  `json:"requireAuthentication,omitempty"`
	AllowRecording            *bool                  `json:"allowRecording,omitempty"`
	RecordingRetentionDays    *int                   `json:"recordingRetentionDays,omitempty"`
	IsActive                  *bool                  `json:"isActive,omitempty"`
}

func (s *Server) handleCreateMeetingDetails(c echo.Context) error {
	var req createMeetingDetailsRequest
	if err := validate.DecodeStrict(c.Request().Body, &req); err != nil {
		return err
	}

	v := validate.New()
	v.Require("name", req.Name, "Name is required")
	v.MaxLen("name", req.Name, 255)
	v.Require("description", req.Description, "Description is required")
	questionID := v.ObjectID("questionId", req.QuestionID)
	additional := v.ObjectIDs("additionalQuestionIds", req.AdditionalQuestionIDs)
	v.Positive("durationMinutes", req.DurationMinutes, "Duration must be a positive integer")
	v.Positive("maxParticipantsPerSession", req.MaxParticipantsPerSession, "Max participants must be a positive integer")
	var location meetingconfig.TargetLocation
	if req.TargetLocation == nil {
		v.Add("targetLocation", "Target location is required")
	} else {
		v.Require("targetLocation.country", req.TargetLocation.Country, "Country is required")
		v.Require("targetLocation.city", req.TargetLocation.City, "City is required")
		location = meetingconfig.TargetLocation{
			Country: req.TargetLocation.Country,
			City:    req.TargetLocation.City,
		}
	}
	if req.RecordingRetentionDays != nil {
		v.Positive("recordingRetentionDays", *req.RecordingRetentionDays, "Recording retention days must be positive")
	}
	if err := v.Err(); err != nil {
		return err
	}

	d, err := s.services.Config.Create(c.Request().Context(), actorID(c), meetingconfig.CreateInput{
		Name:                      req.Name,
		Description:               req.Description,
		QuestionID:                questionID,
		AdditionalQuestionIDs:     additional,
		DurationMinutes:           req.DurationMinutes,
		MaxParticipantsPerSession: req.MaxParticipantsPerSession,
		TimeZone:                  req.TimeZone,
		Language:                  req.Language,
		TargetLocation:            location,
		RequireAuthentication:     req.RequireAuthentication,
		AllowRecording:            req.AllowRecording,
		RecordingRetentionDays:    req.RecordingRetentionDays,
		IsActive:                  req.IsActive,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Meeting details created successfully", d)
}

func (s *Server) handleListMeetingDetails(c echo.Context) error {
	v := validate.New()
	page, pageSize := pageWindow(c, v)
	isActive := queryBool(c, "isActive", v)
	isDeleted := queryBool(c, "isDeleted", v)
	if err := v.Err(); err != nil {
		return err
	}

	items, total, err := s.services.Config.List(c.Request().Context(), meetingconfig.ListFilter{
		Page:      page,
		PageSize:  pageSize,
		IsActive:  isActive,
		IsDeleted: isDeleted,
	})
	if err != nil {
		return err
	}
	return respondList(c, "Meeting details fetched successfully", items, NewPagination(page, pageSize, total))
}

func (s *Server) handleGetMeetingDetails(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	d, err := s.services.Config.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Meeting details fetched successfully", d)
}

func (s *Server) handleUpdateMeetingDetails(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req updateMeetingDetailsRequest
	if err := validate.DecodeStrict(c.Request().Body, &req); err != nil {
		return err
	}

	v := validate.New()
	in := meetingconfig.UpdateInput{
		Name:                      req.Name,
		Description:               req.Description,
		DurationMinutes:           req.DurationMinutes,
		MaxParticipantsPerSession: req.MaxParticipantsPerSession,
		TimeZone:                  req.TimeZone,
		Language:                  req.Language,
		RequireAuthentication:     req.RequireAuthentication,
		AllowRecording:            req.AllowRecording,
		RecordingRetentionDays:    req.RecordingRetentionDays,
		IsActive:                  req.IsActive,
	}
	if req.Name != nil {
		v.Require("name", *req.Name, "Name is required")
		v.MaxLen("name", *req.Name, 255)
	}
	if req.Description != nil {
		v.Require("description", *req.Description, "Description is required")
	}
	if req.QuestionID != nil {
		qid := v.ObjectID("questionId", *req.QuestionID)
		in.QuestionID = &qid
	}
	if req.AdditionalQuestionIDs != nil {
		in.AdditionalQuestionIDs = v.ObjectIDs("additionalQuestionIds", req.AdditionalQuestionIDs)
	}
	if req.DurationMinutes != nil {
		v.Positive("durationMinutes", *req.DurationMinutes, "Duration must be a positive integer")
	}
	if req.MaxParticipantsPerSession != nil {
		v.Positive("maxParticipantsPerSession", *req.MaxParticipantsPerSession, "Max participants must be a positive integer")
	}
	if req.RecordingRetentionDays != nil {
		v.Positive("recordingRetentionDays", *req.RecordingRetentionDays, "Recording retention days must be positive")
	}
	if req.TargetLocation != nil {
		v.Require("targetLocation.country", req.TargetLocation.Country, "Country is required")
		v.Require("targetLocation.city", req.TargetLocation.City, "City is required")
		in.TargetLocation = &meetingconfig.TargetLocation{
			Country: req.TargetLocation.Country,
			City:    req.TargetLocation.City,
		}
	}
	if err := v.Err(); err != nil {
		return err
	}

	d, err := s.services.Config.Update(c.Request().Context(), id, actorID(c), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Meeting details updated successfully", d)
}

func (s *Server) handleDeleteMeetingDetails(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	d, err := s.services.Config.Delete(c.Request().Context(), id, actorID(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Meeting details deleted successfully", d)
}
