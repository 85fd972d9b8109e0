package httpapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/NikhilSingh0745/mr-interview/internal/question"
	"github.com/NikhilSingh0745/mr-interview/internal/validate"
)

type createQuestionRequest struct {
	Name           string   `json:"name"`
	IndustryType   []string `json:"industryType"`
	Question       string   `json:"question"`
	Tags           []string `json:"tags"`
	IsActive       *bool    `json:"isActive,omitempty"`
	RequiredSample int      `json:"requiredSample"`
}

type updateQuestionRequest struct {
	Name           *string  `json:"name,omitempty"`
	IndustryType   []string `json:"industryType,omitempty"`
	Question       *string  `json:"question,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	IsActive       *bool    `json:"isActive,omitempty"`
	RequiredSample *int     `json:"requiredSample,omitempty"`
}

func (s *Server) handleCreateQuestion(c echo.Context) error {
	var req createQuestionRequest
	if err := validate.DecodeStrict(c.Request().Body, &req); err != nil {
		return err
	}

	v := validate.New()
	v.Require("name", req.Name, "Name is required")
	v.Refine(len(req.IndustryType) > 0, "industryType", "At least one industryType is required")
	industryType := v.ObjectIDs("industryType", req.IndustryType)
	v.Require("question", req.Question, "Question is required")
	for i, tag := range req.Tags {
		v.MaxLen("tags."+strconv.Itoa(i), tag, 255)
	}
	v.Positive("requiredSample", req.RequiredSample, "requiredSample must be a positive integer")
	if err := v.Err(); err != nil {
		return err
	}

	q, err := s.services.Question.Create(c.Request().Context(), actorID(c), question.CreateInput{
		Name:           req.Name,
		IndustryType:   industryType,
		Question:       req.Question,
		Tags:           req.Tags,
		IsActive:       req.IsActive,
		RequiredSample: req.RequiredSample,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Question created successfully", q)
}

func (s *Server) handleListQuestions(c echo.Context) error {
	v := validate.New()
	page, pageSize := pageWindow(c, v)
	if err := v.Err(); err != nil {
		return err
	}

	items, total, err := s.services.Question.List(c.Request().Context(), page, pageSize)
	if err != nil {
		return err
	}
	return respondList(c, "Questions fetched successfully", items, NewPagination(page, pageSize, total))
}

func (s *Server) handleGetQuestion(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	q, err := s.services.Question.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Question fetched successfully", q)
}

func (s *Server) handleUpdateQuestion(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req updateQuestionRequest
	if err := validate.DecodeStrict(c.Request().Body, &req); err != nil {
		return err
	}

	v := validate.New()
	in := question.UpdateInput{
		Name:           req.Name,
		Question:       req.Question,
		Tags:           req.Tags,
		IsActive:       req.IsActive,
		RequiredSample: req.RequiredSample,
	}
	if req.Name != nil {
		v.Require("name", *req.Name, "Name is required")
	}
	if req.IndustryType != nil {
		v.Refine(len(req.IndustryType) > 0, "industryType", "At least one industryType is required")
		in.IndustryType = v.ObjectIDs("industryType", req.IndustryType)
	}
	if req.Question != nil {
		v.Require("question", *req.Question, "Question is required")
	}
	if req.RequiredSample != nil {
		v.Positive("requiredSample", *req.RequiredSample, "requiredSample must be a positive integer")
	}
	if err := v.Err(); err != nil {
		return err
	}

	q, err := s.services.Question.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Question updated successfully", q)
}

func (s *Server) handleDeleteQuestion(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := s.services.Question.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Question deleted successfully", nil)
}
