package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/jordan/content-calendar/internal/jobs"
	"github.com/jordan/content-calendar/internal/scheduling"
	"github.com/jordan/content-calendar/internal/types"
)

// StartResponse is the response for /api/generate/start.
type StartResponse struct {
	OK    bool   `json:"ok"`
	JobID string `json:"job_id"`
}

// StatusResponse is the response for /api/generate/status.
type StatusResponse struct {
	OK     bool   `json:"ok"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ResultResponse is the response for /api/generate/result.
type ResultResponse struct {
	OK     bool                     `json:"ok"`
	Status string                   `json:"status,omitempty"`
	Error  string                   `json:"error,omitempty"`
	Result *types.GenerationOutcome `json:"result,omitempty"`
}

// CalendarResponse is the response for /api/calendar.
type CalendarResponse struct {
	OK        bool         `json:"ok"`
	WeekStart string       `json:"week_start"`
	Posts     []types.Post `json:"posts"`
}

// PostResponse is the response for /api/post/{id}.
type PostResponse struct {
	OK       bool            `json:"ok"`
	Post     *types.Post     `json:"post"`
	Comments []types.Comment `json:"comments"`
}

// decodeRequest reads the generation request body. A missing or malformed
// body is treated as an empty request; every field is optional and the
// gateway fills the gaps.
func (s *Server) decodeRequest(r *http.Request) (*types.GenerationRequest, error) {
	var req types.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &types.GenerationRequest{}, nil
	}
	if err := s.validate.Struct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// handleStart creates a job record and dispatches the generation run
// detached from this request.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid_request")
		return
	}

	jobID := uuid.New().String()
	if err := s.registry.Create(jobID); err != nil {
		log.Printf("Error creating job %s: %v", jobID, err)
		s.errorResponse(w, http.StatusInternalServerError, "job_create_failed")
		return
	}

	s.dispatcher.Dispatch(func() {
		s.runner.Run(context.Background(), jobID, req)
	})

	s.jsonResponse(w, http.StatusAccepted, StartResponse{OK: true, JobID: jobID})
}

// handleStatus reports a job's lifecycle state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("id")
	if jobID == "" {
		s.errorResponse(w, http.StatusBadRequest, "missing_id")
		return
	}

	job, err := s.registry.Get(jobID)
	if err != nil {
		var notFound *jobs.ErrNotFound
		if errors.As(err, &notFound) {
			s.errorResponse(w, http.StatusNotFound, "not_found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "registry_failed")
		return
	}

	s.jsonResponse(w, http.StatusOK, StatusResponse{OK: true, Status: string(job.Status), Error: job.Error})
}

// handleResult returns a job's terminal outcome. Polling before the job
// finishes yields 202 with the current status.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("id")
	if jobID == "" {
		s.errorResponse(w, http.StatusBadRequest, "missing_id")
		return
	}

	job, err := s.registry.Get(jobID)
	if err != nil {
		var notFound *jobs.ErrNotFound
		if errors.As(err, &notFound) {
			s.errorResponse(w, http.StatusNotFound, "not_found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "registry_failed")
		return
	}

	switch job.Status {
	case jobs.StatusSuccess:
		s.jsonResponse(w, http.StatusOK, ResultResponse{OK: true, Result: job.Result})
	case jobs.StatusError:
		s.jsonResponse(w, http.StatusInternalServerError, ResultResponse{OK: false, Error: job.Error, Result: job.Result})
	default:
		s.jsonResponse(w, http.StatusAccepted, ResultResponse{OK: false, Error: "not_ready", Status: string(job.Status)})
	}
}

// handleGenerateCalendar runs one generation synchronously on the request
// path and returns the full outcome.
func (s *Server) handleGenerateCalendar(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid_request")
		return
	}

	outcome := s.runner.RunSync(r.Context(), req)
	status := http.StatusOK
	if !outcome.OK {
		status = http.StatusInternalServerError
	}
	s.jsonResponse(w, status, outcome)
}

// handleCalendar lists the current week's posts from the durable store.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	weekStart := scheduling.WeekStart(s.now())
	weekEnd := weekStart.AddDate(0, 0, 7)

	resp := CalendarResponse{OK: true, WeekStart: weekStart.Format("2006-01-02"), Posts: []types.Post{}}
	if s.db == nil {
		s.jsonResponse(w, http.StatusOK, resp)
		return
	}

	posts, err := s.db.PostsForWeek(r.Context(), weekStart, weekEnd)
	if err != nil {
		log.Printf("Error listing calendar posts: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "store_failed")
		return
	}
	if posts != nil {
		resp.Posts = posts
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleGetPost returns one stored post with its comment thread.
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("id")
	if s.db == nil {
		s.errorResponse(w, http.StatusNotFound, "not_found")
		return
	}

	post, comments, err := s.db.PostWithComments(r.Context(), postID)
	if err != nil {
		log.Printf("Error fetching post %s: %v", postID, err)
		s.errorResponse(w, http.StatusInternalServerError, "store_failed")
		return
	}
	if post == nil {
		s.errorResponse(w, http.StatusNotFound, "not_found")
		return
	}
	if comments == nil {
		comments = []types.Comment{}
	}
	s.jsonResponse(w, http.StatusOK, PostResponse{OK: true, Post: post, Comments: comments})
}
