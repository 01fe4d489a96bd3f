package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gorilla/mux"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// DeckResponse describes the previewed presentation
type DeckResponse struct {
	ID          string          `json:"id,omitempty"`
	Title       string          `json:"title"`
	Author      string          `json:"author,omitempty"`
	Build       int             `json:"build"`
	Error       string          `json:"error,omitempty"`
	SlideWidth  float64         `json:"slide_width_pt,omitempty"`
	SlideHeight float64         `json:"slide_height_pt,omitempty"`
	Slides      []SlideResponse `json:"slides"`
}

// SlideResponse represents a single slide in the API response
type SlideResponse struct {
	Index  int    `json:"index"`
	Title  string `json:"title"`
	Shapes int    `json:"shapes"`
	Notes  string `json:"notes,omitempty"`
	URL    string `json:"url"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	prs, buildErr := s.deps.Source.Current()

	var (
		page []byte
		err  error
	)
	status := http.StatusOK
	if prs == nil {
		if buildErr == nil {
			buildErr = errors.New("the deck has not been built yet")
		}
		page, err = s.deps.Pages.RenderError(buildErr)
		status = http.StatusServiceUnavailable
	} else {
		page, err = s.deps.Pages.RenderPage(r.Context(), prs, s.deps.Source.Builds())
	}
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(page); err != nil {
		s.logger.Warn("failed to write page", slog.String("error", err.Error()))
	}
}

func (s *Server) handleSlide(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}

	prs, _ := s.deps.Source.Current()
	if prs == nil {
		s.handleError(w, errors.New("no presentation built"), http.StatusServiceUnavailable)
		return
	}

	start := time.Now()
	svg, err := s.deps.Slides.RenderSlide(r.Context(), prs, index)
	switch {
	case errors.Is(err, entities.ErrIndex):
		s.handleError(w, err, http.StatusNotFound)
		return
	case err != nil:
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordSlideRender(time.Since(start))
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(svg); err != nil {
		s.logger.Warn("failed to write slide", slog.Int("slide", index), slog.String("error", err.Error()))
	}
}

func (s *Server) handleDeck(w http.ResponseWriter, _ *http.Request) {
	prs, buildErr := s.deps.Source.Current()
	response := DeckResponse{Build: s.deps.Source.Builds(), Slides: []SlideResponse{}}
	if buildErr != nil {
		response.Error = buildErr.Error()
	}
	if prs != nil {
		response.ID = prs.ID
		response.Title = prs.Title
		response.Author = prs.Author
		if width, height, err := prs.SlideSize(); err == nil {
			response.SlideWidth, response.SlideHeight = width.Points(), height.Points()
		}
		for _, slide := range prs.Slides {
			response.Slides = append(response.Slides, SlideResponse{
				Index:  slide.Index,
				Title:  slide.ExtractTitle(),
				Shapes: len(slide.Shapes),
				Notes:  slide.Notes,
				URL:    fmt.Sprintf("/slides/%d.svg", slide.Index),
			})
		}
	}
	s.writeJSON(w, response)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if s.deps.Presentations == nil {
		s.handleError(w, errors.New("download disabled"), http.StatusNotFound)
		return
	}
	prs, _ := s.deps.Source.Current()
	if prs == nil {
		s.handleError(w, errors.New("no presentation built"), http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	if err := s.deps.Presentations.Write(r.Context(), prs, &buf); err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.presentationml.presentation")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pptx"`, downloadName(prs.Title)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn("failed to write download", slog.String("error", err.Error()))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_, buildErr := s.deps.Source.Current()
	health := map[string]interface{}{
		"status":  "ok",
		"build":   s.deps.Source.Builds(),
		"clients": s.Clients(),
	}
	if buildErr != nil {
		health["status"] = "build_failed"
	}
	s.writeJSON(w, health)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	stats := s.deps.Metrics.HealthStatus()
	stats["clients"] = s.Clients()
	s.writeJSON(w, stats)
}

// downloadName turns a title into a safe file name
func downloadName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '-', r == '_':
			return r
		case unicode.IsSpace(r):
			return '-'
		default:
			return -1
		}
	}, strings.TrimSpace(title))
	if name == "" {
		return "deck"
	}
	return name
}

// handleError writes a generic message for status and logs the real error
func (s *Server) handleError(w http.ResponseWriter, err error, status int) {
	var message string
	switch status {
	case http.StatusBadRequest:
		message = "Invalid request"
	case http.StatusNotFound:
		message = "Resource not found"
	case http.StatusServiceUnavailable:
		message = "Presentation not available"
	case http.StatusInternalServerError:
		message = "Internal server error"
	default:
		message = "An error occurred"
	}

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		level = slog.LevelError
	}
	s.logger.Log(context.Background(), level, "http error", slog.Int("status", status), slog.String("error", err.Error()))

	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Time:    time.Now(),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		s.logger.Warn("failed to encode error response", slog.String("error", encodeErr.Error()))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.logger.Warn("failed to write json response", slog.String("error", err.Error()))
	}
}
