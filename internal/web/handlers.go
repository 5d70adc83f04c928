package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/conorfennell/memodeck/internal/domain"
	"github.com/conorfennell/memodeck/internal/fsrs"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// serveError maps domain errors onto HTTP statuses. Forbidden answers
// exactly like NotFound so probing never reveals another user's cards.
func serveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, fsrs.ErrInvalidRating),
		errors.Is(err, fsrs.ErrInvalidParameters):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			writeError(w, http.StatusBadRequest, vErrs.Error())
			return
		}
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decode unmarshals and validates a JSON request body.
func (s *Server) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrValidation
	}
	return s.validate.Struct(v)
}

type submitReviewRequest struct {
	CardID     uuid.UUID  `json:"cardId" validate:"required"`
	Rating     int        `json:"rating" validate:"required,min=1,max=4"`
	ReviewedAt *time.Time `json:"reviewedAt"`
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var req submitReviewRequest
	if err := s.decode(r, &req); err != nil {
		serveError(w, err)
		return
	}

	result, err := s.service.SubmitReview(r.Context(), userID, req.CardID, fsrs.Rating(req.Rating), req.ReviewedAt)
	if err != nil {
		serveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	decks, err := s.service.ListDecksWithStats(r.Context(), userID, time.Now().UTC())
	if err != nil {
		serveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decks)
}

type createDeckRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	DailyScaler float64 `json:"dailyScaler"`
	SourcePath  *string `json:"sourcePath"`
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var req createDeckRequest
	if err := s.decode(r, &req); err != nil {
		serveError(w, err)
		return
	}
	if req.DailyScaler == 0 {
		req.DailyScaler = 1.0
	}

	deck, err := s.service.CreateDeck(r.Context(), userID, req.Name, req.Description, req.DailyScaler, req.SourcePath)
	if err != nil {
		serveError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, deck)
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	deck, err := s.service.GetDeck(r.Context(), userID, r.PathValue("slug"))
	if err != nil {
		serveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

func (s *Server) handleGetReviewCards(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	deck, err := s.service.GetDeck(r.Context(), userID, r.PathValue("slug"))
	if err != nil {
		serveError(w, err)
		return
	}

	count := 1
	if raw := r.URL.Query().Get("count"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil || count < 1 {
			writeError(w, http.StatusBadRequest, "count must be a positive integer")
			return
		}
	}

	selection, err := s.service.SelectCandidates(r.Context(), userID, deck, count, time.Now().UTC())
	if err != nil {
		serveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, selection)
}

type editCardRequest struct {
	Front string `json:"front" validate:"required"`
	Back  string `json:"back" validate:"required"`
}

func (s *Server) handleEditCard(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	cardID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid card id")
		return
	}

	var req editCardRequest
	if err := s.decode(r, &req); err != nil {
		serveError(w, err)
		return
	}

	card, err := s.service.EditCard(r.Context(), userID, cardID, req.Front, req.Back)
	if err != nil {
		serveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleCardLogs(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	cardID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid card id")
		return
	}

	logs, err := s.service.CardLogs(r.Context(), userID, cardID)
	if err != nil {
		serveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	settings, err := s.service.Settings(r.Context(), userID)
	if err != nil {
		serveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

type putSettingsRequest struct {
	NewCardsPerDay   int         `json:"newCardsPerDay" validate:"min=0"`
	MaxReviewsPerDay int         `json:"maxReviewsPerDay" validate:"min=0"`
	Params           fsrs.Params `json:"params"`
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var req putSettingsRequest
	if err := s.decode(r, &req); err != nil {
		serveError(w, err)
		return
	}

	settings := domain.UserSettings{
		UserID:           userID,
		NewCardsPerDay:   req.NewCardsPerDay,
		MaxReviewsPerDay: req.MaxReviewsPerDay,
		Params:           req.Params,
	}
	if err := s.service.UpdateSettings(r.Context(), settings); err != nil {
		serveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// handlePostSync triggers a source sync in the foreground.
func (s *Server) handlePostSync(w http.ResponseWriter, r *http.Request) {
	s.syncer.RunAll(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "synced"})
}
