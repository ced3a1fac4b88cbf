package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dastanaron/signupsaver/internal/logger"
	"github.com/dastanaron/signupsaver/internal/models"
	"github.com/dastanaron/signupsaver/internal/popup"
	"github.com/dastanaron/signupsaver/internal/repository"
)

type handlers struct {
	d Deps
}

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

type saveRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

func (r saveRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.URL, validation.Required),
	)
}

type saveResponse struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	URL                string         `json:"url"`
	Outcome            models.Outcome `json:"outcome"`
	IsExistingBookmark bool           `json:"isExistingBookmark"`
	Status             string         `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, healthzResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(h.d.StartTime).Seconds(),
	})
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	folderID, err := h.d.Folders.Find(ctx, h.d.FolderName)
	if err != nil {
		h.fail(w, err)
		return
	}

	bookmarks := []models.Bookmark{}
	if folderID != "" {
		bookmarks, err = h.d.Bookmarks.List(ctx, folderID)
		if err != nil {
			h.fail(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, bookmarks)
}

func (h *handlers) save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	folderID, err := h.d.Folders.Resolve(ctx, h.d.FolderName)
	if err != nil {
		h.fail(w, err)
		return
	}

	res, err := h.d.Bookmarks.Save(ctx, req.Title, req.URL, folderID)
	if err != nil {
		h.fail(w, err)
		return
	}

	status, key := http.StatusCreated, popup.StatusAddition
	switch res.Outcome {
	case models.OutcomeDuplicate:
		status, key = http.StatusOK, popup.StatusExists
	case models.OutcomeRejected:
		status, key = http.StatusUnprocessableEntity, popup.StatusNotValidTarget
	}

	writeJSON(w, status, saveResponse{
		ID:                 res.Bookmark.ID,
		Title:              res.Bookmark.Title,
		URL:                res.Bookmark.URL,
		Outcome:            res.Outcome,
		IsExistingBookmark: res.IsExistingBookmark(),
		Status:             string(key),
	})
}

func (h *handlers) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.d.Bookmarks.Delete(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, repository.ErrFolderNotEmpty):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		h.d.Logger.Error("request failed", logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: popup.StatusUnknown.Text()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
