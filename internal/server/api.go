package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kovalyov-valentin/autoblog/internal/model"
	"github.com/kovalyov-valentin/autoblog/internal/storage"
	"github.com/samber/lo"
)

var (
	errInvalidID       = errors.New("invalid draft id")
	errMissingRequired = errors.New("title, summary and body are required")
)

// Полное тело запроса больше не нужно
const maxBodyBytes = 1 << 20

// listDrafts отдает все черновики, свежие первыми
func (s *Server) listDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := s.drafts.Drafts(r.Context(), 0)
	if err != nil {
		logInternal(r, "list drafts", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, drafts)
}

// getDraft отдает один черновик. Если его нет, отвечаем 404.
func (s *Server) getDraft(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	draft, err := s.drafts.DraftByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "draft not found")
			return
		}
		logInternal(r, "get draft", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, draft)
}

// updateDraft сохраняет правки редактора. Статус и картинки не трогаются.
func (s *Server) updateDraft(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Поле imagePrompt необязательное, поэтому указатель: отсутствие ключа и пустая строка различаются
	var upd model.DraftUpdate
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	upd, err = validateUpdate(upd)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Несуществующий id тоже ошибка хранилища, отвечаем 500
	draft, err := s.drafts.Update(r.Context(), id, upd)
	if err != nil {
		logInternal(r, "update draft", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, draft)
}

// approveDraft публикует черновик, повторный вызов безопасен
func (s *Server) approveDraft(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	draft, err := s.drafts.Approve(r.Context(), id)
	if err != nil {
		logInternal(r, "approve draft", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, draft)
}

// id из пути, только положительные числа
func draftID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// validateUpdate обрезает пробелы и проверяет обязательные поля
func validateUpdate(u model.DraftUpdate) (model.DraftUpdate, error) {
	u.Title = strings.TrimSpace(u.Title)
	u.Summary = strings.TrimSpace(u.Summary)
	u.Body = strings.TrimSpace(u.Body)
	if u.ImagePrompt != nil {
		u.ImagePrompt = lo.ToPtr(strings.TrimSpace(*u.ImagePrompt))
	}

	if u.Title == "" || u.Summary == "" || u.Body == "" {
		return model.DraftUpdate{}, errMissingRequired
	}
	return u, nil
}

// Текст внутренней ошибки только в лог, клиенту он не уходит
func logInternal(r *http.Request, action string, err error) {
	log.Printf("[ERROR] %s: %v rid=%s", action, err, RequestIDFrom(r.Context()))
}
