package server

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/kovalyov-valentin/autoblog/internal/model"
	"github.com/kovalyov-valentin/autoblog/internal/storage"
	"github.com/samber/lo"
)

var templateFuncs = template.FuncMap{
	"datetime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format("2006-01-02 15:04")
	},
}

type detailPage struct {
	Draft model.Draft
	Error string
}

func (s *Server) uiList(w http.ResponseWriter, r *http.Request) {
	drafts, err := s.drafts.Drafts(r.Context(), 0)
	if err != nil {
		logInternal(r, "ui list drafts", err)
		s.renderError(w, r, http.StatusInternalServerError, "Could not load drafts.")
		return
	}

	s.render(w, r, http.StatusOK, "list.html", drafts)
}

func (s *Server) uiDetail(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid draft id.")
		return
	}

	draft, err := s.drafts.DraftByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.renderError(w, r, http.StatusNotFound, "Draft not found.")
			return
		}
		logInternal(r, "ui get draft", err)
		s.renderError(w, r, http.StatusInternalServerError, "Could not load the draft.")
		return
	}

	s.render(w, r, http.StatusOK, "detail.html", detailPage{Draft: draft})
}

func (s *Server) uiSave(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid draft id.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid form.")
		return
	}

	upd := model.DraftUpdate{
		Title:   r.PostForm.Get("title"),
		Summary: r.PostForm.Get("summary"),
		Body:    r.PostForm.Get("body"),
	}
	// Форма всегда шлет поле промпта, но чужой клиент может его и не прислать
	if r.PostForm.Has("imagePrompt") {
		upd.ImagePrompt = lo.ToPtr(r.PostForm.Get("imagePrompt"))
	}

	upd, err = validateUpdate(upd)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Title, summary and body are required.")
		return
	}

	if _, err := s.drafts.Update(r.Context(), id, upd); err != nil {
		logInternal(r, "ui update draft", err)
		s.renderError(w, r, http.StatusInternalServerError, "Could not save the draft.")
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/ui/drafts/%d", id), http.StatusSeeOther)
}

func (s *Server) uiApprove(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid draft id.")
		return
	}

	if _, err := s.drafts.Approve(r.Context(), id); err != nil {
		logInternal(r, "ui approve draft", err)
		s.renderError(w, r, http.StatusInternalServerError, "Could not approve the draft.")
		return
	}

	http.Redirect(w, r, "/ui/drafts", http.StatusSeeOther)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.render(w, r, status, "error.html", struct {
		Status  int
		Message string
	}{status, message})
}

// Рендерим в буфер, чтобы при ошибке шаблона не отдать половину страницы
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		logInternal(r, "render "+name, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
