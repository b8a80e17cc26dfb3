package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"

	"apod_gallery/internal/facts"
	"apod_gallery/internal/gallery"
	"apod_gallery/internal/logger"
	"apod_gallery/internal/session"

	"github.com/pkg/errors"
)

//go:embed templates static
var assets embed.FS

// Controller - то, что серверу нужно от сессии.
type Controller interface {
	Fetch(ctx context.Context, start, end string) (gallery.View, error)
	Start(ctx context.Context, start, end string)
	Open(key string) (gallery.Modal, error)
	Click(id string, target gallery.Target) (bool, error)
	Snapshot() session.Snapshot
}

type page struct {
	session.Snapshot
	FactHeading string
}

// Server хранит зависимости HTTP-обработчиков: сессию и шаблон страницы.
type Server struct {
	ctrl Controller
	tmpl *template.Template
}

// NewServer создаёт Server и разбирает встроенный шаблон.
func NewServer(ctrl Controller) (*Server, error) {
	tmpl, err := template.ParseFS(assets, "templates/page.tmpl")
	if err != nil {
		return nil, errors.Wrap(err, "parse page template")
	}
	return &Server{ctrl: ctrl, tmpl: tmpl}, nil
}

// Register вешает обработчики на mux.
func (s *Server) Register(mux *http.ServeMux) {
	static, _ := fs.Sub(assets, "static")

	mux.HandleFunc("GET /{$}", s.Index)
	mux.HandleFunc("POST /fetch", s.Fetch)
	mux.HandleFunc("POST /modal", s.OpenModal)
	mux.HandleFunc("POST /modal/{id}/click", s.ClickModal)
	mux.HandleFunc("GET /api/gallery", s.GalleryJSON)
	mux.HandleFunc("POST /api/fetch", s.FetchJSON)
	mux.HandleFunc("GET /health", s.HealthCheck)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
}

// HealthCheck всегда отвечает 200 OK: у сервиса нет внешних зависимостей, кроме ленты.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

// Index отрисовывает страницу: факт, форму дат, галерею и открытые окна.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := s.tmpl.Execute(&buf, page{
		Snapshot:    s.ctrl.Snapshot(),
		FactHeading: facts.Heading,
	})
	if err != nil {
		logger.Log.WithError(err).Error("Failed to render page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// Fetch запускает загрузку ленты с границами из формы и сразу возвращает на главную.
// Пока идёт загрузка, страница показывает loading и обновляется сама.
func (s *Server) Fetch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	s.ctrl.Start(context.WithoutCancel(r.Context()), r.PostForm.Get("start"), r.PostForm.Get("end"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// FetchJSON загружает ленту синхронно и возвращает вид галереи в JSON.
// При ошибке загрузки отвечает 502 с видом в состоянии error.
func (s *Server) FetchJSON(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	view, err := s.ctrl.Fetch(r.Context(), r.Form.Get("start"), r.Form.Get("end"))
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		logger.Log.WithError(err).Warn("Gallery shows fetch error")
		w.WriteHeader(http.StatusBadGateway)
	}
	json.NewEncoder(w).Encode(view)
}

// OpenModal открывает окно для записи с датой из поля date.
func (s *Server) OpenModal(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	_, err := s.ctrl.Open(r.PostForm.Get("date"))
	if errors.Is(err, session.ErrEntryNotFound) {
		http.Error(w, "Entry not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ClickModal передаёт клик по окну {id}. Поле target: close, background или content.
func (s *Server) ClickModal(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	target := gallery.Target(r.PostForm.Get("target"))
	switch target {
	case gallery.TargetClose, gallery.TargetBackground, gallery.TargetContent:
	default:
		http.Error(w, "Invalid click target", http.StatusBadRequest)
		return
	}

	_, err := s.ctrl.Click(r.PathValue("id"), target)
	if errors.Is(err, gallery.ErrOverlayNotFound) {
		http.Error(w, "Overlay not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GalleryJSON возвращает текущее состояние страницы в JSON.
func (s *Server) GalleryJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.ctrl.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"fact":     snap.Fact,
		"start":    snap.Start,
		"end":      snap.End,
		"gallery":  snap.Gallery,
		"overlays": snap.Overlays,
	}); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
