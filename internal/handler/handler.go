package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/worldexplorers/placement/internal/assessment"
	"github.com/worldexplorers/placement/internal/export"
	appI18n "github.com/worldexplorers/placement/internal/i18n"
	"github.com/worldexplorers/placement/internal/media"
	"github.com/worldexplorers/placement/internal/store"
)

// Config holds runtime handler parameters set via CLI flags.
type Config struct {
	SecureCookies bool
}

// Handler holds shared dependencies for HTTP handlers. One evaluator
// drives one assessment at a time; the active assessment lives here,
// guarded by a mutex, until it is completed or cancelled.
type Handler struct {
	store  *store.Store
	media  *media.Library
	config Config

	mu     sync.Mutex
	active *assessment.Assessment
}

// New creates a new Handler.
func New(s *store.Store, m *media.Library, cfg Config) *Handler {
	return &Handler{store: s, media: m, config: cfg}
}

// Routes registers all HTTP routes. The parent portal, per-result
// report documents, and media are public; everything that drives or
// lists assessments requires the evaluator login.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/portal/lookup", h.handleLookup)
	r.Get("/results/{id}/report.html", h.handleReportHTML)
	r.Get("/media/{ref}", h.handleMedia)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/assessments", h.handleStart)
		r.Get("/assessments/current", h.handleCurrent)
		r.Post("/assessments/current/actions", h.handleAction)
		r.Post("/assessments/current/photo", h.handleUploadPhoto)
		r.Post("/assessments/current/audio", h.handleUploadAudio)
		r.Post("/assessments/current/complete", h.handleComplete)
		r.Delete("/assessments/current", h.handleCancel)
		r.Get("/results", h.handleListResults)
		r.Get("/results/{id}", h.handleGetResult)
		r.Get("/results/export.csv", h.handleExportCSV)
		r.Get("/results/export.json", h.handleExportJSON)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

type noticeResponse struct {
	Notice string `json:"notice"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// assessmentView is what the console polls: the full working state,
// the prompt to read next, and a live score preview.
type assessmentView struct {
	Assessment assessment.Assessment `json:"assessment"`
	Prompt     any                   `json:"prompt,omitempty"`
	Preview    assessment.Breakdown  `json:"preview"`
}

func viewOf(a assessment.Assessment) assessmentView {
	v := assessmentView{Assessment: a, Preview: assessment.Score(a.Session)}
	switch a.Step {
	case assessment.StepIntro:
		v.Prompt = map[string]string{
			"orientation":   assessment.OrientationPrompt,
			"orientationEn": assessment.OrientationPromptEN,
		}
	case assessment.StepStage1:
		if q, ok := assessment.Stage1QuestionAt(a.Cursor); ok {
			v.Prompt = q
		}
	case assessment.StepStage2:
		if q, ok := assessment.Stage2QuestionAt(a.Cursor); ok {
			v.Prompt = q
		}
	case assessment.StepStage3:
		v.Prompt = assessment.SpeakingTasks
	}
	return v
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active != nil {
		writeJSON(w, http.StatusConflict, errorResponse{Error: appI18n.T(r.Context(), "AssessmentExists")})
		return
	}
	a := assessment.Start()
	h.active = &a
	slog.Info("assessment started", "id", a.Session.ID)
	writeJSON(w, http.StatusCreated, viewOf(a))
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: appI18n.T(r.Context(), "NoActiveAssessment")})
		return
	}
	writeJSON(w, http.StatusOK, viewOf(*h.active))
}

func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request) {
	var env actionEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	act, err := decodeAction(env)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: appI18n.T(r.Context(), "NoActiveAssessment")})
		return
	}
	next, err := assessment.Apply(*h.active, act)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	h.active = &next
	writeJSON(w, http.StatusOK, viewOf(next))
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: appI18n.T(r.Context(), "NoActiveAssessment")})
		return
	}
	res, err := assessment.Complete(*h.active)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	if err := h.store.AppendResult(res); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	h.active = nil
	writeJSON(w, http.StatusOK, map[string]any{
		"result": res,
		"notice": appI18n.Td(r.Context(), "ResultArchived", map[string]any{"Name": res.StudentName}),
	})
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: appI18n.T(r.Context(), "NoActiveAssessment")})
		return
	}
	slog.Info("assessment cancelled", "id", h.active.Session.ID)
	h.active = nil
	writeJSON(w, http.StatusOK, noticeResponse{Notice: appI18n.T(r.Context(), "AssessmentCancelled")})
}

// handleUploadPhoto and handleUploadAudio accept the eventual output
// of an external capture. A missing or unreadable upload is the denial
// signal: the flow continues and the field stays absent.
func (h *Handler) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, media.KindPhoto)
}

func (h *Handler) handleUploadAudio(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, media.KindAudio)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request, kind media.Kind) {
	data, err := readUpload(r)
	if err != nil {
		slog.Warn("capture denied", "kind", kind, "error", err)
		writeJSON(w, http.StatusOK, noticeResponse{Notice: appI18n.T(r.Context(), "CaptureDenied")})
		return
	}
	ref, err := h.media.Save(kind, data)
	if err != nil {
		slog.Warn("capture not stored", "kind", kind, "error", err)
		writeJSON(w, http.StatusOK, noticeResponse{Notice: appI18n.T(r.Context(), "CaptureDenied")})
		return
	}

	var act assessment.Action = assessment.AttachPhoto{Ref: ref}
	if kind == media.KindAudio {
		act = assessment.AttachAudio{Ref: ref}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: appI18n.T(r.Context(), "NoActiveAssessment")})
		return
	}
	next, err := assessment.Apply(*h.active, act)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	h.active = &next
	writeJSON(w, http.StatusOK, viewOf(next))
}

func readUpload(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, err
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *Handler) handleListResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.store.ListResults()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if results == nil {
		results = []assessment.Result{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) handleGetResult(w http.ResponseWriter, r *http.Request) {
	res, err := h.store.GetResult(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if res == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: appI18n.T(r.Context(), "ResultNotFound")})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	res, err := h.store.FindSyncedByName(name)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if res == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: appI18n.T(r.Context(), "LookupNotFound")})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	res, err := h.store.GetResult(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if res == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: appI18n.T(r.Context(), "ResultNotFound")})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.HTMLFileName(*res)+`"`)
	if err := export.WriteHTML(w, *res); err != nil {
		slog.Error("render report document", "id", res.ID, "error", err)
	}
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	results, err := h.store.ListResults()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.CSVFileName(time.Now())+`"`)
	if err := export.WriteCSV(w, results); err != nil {
		slog.Error("export csv", "error", err)
	}
}

func (h *Handler) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	results, err := h.store.ListResults()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.JSONFileName(time.Now())+`"`)
	if err := export.WriteJSON(w, results); err != nil {
		slog.Error("export json", "error", err)
	}
}

func (h *Handler) handleMedia(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	rc, err := h.media.Open(ref)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer rc.Close()
	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("serve media", "ref", ref, "error", err)
	}
}
