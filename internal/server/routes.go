package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	ferrors "github.com/matzehuels/famtree/pkg/errors"
	"github.com/matzehuels/famtree/pkg/family"
	"github.com/matzehuels/famtree/pkg/graph"
	"github.com/matzehuels/famtree/pkg/pipeline"
	"github.com/matzehuels/famtree/pkg/viewer"
)

// maxUploadBytes bounds the request body of an upload, leaving room for
// multipart framing around the largest accepted document.
const maxUploadBytes = family.MaxDocumentSize + 1<<20

// SetupRoutes configures all viewer routes on router.
func SetupRoutes(router chi.Router, s *Server) {
	router.Get("/healthz", handleHealth)
	router.Get(family.DefaultImage, handleDefaultImage)

	router.Group(func(r chi.Router) {
		r.Use(s.withSession)
		r.Get("/", s.handleIndex)
		r.Post("/upload", s.handleUpload)
		r.Post("/root", s.handleRoot)
		r.Get("/select/{id}", s.handleSelect)
		r.Get("/frame.svg", s.handleFrame)
		r.Get("/api/state", s.handleState)
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, sessionFrom(r.Context()).State, http.StatusOK, "")
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	st := sessionFrom(r.Context()).State
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := s.upload(r, st); err != nil {
		s.logger.Warn("upload rejected", "error", ferrors.UserMessage(err))
		s.renderPage(w, st, statusFor(err), ferrors.UserMessage(err))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) upload(r *http.Request, st *viewer.State) error {
	if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "read upload form")
	}

	if u := strings.TrimSpace(r.FormValue("url")); u != "" {
		if s.cfg.Fetcher == nil {
			return ferrors.New(ferrors.ErrCodeUnsupported, "loading trees by URL is disabled")
		}
		raw, err := s.cfg.Fetcher.Fetch(r.Context(), u, false)
		if err != nil {
			return ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "fetch %s", u)
		}
		return st.Load(raw)
	}

	f, hdr, err := r.FormFile("file")
	if err != nil {
		return ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "no file uploaded")
	}
	defer f.Close()
	if err := ferrors.ValidateUploadFilename(hdr.Filename); err != nil {
		return err
	}
	return st.Upload(r.Context(), f)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	st := sessionFrom(r.Context()).State
	id, err := strconv.Atoi(r.FormValue("root"))
	if err == nil {
		err = st.SetActiveRoot(id)
	} else {
		err = ferrors.New(ferrors.ErrCodeSelection, "invalid root %q", r.FormValue("root"))
	}
	if err != nil {
		s.renderPage(w, st, statusFor(err), ferrors.UserMessage(err))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	st := sessionFrom(r.Context()).State
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err == nil {
		err = st.OnNodeClicked(id)
	} else {
		err = ferrors.New(ferrors.ErrCodeSelection, "invalid member %q", chi.URLParam(r, "id"))
	}
	if err != nil {
		s.renderPage(w, st, statusFor(err), ferrors.UserMessage(err))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleFrame serves the current frame, or with ?format= an export of the
// displayed subtree rendered through the pipeline runner.
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	snap := sessionFrom(r.Context()).State.Snapshot()
	if snap.Tree == nil {
		http.Error(w, "no tree loaded", http.StatusNotFound)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		w.Header().Set("Content-Type", pipeline.ContentType(pipeline.FormatSVG))
		_, _ = w.Write(snap.Frame)
		return
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		http.Error(w, ferrors.UserMessage(err), statusFor(err))
		return
	}

	c := s.cfg.Canvas
	opts := pipeline.Options{
		RootID:       snap.ActiveRoot.ID,
		Width:        c.Width,
		Height:       c.Height,
		Margin:       c.Margin,
		Inset:        c.Inset,
		Formats:      []string{format},
		ShowZeroAge:  s.cfg.ShowZeroAge,
		DefaultImage: family.DefaultImage,
	}
	if snap.Selected != nil {
		id := snap.Selected.ID
		opts.Selected = &id
	}
	res, err := s.cfg.Runner.RenderTree(r.Context(), snap.Tree, opts)
	if err != nil {
		s.logger.Error("export failed", "format", format, "error", err)
		http.Error(w, ferrors.UserMessage(err), statusFor(err))
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentType(format))
	_, _ = w.Write(res.Artifacts[format])
}

type rootOption struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type memberDetail struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	Age          string `json:"age,omitempty"`
	Image        string `json:"image"`
}

type stateResponse struct {
	Loaded      bool          `json:"loaded"`
	RootOptions []rootOption  `json:"root_options"`
	ActiveRoot  *int          `json:"active_root,omitempty"`
	Selected    *memberDetail `json:"selected,omitempty"`
	Frames      int           `json:"frames"`
	Layout      *graph.Layout `json:"layout,omitempty"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap := sessionFrom(r.Context()).State.Snapshot()
	resp := stateResponse{
		Loaded:      snap.Tree != nil,
		RootOptions: rootOptions(snap),
		Selected:    s.detail(snap.Selected),
		Frames:      snap.Frames,
	}
	if snap.ActiveRoot != nil {
		id := snap.ActiveRoot.ID
		resp.ActiveRoot = &id
		l := graph.FromResult(snap.Layout)
		resp.Layout = &l
	}
	writeJSON(w, http.StatusOK, resp)
}

func rootOptions(snap viewer.Snapshot) []rootOption {
	opts := make([]rootOption, 0, len(snap.RootOptions))
	for _, m := range snap.RootOptions {
		opts = append(opts, rootOption{ID: m.ID, Name: m.Name, Active: m == snap.ActiveRoot})
	}
	return opts
}

func (s *Server) detail(m *family.Member) *memberDetail {
	if m == nil {
		return nil
	}
	d := &memberDetail{
		ID:           m.ID,
		Name:         m.Name,
		Relationship: m.Relationship,
		Image:        m.AvatarURL(family.DefaultImage),
	}
	if m.HasAge(s.cfg.ShowZeroAge) {
		d.Age = m.AgeText()
	}
	return d
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch ferrors.GetCode(err) {
	case ferrors.ErrCodeParse, ferrors.ErrCodeSelection,
		ferrors.ErrCodeInvalidInput, ferrors.ErrCodeInvalidFormat, ferrors.ErrCodeInvalidFile:
		return http.StatusBadRequest
	case ferrors.ErrCodeNotFound, ferrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case ferrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
