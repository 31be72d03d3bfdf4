package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/clinreason/internal/blockgraph"
	"github.com/abhisek/clinreason/internal/cases"
	"github.com/abhisek/clinreason/internal/compare"
	"github.com/abhisek/clinreason/internal/layout"
	"github.com/abhisek/clinreason/internal/render"
	"github.com/abhisek/clinreason/internal/validate"
)

type spacingRequest struct {
	Horizontal float64 `json:"horizontal" validate:"gt=0"`
	Vertical   float64 `json:"vertical" validate:"gt=0"`
	CenterX    float64 `json:"centerX"`
}

type layoutRequest struct {
	Blocks  []blockgraph.Block `json:"blocks"`
	Spacing *spacingRequest    `json:"spacing"`
	// Normalize repairs ids and kinds instead of rejecting the graph.
	Normalize bool `json:"normalize"`
}

type layoutResponse struct {
	layout.Result
	Blocks []blockgraph.Block `json:"blocks"`
	Issues []string           `json:"issues,omitempty"`
}

type compareRequest struct {
	Learner   []blockgraph.Block `json:"learner"`
	Reference []blockgraph.Block `json:"reference"`
	Threshold float64            `json:"threshold" validate:"omitempty,gt=0,lte=1"`
}

type compareResponse struct {
	compare.Result
	Annotated []blockgraph.Block `json:"annotated"`
}

type renderRequest struct {
	Blocks []blockgraph.Block `json:"blocks"`
	Format string             `json:"format" validate:"required,oneof=png svg mermaid"`
	Title  string             `json:"title"`
}

type caseSummary struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Treatments []string `json:"treatments"`
}

type caseResponse struct {
	*cases.Case
	Layout layout.Result `json:"layout"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if !decode(w, r, &req) {
		return
	}

	blocks := req.Blocks
	if req.Normalize {
		blocks, _ = blockgraph.Normalize(blocks, nil)
	}
	g, err := blockgraph.New(blocks)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	sp := s.opts.Spacing
	if req.Spacing != nil {
		sp = layout.Spacing(*req.Spacing)
	}

	resp := layoutResponse{Result: s.computeLayout(g, sp), Blocks: g.Blocks()}
	for _, issue := range g.Issues() {
		resp.Issues = append(resp.Issues, issue.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !decode(w, r, &req) {
		return
	}

	learner, err := blockgraph.New(req.Learner)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("learner: %w", err))
		return
	}
	reference, err := blockgraph.New(req.Reference)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("reference: %w", err))
		return
	}

	threshold := req.Threshold
	if threshold == 0 {
		threshold = s.opts.Threshold
	}
	res := compare.Compare(learner.Blocks(), reference.Blocks(), compare.WithThreshold(threshold))
	writeJSON(w, http.StatusOK, compareResponse{
		Result:    res,
		Annotated: compare.Annotate(learner, reference, res),
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !decode(w, r, &req) {
		return
	}

	blocks, _ := blockgraph.Normalize(req.Blocks, nil)
	g, err := blockgraph.New(blocks)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	format, err := render.ParseFormat(req.Format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if format == render.FormatMermaid {
		w.Header().Set("Content-Type", "text/vnd.mermaid; charset=utf-8")
		_, _ = w.Write([]byte(render.Mermaid(g, req.Title)))
		return
	}

	img, err := render.Image(r.Context(), g, format, req.Title)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	contentType := "image/png"
	if format == render.FormatSVG {
		contentType = "image/svg+xml"
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(img)
}

func (s *Server) listCases(w http.ResponseWriter, r *http.Request) {
	all := s.opts.Library.All()
	out := make([]caseSummary, 0, len(all))
	for _, c := range all {
		out = append(out, caseSummary{ID: c.ID, Title: c.Title, Treatments: c.Treatments})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getCase(w http.ResponseWriter, r *http.Request) {
	c, err := s.opts.Library.Get(chi.URLParam(r, "caseID"))
	if errors.Is(err, cases.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, caseResponse{
		Case:   c,
		Layout: s.computeLayout(c.Graph(), s.opts.Spacing),
	})
}

func (s *Server) computeLayout(g *blockgraph.Graph, sp layout.Spacing) layout.Result {
	if s.opts.Cache != nil {
		return s.opts.Cache.Compute(g, sp)
	}
	return layout.Compute(g, sp)
}

// decode reads a JSON body into v and validates it, writing a 400 on
// failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}
