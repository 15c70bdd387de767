package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	apppipeline "github.com/archgram/archgram/internal/application/pipeline"
	appviews "github.com/archgram/archgram/internal/application/views"
	"github.com/archgram/archgram/internal/domain/genai"
	domain "github.com/archgram/archgram/internal/domain/pipeline"
	domrender "github.com/archgram/archgram/internal/domain/render"
	"github.com/archgram/archgram/internal/middleware"
)

const maxUploadBytes = 32 << 20

type Router struct {
	pipelineSvc   *apppipeline.Service
	viewsSvc      *appviews.Service
	artifacts     domain.ArtifactStore
	defaultRegion string
	log           zerolog.Logger
}

type Options struct {
	AllowedOrigins []string
	DefaultRegion  string
	Health         http.HandlerFunc
	Log            zerolog.Logger
}

func NewRouter(pipelineSvc *apppipeline.Service, viewsSvc *appviews.Service, artifacts domain.ArtifactStore, opts Options) http.Handler {
	r := &Router{
		pipelineSvc:   pipelineSvc,
		viewsSvc:      viewsSvc,
		artifacts:     artifacts,
		defaultRegion: opts.DefaultRegion,
		log:           opts.Log,
	}

	mux := chi.NewRouter()
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	if opts.Health != nil {
		mux.Get("/health", opts.Health)
	} else {
		mux.Get("/health", middleware.LivenessHandler)
	}
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/api", func(rt chi.Router) {
		rt.Post("/summarize", r.wrap(r.handleSummarize))
		rt.Post("/generate", r.handleGenerate)
		rt.Get("/requests/{id}", r.wrap(r.handleGetRequest))
		rt.Get("/requests/{id}/components", r.wrap(r.handleComponents))
		rt.Get("/requests/{id}/diagram-syntax", r.wrap(r.handleDiagramSyntax))
		rt.Get("/requests/{id}/image", r.wrap(r.handleImage))
		rt.Get("/diagrams", r.wrap(r.handleListDiagrams))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				http.Error(w, "request not found", http.StatusNotFound)
			case errors.Is(err, domain.ErrInputInvalid):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, genai.ErrThrottled):
				http.Error(w, "generation quota exceeded", http.StatusTooManyRequests)
			case errors.Is(err, genai.ErrUnavailable), errors.Is(err, domrender.ErrUnavailable):
				http.Error(w, err.Error(), http.StatusBadGateway)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

// generateBody is the JSON shape shared by summarize and generate calls.
type generateBody struct {
	SourceName   string `json:"source_name"`
	Text         string `json:"text"`
	Summary      string `json:"summary"`
	Instructions string `json:"instructions"`
	ModelID      string `json:"model_id"`
	Region       string `json:"region"`
}

func (r *Router) params(modelID, region string) (domain.GenerationParams, error) {
	if err := middleware.ValidateModelID(modelID); err != nil {
		return domain.GenerationParams{}, fmt.Errorf("%w: %v", domain.ErrInputInvalid, err)
	}
	if err := middleware.ValidateRegion(region); err != nil {
		return domain.GenerationParams{}, fmt.Errorf("%w: %v", domain.ErrInputInvalid, err)
	}
	if region == "" {
		region = r.defaultRegion
	}
	return domain.GenerationParams{ModelID: modelID, Region: region}, nil
}

// POST /api/summarize
// Multipart upload (file + model_id + region form fields, matching the
// original frontend) or JSON {text, source_name, model_id, region}.
// The response is the caller-held approval state: summary plus proposed
// render instructions, free to edit before /api/generate.
func (r *Router) handleSummarize(w http.ResponseWriter, req *http.Request) error {
	cmd, err := r.summarizeCommand(req)
	if err != nil {
		return err
	}

	handoff, err := r.pipelineSvc.Summarize(req.Context(), cmd)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(handoff)
}

func (r *Router) summarizeCommand(req *http.Request) (apppipeline.SummarizeCommand, error) {
	var cmd apppipeline.SummarizeCommand

	if mediaTypeIsMultipart(req) {
		if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
			return cmd, fmt.Errorf("%w: %v", domain.ErrInputInvalid, err)
		}
		file, header, err := req.FormFile("file")
		if err != nil {
			return cmd, fmt.Errorf("%w: missing file field", domain.ErrInputInvalid)
		}
		defer file.Close()

		if err := middleware.ValidateDocumentName(header.Filename); err != nil {
			return cmd, fmt.Errorf("%w: %v", domain.ErrInputInvalid, err)
		}
		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			return cmd, err
		}
		params, err := r.params(req.FormValue("model_id"), req.FormValue("region"))
		if err != nil {
			return cmd, err
		}
		cmd = apppipeline.SummarizeCommand{
			SourceName: header.Filename,
			Document:   data,
			Params:     params,
		}
		return cmd, nil
	}

	var body generateBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return cmd, fmt.Errorf("%w: %v", domain.ErrInputInvalid, err)
	}
	params, err := r.params(body.ModelID, body.Region)
	if err != nil {
		return cmd, err
	}
	cmd = apppipeline.SummarizeCommand{
		SourceName: body.SourceName,
		Text:       body.Text,
		Params:     params,
	}
	return cmd, nil
}

// POST /api/generate
// Streams newline-delimited ProgressEvent records. The last line is always
// the single terminal event: complete with the base64 image and minted
// request id, or error with a message.
func (r *Router) handleGenerate(w http.ResponseWriter, req *http.Request) {
	var body generateBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	params, err := r.params(body.ModelID, body.Region)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	cmd := apppipeline.GenerateCommand{
		SourceName:   body.SourceName,
		Text:         body.Text,
		Summary:      body.Summary,
		Instructions: body.Instructions,
		Params:       params,
	}

	stream := domain.NewStream(req.Context())
	middleware.IncrementRenders()

	// Run the pipeline detached from the connection context: a dropped
	// consumer forfeits events but does not abort upstream work in flight.
	go r.pipelineSvc.Generate(detachedContext(req), cmd, stream)

	enc := json.NewEncoder(w)
	failed := false
	for ev := range stream.Events() {
		if ev.Status == domain.StatusError {
			failed = true
		}
		if err := enc.Encode(ev); err != nil {
			break
		}
		flusher.Flush()
	}
	middleware.FinishRender(failed)
}

// GET /api/requests/{id}
func (r *Router) handleGetRequest(w http.ResponseWriter, req *http.Request) error {
	rec, err := r.viewsSvc.Get(req.Context(), domain.RequestID(chi.URLParam(req, "id")))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(rec)
}

// GET /api/requests/{id}/components
func (r *Router) handleComponents(w http.ResponseWriter, req *http.Request) error {
	res, err := r.viewsSvc.Components(req.Context(), domain.RequestID(chi.URLParam(req, "id")))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(res)
}

// GET /api/requests/{id}/diagram-syntax
func (r *Router) handleDiagramSyntax(w http.ResponseWriter, req *http.Request) error {
	res, err := r.viewsSvc.DiagramSyntax(req.Context(), domain.RequestID(chi.URLParam(req, "id")))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(res)
}

// GET /api/requests/{id}/image
func (r *Router) handleImage(w http.ResponseWriter, req *http.Request) error {
	id := domain.RequestID(chi.URLParam(req, "id"))
	rec, err := r.viewsSvc.Get(req.Context(), id)
	if err != nil {
		return err
	}
	img, err := r.artifacts.Fetch(req.Context(), rec.ArtifactKey)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("X-Request-ID", string(id))
	_, err = w.Write(img)
	return err
}

// GET /api/diagrams
func (r *Router) handleListDiagrams(w http.ResponseWriter, req *http.Request) error {
	list, err := r.artifacts.List(req.Context(), "generated-diagrams/")
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{
		"diagrams": list,
		"count":    len(list),
	})
}

func mediaTypeIsMultipart(req *http.Request) bool {
	return strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/")
}

// detachedContext drops the connection's cancellation so pipeline stages run
// to completion even when the consumer disconnects mid-stream.
func detachedContext(req *http.Request) context.Context {
	return context.WithoutCancel(req.Context())
}
