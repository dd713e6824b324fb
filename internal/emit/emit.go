// Package emit turns pipeline results into HTTP responses or inline data
// URIs.
//
// The two outputs deliberately treat a missing image differently: HTTP
// answers 404 with a fixed body, inline embedding returns an empty string.
package emit

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/image-glide/internal/engine"
	"github.com/ironsheep/image-glide/internal/pathres"
	"github.com/ironsheep/image-glide/internal/pipeline"
)

// NotFoundBody is the response body for unknown presets and missing files.
const NotFoundBody = "Image not found."

// FailureBody is the response body when rendering fails.
const FailureBody = "Image could not be rendered."

// Exit reports how a request finished. Anything other than ExitOK is a
// failure; the request is complete either way and nothing else may write
// to the response.
type Exit int

const (
	ExitOK Exit = iota
	ExitNotFound
	ExitEngineError
)

func (e Exit) String() string {
	switch e {
	case ExitOK:
		return "ok"
	case ExitNotFound:
		return "not_found"
	case ExitEngineError:
		return "engine_error"
	}
	return "exit(" + strconv.Itoa(int(e)) + ")"
}

// Status is the HTTP status code written for e.
func (e Exit) Status() int {
	switch e {
	case ExitOK:
		return http.StatusOK
	case ExitNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Emitter writes pipeline output.
type Emitter struct {
	pipeline *pipeline.Pipeline
	logger   zerolog.Logger
}

// New returns an emitter for p.
func New(p *pipeline.Pipeline, logger zerolog.Logger) *Emitter {
	return &Emitter{pipeline: p, logger: logger}
}

// Serve resolves and renders req and writes the response.
func (e *Emitter) Serve(w http.ResponseWriter, r *http.Request, req pathres.Request) Exit {
	start := time.Now()

	var (
		art *engine.Artifact
		err error
	)
	res, err := e.pipeline.Resolve(req.Preset, req.File)
	if err == nil {
		art, err = e.pipeline.Produce(r.Context(), res)
	}
	exit := Write(w, art, err)

	ev := e.logger.Info()
	if exit == ExitEngineError {
		ev = e.logger.Error().Err(err)
	}
	ev.Str("preset", req.Preset).
		Str("file", req.File).
		Int("status", exit.Status()).
		Stringer("exit", exit).
		Str("cache", cacheState(art)).
		Dur("duration", time.Since(start)).
		Msg("image request")
	return exit
}

func cacheState(art *engine.Artifact) string {
	if art != nil && art.Cached {
		return "hit"
	}
	return "miss"
}

// Write sends the outcome of a render: 200 with the artifact bytes, 404 with
// NotFoundBody when err is pipeline.ErrNotFound, and 500 for any other error.
func Write(w http.ResponseWriter, art *engine.Artifact, err error) Exit {
	switch {
	case errors.Is(err, pipeline.ErrNotFound):
		writeText(w, http.StatusNotFound, NotFoundBody)
		return ExitNotFound
	case err != nil:
		writeText(w, http.StatusInternalServerError, FailureBody)
		return ExitEngineError
	}

	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(art.Data)
	return ExitOK
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

// Inline resolves and renders presetName/file as a data URI. A missing
// preset or source yields "" and no error; engine failures are returned.
func (e *Emitter) Inline(ctx context.Context, presetName, file string) (string, error) {
	res, err := e.pipeline.Resolve(presetName, file)
	if err != nil {
		return "", nil
	}
	uri, err := e.pipeline.ProduceInline(ctx, res)
	if errors.Is(err, pipeline.ErrNotFound) {
		return "", nil
	}
	return uri, err
}
