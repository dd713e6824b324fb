package server

import (
	"io"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/ironsheep/image-glide/internal/emit"
	"github.com/ironsheep/image-glide/internal/pathres"
)

// NewRouter returns the HTTP handler for image requests under basePrefix,
// which must be normalized ("img/").
func NewRouter(em *emit.Emitter, basePrefix string, logger zerolog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(recoverer(logger))

	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet, http.MethodHead)

	prefix := "/" + strings.TrimLeft(basePrefix, "/")
	r.PathPrefix(prefix).
		Methods(http.MethodGet, http.MethodHead).
		Handler(&imageHandler{emitter: em, basePrefix: basePrefix, logger: logger})

	return r
}

type imageHandler struct {
	emitter    *emit.Emitter
	basePrefix string
	logger     zerolog.Logger
}

func (h *imageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := pathres.ParseRequestPath(r.URL.Path, h.basePrefix)
	if err != nil {
		h.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("not an image request")
		http.NotFound(w, r)
		return
	}
	h.emitter.Serve(w, r, req)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok")
}

func recoverer(logger zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					logger.Error().
						Interface("panic", v).
						Str("path", r.URL.Path).
						Bytes("stack", debug.Stack()).
						Msg("handler panic")
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
