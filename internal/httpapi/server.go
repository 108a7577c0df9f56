package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"llmlauncher/internal/instances"
	"llmlauncher/internal/launcher"
	"llmlauncher/internal/registry"
	"llmlauncher/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Families() []registry.Descriptor
	Family(name string) (registry.Descriptor, error)
	Instances() []instances.Instance
	Instance(name string) (instances.Instance, error)
	AddInstance(inst instances.Instance) error
	UpdateInstance(name string, inst instances.Instance) error
	RemoveInstance(name string)
	Run(ctx context.Context, prompts types.PromptPair) (launcher.Round, error)
	Prompts() types.PromptPair
	ClearPrompts()
	Status() types.StatusResponse
	Ready() bool
	Version() string
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(corsHandler())
	}

	r.Get("/families", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"families": svc.Families()})
	})

	r.Get("/families/{name}", func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.Family(chi.URLParam(r, "name"))
		if err != nil {
			writeJSONError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, d)
	})

	r.Route("/instances", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"instances": svc.Instances()})
		})

		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var inst instances.Instance
			if !decodeBody(w, r, &inst) {
				return
			}
			if strings.TrimSpace(inst.Name) == "" || strings.TrimSpace(inst.Family) == "" {
				writeJSONError(w, http.StatusBadRequest, "name and family are required")
				return
			}
			if err := svc.AddInstance(inst); err != nil {
				writeError(w, r, err)
				return
			}
			created, err := svc.Instance(inst.Name)
			if err != nil {
				writeError(w, r, err)
				return
			}
			logInfo(r, "instance added", func(e logFields) { e.Str("instance", inst.Name) })
			writeJSON(w, http.StatusCreated, created)
		})

		r.Get("/{name}", func(w http.ResponseWriter, r *http.Request) {
			inst, err := svc.Instance(chi.URLParam(r, "name"))
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, inst)
		})

		r.Put("/{name}", func(w http.ResponseWriter, r *http.Request) {
			name := chi.URLParam(r, "name")
			var inst instances.Instance
			if !decodeBody(w, r, &inst) {
				return
			}
			if err := svc.UpdateInstance(name, inst); err != nil {
				writeError(w, r, err)
				return
			}
			updated, err := svc.Instance(name)
			if err != nil {
				writeError(w, r, err)
				return
			}
			logInfo(r, "instance updated", func(e logFields) { e.Str("instance", name) })
			writeJSON(w, http.StatusOK, updated)
		})

		r.Delete("/{name}", func(w http.ResponseWriter, r *http.Request) {
			name := chi.URLParam(r, "name")
			svc.RemoveInstance(name)
			logInfo(r, "instance removed", func(e logFields) { e.Str("instance", name) })
			w.WriteHeader(http.StatusNoContent)
		})
	})

	r.Post("/rounds", func(w http.ResponseWriter, r *http.Request) {
		var req types.RoundRequest
		if !decodeBody(w, r, &req) {
			return
		}
		start := time.Now()
		lvl := requestLogLevel(r)
		if lvl >= LevelInfo {
			logInfo(r, "round start", func(e logFields) { e.Int("user_prompt_len", len(req.User)) })
		}
		ctx, cancel := roundContext(r)
		defer cancel()
		round, err := svc.Run(ctx, req)
		if err != nil {
			if shuttingDown(r) {
				return
			}
			writeError(w, r, err)
			return
		}
		if lvl >= LevelDebug {
			for _, res := range round.Results {
				logDebug(r, "round result", func(e logFields) {
					e.Int("index", res.Index).Str("label", res.Label).Str("outcome", string(res.Outcome)).Int("status", res.StatusCode)
				})
			}
		}
		if lvl >= LevelInfo {
			logInfo(r, "round end", func(e logFields) {
				e.Str("round", round.ID).Int("results", len(round.Results)).Dur("dur", time.Since(start))
			})
		}
		writeJSON(w, http.StatusOK, round.Response())
	})

	r.Get("/prompts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Prompts())
	})

	r.Delete("/prompts", func(w http.ResponseWriter, r *http.Request) {
		svc.ClearPrompts()
		logInfo(r, "prompts cleared", nil)
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": svc.Version()})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// decodeBody enforces a JSON content type and the body size limit, then
// decodes into v. It writes the error response and returns false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// If exceeded size, MaxBytesReader may cause an error; still return 400 to avoid size leak details
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
