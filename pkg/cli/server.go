package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rafianfasaa/stunting/pkg/growth"
	"github.com/urfave/cli/v2"
)

const (
	serverShutdownWaitSeconds = 5
	serverTimeoutSeconds      = 30
	serverMaxHeaderBytes      = 20
	serverMaxBodyBytes        = 1 << 16
)

var (
	portFlag = &cli.IntFlag{
		Name:  "port",
		Usage: "Port on which the server will listen (overrides config)",
	}

	addressFlag = &cli.StringFlag{
		Name:  "address",
		Usage: "Interface on which the server will listen",
		Value: "127.0.0.1",
	}

	serverCmd = &cli.Command{
		Name:    "server",
		Aliases: []string{"serve"},
		Usage:   "Start the assessment HTTP API",
		Action:  cmdStartServer,
		Flags: []cli.Flag{
			portFlag,
			addressFlag,
			lookupFlag,
			localeFlag,
			modelFlag,
			sourceFlag,
		},
	}
)

func cmdStartServer(c *cli.Context) error {
	app := getConfig(c)

	a, err := buildAssessor(c.Context, app, overrideSettings(c, settingsFrom(app)))
	if err != nil {
		return err
	}

	port := app.Config.Server.Port
	if c.IsSet(portFlag.Name) {
		port = c.Int(portFlag.Name)
	}
	address := fmt.Sprintf("%s:%d", c.String(addressFlag.Name), port)

	s := &http.Server{
		Addr:           address,
		Handler:        makeRouter(newAPI(a, app.Config.Server.CacheTTL)),
		ReadTimeout:    serverTimeoutSeconds * time.Second,
		WriteTimeout:   serverTimeoutSeconds * time.Second,
		MaxHeaderBytes: 1 << serverMaxHeaderBytes,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("error starting server", "error", err)
		}
	}()

	slog.Info("server started", "address", fmt.Sprintf("http://%s", address))

	<-done

	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownWaitSeconds*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("error shutting down server", "error", err)
	}
	return nil
}

// api serves assessments from one assessor. Results depend only on the subject, so they
// are memoized for ttl; a zero ttl disables the cache.
type api struct {
	assessor *growth.Assessor
	cache    *cache.Cache
}

func newAPI(a *growth.Assessor, ttl time.Duration) *api {
	s := &api{assessor: a}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

func makeRouter(s *api) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("POST /api/v1/assess", s.assessHandler)
	mux.HandleFunc("GET /api/v1/references", s.referencesHandler)

	return mux
}

type assessResponse struct {
	ID     string         `json:"id"`
	Cached bool           `json:"cached"`
	Result *growth.Result `json:"result"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps assessment errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, growth.ErrInput):
		return http.StatusBadRequest
	case errors.Is(err, growth.ErrLookup), errors.Is(err, growth.ErrDomain):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version,
	})
}

func (s *api) assessHandler(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	log := slog.With("id", id)

	var req assessRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, serverMaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		log.Debug("invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	subject, err := req.subject()
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	key := subjectKey(subject)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			log.Debug("assessment cache hit", "key", key)
			writeJSON(w, http.StatusOK, &assessResponse{ID: id, Cached: true, Result: v.(*growth.Result)})
			return
		}
	}

	res, err := s.assessor.Assess(subject)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			log.Error("assessment failed", "error", err)
			writeError(w, status, "assessment failed")
			return
		}
		writeError(w, status, err.Error())
		return
	}

	if s.cache != nil {
		s.cache.SetDefault(key, res)
	}
	writeJSON(w, http.StatusOK, &assessResponse{ID: id, Result: res})
}

func (s *api) referencesHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, describeTables(s.assessor.References()))
}
