package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"recuring/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Handler serves the JSON API on top of the auth and task services.
type Handler struct {
	auth     *service.AuthService
	tasks    *service.TaskService
	today    func() string
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler wires the API handlers. today supplies the default date for
// the pending-tasks endpoint.
func NewHandler(auth *service.AuthService, tasks *service.TaskService, today func() string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		auth:     auth,
		tasks:    tasks,
		today:    today,
		validate: validator.New(),
		logger:   logger,
	}
}

// Router returns the route table wrapped in request logging and CORS.
func (h *Handler) Router(allowedOrigins []string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.HandleFunc("/register", h.register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.logout).Methods(http.MethodPost)
	r.HandleFunc("/me", requireAuth(h.auth, h.me)).Methods(http.MethodGet)

	r.HandleFunc("/tasks", requireAuth(h.auth, h.listTasks)).Methods(http.MethodGet)
	r.HandleFunc("/tasks", requireAuth(h.auth, h.createTask)).Methods(http.MethodPost)
	r.HandleFunc("/tasks/pending", requireAuth(h.auth, h.pendingTasks)).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id:[0-9]+}", requireAuth(h.auth, h.updateTask)).Methods(http.MethodPut)
	r.HandleFunc("/tasks/{id:[0-9]+}", requireAuth(h.auth, h.deleteTask)).Methods(http.MethodDelete)
	r.HandleFunc("/groups", requireAuth(h.auth, h.listGroups)).Methods(http.MethodGet)

	r.Use(logRequests(h.logger))

	cors := handlers.CORS(
		handlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "Authorization"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedOrigins(allowedOrigins),
	)
	return cors(r)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// bind decodes the JSON body into dst and validates its struct tags.
func (h *Handler) bind(r *http.Request, dst interface{}) error {
	if err := decodeJSON(r, dst); err != nil {
		return err
	}
	return h.validate.Struct(dst)
}

// Server runs the HTTP listener until its context is cancelled.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

func NewServer(addr string, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
		logger: logger,
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}
