package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jjudge-oj/contacts/config"
	"github.com/jjudge-oj/contacts/internal/db"
	"github.com/jjudge-oj/contacts/internal/handlers"
	"github.com/jjudge-oj/contacts/internal/logging"
	"github.com/jjudge-oj/contacts/internal/metrics"
	"github.com/jjudge-oj/contacts/internal/mq"
	"github.com/jjudge-oj/contacts/internal/services"
	"github.com/jjudge-oj/contacts/internal/storage"
	"github.com/jjudge-oj/contacts/internal/store"
	"github.com/sirupsen/logrus"
)

const (
	// requestTimeout must stay below writeTimeout so the timeout middleware
	// answers 504 before the connection is cut.
	requestTimeout = 10 * time.Second
	readTimeout    = 15 * time.Second
	writeTimeout   = 15 * time.Second
	idleTimeout    = 60 * time.Second
)

// Dependencies are the collaborators the router needs.
type Dependencies struct {
	Logger   *logrus.Logger
	DB       handlers.Pinger
	Users    *services.UserService
	Contacts *services.ContactService
	Address  *services.AddressService
	Exports  *services.ExportService
}

// Server wraps the HTTP server and the connections it owns.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	queue      *mq.MQ
	log        *logrus.Logger
}

// New connects the database and the optional event and export backends,
// then builds the router.
func New(ctx context.Context, cfg config.Config, log *logrus.Logger) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queue, err := mq.Open(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	objects, err := storage.Open(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		if queue != nil {
			_ = queue.Close()
		}
		return nil, err
	}

	var publisher services.EventPublisher
	if queue != nil {
		publisher = queue
	}
	var objectStore services.ObjectStore
	if objects != nil {
		objectStore = objects
	}
	events := services.NewEvents(publisher, cfg.Events.Channel)

	userRepo := store.NewUserRepository(dbConn)
	contactRepo := store.NewContactRepository(dbConn)
	addressRepo := store.NewAddressRepository(dbConn)

	router := NewRouter(Dependencies{
		Logger:   log,
		DB:       dbConn,
		Users:    services.NewUserService(userRepo, cfg.BcryptCost, events),
		Contacts: services.NewContactService(contactRepo, events),
		Address:  services.NewAddressService(addressRepo, events),
		Exports:  services.NewExportService(contactRepo, addressRepo, objectStore),
	})

	log.WithFields(logrus.Fields{
		"events_backend":  cfg.Events.Backend,
		"storage_backend": cfg.Storage.Backend,
	}).Info("backends configured")

	return &Server{
		httpServer: newHTTPServer(cfg.ServerPort, router),
		router:     router,
		db:         dbConn,
		queue:      queue,
		log:        log,
	}, nil
}

func newHTTPServer(port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

// NewRouter builds the HTTP routes.
func NewRouter(deps Dependencies) *chi.Mux {
	auth := handlers.RequireAuth(deps.Users)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		logging.RequestLogger(deps.Logger),
		middleware.Recoverer,
		metrics.InstrumentHandler,
		middleware.Timeout(requestTimeout),
	)
	router.Get("/healthz", handlers.Healthz(deps.DB))
	router.Method(http.MethodGet, "/metrics", metrics.Handler())
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, deps.Users, auth)
	})
	router.Group(func(r chi.Router) {
		r.Use(auth)
		handlers.ContactRouter(r, deps.Contacts)
		handlers.AddressRouter(r, deps.Address)
		handlers.ExportRouter(r, deps.Exports)
	})
	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx is
// done, then closes the event backend and the database pool.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.queue != nil {
		if closeErr := s.queue.Close(); closeErr != nil {
			s.log.WithError(closeErr).Warn("close event backend")
		}
	}
	if s.db != nil {
		if closeErr := s.db.Close(); closeErr != nil {
			s.log.WithError(closeErr).Warn("close database")
		}
	}
	return err
}
