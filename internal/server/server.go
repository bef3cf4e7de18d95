package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/lam-kelly/fritter/internal/config"
	"github.com/lam-kelly/fritter/internal/database"
	"github.com/lam-kelly/fritter/internal/endorse"
	"github.com/lam-kelly/fritter/internal/events"
	"github.com/lam-kelly/fritter/internal/follows"
	"github.com/lam-kelly/fritter/internal/freets"
	"github.com/lam-kelly/fritter/internal/session"
	"github.com/lam-kelly/fritter/internal/users"
	"github.com/lam-kelly/fritter/internal/wordmask"
)

// Server holds the dependencies for the HTTP server
type Server struct {
	port int

	db           database.Service
	sessionStore session.Store
	sessions     session.Manager
	producer     *events.Producer

	users    users.Service
	freets   freets.Service
	follows  follows.Service
	endorse  endorse.Service
	wordmask wordmask.Service
}

// Config holds server configuration
type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// LoadConfigFromEnv loads server configuration from environment variables
func LoadConfigFromEnv() *Config {
	port, _ := strconv.Atoi(config.GetEnvOrDefault("PORT", "8080"))

	return &Config{
		Port:         port,
		ReadTimeout:  config.GetEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: config.GetEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:  config.GetEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
	}
}

// New builds the full dependency graph: database, session store,
// optional Kafka producer, and every domain service with cascades
// registered.
func New() (*Server, error) {
	cfg := LoadConfigFromEnv()

	db := database.New()

	redisDB, _ := strconv.Atoi(config.GetEnvOrDefault("REDIS_DB", "0"))
	sessionStore := session.NewRedisStore(
		config.GetEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		config.GetEnvOrDefault("REDIS_PASSWORD", ""),
		redisDB,
	)
	sessions := session.NewManager(sessionStore)

	// Publishing is optional: without KAFKA_BROKERS the services run
	// with a nil publisher and skip emitting events.
	var pub events.Publisher
	var producer *events.Producer
	if kafkaCfg, err := events.LoadConfig(); err == nil {
		producer, err = events.NewProducer(kafkaCfg, slog.Default())
		if err != nil {
			return nil, fmt.Errorf("create kafka producer: %w", err)
		}
		pub = producer
	} else {
		slog.Warn("Kafka disabled, engagement events will not be published")
	}

	userSvc := users.NewService(db)
	freetSvc := freets.NewService(freets.NewRepository(db), userSvc)
	followSvc := follows.NewService(follows.NewRepository(db), userSvc, pub)
	endorseSvc := endorse.NewService(endorse.NewRepository(db), userSvc, freetSvc, pub)
	maskSvc := wordmask.NewService(wordmask.NewRepository(db), userSvc)

	// Deleting an account removes everything that references it before
	// the user row goes: endorsements first, the user's freets along
	// with endorsements of those freets, then follow edges and masks.
	userSvc.RegisterCascader(endorseSvc)
	userSvc.RegisterCascader(freetSvc)
	userSvc.RegisterCascader(followSvc)
	userSvc.RegisterCascader(maskSvc)

	return &Server{
		port:         cfg.Port,
		db:           db,
		sessionStore: sessionStore,
		sessions:     sessions,
		producer:     producer,
		users:        userSvc,
		freets:       freetSvc,
		follows:      followSvc,
		endorse:      endorseSvc,
		wordmask:     maskSvc,
	}, nil
}

// HTTPServer wraps the router in a configured http.Server.
func (s *Server) HTTPServer() *http.Server {
	cfg := LoadConfigFromEnv()

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.RegisterRoutes(),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

// Close flushes the producer and releases the database pool.
func (s *Server) Close() {
	if s.producer != nil {
		s.producer.Close()
	}
	if err := s.db.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}
}
