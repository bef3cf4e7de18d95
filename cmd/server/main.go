package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/lam-kelly/fritter/internal/config"
	"github.com/lam-kelly/fritter/internal/consul"
	"github.com/lam-kelly/fritter/internal/logger"
	"github.com/lam-kelly/fritter/internal/server"
)

func main() {
	logger.SetDefault(logger.New())

	if err := config.ValidateEnv([]string{"DATABASE_URL"}); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting Fritter API server")

	srv, err := server.New()
	if err != nil {
		slog.Error("Failed to initialize server", "error", err)
		os.Exit(1)
	}
	defer srv.Close()

	httpServer := srv.HTTPServer()

	// Consul registration is optional; deployments without service
	// discovery just leave CONSUL_HTTP_ADDR unset.
	deregister := registerWithConsul(httpServer.Addr)
	defer deregister()

	go func() {
		slog.Info("Listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Forced shutdown", "error", err)
	}

	slog.Info("Server stopped")
}

func registerWithConsul(addr string) func() {
	consulAddr := os.Getenv("CONSUL_HTTP_ADDR")
	if consulAddr == "" {
		return func() {}
	}

	client, err := consul.NewClientWithToken(consulAddr, os.Getenv("CONSUL_HTTP_TOKEN"))
	if err != nil {
		slog.Warn("Failed to create Consul client", "error", err)
		return func() {}
	}

	host := config.GetEnvOrDefault("SERVICE_HOST", "fritter-api")
	port := portOf(addr)
	serviceID := fmt.Sprintf("fritter-api-%s", host)

	_ = client.Deregister(serviceID)

	err = client.Register(&consul.ServiceConfig{
		ID:      serviceID,
		Name:    "fritter-api",
		Address: host,
		Port:    port,
		Tags:    []string{"api", "freets", "follows", "endorsements"},
		Check: &consul.HealthCheck{
			HTTP:     fmt.Sprintf("http://%s:%d/health", host, port),
			Interval: "10s",
			Timeout:  "3s",
		},
	})
	if err != nil {
		slog.Warn("Failed to register with Consul", "error", err)
		return func() {}
	}

	slog.Info("Registered with Consul", "service_id", serviceID)
	return func() {
		if err := client.Deregister(serviceID); err != nil {
			slog.Warn("Failed to deregister from Consul", "error", err)
		}
	}
}

func portOf(addr string) int {
	var port int
	if _, err := fmt.Sscanf(addr, ":%d", &port); err != nil {
		return 8080
	}
	return port
}
