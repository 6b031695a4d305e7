// internal/delivery/health/server.go
package health

import (
	"fmt"
	"net/http"
	"time"

	"trading-signals-bot/pkg/logger"
)

// Server - HTTP сервер проверки живости процесса
type Server struct {
	server *http.Server
}

// NewServer создает сервер живости на заданном порту
func NewServer(port int) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", handleHealthCheck)
	mux.HandleFunc("/health", handleHealthCheck)

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Start запускает сервер в фоновой горутине
func (s *Server) Start() {
	logger.Info("🚀 Starting health server on %s", s.server.Addr)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("❌ Health server error: %v", err)
		}
	}()
}

// Stop останавливает сервер
func (s *Server) Stop() error {
	return s.server.Close()
}

func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
