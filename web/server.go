package web

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
)

type Server struct {
	Hub *Hub
}

func NewServer() *Server {
	return &Server{Hub: NewHub()}
}

// Start serves the websocket feed on /ws plus an optional static frontend
// and the scenario file for map rendering. Blocks; run on a goroutine.
func (s *Server) Start(port int, distDir string, scenarioPath string) {
	go s.Hub.Run()

	mux := http.NewServeMux()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(s.Hub, w, r)
	})

	if scenarioPath != "" {
		if _, err := os.Stat(scenarioPath); err == nil {
			name := filepath.Base(scenarioPath)
			mux.HandleFunc("/"+name, func(w http.ResponseWriter, r *http.Request) {
				http.ServeFile(w, r, scenarioPath)
			})
		}
	}

	if distDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(distDir)))
	}

	addr := fmt.Sprintf(":%d", port)
	log.Printf("HTTP server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("HTTP server error: %v", err)
	}
}
