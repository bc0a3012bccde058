package main

import (
	"log"

	"dashboard-gateway/internal/shared/config"
	"dashboard-gateway/internal/shared/server"
)

func main() {
	cfg := config.Load()
	r := server.NewRouter(cfg)

	addr := server.Addr(cfg.Port)
	log.Printf("Starting dashboard gateway on %s (backend %s)", addr, cfg.BackendBaseURL)

	if err := r.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
