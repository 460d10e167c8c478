package main

import (
	"log"

	"smartagri/config"
	"smartagri/routes"
)

func main() {
	// Load configuration (.env first, then environment variables)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	app, err := routes.NewApp(cfg)
	if err != nil {
		log.Fatalf("Unable to build gateway: %v", err)
	}

	log.Printf("Gateway running on http://localhost%s", cfg.ListenAddr())
	log.Printf("Upstream prediction service: %s (timeout %s)", cfg.UpstreamURL, cfg.UpstreamTimeout)

	// Start server
	log.Fatal(app.Listen(cfg.ListenAddr()))
}
