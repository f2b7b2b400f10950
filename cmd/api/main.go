package main

import (
	"os"

	"github.com/bmvt/backend/internal/pkg/logger"
	"github.com/bmvt/backend/internal/server"
)

// @title BMVT API
// @version 1.0
// @description Back-office API for the BMVT pilgrimage agency: pilgrims, medical records, flights, rooms, payments, offers and team chat.

// @host localhost:4000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token, "Bearer <token>". The login cookie is accepted too.

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
