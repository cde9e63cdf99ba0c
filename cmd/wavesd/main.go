// Command wavesd is the headless music-player daemon: it loads a
// configuration record and serves the Unix-socket control protocol
// until told to quit.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/llehouerou/waves/internal/config"
	"github.com/llehouerou/waves/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := server.Serve(cfg); err != nil {
		log.Fatal().Err(err).Msg("wavesd exited with error")
	}
}
