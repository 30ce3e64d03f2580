package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"

	"dust-and-lead/server/internal/app"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	seed := flag.String("seed", "", "world seed (empty for the default)")
	clientDir := flag.String("client", "", "optional static client directory")
	profileMode := flag.String("profile", "", "enable profiling: cpu or mem")
	flag.Parse()

	switch *profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	case "":
	default:
		log.Fatalf("unknown profile mode %q", *profileMode)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, app.Config{
		Addr:      *addr,
		Seed:      *seed,
		ClientDir: *clientDir,
	}); err != nil {
		log.Fatalf("%v", err)
	}
}
