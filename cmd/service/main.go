package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/2beens/liftdash/internal"
	"github.com/2beens/liftdash/internal/config"
	"github.com/2beens/liftdash/internal/healthbridge"
	"github.com/2beens/liftdash/internal/logging"
	"github.com/2beens/liftdash/pkg"

	log "github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("starting ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	sentryDSN := os.Getenv("SENTRY_DSN")
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    false,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        sentryDSN,
		SentryServerName: "liftdash-service",
	})

	log.Debugf("using port: %d", cfg.Port)
	log.Debugf("using server logs path: [%s]", cfg.LogsPath)

	fitApiAuthToken := os.Getenv("LIFTDASH_FIT_API_TOKEN")
	if fitApiAuthToken == "" {
		log.Errorf("fit api token not set, use LIFTDASH_FIT_API_TOKEN env var to set it")
	}

	versionInfo, err := tryGetLastCommitHash()
	if err != nil {
		log.Tracef("failed to get last commit hash / version info: %s", err)
	} else {
		log.Tracef("running version: %s", versionInfo)
	}

	if otelServiceName := os.Getenv("OTEL_SERVICE_NAME"); otelServiceName == "" {
		log.Warnln("OTEL_SERVICE_NAME env var not set")
	}

	honeycombEnabled := os.Getenv("HONEYCOMB_ENABLED") == "true"
	if honeycombEnabled {
		if honeycombApiKey := os.Getenv("HONEYCOMB_API_KEY"); honeycombApiKey == "" {
			log.Warnln("HONEYCOMB_API_KEY env var not set")
		}
	} else {
		log.Debugln("honeycomb tracing disabled")
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	server, err := internal.NewServer(internal.NewServerParams{
		Config:                  cfg,
		FitAPIAuthToken:         fitApiAuthToken,
		VersionInfo:             versionInfo,
		HoneycombTracingEnabled: honeycombEnabled,
		LevelingCurve:           levelingCurve,
		HealthBridge:            healthbridge.NewUnavailableBridge(),
	})
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(cfg.Host, cfg.Port)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, killing everything ...", receivedSig)

	// go to sleep 🥱
	server.GracefulShutdown()
}

// levelingCurve is the xp curve used by the gamification layer: reaching
// level n takes 500 * n * (n - 1) total xp, so every level needs 1000 xp
// more than the previous one.
func levelingCurve(level, totalXP int) (xpToNextLevel int, levelProgress float64) {
	if level < 1 {
		level = 1
	}

	currentLevelXP := 500 * level * (level - 1)
	nextLevelXP := 500 * (level + 1) * level

	if totalXP < currentLevelXP {
		return nextLevelXP - currentLevelXP, 0
	}
	if totalXP >= nextLevelXP {
		return 0, 1
	}

	intoLevel := totalXP - currentLevelXP
	levelSize := nextLevelXP - currentLevelXP
	return nextLevelXP - totalXP, float64(intoLevel) / float64(levelSize)
}

// tryGetLastCommitHash will try to get the last commit hash
// assumes that the built main executable is in project root
func tryGetLastCommitHash() (string, error) {
	cmd := exec.Command("/usr/bin/git", "rev-parse", "HEAD")
	stdout, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return pkg.BytesToString(stdout), nil
}
