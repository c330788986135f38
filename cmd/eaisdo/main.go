package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"eaisdo/config"
	"eaisdo/engine"
	"eaisdo/log"
	"eaisdo/messaging"
	"eaisdo/registry"
	"eaisdo/session"
	"eaisdo/store"
	"eaisdo/www"
)

var Version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "eaisdo.yaml", "path to config file")
	writeConfig := flag.Bool("write-config", false, "write the effective config to -config and exit")
	hashPassword := flag.String("hash-password", "", "print a bcrypt hash for auth.password_hash and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("eaisdo", Version)
		return
	}
	if *hashPassword != "" {
		hash, err := session.HashPassword(*hashPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("hash password")
		}
		fmt.Println(hash)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := log.SetLevel(cfg.Log.Level); err != nil {
		log.Warn().Err(err).Msg("eaisdo: keeping default log level")
	}

	if *writeConfig {
		if err := cfg.Save(*configPath); err != nil {
			log.Fatal().Err(err).Msg("write config")
		}
		log.Info().Str("path", *configPath).Msg("eaisdo: config written")
		return
	}

	// Database
	db, err := store.Open(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	log.Info().Str("driver", cfg.Database.Driver).Msg("eaisdo: database open")

	// Redis, only needed for the redis session backend
	var rdb redis.Cmdable
	if cfg.Session.Backend == "redis" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("eaisdo: redis not available, sessions fall back to cookies")
			redisClient.Close()
		} else {
			log.Info().Str("addr", cfg.Redis.Address).Msg("eaisdo: redis connected")
			rdb = redisClient
			defer redisClient.Close()
		}
		cancel()
	}

	// Registry client
	regClient := registry.NewClient(cfg.Registry.BaseURL, engine.RegistryOptions(&cfg.Registry))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := regClient.Ping(ctx); err == nil {
		log.Info().Str("url", cfg.Registry.BaseURL).Msg("eaisdo: registry reachable")
	} else {
		log.Warn().Err(err).Msg("eaisdo: registry not available")
	}
	cancel()

	// Messaging client
	msgClient := messaging.NewClient(&cfg.Messaging)
	if err := msgClient.Connect(); err != nil {
		log.Warn().Err(err).Msg("eaisdo: messaging connect failed")
	} else {
		log.Info().Str("backend", msgClient.Backend()).Msg("eaisdo: messaging ready")
	}
	defer msgClient.Close()

	// Engine
	eng := engine.New(engine.Config{
		AppConfig:  cfg,
		ConfigPath: *configPath,
		DB:         db,
		Registry:   regClient,
		MsgClient:  msgClient,
		Redis:      rdb,
	})
	eng.Start()
	defer eng.Stop()

	// Web server
	handler, stopWeb := www.NewRouter(eng)

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("eaisdo: web server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("web server")
		}
	}()

	log.Info().Msg("eaisdo: ready")

	// SIGHUP re-reads registry and messaging settings; SIGINT/SIGTERM stop.
	// Everything else in the config needs a restart.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	for sig := range sigCh {
		if sig != syscall.SIGHUP {
			break
		}
		reloadConfig(eng, *configPath)
	}

	log.Info().Msg("eaisdo: shutting down...")
	stopWeb()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	log.Info().Msg("eaisdo: stopped")
}

func reloadConfig(eng *engine.Engine, path string) {
	next, err := config.Load(path)
	if err != nil {
		log.Error().Err(err).Msg("eaisdo: reload config")
		return
	}
	eng.ApplyConfig(next)
	log.Info().Msg("eaisdo: registry and messaging settings reloaded")
}
