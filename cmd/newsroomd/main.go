// Command newsroomd runs the ingestion/dedup/brief-generation pipeline
// as a long-lived daemon: sweep ticker, batch cron, and the internal
// control HTTP surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsroom/breaker"
	"newsroom/config"
	"newsroom/control"
	"newsroom/dedup"
	"newsroom/holding"
	"newsroom/kafkaevents"
	"newsroom/llm"
	"newsroom/pipeline"
	"newsroom/store"
	"newsroom/types"
)

func main() {
	controlAddr := flag.String("control-addr", "", "internal control HTTP address (overrides CONTROL_HTTP_ADDR)")
	flag.Parse()

	cfg := config.Load()
	if *controlAddr != "" {
		cfg.ControlHTTPAddr = *controlAddr
	}

	st, err := store.Open(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("newsroomd: failed to open store: %v", err)
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	archive, err := store.NewArchive(ctx, store.S3Config{
		Region:       cfg.S3Region,
		Profile:      cfg.S3Profile,
		UsePathStyle: cfg.S3UsePathStyle,
		Bucket:       cfg.S3Bucket,
		Prefix:       cfg.S3Prefix,
	})
	if err != nil {
		log.Printf("newsroomd: archive disabled: %v", err)
	}

	var seen *dedup.SeenFilter
	if cfg.RedisAddr != "" {
		seen, err = dedup.NewSeenFilter(dedup.DefaultBloomConfig(cfg.RedisAddr, cfg.RedisPass))
		if err != nil {
			log.Printf("newsroomd: bloom accelerator disabled: %v", err)
		}
	}

	events, err := kafkaevents.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		log.Printf("newsroomd: kafka event fan-out disabled: %v", err)
		events = nil
	}

	rewriter := &llm.Rewriter{
		Client:                llm.NewCohereClient(cfg.CohereAPIKey, cfg.CohereModel),
		Band:                  cfg.WordBand,
		ModelID:               cfg.CohereModel,
		InitialStatus:         types.BriefStatus(cfg.InitialBriefStatus),
		CostRateInPerMillion:  cfg.CostRateInPerMillion,
		CostRateOutPerMillion: cfg.CostRateOutPerMillion,
	}

	scheduler := pipeline.New(
		config.DefaultSources,
		cfg,
		breaker.New(),
		holding.New(),
		st,
		rewriter,
		seen,
		events,
		archive,
	)

	go scheduler.Run(ctx)

	router := control.NewRouter(scheduler)
	httpServer := &http.Server{Addr: cfg.ControlHTTPAddr, Handler: router}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("newsroomd: control server error: %v", err)
		}
	}()

	fmt.Println("newsroomd started")
	fmt.Printf("  control surface: http://0.0.0.0%s/internal\n", cfg.ControlHTTPAddr)
	fmt.Println("Press Ctrl+C to shut down")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nShutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("newsroomd: control server shutdown error: %v", err)
	}
	_ = events.Close()
	_ = seen.Close()
}
