// Command detectord serves the plagiarism detector over HTTP: document
// comparison, word lookup and the signed report audit trail.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/nostalgicskinco/plagiarism-detector/pkg/alert"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/api"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/config"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/loader"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/recorder"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/trust"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/vault"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println(".env loaded")
	}

	configPath := flag.String("config", os.Getenv("PLAG_CONFIG"), "YAML config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- OTel tracing setup ---
	tp, err := initTracer(ctx, cfg.Tracing.OTLPEndpoint)
	if err != nil {
		log.Printf("WARN: OTel tracing disabled: %v", err)
	} else if tp != nil {
		defer tp.Shutdown(context.Background())
	}

	// --- Vault setup (best-effort; comparisons work without it) ---
	var vc *vault.Client
	if cfg.Storage.Endpoint != "" {
		vc, err = vault.New(ctx, vault.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			log.Printf("WARN: vault disabled: %v (reports will not be re-checkable)", err)
			vc = nil
		} else {
			log.Printf("Vault connected: %s/%s", cfg.Storage.Endpoint, cfg.Storage.Bucket)
		}
	} else {
		log.Println("WARN: storage endpoint not set, document storage disabled")
	}

	// --- Recorder setup ---
	rec, err := recorder.NewWriter(cfg.Recorder.Dir)
	if err != nil {
		log.Printf("WARN: report recording disabled: %v", err)
		rec = nil
	} else {
		log.Printf("Reports: %s", cfg.Recorder.Dir)
	}

	// --- Audit chain ---
	var chain *trust.AuditChain
	if cfg.Audit.Secret != "" {
		chain = trust.NewAuditChain(cfg.Audit.Secret)
		log.Println("Audit chain: enabled")
	} else {
		log.Println("Audit chain: disabled (set AUDIT_SECRET to enable)")
	}

	opts := cfg.Options()
	ld := &loader.Loader{
		Format:    loader.Format(cfg.Documents.Format),
		MaxBytes:  cfg.Documents.MaxBytes,
		Tokenizer: opts.Tokenizer(),
	}
	apiCfg := api.Config{
		Options:     opts,
		Loader:      ld,
		Recorder:    rec,
		Chain:       chain,
		AuditSecret: cfg.Audit.Secret,
		DetectorID:  hostname(),
		Alerts:      alert.New(cfg.Alerts.WebhookURL),
		Limiter:     rate.NewLimiter(rate.Limit(cfg.Server.RateLimitRPS), cfg.Server.RateLimitBurst),
	}
	if vc != nil {
		ld.Vault = vc
		apiCfg.Vault = vc
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.Handler(apiCfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Plagiarism detector listening on %s (threshold=%.2f%%, min word length=%d)",
			cfg.Server.Addr, opts.Threshold, opts.MinWordLength)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	srv.Shutdown(shutCtx)
}

func initTracer(ctx context.Context, endpoint string) (*sdktrace.TracerProvider, error) {
	if endpoint == "" {
		return nil, nil
	}

	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName("plagiarism-detector"),
		semconv.ServiceVersion("0.1.0"),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp, nil
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "detectord"
	}
	return h
}
