package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/docpal/docpal/api"
	"github.com/docpal/docpal/chat"
	"github.com/docpal/docpal/config"
	"github.com/docpal/docpal/database"
	"github.com/docpal/docpal/embeddings"
	"github.com/docpal/docpal/ingestion"
	"github.com/docpal/docpal/llm"
	"github.com/docpal/docpal/qa"
	"github.com/docpal/docpal/store"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)
	cfg := config.Load()

	command := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	switch command {
	case "serve":
		serveCmd(cfg, logger, args)
	case "ask":
		askCmd(cfg, logger, args)
	case "chat":
		chatCmd(cfg, logger, args)
	default:
		logger.Printf("unknown command: %s", command)
		printUsage()
		os.Exit(1)
	}
}

func serveCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	port := flags.String("port", cfg.Port, "port to listen on")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse serve flags: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	registry := ingestion.NewRegistry(ingestion.DefaultBackends(cfg.PDFBackend), logger)
	for _, missing := range registry.Missing() {
		logger.Printf("capability missing: %s", missing)
	}

	vectors, cleanup, err := newVectorStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("vector store setup: %v", err)
	}
	defer cleanup()

	llmClient, err := llm.NewClient(ctx, cfg)
	if err != nil {
		logger.Printf("llm unavailable, chat and QA disabled: %v", err)
		llmClient = nil
	}

	embedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		logger.Printf("embedder unavailable, QA disabled: %v", err)
		embedder = nil
	}

	docs := store.New()
	chatSvc := chat.NewService(llmClient, logger)
	qaSvc := qa.NewService(registry, vectors, embedder, llmClient, logger)

	srv := &http.Server{
		Addr:    ":" + *port,
		Handler: api.New(logger, registry, docs, chatSvc, qaSvc),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("server shutdown: %v", err)
		}
	}()

	logger.Printf("listening on :%s (supported formats: %v)", *port, registry.Supported())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server: %v", err)
	}
}

func askCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("ask", flag.ExitOnError)
	file := flags.String("file", "", "path to the document to question")
	question := flags.String("question", "", "question to ask about the document")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse ask flags: %v", err)
	}

	if *file == "" || *question == "" {
		logger.Fatal("ask requires both --file and --question")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	data, err := os.ReadFile(*file)
	if err != nil {
		logger.Fatalf("read document: %v", err)
	}

	registry := ingestion.NewRegistry(ingestion.DefaultBackends(cfg.PDFBackend), logger)

	vectors, cleanup, err := newVectorStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("vector store setup: %v", err)
	}
	defer cleanup()

	llmClient, err := llm.NewClient(ctx, cfg)
	if err != nil {
		logger.Fatalf("llm setup: %v", err)
	}

	embedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		logger.Fatalf("embedder setup: %v", err)
	}

	svc := qa.NewService(registry, vectors, embedder, llmClient, logger)

	answer, err := svc.Ask(ctx, *question, ingestion.NewBlob(filepath.Base(*file), data))
	if err != nil {
		logger.Fatalf("ask failed: %v", err)
	}

	fmt.Println(answer.Text)
	fmt.Println()
	fmt.Printf("ROUGE-1 vs context: precision %.3f, recall %.3f, f1 %.3f\n",
		answer.Rouge.Precision, answer.Rouge.Recall, answer.Rouge.F1)
}

func chatCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("chat", flag.ExitOnError)
	file := flags.String("file", "", "optional document whose text is added as chat context")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse chat flags: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fileContext := ""
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			logger.Fatalf("read document: %v", err)
		}
		registry := ingestion.NewRegistry(ingestion.DefaultBackends(cfg.PDFBackend), logger)
		text, err := registry.Extract(ingestion.NewBlob(filepath.Base(*file), data))
		if err != nil {
			logger.Fatalf("extract document: %v", err)
		}
		fileContext = fmt.Sprintf("--- File: %s ---\n%s\n", filepath.Base(*file), text)
	}

	llmClient, err := llm.NewClient(ctx, cfg)
	if err != nil {
		logger.Fatalf("llm setup: %v", err)
	}

	svc := chat.NewService(llmClient, logger)
	history := make([]llm.Message, 0)

	fmt.Println("Chat started. Type 'exit' to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "exit" || line == "quit" {
			break
		}

		reply, updated, err := svc.Send(ctx, history, line, fileContext)
		if err != nil {
			// History is unchanged after a failed turn; just report and go on.
			fmt.Printf("error: %v\n", err)
			continue
		}
		history = updated
		fmt.Println(reply)
	}

	if err := scanner.Err(); err != nil {
		logger.Fatalf("read input: %v", err)
	}
}

func newVectorStore(ctx context.Context, cfg config.Config, logger *log.Logger) (qa.VectorStore, func(), error) {
	if cfg.PostgresDSN == "" {
		logger.Printf("no POSTGRES_DSN set, using in-memory vector store")
		return qa.NewMemoryStore(), func() {}, nil
	}

	pool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres connection: %w", err)
	}

	if err := database.EnsureQASchema(ctx, pool, cfg.Embeddings.Dimension); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}

	return qa.NewPostgresStore(pool), pool.Close, nil
}

func printUsage() {
	fmt.Println("Usage: docpal <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  serve    Start the HTTP server and web UI (default)")
	fmt.Println("  ask      Answer a question about a single document")
	fmt.Println("  chat     Interactive chat, optionally with a document as context")
}
