package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	assistant "github.com/ablelove766/Healthcare-AssistantNew"
	"github.com/ablelove766/Healthcare-AssistantNew/common/logger"
	"github.com/ablelove766/Healthcare-AssistantNew/config"
)

var (
	configPath string
	listenAddr string
)

var rootCmd = &cobra.Command{
	Use:     "healthcare-assistant",
	Short:   "Healthcare chatbot backed by Groq and the patient registry",
	Version: assistant.Version,
	Long: `healthcare-assistant orchestrates chat turns between a Groq-hosted
language model and the patient management API. It serves a REST chat API
and can also run as an MCP stdio server exposing the patient lookup tool.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat REST API server",
	RunE:  runServe,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdin/stdout",
	RunE:  runMCP,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to yaml config file")
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address, overrides server config")
	rootCmd.AddCommand(serveCmd, mcpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (*config.Config, *assistant.Client, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))

	client, err := assistant.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, client, err := setup()
	if err != nil {
		return err
	}

	addr := listenAddr
	if addr == "" {
		addr = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client.StartSessionCleaner(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           assistant.NewApp(client),
		ReadHeaderTimeout: 10 * time.Second,
	}

	st := client.Status()
	logger.Infof("starting healthcare assistant on %s, model=%s llm_configured=%v", addr, st.Model, st.LLMConfigured)
	if !st.LLMConfigured {
		logger.Warnf("Groq API key not found, set the GROQ_API_KEY environment variable")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve failed, err: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Infof("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func runMCP(cmd *cobra.Command, args []string) error {
	_, client, err := setup()
	if err != nil {
		return err
	}
	// zap writes to stderr, so logging cannot corrupt the stdio transport
	logger.Infof("starting MCP server %s on stdio", assistant.ServerName)
	return assistant.ServeStdio(client)
}
