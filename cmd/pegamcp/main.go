// Command pegamcp runs the Pega DX MCP gateway server.
//
// It communicates over stdio using JSON-RPC 2.0 (MCP protocol) and maps each
// tool call onto the Pega DX API v2 with OAuth2 client-credentials auth.
//
// Required environment variables (stdio mode):
//
//	PEGA_BASE_URL       - Infinity application URL ending in /prweb
//	PEGA_CLIENT_ID      - OAuth2 client id (client_credentials grant)
//	PEGA_CLIENT_SECRET  - OAuth2 client secret
//
// Optional environment variables:
//
//	PEGA_TOKEN_URL               - token endpoint (default: derived from base URL)
//	PEGA_DX_MCP_LOG_LEVEL        - debug, info, warn, error (default: info)
//	PEGA_DX_MCP_TRANSPORT        - stdio or http (default: stdio)
//	PEGA_DX_MCP_TIMEOUT_SECONDS  - outbound call deadline (default: 30)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/marco-looy/pega-dx-mcp/internal/config"
	"github.com/marco-looy/pega-dx-mcp/internal/content"
	"github.com/marco-looy/pega-dx-mcp/internal/dx"
	"github.com/marco-looy/pega-dx-mcp/internal/mcp"
	"github.com/marco-looy/pega-dx-mcp/internal/tools/assignments"
	"github.com/marco-looy/pega-dx-mcp/internal/tools/attachments"
	"github.com/marco-looy/pega-dx-mcp/internal/tools/cases"
	"github.com/marco-looy/pega-dx-mcp/internal/tools/casetypes"
	"github.com/marco-looy/pega-dx-mcp/internal/tools/common"
	"github.com/marco-looy/pega-dx-mcp/internal/tools/dataviews"
	"github.com/marco-looy/pega-dx-mcp/internal/tools/documents"
	"github.com/marco-looy/pega-dx-mcp/internal/tools/followers"
	"github.com/marco-looy/pega-dx-mcp/internal/tools/participants"
	"github.com/marco-looy/pega-dx-mcp/internal/tools/tags"
)

// Version is set via ldflags at build time.
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pegamcp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a pega-dx-mcp.toml config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Structured logging goes to stderr; stdout carries the MCP protocol.
	logLevel := parseLogLevel(cfg.Log.Level)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	version := cfg.Server.Version
	if Version != "dev" {
		version = Version
	}

	logger.Info("starting pega-dx-mcp",
		"version", version,
		"base_url", cfg.Pega.BaseURL,
		"transport", cfg.Transport.Mode,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := dx.New(logger, dx.Options{
		Timeout:            cfg.HTTP.Timeout(),
		Proxy:              cfg.HTTP.Proxy,
		InsecureSkipVerify: cfg.HTTP.InsecureSkipVerify,
	})
	if err != nil {
		return fmt.Errorf("creating dx client: %w", err)
	}

	deps := &common.Deps{
		Client:   client,
		Defaults: cfg.Credentials(),
		Logger:   logger,
	}

	registry, err := buildRegistry(deps)
	if err != nil {
		return fmt.Errorf("%s: %w", dx.KindRegistryFailed, err)
	}

	for category, count := range registry.CategoryCounts() {
		logger.Info("registered tools", "category", category, "count", count)
	}

	server := mcp.NewServer(registry, mcp.ServerInfo{
		Name:    cfg.Server.Name,
		Version: version,
	}, logger)

	if cfg.Transport.Mode == "http" {
		httpServer := mcp.NewHTTPServer(server, cfg.Transport.CORSOrigins, logger)
		addr := cfg.Transport.Host + ":" + cfg.Transport.Port
		logger.Info("listening", "addr", addr)

		srv := &http.Server{Addr: addr, Handler: httpServer.Handler()}
		go func() {
			<-ctx.Done()
			srv.Close()
		}()
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http transport: %w", err)
		}
		return nil
	}

	return server.Run(ctx)
}

// buildRegistry registers every tool, prompt and resource. Any schema or
// duplicate-name failure aborts startup.
func buildRegistry(deps *common.Deps) (*mcp.Registry, error) {
	registry := mcp.NewRegistry()

	tools := []mcp.Tool{
		// cases
		cases.NewCreateCase(deps),
		cases.NewGetCase(deps),
		cases.NewDeleteCase(deps),
		cases.NewGetCaseStages(deps),
		cases.NewGetCaseView(deps),
		cases.NewGetCaseAction(deps),
		cases.NewPerformCaseAction(deps),
		cases.NewChangeToNextStage(deps),
		cases.NewChangeToStage(deps),
		cases.NewGetRelatedCases(deps),
		cases.NewRelateCases(deps),
		cases.NewUnrelateCase(deps),

		// assignments
		assignments.NewGetAssignment(deps),
		assignments.NewGetNextAssignment(deps),
		assignments.NewGetAssignmentAction(deps),
		assignments.NewPerformAssignmentAction(deps),
		assignments.NewSaveAssignmentAction(deps),
		assignments.NewRefreshAssignmentAction(deps),

		// case types
		casetypes.NewGetCaseTypes(deps),
		casetypes.NewGetCaseTypeAction(deps),

		// data views
		dataviews.NewGetListDataView(deps),
		dataviews.NewGetDataViewCount(deps),

		// attachments
		attachments.NewUploadAttachment(deps),
		attachments.NewAddCaseAttachments(deps),
		attachments.NewGetCaseAttachments(deps),
		attachments.NewGetAttachment(deps),
		attachments.NewDeleteAttachment(deps),
		attachments.NewGetAttachmentCategories(deps),

		// participants
		participants.NewGetCaseParticipants(deps),
		participants.NewGetParticipantRoles(deps),
		participants.NewGetParticipant(deps),
		participants.NewAddParticipant(deps),
		participants.NewUpdateParticipant(deps),
		participants.NewDeleteParticipant(deps),

		// followers
		followers.NewGetCaseFollowers(deps),
		followers.NewAddCaseFollowers(deps),
		followers.NewDeleteCaseFollower(deps),

		// tags
		tags.NewGetCaseTags(deps),
		tags.NewAddCaseTags(deps),
		tags.NewDeleteCaseTag(deps),

		// documents
		documents.NewGetDocument(deps),
		documents.NewRemoveCaseDocument(deps),
	}
	for _, t := range tools {
		if err := registry.Register(t); err != nil {
			return nil, err
		}
	}

	if err := registry.RegisterPrompt(&content.WorkCasePrompt{}); err != nil {
		return nil, err
	}
	if err := registry.RegisterResource(&content.ToolReferenceResource{Registry: registry}); err != nil {
		return nil, err
	}
	if err := registry.RegisterResource(&content.AuthGuideResource{}); err != nil {
		return nil, err
	}

	return registry, nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
