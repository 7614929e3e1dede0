// Package mcp exposes wizard sessions as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/promowizard"
	"github.com/aretw0/promowizard/internal/logging"
	"github.com/aretw0/promowizard/pkg/adapters/memory"
	"github.com/aretw0/promowizard/pkg/domain"
	"github.com/aretw0/promowizard/pkg/session"
	"github.com/aretw0/promowizard/pkg/sanitize"
	"github.com/aretw0/promowizard/pkg/wizard"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// StoresURI is the resource listing the store directory.
const StoresURI = "promowizard://stores"

// ToolResponse is the structured result of every session tool.
type ToolResponse struct {
	SessionID string               `json:"session_id" jsonschema_description:"The wizard session"`
	OK        bool                 `json:"ok" jsonschema_description:"False when a step refused to advance"`
	View      wizard.View          `json:"view" jsonschema_description:"The wizard as a user would see it"`
	Events    []memory.ShellEvent  `json:"events" jsonschema_description:"Notifications and navigation signals emitted by the call"`
	Result    *domain.SubmitResult `json:"result,omitempty" jsonschema_description:"Service response of a successful submit"`
}

// Server exposes a session manager as an MCP server.
type Server struct {
	sessions  *session.Manager
	shells    *memory.ShellRegistry
	stores    []domain.StoreSelection
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithStores sets the store directory exposed as a resource.
func WithStores(stores []domain.StoreSelection) Option {
	return func(s *Server) {
		s.stores = stores
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance. shells must be the registry whose
// shells the session factory hands to its controllers.
func NewServer(sessions *session.Manager, shells *memory.ShellRegistry, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		shells:    shells,
		stores:    []domain.StoreSelection{},
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("promowizard-mcp", strings.TrimSpace(promowizard.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type openArgs struct {
	AccountID string `json:"account_id"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type nameArgs struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
}

type pageArgs struct {
	SessionID string `json:"session_id"`
	Direction string `json:"direction"`
}

type toggleArgs struct {
	SessionID string `json:"session_id"`
	ProductID string `json:"product_id"`
	Selected  bool   `json:"selected"`
}

type discountArgs struct {
	SessionID string `json:"session_id"`
	ProductID string `json:"product_id"`
	Discount  string `json:"discount"`
}

type storesArgs struct {
	SessionID string `json:"session_id"`
	Stores    string `json:"stores"`
}

func sessionParam() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id returned by open_wizard"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("open_wizard",
		mcp.WithDescription("Start a new promotion wizard session on step 1."),
		mcp.WithString("account_id", mcp.Description("Record the promotion is created for (optional)")),
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.handleOpen))

	s.mcpServer.AddTool(mcp.NewTool("get_wizard",
		mcp.WithDescription("Get the current view of a wizard session."),
		sessionParam(),
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.handleGet))

	s.mcpServer.AddTool(mcp.NewTool("set_promotion_name",
		mcp.WithDescription("Edit the promotion name on step 1. It is committed by next_step."),
		sessionParam(),
		mcp.WithString("name", mcp.Required(), mcp.Description("Promotion name")),
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.handleSetName))

	s.mcpServer.AddTool(mcp.NewTool("next_step",
		mcp.WithDescription("Validate the current step and advance when it is valid."),
		sessionParam(),
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.handleNext))

	s.mcpServer.AddTool(mcp.NewTool("previous_step",
		mcp.WithDescription("Go back one step without validation."),
		sessionParam(),
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.handlePrevious))

	s.mcpServer.AddTool(mcp.NewTool("catalog_page",
		mcp.WithDescription("Show, advance or go back one page of the product catalog (step 2)."),
		sessionParam(),
		mcp.WithString("direction", mcp.Enum("current", "next", "previous"), mcp.Description("Defaults to current")),
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.handleCatalogPage))

	s.mcpServer.AddTool(mcp.NewTool("toggle_product",
		mcp.WithDescription("Select or deselect a product on the current catalog page."),
		sessionParam(),
		mcp.WithString("product_id", mcp.Required(), mcp.Description("Catalog product id")),
		mcp.WithBoolean("selected", mcp.Required(), mcp.Description("True to select")),
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.handleToggle))

	s.mcpServer.AddTool(mcp.NewTool("set_discount",
		mcp.WithDescription("Set the discount percentage of a product on the current page. Values are clamped to 0-100; non-numeric input counts as 0."),
		sessionParam(),
		mcp.WithString("product_id", mcp.Required(), mcp.Description("Catalog product id")),
		mcp.WithString("discount", mcp.Required(), mcp.Description("Discount percentage")),
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.handleDiscount))

	s.mcpServer.AddTool(mcp.NewTool("set_stores",
		mcp.WithDescription("Replace the target stores of step 3. They are committed by submit."),
		sessionParam(),
		mcp.WithString("stores", mcp.Required(), mcp.Description(`JSON array of {"storeId","storeName","locationGroup"}`)),
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.handleStores))

	s.mcpServer.AddTool(mcp.NewTool("submit",
		mcp.WithDescription("Create the promotion. Only allowed on step 3."),
		sessionParam(),
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.handleSubmit))
}

// run executes fn under the session lock and collects the view and shell events.
func (s *Server) run(ctx context.Context, id string, fn func(context.Context, *wizard.Controller, *ToolResponse) error) (ToolResponse, error) {
	if id == "" {
		return ToolResponse{}, errors.New("session_id is required")
	}
	resp := ToolResponse{SessionID: id, OK: true}
	err := s.sessions.Do(ctx, id, func(ctx context.Context, c *wizard.Controller) error {
		fnErr := fn(ctx, c, &resp)
		resp.View = c.View()
		return fnErr
	})
	if errors.Is(err, domain.ErrSessionNotFound) {
		s.shells.Drop(id)
		return ToolResponse{}, fmt.Errorf("session %s: %w", id, err)
	}

	resp.Events = s.shells.For(id).Drain()
	if resp.Events == nil {
		resp.Events = []memory.ShellEvent{}
	}
	if resp.View.Closed {
		s.shells.Drop(id)
	}
	if err != nil {
		s.logger.Warn("MCP tool failed", "session_id", id, "err", err)
		return resp, err
	}
	return resp, nil
}

func (s *Server) handleOpen(ctx context.Context, request mcp.CallToolRequest, args openArgs) (ToolResponse, error) {
	id, err := s.sessions.Open(ctx, args.AccountID)
	if err != nil {
		return ToolResponse{}, fmt.Errorf("open failed: %w", err)
	}
	return s.run(ctx, id, func(context.Context, *wizard.Controller, *ToolResponse) error { return nil })
}

func (s *Server) handleGet(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (ToolResponse, error) {
	return s.run(ctx, args.SessionID, func(context.Context, *wizard.Controller, *ToolResponse) error { return nil })
}

func (s *Server) handleSetName(ctx context.Context, request mcp.CallToolRequest, args nameArgs) (ToolResponse, error) {
	name, err := sanitize.Line(args.Name)
	if err != nil {
		return ToolResponse{}, err
	}
	return s.run(ctx, args.SessionID, func(ctx context.Context, c *wizard.Controller, _ *ToolResponse) error {
		c.NameStep().SetName(name)
		return nil
	})
}

func (s *Server) handleNext(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (ToolResponse, error) {
	return s.run(ctx, args.SessionID, func(ctx context.Context, c *wizard.Controller, resp *ToolResponse) error {
		resp.OK = c.Next(ctx)
		return nil
	})
}

func (s *Server) handlePrevious(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (ToolResponse, error) {
	return s.run(ctx, args.SessionID, func(ctx context.Context, c *wizard.Controller, resp *ToolResponse) error {
		resp.OK = c.Previous(ctx)
		return nil
	})
}

func (s *Server) handleCatalogPage(ctx context.Context, request mcp.CallToolRequest, args pageArgs) (ToolResponse, error) {
	return s.run(ctx, args.SessionID, func(ctx context.Context, c *wizard.Controller, _ *ToolResponse) error {
		switch args.Direction {
		case "", "current":
			return nil
		case "next":
			return c.Products().NextPage(ctx)
		case "previous":
			return c.Products().PreviousPage(ctx)
		default:
			return fmt.Errorf("unknown direction %q", args.Direction)
		}
	})
}

func (s *Server) handleToggle(ctx context.Context, request mcp.CallToolRequest, args toggleArgs) (ToolResponse, error) {
	return s.run(ctx, args.SessionID, func(ctx context.Context, c *wizard.Controller, _ *ToolResponse) error {
		return c.Products().Toggle(args.ProductID, args.Selected)
	})
}

func (s *Server) handleDiscount(ctx context.Context, request mcp.CallToolRequest, args discountArgs) (ToolResponse, error) {
	return s.run(ctx, args.SessionID, func(ctx context.Context, c *wizard.Controller, _ *ToolResponse) error {
		_, err := c.Products().EditDiscount(args.ProductID, args.Discount)
		return err
	})
}

func (s *Server) handleStores(ctx context.Context, request mcp.CallToolRequest, args storesArgs) (ToolResponse, error) {
	var stores []domain.StoreSelection
	if err := json.Unmarshal([]byte(args.Stores), &stores); err != nil {
		return ToolResponse{}, fmt.Errorf("stores must be a JSON array: %w", err)
	}
	stores, err := sanitize.Stores(stores)
	if err != nil {
		return ToolResponse{}, err
	}
	return s.run(ctx, args.SessionID, func(ctx context.Context, c *wizard.Controller, _ *ToolResponse) error {
		c.StoreStep().SetStores(stores)
		return nil
	})
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (ToolResponse, error) {
	return s.run(ctx, args.SessionID, func(ctx context.Context, c *wizard.Controller, resp *ToolResponse) error {
		res, err := c.Submit(ctx)
		if err != nil {
			resp.OK = false
			return err
		}
		resp.Result = &res
		return nil
	})
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(StoresURI, "Store Directory",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.stores)
		if err != nil {
			return nil, fmt.Errorf("failed to encode stores: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      StoresURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
