// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/revstamp/internal/contract"
	"github.com/huangsam/revstamp/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// ClientFactory returns the version-control client for a backend kind.
type ClientFactory func(kind schema.BackendKind) (contract.VCSClient, error)

// NewMCPServer initializes and configures the revstamp MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.HistoryManager, newClient ClientFactory, logger *zap.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"Revstamp Working Copy Server",
		"1.0.0",
		server.WithLogging(),
	)

	if logger == nil {
		logger = zap.NewNop()
	}
	h := &toolHandler{
		baseCfg:   baseCfg,
		mgr:       mgr,
		newClient: newClient,
		logger:    logger,
	}

	s.AddTool(mcp.NewTool("describe_revision",
		mcp.WithDescription("Summarize the revision and local status of a working copy into a build token."),
		mcp.WithString("directory", mcp.Description("Working copy directory (defaults to the configured directory).")),
		mcp.WithString("backend", mcp.Description("Version-control backend. Defaults to 'auto'."), mcp.Enum("auto", "svn", "git")),
		mcp.WithBoolean("report_mixed_revisions", mcp.Description("Render a revision range when the working copy mixes revisions.")),
		mcp.WithBoolean("report_status", mcp.Description("Append status markers to the token.")),
		mcp.WithBoolean("report_unversioned", mcp.Description("Include unversioned items in the status markers.")),
		mcp.WithBoolean("report_ignored", mcp.Description("Include ignored items in the status markers.")),
		mcp.WithBoolean("contact_remote", mcp.Description("Contact the repository and mark out-of-date working copies.")),
	), h.handleDescribeRevision)

	s.AddTool(mcp.NewTool("list_revision_history",
		mcp.WithDescription("List the most recently recorded describe runs."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of runs to return.")),
	), h.handleListRevisionHistory)

	return s
}

// StartMCPServer starts the revstamp MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.HistoryManager, newClient ClientFactory, logger *zap.Logger) error {
	s := NewMCPServer(baseCfg, mgr, newClient, logger)
	return server.ServeStdio(s)
}
