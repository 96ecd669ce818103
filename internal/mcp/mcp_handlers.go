package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/revstamp/core"
	"github.com/huangsam/revstamp/internal/contract"
	"github.com/huangsam/revstamp/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg   *contract.Config
	mgr       contract.HistoryManager
	newClient ClientFactory
	logger    *zap.Logger
}

func (h *toolHandler) handleDescribeRevision(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if d := request.GetString("directory", ""); d != "" {
		dir, err := contract.ResolveDirectory(d)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid directory: %v", err)), nil
		}
		cfg.Directory = dir
	}
	if b := request.GetString("backend", ""); b != "" {
		cfg.Backend = schema.BackendKind(b)
	}
	r := &cfg.Report
	r.ReportMixedRevisions = request.GetBool("report_mixed_revisions", r.ReportMixedRevisions)
	r.ReportStatus = request.GetBool("report_status", r.ReportStatus)
	r.ReportUnversioned = request.GetBool("report_unversioned", r.ReportUnversioned)
	r.ReportIgnored = request.GetBool("report_ignored", r.ReportIgnored)
	r.ReportOutOfDate = request.GetBool("contact_remote", r.ReportOutOfDate)

	client, err := h.newClient(cfg.Backend)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid backend: %v", err)), nil
	}

	start := time.Now()
	info, err := core.Describe(ctx, cfg, client, h.logger)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("describe failed: %v", err)), nil
	}
	core.RecordRun(cfg, info, time.Since(start), h.mgr, h.logger)

	jsonData, _ := json.MarshalIndent(info, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListRevisionHistory(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := h.baseCfg.HistoryLimit
	if l := request.GetInt("limit", 0); l > 0 {
		limit = min(l, contract.MaxHistoryLimit)
	}

	if h.mgr == nil || h.mgr.GetHistoryStore() == nil {
		return mcp.NewToolResultError("history is disabled; start the server with --history-backend"), nil
	}
	runs, err := h.mgr.GetHistoryStore().List(limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing history failed: %v", err)), nil
	}
	if runs == nil {
		runs = []schema.HistoryRecord{}
	}

	jsonData, _ := json.MarshalIndent(runs, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
