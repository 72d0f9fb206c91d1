// Package mcp exposes the savings engine operations as MCP tools over a
// stdio transport.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ajofund/ajo/internal/auth"
	"github.com/ajofund/ajo/internal/group/service"
)

const (
	serverName = "ajo"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// Server hosts the MCP server over the savings engine.
type Server struct {
	mcpServer *mcp.Server
	svc       *service.Service
	grants    auth.GrantConfig
}

// New creates an MCP server with every engine tool registered. Grant
// verification uses the given config for all mutating tools.
func New(svc *service.Service, grants auth.GrantConfig) *Server {
	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil),
		svc:       svc,
		grants:    grants,
	}
	s.register()
	return s
}

func (s *Server) register() {
	mcp.AddTool(s.mcpServer, initializeTool(), s.initializeHandler())
	mcp.AddTool(s.mcpServer, pauseTool(), s.pauseHandler())
	mcp.AddTool(s.mcpServer, unpauseTool(), s.unpauseHandler())
	mcp.AddTool(s.mcpServer, createGroupTool(), s.createGroupHandler())
	mcp.AddTool(s.mcpServer, joinGroupTool(), s.joinGroupHandler())
	mcp.AddTool(s.mcpServer, getGroupTool(), s.getGroupHandler())
	mcp.AddTool(s.mcpServer, groupStatusTool(), s.groupStatusHandler())
	mcp.AddTool(s.mcpServer, listMembersTool(), s.listMembersHandler())
	mcp.AddTool(s.mcpServer, setMetadataTool(), s.setMetadataHandler())
	mcp.AddTool(s.mcpServer, getMetadataTool(), s.getMetadataHandler())
	mcp.AddTool(s.mcpServer, isMemberTool(), s.isMemberHandler())
	mcp.AddTool(s.mcpServer, isCompleteTool(), s.isCompleteHandler())
	mcp.AddTool(s.mcpServer, contributeTool(), s.contributeHandler())
	mcp.AddTool(s.mcpServer, contributionStatusTool(), s.contributionStatusHandler())
	mcp.AddTool(s.mcpServer, contributionDetailTool(), s.contributionDetailHandler())
	mcp.AddTool(s.mcpServer, penaltyPoolTool(), s.penaltyPoolHandler())
	mcp.AddTool(s.mcpServer, memberReliabilityTool(), s.memberReliabilityHandler())
	mcp.AddTool(s.mcpServer, executePayoutTool(), s.executePayoutHandler())
	mcp.AddTool(s.mcpServer, cancelGroupTool(), s.cancelGroupHandler())
	mcp.AddTool(s.mcpServer, requestRefundTool(), s.requestRefundHandler())
	mcp.AddTool(s.mcpServer, voteRefundTool(), s.voteRefundHandler())
	mcp.AddTool(s.mcpServer, executeRefundTool(), s.executeRefundHandler())
	mcp.AddTool(s.mcpServer, emergencyRefundTool(), s.emergencyRefundHandler())
	mcp.AddTool(s.mcpServer, refundRequestStatusTool(), s.refundRequestStatusHandler())
	mcp.AddTool(s.mcpServer, refundRecordTool(), s.refundRecordHandler())
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
