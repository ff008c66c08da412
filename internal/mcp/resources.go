// ABOUTME: MCP resource implementations for the daily log.
// ABOUTME: Provides kal://today with the entries logged today.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harperreed/kal/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const todayURI = "kal://today"

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         todayURI,
		Name:        "Today's Log",
		Description: "All entries logged today",
		MIMEType:    "application/json",
	}, s.handleTodayResource)
}

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	now := s.now()
	day := models.DayOf(now)

	s.mu.Lock()
	records, err := s.keeper.Day(day)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to list today: %w", err)
	}

	result := map[string]interface{}{
		"date":        now.Format(models.DateLayout),
		"year":        day.Year,
		"ordinal_day": day.Ordinal,
		"count":       len(records),
		"records":     records,
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      todayURI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
