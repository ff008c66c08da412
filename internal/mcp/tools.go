// ABOUTME: MCP tool implementations for the daily log.
// ABOUTME: Log, list, and reset entries; every write is snapshotted.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/harperreed/kal/internal/backup"
	"github.com/harperreed/kal/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_entry",
		Description: "Log a categorized entry for a day (defaults to today)",
	}, s.handleLogEntry)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_day",
		Description: "List the entries logged for a day (defaults to today)",
	}, s.handleListDay)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_year",
		Description: "List every entry logged in a year (defaults to this year)",
	}, s.handleListYear)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "reset_day",
		Description: "Delete every entry logged for a day",
	}, s.handleResetDay)
}

// Tool input/output types

type logEntryInput struct {
	Category string `json:"category" jsonschema:"Category from the configured allow-list"`
	Details  string `json:"details,omitempty" jsonschema:"Optional free text"`
	Date     string `json:"date,omitempty" jsonschema:"Day to log for (YYYY-MM-DD), defaults to today"`
}

type logEntryOutput struct {
	Year       uint   `json:"year"`
	OrdinalDay uint   `json:"ordinal_day"`
	Category   string `json:"category"`
	Snapshot   string `json:"snapshot"`
	Message    string `json:"message"`
}

type dayInput struct {
	Date string `json:"date,omitempty" jsonschema:"Day (YYYY-MM-DD), defaults to today"`
}

type yearInput struct {
	Year uint `json:"year,omitempty" jsonschema:"Year to list, defaults to this year"`
}

type listOutput struct {
	Count   int              `json:"count"`
	Records []*models.Record `json:"records"`
}

type resetOutput struct {
	Removed  int64  `json:"removed"`
	Snapshot string `json:"snapshot"`
	Message  string `json:"message"`
}

// Tool handlers

func (s *Server) handleLogEntry(ctx context.Context, req *mcp.CallToolRequest, input logEntryInput) (*mcp.CallToolResult, logEntryOutput, error) {
	day, err := s.resolveDay(input.Date)
	if err != nil {
		return nil, logEntryOutput{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, snap, err := s.keeper.Commit(day, input.Category, input.Details)
	if errors.Is(err, backup.ErrSnapshotFailed) {
		return nil, logEntryOutput{}, fmt.Errorf("entry %s was saved but the backup failed: %w", r, err)
	}
	if err != nil {
		return nil, logEntryOutput{}, fmt.Errorf("failed to log entry: %w", err)
	}

	return nil, logEntryOutput{
		Year:       r.Year,
		OrdinalDay: r.OrdinalDay,
		Category:   r.Category,
		Snapshot:   snap,
		Message:    fmt.Sprintf("Logged %s", r),
	}, nil
}

func (s *Server) handleListDay(ctx context.Context, req *mcp.CallToolRequest, input dayInput) (*mcp.CallToolResult, listOutput, error) {
	day, err := s.resolveDay(input.Date)
	if err != nil {
		return nil, listOutput{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.keeper.Day(day)
	if err != nil {
		return nil, listOutput{}, fmt.Errorf("failed to list day: %w", err)
	}
	return nil, listOutput{Count: len(records), Records: records}, nil
}

func (s *Server) handleListYear(ctx context.Context, req *mcp.CallToolRequest, input yearInput) (*mcp.CallToolResult, listOutput, error) {
	year := input.Year
	if year == 0 {
		year = uint(s.now().Year())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.keeper.Year(year)
	if err != nil {
		return nil, listOutput{}, fmt.Errorf("failed to list year: %w", err)
	}
	return nil, listOutput{Count: len(records), Records: records}, nil
}

func (s *Server) handleResetDay(ctx context.Context, req *mcp.CallToolRequest, input dayInput) (*mcp.CallToolResult, resetOutput, error) {
	if input.Date == "" {
		return nil, resetOutput{}, fmt.Errorf("date is required to reset a day")
	}
	day, err := models.ParseDate(input.Date)
	if err != nil {
		return nil, resetOutput{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed, snap, err := s.keeper.Reset(day)
	if errors.Is(err, backup.ErrSnapshotFailed) {
		return nil, resetOutput{}, fmt.Errorf("reset of %s (%d removed) was saved but the backup failed: %w", day, removed, err)
	}
	if err != nil {
		return nil, resetOutput{}, fmt.Errorf("failed to reset day: %w", err)
	}
	return nil, resetOutput{
		Removed:  removed,
		Snapshot: snap,
		Message:  fmt.Sprintf("Removed %d entries from %s", removed, day),
	}, nil
}

func (s *Server) resolveDay(date string) (models.Day, error) {
	if date == "" {
		return models.DayOf(s.now()), nil
	}
	return models.ParseDate(date)
}
