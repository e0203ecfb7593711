// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the venue directory for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/saigoneats/internal/apperr"
	"github.com/starford/saigoneats/internal/models"
	"github.com/starford/saigoneats/internal/query"
	"github.com/starford/saigoneats/internal/venueservice"
)

const formatURI = "venues://submission-format"

// Server wraps the MCP server with venue directory tools.
type Server struct {
	mcp *server.MCPServer
	svc *venueservice.Service
}

// New creates a new MCP server with all directory tools registered.
func New(svc *venueservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"SaigonEats",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_venues",
		append([]mcp.ToolOption{
			mcp.WithDescription("Filter and sort the venue directory. Every filter is optional; " +
				"filters combine with AND. Call list_taxonomy for accepted values."),
		}, selectionParams()...)...,
	), s.searchVenues)

	s.mcp.AddTool(mcp.NewTool("get_venue",
		mcp.WithDescription("Read one venue by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Venue id")),
	), s.getVenue)

	s.mcp.AddTool(mcp.NewTool("set_filters",
		append([]mcp.ToolOption{
			mcp.WithDescription("Replace the session's active filters and sort, and return the new results."),
		}, selectionParams()...)...,
	), s.setFilters)

	s.mcp.AddTool(mcp.NewTool("reset_filters",
		mcp.WithDescription("Clear the session's filters and sort, and return every venue."),
	), s.resetFilters)

	s.mcp.AddTool(mcp.NewTool("current_results",
		mcp.WithDescription("Return the session's active filters and their results."),
	), s.currentResults)

	s.mcp.AddTool(mcp.NewTool("list_taxonomy",
		mcp.WithDescription("List the venue types, cuisines, districts, price ranges and sort keys."),
	), s.listTaxonomy)

	s.mcp.AddTool(mcp.NewTool("suggest_venue",
		mcp.WithDescription("Submit a new venue suggestion for moderation. "+
			"Read the format first via get_submission_format or the "+formatURI+" resource."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Venue name")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Venue type, e.g. cafe")),
		mcp.WithString("address", mcp.Description("Full street address")),
		mcp.WithString("cuisines", mcp.Description("Comma-separated cuisine tags")),
		mcp.WithString("comments", mcp.Description("Free-text notes")),
		mcp.WithString("submitterName", mcp.Description("Who is suggesting it")),
	), s.suggestVenue)

	s.mcp.AddTool(mcp.NewTool("get_submission_format",
		mcp.WithDescription("Returns the venue suggestion format. "+
			"Call this before suggesting a venue."),
	), s.getSubmissionFormat)

	// Resource: suggestion format.
	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Venue Suggestion Format",
			mcp.WithResourceDescription("Shape of a venue suggestion and how approval normalizes it."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSubmissionFormatResource,
	)

	return s
}

func selectionParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("type", mcp.Description("Venue type, e.g. restaurant, cafe, coffee shop")),
		mcp.WithString("cuisine", mcp.Description("Cuisine, or any feature tag such as coffee")),
		mcp.WithString("district", mcp.Description("District, e.g. District 1 or Binh Thanh")),
		mcp.WithString("priceRange", mcp.Description("low, medium or high"), mcp.Enum("low", "medium", "high")),
		mcp.WithString("search", mcp.Description("Matches name, address and description")),
		mcp.WithString("sortBy", mcp.Description("name, rating or priceRange"), mcp.Enum("name", "rating", "priceRange")),
	}
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func selectionFrom(req mcp.CallToolRequest) query.Selection {
	return query.Selection{
		Type:       req.GetString("type", ""),
		Cuisine:    req.GetString("cuisine", ""),
		District:   req.GetString("district", ""),
		PriceRange: req.GetString("priceRange", ""),
		SearchTerm: req.GetString("search", ""),
		SortBy:     req.GetString("sortBy", ""),
	}
}

type resultsPayload struct {
	Selection query.Selection `json:"selection"`
	Total     int             `json:"total"`
	Venues    []models.Venue  `json:"venues"`
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) searchVenues(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel := selectionFrom(req)
	venues := s.svc.Query(ctx, sel)
	return jsonResult(resultsPayload{Selection: sel, Total: len(venues), Venues: venues}), nil
}

func (s *Server) getVenue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := s.svc.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return jsonResult(v), nil
}

func (s *Server) setFilters(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel := selectionFrom(req)
	venues := s.svc.SetSelection(ctx, sel)
	return jsonResult(resultsPayload{Selection: sel, Total: len(venues), Venues: venues}), nil
}

func (s *Server) resetFilters(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	venues := s.svc.ResetSelection(ctx)
	return jsonResult(resultsPayload{Total: len(venues), Venues: venues}), nil
}

func (s *Server) currentResults(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel, venues := s.svc.Results(ctx)
	return jsonResult(resultsPayload{Selection: sel, Total: len(venues), Venues: venues}), nil
}

func (s *Server) listTaxonomy(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Taxonomy(ctx)), nil
}

func (s *Server) suggestVenue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var tags []string
	for _, t := range strings.Split(req.GetString("cuisines", ""), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	sub, err := s.svc.Submit(ctx, venueservice.SubmitInput{
		PlaceData: models.PlaceData{
			Name:    name,
			Address: req.GetString("address", ""),
		},
		UserInput: models.UserInput{
			SubmitterName: req.GetString("submitterName", ""),
			Category:      category,
			Cuisine:       models.MultiCuisine(tags...),
			Comments:      req.GetString("comments", ""),
		},
	})
	if err != nil {
		if errors.Is(err, apperr.ErrInvalid) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultError("submit failed: " + err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("submitted: %s (pending review)", sub.ID)), nil
}

func (s *Server) getSubmissionFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SubmissionFormatContract), nil
}

func (s *Server) readSubmissionFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     SubmissionFormatContract,
		},
	}, nil
}
