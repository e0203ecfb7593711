package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/saigoneats/internal/catalog"
	"github.com/starford/saigoneats/internal/testutil"
	"github.com/starford/saigoneats/internal/venueservice"
)

func testServer(t *testing.T) (*Server, *venueservice.Service) {
	t.Helper()
	db := testutil.TestDB(t)
	src := testutil.TestCatalog(t, testutil.Catalog)
	store := catalog.New(catalog.WithLogger(testutil.QuietLogger()))
	svc := venueservice.NewService(store, db, src, venueservice.WithLogger(testutil.QuietLogger()))
	if _, err := svc.Resync(context.Background()); err != nil {
		t.Fatal(err)
	}
	return New(svc), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so handlers are
	// invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_venues":
		result, err = srv.searchVenues(ctx, req)
	case "get_venue":
		result, err = srv.getVenue(ctx, req)
	case "set_filters":
		result, err = srv.setFilters(ctx, req)
	case "reset_filters":
		result, err = srv.resetFilters(ctx, req)
	case "current_results":
		result, err = srv.currentResults(ctx, req)
	case "list_taxonomy":
		result, err = srv.listTaxonomy(ctx, req)
	case "suggest_venue":
		result, err = srv.suggestVenue(ctx, req)
	case "get_submission_format":
		result, err = srv.getSubmissionFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func decodeResults(t *testing.T, r *mcp.CallToolResult) resultsPayload {
	t.Helper()
	if r.IsError {
		t.Fatalf("tool error: %s", resultText(r))
	}
	var out resultsPayload
	if err := json.Unmarshal([]byte(resultText(r)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestSearchVenues(t *testing.T) {
	srv, _ := testServer(t)

	got := decodeResults(t, callTool(t, srv, "search_venues", map[string]interface{}{
		"district": "District 1",
		"sortBy":   "name",
	}))
	if got.Total != 2 || got.Venues[0].ID != "pizza-4ps" || got.Venues[1].ID != "workshop" {
		t.Errorf("results = %+v", got)
	}

	got = decodeResults(t, callTool(t, srv, "search_venues", map[string]interface{}{}))
	if got.Total != 3 {
		t.Errorf("unfiltered total = %d, want 3", got.Total)
	}
}

func TestSearchVenues_DoesNotTouchSession(t *testing.T) {
	srv, svc := testServer(t)
	_ = callTool(t, srv, "search_venues", map[string]interface{}{"type": "cafe"})

	sel, _ := svc.Results(context.Background())
	if !sel.IsZero() {
		t.Errorf("session selection changed: %+v", sel)
	}
}

func TestSessionFilters(t *testing.T) {
	srv, _ := testServer(t)

	got := decodeResults(t, callTool(t, srv, "set_filters", map[string]interface{}{"priceRange": "high"}))
	if got.Total != 1 || got.Venues[0].ID != "pizza-4ps" {
		t.Errorf("set_filters = %+v", got)
	}

	got = decodeResults(t, callTool(t, srv, "current_results", map[string]interface{}{}))
	if got.Selection.PriceRange != "high" || got.Total != 1 {
		t.Errorf("current_results = %+v", got)
	}

	got = decodeResults(t, callTool(t, srv, "reset_filters", map[string]interface{}{}))
	if got.Total != 3 {
		t.Errorf("reset total = %d, want 3", got.Total)
	}
}

func TestGetVenue(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "get_venue", map[string]interface{}{"id": "pho-hoa"})
	if r.IsError || !strings.Contains(resultText(r), `"name": "Phở Hòa Pasteur"`) {
		t.Errorf("get_venue = %q", resultText(r))
	}

	r = callTool(t, srv, "get_venue", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for missing venue")
	}

	r = callTool(t, srv, "get_venue", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error for missing id argument")
	}
}

func TestListTaxonomy(t *testing.T) {
	srv, _ := testServer(t)
	text := resultText(callTool(t, srv, "list_taxonomy", map[string]interface{}{}))
	for _, want := range []string{`"coffee shop"`, `"Thu Duc"`, `"priceRange"`} {
		if !strings.Contains(text, want) {
			t.Errorf("taxonomy missing %s", want)
		}
	}
}

func TestSuggestVenue(t *testing.T) {
	srv, svc := testServer(t)

	r := callTool(t, srv, "suggest_venue", map[string]interface{}{
		"name":     "Cafe B",
		"category": "cafe",
		"cuisines": "coffee, vietnamese",
		"address":  "5 Y St, District 3",
	})
	if r.IsError || !strings.HasPrefix(resultText(r), "submitted: ") {
		t.Fatalf("suggest = %q", resultText(r))
	}

	subs, err := svc.ListSubmissions(context.Background(), venueservice.ListOptions{})
	if err != nil || len(subs) != 1 {
		t.Fatalf("submissions = %v, %v", subs, err)
	}
	if tags := subs[0].UserInput.Cuisine.Tags(); len(tags) != 2 || tags[1] != "vietnamese" {
		t.Errorf("tags = %v", tags)
	}

	r = callTool(t, srv, "suggest_venue", map[string]interface{}{"name": "X", "category": "spaceport"})
	if !r.IsError {
		t.Error("expected error for unknown category")
	}
}

func TestSubmissionFormat(t *testing.T) {
	srv, _ := testServer(t)
	text := resultText(callTool(t, srv, "get_submission_format", map[string]interface{}{}))
	if !strings.Contains(text, "placeData") || !strings.Contains(text, "userInput") {
		t.Errorf("format = %q", text)
	}

	contents, err := srv.readSubmissionFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil || len(contents) != 1 {
		t.Fatalf("resource = %v, %v", contents, err)
	}
	if tc, ok := contents[0].(mcp.TextResourceContents); !ok || tc.URI != formatURI {
		t.Errorf("resource contents = %+v", contents[0])
	}
}
