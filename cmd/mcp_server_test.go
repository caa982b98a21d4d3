package cmd

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/weizlogy/desktop-grouping/internal/config"
	"github.com/weizlogy/desktop-grouping/internal/logging"
	"github.com/weizlogy/desktop-grouping/internal/output"
	"github.com/weizlogy/desktop-grouping/internal/store"
)

func newTestMCPServer(t *testing.T) *mcpServer {
	t.Helper()
	dir := t.TempDir()
	gw, err := store.NewGateway(dir, logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return newMCPServer(&env{
		cfg:     config.Default(dir),
		log:     logging.NewNop(),
		gateway: gw,
	})
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type %T, want TextContent", res.Content[0])
	}
	return text.Text
}

func createGroup(t *testing.T, s *mcpServer, paths []any) output.GroupDetail {
	t.Helper()
	res, err := s.handleGroupCreate(context.Background(), callRequest(map[string]any{"paths": paths}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("group_create: %s", resultText(t, res))
	}
	var detail output.GroupDetail
	if err := json.Unmarshal([]byte(resultText(t, res)), &detail); err != nil {
		t.Fatal(err)
	}
	return detail
}

func TestMCP_CreateListDelete(t *testing.T) {
	s := newTestMCPServer(t)

	detail := createGroup(t, s, []any{"C:/tools/app.exe"})
	if len(detail.Identity) != 17 {
		t.Fatalf("identity %q, want 17 digits", detail.Identity)
	}
	if len(detail.Items) != 1 || detail.Items[0].DisplayName != "app" {
		t.Fatalf("items = %+v", detail.Items)
	}

	res, err := s.handleGroupsList(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatal(err)
	}
	var summaries []output.GroupSummary
	if err := json.Unmarshal([]byte(resultText(t, res)), &summaries); err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 || summaries[0].Identity != detail.Identity || summaries[0].Items != 1 {
		t.Fatalf("summaries = %+v", summaries)
	}

	res, err = s.handleGroupDelete(context.Background(), callRequest(map[string]any{"identity": detail.Identity}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("group_delete: %s", resultText(t, res))
	}

	res, err = s.handleGroupsList(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatal(err)
	}
	summaries = nil
	if err := json.Unmarshal([]byte(resultText(t, res)), &summaries); err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 0 {
		t.Fatalf("summaries after delete = %+v", summaries)
	}
}

func TestMCP_ItemsAddAndRemove(t *testing.T) {
	s := newTestMCPServer(t)
	detail := createGroup(t, s, nil)

	res, err := s.handleGroupItemsAdd(context.Background(), callRequest(map[string]any{
		"identity": detail.Identity,
		"paths":    []any{"C:/a.txt", "C:/b.txt"},
	}))
	if err != nil {
		t.Fatal(err)
	}
	var after output.GroupDetail
	if err := json.Unmarshal([]byte(resultText(t, res)), &after); err != nil {
		t.Fatal(err)
	}
	if len(after.Items) != 2 {
		t.Fatalf("items = %+v", after.Items)
	}

	res, err = s.handleGroupItemRemove(context.Background(), callRequest(map[string]any{
		"identity": detail.Identity,
		"index":    0,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &after); err != nil {
		t.Fatal(err)
	}
	if len(after.Items) != 1 || after.Items[0].SourcePath != "C:/b.txt" {
		t.Fatalf("items = %+v", after.Items)
	}

	// Out-of-range removal is a no-op, not an error.
	res, err = s.handleGroupItemRemove(context.Background(), callRequest(map[string]any{
		"identity": detail.Identity,
		"index":    9,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("out-of-range remove: %s", resultText(t, res))
	}
}

func TestMCP_MoveAndStyle(t *testing.T) {
	s := newTestMCPServer(t)
	detail := createGroup(t, s, nil)

	res, err := s.handleGroupMove(context.Background(), callRequest(map[string]any{
		"identity": detail.Identity,
		"top":      100.0, "left": 30.0, "width": 300.0, "height": 200.0,
	}))
	if err != nil {
		t.Fatal(err)
	}
	var after output.GroupDetail
	if err := json.Unmarshal([]byte(resultText(t, res)), &after); err != nil {
		t.Fatal(err)
	}
	if after.Geometry == nil || after.Geometry.Top != 100 {
		t.Fatalf("geometry = %+v", after.Geometry)
	}

	res, err = s.handleGroupStyle(context.Background(), callRequest(map[string]any{
		"identity":   detail.Identity,
		"background": "#80336699",
		"opacity":    0.8,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &after); err != nil {
		t.Fatal(err)
	}
	if after.BackgroundColor != "#80336699" || after.Opacity != 0.8 {
		t.Fatalf("style = %q / %v", after.BackgroundColor, after.Opacity)
	}

	res, err = s.handleGroupStyle(context.Background(), callRequest(map[string]any{
		"identity":   detail.Identity,
		"background": "not-a-color",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("bad color should yield a tool error")
	}
}

func TestMCP_ShowMissingGroup(t *testing.T) {
	s := newTestMCPServer(t)

	res, err := s.handleGroupShow(context.Background(), callRequest(map[string]any{"identity": "nope"}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("missing group should yield a tool error")
	}
	if !strings.Contains(resultText(t, res), "not found") {
		t.Fatalf("error text = %q", resultText(t, res))
	}
}
