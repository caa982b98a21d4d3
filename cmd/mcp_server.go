package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/weizlogy/desktop-grouping/internal/group"
	"github.com/weizlogy/desktop-grouping/internal/output"
)

// mcpServer exposes the gateway operations as MCP tools. Tool calls can
// arrive concurrently; the mutex serializes load-modify-save cycles so two
// edits of the same group cannot lose each other's changes.
type mcpServer struct {
	env *env
	mu  sync.Mutex
	mcp *mcpserver.MCPServer
}

// MCPConfig holds MCP server configuration.
type MCPConfig struct {
	Transport string
	Port      int
}

func newMCPServer(e *env) *mcpServer {
	s := &mcpServer{env: e}
	s.mcp = mcpserver.NewMCPServer(
		"desktop-grouping",
		"1.0.0",
	)
	s.registerTools()
	return s
}

// serve starts the MCP server with the configured transport.
func (s *mcpServer) serve(cfg MCPConfig) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *mcpServer) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("groups_list",
			mcp.WithDescription("List every persisted group with its identity and item count"),
		),
		s.handleGroupsList,
	)

	s.mcp.AddTool(
		mcp.NewTool("group_show",
			mcp.WithDescription("Show one group's items, geometry, colors, and opacity"),
			mcp.WithString("identity", mcp.Required(), mcp.Description("Group identity (17-digit timestamp)")),
		),
		s.handleGroupShow,
	)

	s.mcp.AddTool(
		mcp.NewTool("group_create",
			mcp.WithDescription("Create a new group, optionally seeded with file paths"),
			mcp.WithArray("paths", mcp.Description("File paths to add as initial items")),
		),
		s.handleGroupCreate,
	)

	s.mcp.AddTool(
		mcp.NewTool("group_items_add",
			mcp.WithDescription("Append items to an existing group"),
			mcp.WithString("identity", mcp.Required(), mcp.Description("Group identity")),
			mcp.WithArray("paths", mcp.Required(), mcp.Description("File paths to add")),
		),
		s.handleGroupItemsAdd,
	)

	s.mcp.AddTool(
		mcp.NewTool("group_item_remove",
			mcp.WithDescription("Remove one item from a group by index"),
			mcp.WithString("identity", mcp.Required(), mcp.Description("Group identity")),
			mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based item index")),
		),
		s.handleGroupItemRemove,
	)

	s.mcp.AddTool(
		mcp.NewTool("group_move",
			mcp.WithDescription("Set a group's desktop-relative geometry"),
			mcp.WithString("identity", mcp.Required(), mcp.Description("Group identity")),
			mcp.WithNumber("top", mcp.Required(), mcp.Description("Top edge")),
			mcp.WithNumber("left", mcp.Required(), mcp.Description("Left edge")),
			mcp.WithNumber("width", mcp.Required(), mcp.Description("Width")),
			mcp.WithNumber("height", mcp.Required(), mcp.Description("Height")),
		),
		s.handleGroupMove,
	)

	s.mcp.AddTool(
		mcp.NewTool("group_style",
			mcp.WithDescription("Change a group's background, border, or opacity"),
			mcp.WithString("identity", mcp.Required(), mcp.Description("Group identity")),
			mcp.WithString("background", mcp.Description("Background color (#AARRGGBB or #RRGGBB)")),
			mcp.WithString("border", mcp.Description("Border color (#AARRGGBB or #RRGGBB)")),
			mcp.WithNumber("opacity", mcp.Description("Resting opacity 0.0-1.0 (-1 to leave unchanged)")),
		),
		s.handleGroupStyle,
	)

	s.mcp.AddTool(
		mcp.NewTool("group_delete",
			mcp.WithDescription("Delete a group's persisted file"),
			mcp.WithString("identity", mcp.Required(), mcp.Description("Group identity")),
		),
		s.handleGroupDelete,
	)
}

func (s *mcpServer) handleGroupsList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	identities, err := s.env.gateway.List()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	summaries := make([]output.GroupSummary, 0, len(identities))
	for _, id := range identities {
		sum := output.GroupSummary{Identity: id}
		if g, found, err := s.env.gateway.Load(id); err == nil && found {
			sum.Items = len(g.Items)
		}
		summaries = append(summaries, sum)
	}
	return jsonResult(summaries)
}

func (s *mcpServer) handleGroupShow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identity, err := request.RequireString("identity")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.load(identity)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(output.Detail(g))
}

func (s *mcpServer) handleGroupCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	paths := request.GetStringSlice("paths", nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	g := group.New(group.NewIdentity())
	applyDefaults(g, s.env.cfg.Defaults, s.env.log)
	for _, p := range paths {
		g.AddItem(group.NewItem(p))
	}
	s.env.gateway.Save(g)
	s.env.gateway.Sync()
	return jsonResult(output.Detail(g))
}

func (s *mcpServer) handleGroupItemsAdd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identity, err := request.RequireString("identity")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	paths := request.GetStringSlice("paths", nil)
	if len(paths) == 0 {
		return mcp.NewToolResultError("paths must not be empty"), nil
	}
	return s.mutate(identity, func(g *group.Group) bool {
		changed := false
		for _, p := range paths {
			if g.AddItem(group.NewItem(p)) {
				changed = true
			}
		}
		return changed
	})
}

func (s *mcpServer) handleGroupItemRemove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identity, err := request.RequireString("identity")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	index, err := request.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.mutate(identity, func(g *group.Group) bool {
		return g.RemoveItem(index)
	})
}

func (s *mcpServer) handleGroupMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identity, err := request.RequireString("identity")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	geo := group.Geometry{
		Top:    request.GetFloat("top", group.GeometryUnset),
		Left:   request.GetFloat("left", group.GeometryUnset),
		Width:  request.GetFloat("width", group.GeometryUnset),
		Height: request.GetFloat("height", group.GeometryUnset),
	}
	return s.mutate(identity, func(g *group.Group) bool {
		return g.SetGeometry(geo)
	})
}

func (s *mcpServer) handleGroupStyle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identity, err := request.RequireString("identity")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var background, border *group.Color
	if v := request.GetString("background", ""); v != "" {
		c, err := group.ParseColor(v)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("background: %v", err)), nil
		}
		background = &c
	}
	if v := request.GetString("border", ""); v != "" {
		c, err := group.ParseColor(v)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("border: %v", err)), nil
		}
		border = &c
	}
	opacity := request.GetFloat("opacity", -1)

	return s.mutate(identity, func(g *group.Group) bool {
		changed := false
		if background != nil && g.SetBackground(*background) {
			changed = true
		}
		if border != nil && g.SetBorder(*border) {
			changed = true
		}
		if opacity >= 0 && g.SetOpacity(opacity) {
			changed = true
		}
		return changed
	})
}

func (s *mcpServer) handleGroupDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identity, err := request.RequireString("identity")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.env.gateway.Delete(identity); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted %s", identity)), nil
}

// mutate runs one load-modify-save cycle and returns the group's new state.
// Mutations that change nothing skip the write, same as the live windows.
func (s *mcpServer) mutate(identity string, fn func(*group.Group) bool) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.load(identity)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if fn(g) {
		s.env.gateway.Save(g)
		s.env.gateway.Sync()
	}
	return jsonResult(output.Detail(g))
}

func (s *mcpServer) load(identity string) (*group.Group, error) {
	g, found, err := s.env.gateway.Load(identity)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("group not found: %s", identity)
	}
	return g, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
