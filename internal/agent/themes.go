package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/patchworkhq/hearth/internal/store"
)

type themeSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// ThemesListTool handles the themes_list MCP tool.
type ThemesListTool struct {
	scope  Scope
	themes *store.ThemeStore
	rec    *Recorder
}

func NewThemesListTool(scope Scope, themes *store.ThemeStore, rec *Recorder) *ThemesListTool {
	return &ThemesListTool{scope: scope, themes: themes, rec: rec}
}

func (t *ThemesListTool) Definition() mcp.Tool {
	return mcp.NewTool("themes_list",
		mcp.WithDescription(
			"List the household's task themes (areas like Kitchen or Garden). "+
				"Returns id, name, icon, and color for each theme.",
		),
	)
}

func (t *ThemesListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	themes, err := t.themes.List(t.scope.HouseholdID)
	if err != nil {
		res := mcp.NewToolResultError(fmt.Sprintf("list themes: %v", err))
		t.rec.Record("themes_list", req, err.Error(), true)
		return res, nil
	}

	items := make([]themeSummary, 0, len(themes))
	for _, th := range themes {
		items = append(items, themeSummary{ID: th.ID, Name: th.Name, Icon: th.Icon, Color: th.Color})
	}

	res := listResult(len(items), items)
	t.rec.Record("themes_list", req, fmt.Sprintf("%d themes", len(items)), false)
	return res, nil
}

// ThemeCreateTool handles the theme_create MCP tool.
type ThemeCreateTool struct {
	scope  Scope
	themes *store.ThemeStore
	rec    *Recorder
}

func NewThemeCreateTool(scope Scope, themes *store.ThemeStore, rec *Recorder) *ThemeCreateTool {
	return &ThemeCreateTool{scope: scope, themes: themes, rec: rec}
}

func (t *ThemeCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("theme_create",
		mcp.WithDescription("Create a task theme in the household."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Theme name, e.g. \"Garden\""),
		),
		mcp.WithString("icon",
			mcp.Description("Optional emoji or icon name"),
		),
		mcp.WithString("color",
			mcp.Description("Optional hex color, e.g. \"#3B82F6\""),
		),
	)
}

func (t *ThemeCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(req.GetString("name", ""))
	if name == "" {
		res := writeFailure("'name' is required")
		t.rec.Record("theme_create", req, "missing name", true)
		return res, nil
	}

	theme, err := t.themes.Create(t.scope.HouseholdID, name,
		req.GetString("icon", ""), req.GetString("color", ""), 0)
	if err != nil {
		res := writeFailure(fmt.Sprintf("create theme: %v", err))
		t.rec.Record("theme_create", req, err.Error(), true)
		return res, nil
	}

	res := jsonResult(map[string]any{"success": true, "id": theme.ID, "name": theme.Name})
	t.rec.Record("theme_create", req, fmt.Sprintf("created theme %d %q", theme.ID, theme.Name), false)
	return res, nil
}
