package agent

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/patchworkhq/hearth/internal/store"
)

type memberSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	AvatarEmoji string `json:"avatar_emoji"`
}

// FamilyListTool handles the family_list MCP tool.
type FamilyListTool struct {
	scope   Scope
	members *store.FamilyMemberStore
	rec     *Recorder
}

func NewFamilyListTool(scope Scope, members *store.FamilyMemberStore, rec *Recorder) *FamilyListTool {
	return &FamilyListTool{scope: scope, members: members, rec: rec}
}

func (t *FamilyListTool) Definition() mcp.Tool {
	return mcp.NewTool("family_list",
		mcp.WithDescription(
			"List the household's family members. Use the returned ids when "+
				"assigning tasks or looking up a member.",
		),
	)
}

func (t *FamilyListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	members, err := t.members.List(t.scope.HouseholdID)
	if err != nil {
		res := mcp.NewToolResultError(fmt.Sprintf("list family members: %v", err))
		t.rec.Record("family_list", req, err.Error(), true)
		return res, nil
	}

	items := make([]memberSummary, 0, len(members))
	for _, m := range members {
		items = append(items, memberSummary{ID: m.ID, Name: m.Name, Color: m.Color, AvatarEmoji: m.AvatarEmoji})
	}

	res := listResult(len(items), items)
	t.rec.Record("family_list", req, fmt.Sprintf("%d members", len(items)), false)
	return res, nil
}

// FamilyGetTool handles the family_get MCP tool.
type FamilyGetTool struct {
	scope   Scope
	members *store.FamilyMemberStore
	rec     *Recorder
}

func NewFamilyGetTool(scope Scope, members *store.FamilyMemberStore, rec *Recorder) *FamilyGetTool {
	return &FamilyGetTool{scope: scope, members: members, rec: rec}
}

func (t *FamilyGetTool) Definition() mcp.Tool {
	return mcp.NewTool("family_get",
		mcp.WithDescription("Get one family member by id."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Family member id from family_list"),
		),
	)
}

func (t *FamilyGetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := intArg(req, "id", 0)
	if id <= 0 {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	member, err := t.members.GetByID(int64(id), t.scope.HouseholdID)
	if err != nil {
		res := mcp.NewToolResultError(fmt.Sprintf("get family member: %v", err))
		t.rec.Record("family_get", req, err.Error(), true)
		return res, nil
	}
	if member == nil {
		res := jsonResult(map[string]any{"found": false})
		t.rec.Record("family_get", req, fmt.Sprintf("member %d not found", id), false)
		return res, nil
	}

	res := jsonResult(map[string]any{
		"found": true,
		"item":  memberSummary{ID: member.ID, Name: member.Name, Color: member.Color, AvatarEmoji: member.AvatarEmoji},
	})
	t.rec.Record("family_get", req, fmt.Sprintf("member %d %q", member.ID, member.Name), false)
	return res, nil
}
