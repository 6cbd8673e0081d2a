package agent

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/patchworkhq/hearth/internal/database"
	"github.com/patchworkhq/hearth/internal/model"
	"github.com/patchworkhq/hearth/internal/store"
)

type agentFixture struct {
	db      *sql.DB
	scope   Scope
	recipes *store.RecipeStore
	themes  *store.ThemeStore
	members *store.FamilyMemberStore
	convs   *store.ConversationStore
	rec     *Recorder
	convID  int64
}

func setupAgentTest(t *testing.T) *agentFixture {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hh, err := store.NewHouseholdStore(db).Create("Agent House")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}

	convs := store.NewConversationStore(db)
	conv, err := convs.Create(hh.ID, "assistant session", nil)
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}

	return &agentFixture{
		db:      db,
		scope:   Scope{HouseholdID: hh.ID},
		recipes: store.NewRecipeStore(db),
		themes:  store.NewThemeStore(db),
		members: store.NewFamilyMemberStore(db),
		convs:   convs,
		rec:     NewRecorder(convs, conv.ID, slog.Default()),
		convID:  conv.ID,
	}
}

func makeReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestRecipeCreateThenList(t *testing.T) {
	f := setupAgentTest(t)

	create := NewRecipeCreateTool(f.scope, f.recipes, f.rec)
	result, err := create.Handle(context.Background(), makeReq(map[string]any{
		"title":       "Lentil Soup",
		"ingredients": "1 cup lentils\n2 carrots",
		"steps":       "Chop carrots\nSimmer everything",
		"tags":        "dinner, vegetarian",
		"servings":    float64(4),
	}))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	var created struct {
		Success bool  `json:"success"`
		ID      int64 `json:"id"`
	}
	if err := json.Unmarshal([]byte(resultText(result)), &created); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !created.Success {
		t.Fatalf("create failed: %s", resultText(result))
	}

	recipe, err := f.recipes.GetByID(created.ID, f.scope.HouseholdID)
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if recipe.Source != model.SourceManual {
		t.Errorf("source = %q, want %q", recipe.Source, model.SourceManual)
	}
	if len(recipe.Ingredients) != 2 || len(recipe.Steps) != 2 {
		t.Fatalf("ingredients = %d, steps = %d, want 2 and 2", len(recipe.Ingredients), len(recipe.Steps))
	}
	if recipe.Steps[0].Body != "Chop carrots" || recipe.Steps[1].Body != "Simmer everything" {
		t.Errorf("steps out of order: %q, %q", recipe.Steps[0].Body, recipe.Steps[1].Body)
	}
	if recipe.Steps[0].Position != 0 || recipe.Steps[1].Position != 1 {
		t.Errorf("positions = %d, %d, want 0 and 1", recipe.Steps[0].Position, recipe.Steps[1].Position)
	}

	list := NewRecipesListTool(f.scope, f.recipes, f.rec)
	result, err = list.Handle(context.Background(), makeReq(nil))
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	var listed struct {
		Count int             `json:"count"`
		Items []recipeSummary `json:"items"`
	}
	if err := json.Unmarshal([]byte(resultText(result)), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if listed.Count != 1 || len(listed.Items) != 1 {
		t.Fatalf("count = %d, items = %d, want 1", listed.Count, len(listed.Items))
	}
	if listed.Items[0].Title != "Lentil Soup" {
		t.Errorf("title = %q", listed.Items[0].Title)
	}
}

func TestRecipesSearchScopedToHousehold(t *testing.T) {
	f := setupAgentTest(t)

	other, err := store.NewHouseholdStore(f.db).Create("Other House")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	if _, err := f.recipes.Create(other.ID, store.RecipeParams{Title: "Secret Curry"}); err != nil {
		t.Fatalf("create recipe: %v", err)
	}

	search := NewRecipesSearchTool(f.scope, f.recipes, f.rec)
	result, err := search.Handle(context.Background(), makeReq(map[string]any{"query": "curry"}))
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	var found struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(resultText(result)), &found); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if found.Count != 0 {
		t.Errorf("count = %d, want 0 for other household's recipe", found.Count)
	}
}

func TestRecipesSearchRequiresQuery(t *testing.T) {
	f := setupAgentTest(t)

	search := NewRecipesSearchTool(f.scope, f.recipes, f.rec)
	result, err := search.Handle(context.Background(), makeReq(map[string]any{"query": "  "}))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for empty query")
	}
}

func TestThemeCreateRequiresName(t *testing.T) {
	f := setupAgentTest(t)

	create := NewThemeCreateTool(f.scope, f.themes, f.rec)
	result, err := create.Handle(context.Background(), makeReq(map[string]any{"name": ""}))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal([]byte(resultText(result)), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success {
		t.Error("expected success=false")
	}
	if body.Error == "" {
		t.Error("expected an error message")
	}
}

func TestFamilyGetNotFound(t *testing.T) {
	f := setupAgentTest(t)

	get := NewFamilyGetTool(f.scope, f.members, f.rec)
	result, err := get.Handle(context.Background(), makeReq(map[string]any{"id": float64(9999)}))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if result.IsError {
		t.Fatal("absent member should not be a tool error")
	}
	if !strings.Contains(resultText(result), `"found":false`) {
		t.Errorf("expected found=false, got %s", resultText(result))
	}
}

func TestRecorderLogsInvocations(t *testing.T) {
	f := setupAgentTest(t)

	if _, err := f.members.Create(f.scope.HouseholdID, "Noor", "#FF0000", ""); err != nil {
		t.Fatalf("create member: %v", err)
	}

	list := NewFamilyListTool(f.scope, f.members, f.rec)
	if _, err := list.Handle(context.Background(), makeReq(nil)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	messages, err := f.convs.ListMessages(f.convID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(messages))
	}
	if messages[0].Role != "tool" || messages[0].Body != "family_list" {
		t.Errorf("message = %q %q, want tool family_list", messages[0].Role, messages[0].Body)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	f := setupAgentTest(t)

	list := NewFamilyListTool(f.scope, f.members, nil)
	if _, err := list.Handle(context.Background(), makeReq(nil)); err != nil {
		t.Fatalf("handle with nil recorder: %v", err)
	}
}
