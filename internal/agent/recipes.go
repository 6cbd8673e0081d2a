package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/patchworkhq/hearth/internal/model"
	"github.com/patchworkhq/hearth/internal/store"
)

// recipeSummary carries identifying fields only. Full recipe bodies stay
// in the app; the assistant gets enough to refer to a recipe by id.
type recipeSummary struct {
	ID      int64    `json:"id"`
	Title   string   `json:"title"`
	Source  string   `json:"source"`
	Tags    []string `json:"tags"`
}

func summarizeRecipes(recipes []model.Recipe) []recipeSummary {
	items := make([]recipeSummary, 0, len(recipes))
	for _, r := range recipes {
		tags := r.Tags
		if tags == nil {
			tags = []string{}
		}
		items = append(items, recipeSummary{ID: r.ID, Title: r.Title, Source: r.Source, Tags: tags})
	}
	return items
}

// RecipesListTool handles the recipes_list MCP tool.
type RecipesListTool struct {
	scope   Scope
	recipes *store.RecipeStore
	rec     *Recorder
}

func NewRecipesListTool(scope Scope, recipes *store.RecipeStore, rec *Recorder) *RecipesListTool {
	return &RecipesListTool{scope: scope, recipes: recipes, rec: rec}
}

func (t *RecipesListTool) Definition() mcp.Tool {
	return mcp.NewTool("recipes_list",
		mcp.WithDescription(
			"List the household's recipes. Returns id, title, source, and tags "+
				"for each recipe so you can reference them in conversation.",
		),
	)
}

func (t *RecipesListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recipes, err := t.recipes.List(t.scope.HouseholdID)
	if err != nil {
		res := mcp.NewToolResultError(fmt.Sprintf("list recipes: %v", err))
		t.rec.Record("recipes_list", req, err.Error(), true)
		return res, nil
	}

	res := listResult(len(recipes), summarizeRecipes(recipes))
	t.rec.Record("recipes_list", req, fmt.Sprintf("%d recipes", len(recipes)), false)
	return res, nil
}

// RecipesSearchTool handles the recipes_search MCP tool.
type RecipesSearchTool struct {
	scope   Scope
	recipes *store.RecipeStore
	rec     *Recorder
}

func NewRecipesSearchTool(scope Scope, recipes *store.RecipeStore, rec *Recorder) *RecipesSearchTool {
	return &RecipesSearchTool{scope: scope, recipes: recipes, rec: rec}
}

func (t *RecipesSearchTool) Definition() mcp.Tool {
	return mcp.NewTool("recipes_search",
		mcp.WithDescription(
			"Search the household's recipes by title or tag. "+
				"An empty result is normal, not an error.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search text matched against recipe titles and tags"),
		),
	)
}

func (t *RecipesSearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("query", ""))
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}

	recipes, err := t.recipes.Search(t.scope.HouseholdID, query)
	if err != nil {
		res := mcp.NewToolResultError(fmt.Sprintf("search recipes: %v", err))
		t.rec.Record("recipes_search", req, err.Error(), true)
		return res, nil
	}

	res := listResult(len(recipes), summarizeRecipes(recipes))
	t.rec.Record("recipes_search", req, fmt.Sprintf("%d recipes for %q", len(recipes), query), false)
	return res, nil
}

// RecipeCreateTool handles the recipe_create MCP tool.
type RecipeCreateTool struct {
	scope   Scope
	recipes *store.RecipeStore
	rec     *Recorder
}

func NewRecipeCreateTool(scope Scope, recipes *store.RecipeStore, rec *Recorder) *RecipeCreateTool {
	return &RecipeCreateTool{scope: scope, recipes: recipes, rec: rec}
}

func (t *RecipeCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("recipe_create",
		mcp.WithDescription(
			"Create a recipe in the household. Only title is required. "+
				"Ingredients and steps are newline-separated lines, tags are comma-separated.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Recipe title"),
		),
		mcp.WithString("ingredients",
			mcp.Description("One ingredient per line, e.g. \"2 cups flour\""),
		),
		mcp.WithString("steps",
			mcp.Description("One step per line, in order"),
		),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tags, e.g. \"dinner, vegetarian\""),
		),
		mcp.WithNumber("servings",
			mcp.Description("Number of servings"),
		),
	)
}

func (t *RecipeCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := strings.TrimSpace(req.GetString("title", ""))
	if title == "" {
		res := writeFailure("'title' is required")
		t.rec.Record("recipe_create", req, "missing title", true)
		return res, nil
	}

	params := store.RecipeParams{
		Title:       title,
		Servings:    intArg(req, "servings", 0),
		Ingredients: parseIngredients(req.GetString("ingredients", "")),
		Steps:       parseSteps(req.GetString("steps", "")),
		Tags:        splitList(req.GetString("tags", ""), ","),
	}

	recipe, err := t.recipes.Create(t.scope.HouseholdID, params)
	if err != nil {
		res := writeFailure(fmt.Sprintf("create recipe: %v", err))
		t.rec.Record("recipe_create", req, err.Error(), true)
		return res, nil
	}

	res := jsonResult(map[string]any{"success": true, "id": recipe.ID, "title": recipe.Title})
	t.rec.Record("recipe_create", req, fmt.Sprintf("created recipe %d %q", recipe.ID, recipe.Title), false)
	return res, nil
}

func parseIngredients(raw string) []model.RecipeIngredient {
	lines := splitList(raw, "\n")
	ingredients := make([]model.RecipeIngredient, 0, len(lines))
	for _, line := range lines {
		ingredients = append(ingredients, model.RecipeIngredient{Name: line})
	}
	return ingredients
}

// parseSteps keeps only the bodies; the store assigns positions from
// insertion order.
func parseSteps(raw string) []model.RecipeStep {
	lines := splitList(raw, "\n")
	steps := make([]model.RecipeStep, 0, len(lines))
	for _, line := range lines {
		steps = append(steps, model.RecipeStep{Body: line})
	}
	return steps
}

// splitList splits on sep, trims each part, and drops empties.
func splitList(raw, sep string) []string {
	var out []string
	for _, part := range strings.Split(raw, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// intArg extracts an integer argument, returning defaultVal when the key
// is missing or not a number (JSON numbers arrive as float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}
