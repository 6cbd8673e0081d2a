// hearth-agent exposes one household's data to an AI assistant over MCP
// (stdio transport). It opens the same database as the main server and
// binds every tool to the household named in the environment, so a
// connected assistant can only see and touch that household.
//
// Configuration:
//
//	HEARTH_DB_PATH       path to the sqlite database (default hearth.db)
//	HEARTH_HOUSEHOLD_ID  household the assistant acts for (required)
//	HEARTH_LOG_LEVEL     debug, info, warn, error
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mark3labs/mcp-go/server"

	"github.com/patchworkhq/hearth/internal/agent"
	"github.com/patchworkhq/hearth/internal/database"
	"github.com/patchworkhq/hearth/internal/logging"
	"github.com/patchworkhq/hearth/internal/store"
)

const version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Logs go to stderr so they never interfere with MCP's stdio
	// transport on stdout.
	logger := logging.Setup(os.Getenv("HEARTH_LOG_LEVEL"))

	dbPath := os.Getenv("HEARTH_DB_PATH")
	if dbPath == "" {
		dbPath = "hearth.db"
	}

	householdID, err := strconv.ParseInt(os.Getenv("HEARTH_HOUSEHOLD_ID"), 10, 64)
	if err != nil || householdID <= 0 {
		return fmt.Errorf("HEARTH_HOUSEHOLD_ID must be a positive integer")
	}

	db, err := database.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	households := store.NewHouseholdStore(db)
	hh, err := households.GetByID(householdID)
	if err != nil {
		return fmt.Errorf("look up household: %w", err)
	}
	if hh == nil {
		return fmt.Errorf("household %d not found", householdID)
	}

	scope := agent.Scope{HouseholdID: hh.ID}

	// Every session gets its own conversation so the household can
	// review what the assistant did.
	convs := store.NewConversationStore(db)
	conv, err := convs.Create(hh.ID, "assistant session", nil)
	if err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}
	recorder := agent.NewRecorder(convs, conv.ID, logger.With("component", "agent"))

	recipes := store.NewRecipeStore(db)
	themes := store.NewThemeStore(db)
	members := store.NewFamilyMemberStore(db)

	s := server.NewMCPServer(
		"hearth-agent",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	recipesList := agent.NewRecipesListTool(scope, recipes, recorder)
	s.AddTool(recipesList.Definition(), recipesList.Handle)

	recipesSearch := agent.NewRecipesSearchTool(scope, recipes, recorder)
	s.AddTool(recipesSearch.Definition(), recipesSearch.Handle)

	recipeCreate := agent.NewRecipeCreateTool(scope, recipes, recorder)
	s.AddTool(recipeCreate.Definition(), recipeCreate.Handle)

	themesList := agent.NewThemesListTool(scope, themes, recorder)
	s.AddTool(themesList.Definition(), themesList.Handle)

	themeCreate := agent.NewThemeCreateTool(scope, themes, recorder)
	s.AddTool(themeCreate.Definition(), themeCreate.Handle)

	familyList := agent.NewFamilyListTool(scope, members, recorder)
	s.AddTool(familyList.Definition(), familyList.Handle)

	familyGet := agent.NewFamilyGetTool(scope, members, recorder)
	s.AddTool(familyGet.Definition(), familyGet.Handle)

	logger.Info("agent serving", "household", hh.ID, "conversation", conv.ID)
	return server.ServeStdio(s)
}
