package calendar_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/notariadigital/escribano/internal/auth"
	"github.com/notariadigital/escribano/internal/calendar"
	"github.com/notariadigital/escribano/internal/instrumentation"
	"github.com/notariadigital/escribano/internal/server"
	"github.com/notariadigital/escribano/internal/tools/common"
)

// defaultWindowDays is how far ahead the listing looks when the caller does
// not say.
const defaultWindowDays = 7

// RegisterCalendarTools registers the calendar tools with the MCP server.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listTool := mcp.NewTool("calendar_list_events",
		mcp.WithDescription("List upcoming events from the user's Google Calendar, ordered by start time. Useful for answering questions like 'what appointments do I have this week?'"),
		mcp.WithNumber("days",
			mcp.Description("How many days ahead to look (default 7)"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of events to return (default 20)"),
		),
		mcp.WithString("calendar_id",
			mcp.Description("Calendar to read (default 'primary')"),
		),
		mcp.WithString("user_email",
			mcp.Description("Email of the user whose calendar to read. Optional when the session already knows the user."),
		),
	)

	s.AddTool(listTool, common.InstrumentedToolHandlerWithService(
		"calendar_list_events", instrumentation.ServiceCalendar, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEvents(ctx, request, sc)
		}))

	return nil
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	state := common.SessionForRequest(ctx, sc)
	state.Touch()

	if email := common.ResolveUserEmail(ctx, args, state); email == "" {
		return mcp.NewToolResultError("user_email is required: no user identity is bound to this session"), nil
	}

	cred, pending, err := common.ObtainCredential(ctx, sc, state, args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load credentials: %v", err)), nil
	}
	if pending != nil {
		return pending, nil
	}

	client, err := calendar.NewClient(ctx, cred)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Calendar client: %v", err)), nil
	}

	days := defaultWindowDays
	if v, ok := args["days"].(float64); ok && v > 0 {
		days = int(v)
	}
	maxResults := 20
	if v, ok := args["max_results"].(float64); ok && v > 0 {
		maxResults = int(v)
	}
	calendarID, _ := args["calendar_id"].(string)

	events, err := client.ListUpcomingEvents(ctx, calendarID, time.Duration(days)*24*time.Hour, maxResults)
	if err != nil {
		if auth.IsAuthError(err) {
			sc.Auth().Clear(state)
			return mcp.NewToolResultError("La autorización de Google ya no es válida. Vuelva a autorizar su cuenta e intente de nuevo."), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list events: %v", err)), nil
	}

	if len(events) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No hay eventos en los próximos %d días.", days)), nil
	}

	payload, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize events: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}
