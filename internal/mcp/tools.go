package mcp

import "github.com/mark3labs/mcp-go/mcp"

var calculateToolDef = mcp.NewTool("numerology_calculate",
	mcp.WithDescription("Calculate the numerology number of a vehicle registration, "+
		"with the full breakdown, reduction steps and interpretation. Successful lookups are added to history. "+
		"When no interpretation exists (e.g. \"000\") the NOT_FOUND error also carries the calculation."),
	mcp.WithString("input",
		mcp.Required(),
		mcp.Description("Vehicle number, e.g. \"KA 01 AB 1234\". Spaces and punctuation are ignored."),
	),
)

var interpretToolDef = mcp.NewTool("numerology_interpret",
	mcp.WithDescription("Get the interpretation record for a single-digit numerology number (1-9)."),
	mcp.WithNumber("number",
		mcp.Required(),
		mcp.Description("Numerology number, 1-9"),
	),
)

var historyListToolDef = mcp.NewTool("history_list",
	mcp.WithDescription("List recent lookups, oldest first. Entries older than the retention window are removed."),
)

var historyDeleteToolDef = mcp.NewTool("history_delete",
	mcp.WithDescription("Delete one history entry by its index from the most recent history_list result."),
	mcp.WithNumber("index",
		mcp.Required(),
		mcp.Description("Zero-based index from history_list"),
	),
)

var historyClearToolDef = mcp.NewTool("history_clear",
	mcp.WithDescription("Delete all history entries."),
)

var historyRerunToolDef = mcp.NewTool("history_rerun",
	mcp.WithDescription("Calculate again for the vehicle number stored at a history index."),
	mcp.WithNumber("index",
		mcp.Required(),
		mcp.Description("Zero-based index from history_list"),
	),
)
