package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the Riskscreen MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

var ToolScreenSubject = mcp.NewTool("screen_subject",
	mcp.WithDescription(
		"Run a risk screening on a person, company, or wallet address. "+
			"Queries sanctions lists, PEP registries, adverse media, chain analytics, and payment "+
			"dispute history concurrently, and returns a 0-100 composite risk score with level, "+
			"case priority, and recommended compliance actions."),
	mcp.WithString("kind",
		mcp.Required(),
		mcp.Description("Subject kind: 'INDIVIDUAL', 'ENTITY', or 'WALLET'"),
		mcp.Enum("INDIVIDUAL", "ENTITY", "WALLET")),
	mcp.WithString("name",
		mcp.Description("Full legal name for INDIVIDUAL or ENTITY subjects")),
	mcp.WithString("wallet_address",
		mcp.Description("0x-prefixed chain address for WALLET subjects")),
	mcp.WithString("sources",
		mcp.Description("Comma-separated source names to restrict the screening to (e.g. 'sanctions,pep'). Omit to query all registered sources.")),
)

var ToolScreenTransactions = mcp.NewTool("screen_transactions",
	mcp.WithDescription(
		"Run detection rules over a batch of transaction records for one account. "+
			"Detects structuring, pass-through layering, velocity spikes, funnel/fan-out networks, "+
			"high-risk jurisdictions, tainted chain counterparties, and dormancy bursts, and returns "+
			"alerts plus a composite risk assessment. Records may use common field aliases "+
			"(amount/value, date/timestamp, payee/counterparty)."),
	mcp.WithString("kind",
		mcp.Required(),
		mcp.Description("Subject kind: 'INDIVIDUAL' or 'ENTITY'"),
		mcp.Enum("INDIVIDUAL", "ENTITY")),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Account holder's name")),
	mcp.WithArray("transactions",
		mcp.Required(),
		mcp.Description("Transaction records as JSON objects, e.g. [{\"amount\": 9500, \"date\": \"2025-03-01\", \"counterparty\": \"Acme\"}]")),
	mcp.WithString("categories",
		mcp.Description("Comma-separated risk categories to restrict the rules to (e.g. 'STRUCTURING,VELOCITY'). Omit to run all rules.")),
)

var ToolGetScreening = mcp.NewTool("get_screening",
	mcp.WithDescription(
		"Fetch a previously completed screening by its ID (scr_...). "+
			"Returns the stored assessment, findings, alerts, and per-source outcomes."),
	mcp.WithString("screening_id",
		mcp.Required(),
		mcp.Description("The screening ID from a previous screen_subject or screen_transactions result")),
)

var ToolListScreenings = mcp.NewTool("list_screenings",
	mcp.WithDescription(
		"List recent screenings, most recent first. "+
			"Filter by risk level or restrict to screenings flagged for a Suspicious Activity Report."),
	mcp.WithString("level",
		mcp.Description("Filter by risk level"),
		mcp.Enum("LOW", "MEDIUM", "HIGH", "CRITICAL")),
	mcp.WithBoolean("sar_only",
		mcp.Description("Only return screenings flagged for a SAR filing")),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of screenings to return (default 20)")),
)

var ToolListSources = mcp.NewTool("list_sources",
	mcp.WithDescription(
		"List the registered external signal sources with their timeout budgets and "+
			"circuit breaker state. Use this to see which sources a screening will query "+
			"and whether any are currently degraded."),
)

var ToolListRules = mcp.NewTool("list_rules",
	mcp.WithDescription(
		"List the detection rule IDs available for transaction screening."),
)
