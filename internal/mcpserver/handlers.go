package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers holds the handler functions for each MCP tool.
type Handlers struct {
	client *RiskscreenClient
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client *RiskscreenClient) *Handlers {
	return &Handlers{client: client}
}

// HandleScreenSubject runs a subject screening.
func (h *Handlers) HandleScreenSubject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := req.GetString("kind", "")
	if kind == "" {
		return mcp.NewToolResultError("kind is required"), nil
	}
	name := req.GetString("name", "")
	wallet := req.GetString("wallet_address", "")
	if name == "" && wallet == "" {
		return mcp.NewToolResultError("one of name or wallet_address is required"), nil
	}
	sources := splitList(req.GetString("sources", ""))

	raw, err := h.client.ScreenSubject(ctx, kind, name, wallet, sources)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Screening failed: %v", err)), nil
	}

	text, err := formatScreening(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse screening: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// HandleScreenTransactions runs the detection rules over a transaction batch.
func (h *Handlers) HandleScreenTransactions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := req.GetString("kind", "")
	if kind == "" {
		return mcp.NewToolResultError("kind is required"), nil
	}
	name := req.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	rawTxs := req.GetArguments()["transactions"]
	items, ok := rawTxs.([]any)
	if !ok || len(items) == 0 {
		return mcp.NewToolResultError("transactions must be a non-empty array of records"), nil
	}
	records := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			records = append(records, m)
		}
	}
	if len(records) == 0 {
		return mcp.NewToolResultError("transactions must contain JSON objects"), nil
	}
	categories := splitList(req.GetString("categories", ""))

	raw, err := h.client.ScreenTransactions(ctx, kind, name, records, categories)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Screening failed: %v", err)), nil
	}

	text, err := formatScreening(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse screening: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// HandleGetScreening fetches a stored screening record.
func (h *Handlers) HandleGetScreening(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("screening_id", "")
	if id == "" {
		return mcp.NewToolResultError("screening_id is required"), nil
	}

	raw, err := h.client.GetScreening(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get screening: %v", err)), nil
	}

	text, err := formatScreening(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse screening: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// HandleListScreenings lists recent screenings.
func (h *Handlers) HandleListScreenings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	level := req.GetString("level", "")
	sarOnly := req.GetBool("sar_only", false)
	limit := req.GetInt("limit", 20)

	raw, err := h.client.ListScreenings(ctx, level, sarOnly, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list screenings: %v", err)), nil
	}

	text, err := formatScreeningList(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse screenings: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// HandleListSources lists the registered source adapters.
func (h *Handlers) HandleListSources(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := h.client.ListSources(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list sources: %v", err)), nil
	}

	text, err := formatSources(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse sources: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// HandleListRules lists the detection rule IDs.
func (h *Handlers) HandleListRules(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := h.client.ListRules(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list rules: %v", err)), nil
	}

	var resp struct {
		Rules []string `json:"rules"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse rules: %v", err)), nil
	}
	if len(resp.Rules) == 0 {
		return mcp.NewToolResultText("No detection rules registered."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d detection rule(s):\n", len(resp.Rules))
	for _, id := range resp.Rules {
		fmt.Fprintf(&sb, "  - %s\n", id)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// --- Formatting helpers ---

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func formatScreening(raw json.RawMessage) (string, error) {
	var rec map[string]any
	if err := json.Unmarshal(raw, &rec); err != nil {
		return "", err
	}

	var sb strings.Builder
	if id := getString(rec, "id"); id != "" {
		fmt.Fprintf(&sb, "Screening %s (%s)\n", id, getString(rec, "kind"))
	}
	if subject, ok := rec["subject"].(map[string]any); ok {
		ref := getString(subject, "name")
		if ref == "" {
			ref = getString(subject, "walletAddress")
		}
		fmt.Fprintf(&sb, "Subject: %s (%s)\n", ref, getString(subject, "kind"))
	}

	assessment, ok := rec["assessment"].(map[string]any)
	if !ok {
		return "", fmt.Errorf("no assessment in response")
	}
	score, _ := getFloat(assessment, "compositeScore")
	fmt.Fprintf(&sb, "\nRisk score: %.0f/100 (%s)\n", score, getString(assessment, "level"))
	fmt.Fprintf(&sb, "Priority: %s (SLA %s)\n", getString(assessment, "priority"), getString(assessment, "sla"))
	if sar, ok := assessment["sarRequired"].(bool); ok && sar {
		sb.WriteString("SAR filing required: YES\n")
	}
	if cats, ok := assessment["categoryScores"].(map[string]any); ok && len(cats) > 0 {
		sb.WriteString("\nCategory scores:\n")
		for _, cat := range sortedKeys(cats) {
			if v, ok := cats[cat].(float64); ok {
				fmt.Fprintf(&sb, "  %s: %.0f\n", cat, v)
			}
		}
	}

	if findings, ok := rec["findings"].([]any); ok && len(findings) > 0 {
		fmt.Fprintf(&sb, "\n%d finding(s):\n", len(findings))
		for _, f := range findings {
			m, ok := f.(map[string]any)
			if !ok {
				continue
			}
			fmt.Fprintf(&sb, "  [%s] %s: %s\n", getString(m, "severity"), getString(m, "source"), getString(m, "message"))
		}
	}
	if alerts, ok := rec["alerts"].([]any); ok && len(alerts) > 0 {
		fmt.Fprintf(&sb, "\n%d alert(s):\n", len(alerts))
		for _, a := range alerts {
			m, ok := a.(map[string]any)
			if !ok {
				continue
			}
			fmt.Fprintf(&sb, "  [%s] %s: %s\n", getString(m, "severity"), getString(m, "ruleId"), getString(m, "message"))
		}
	}

	if results, ok := rec["sourceResults"].(map[string]any); ok && len(results) > 0 {
		var degraded []string
		for _, name := range sortedKeys(results) {
			m, ok := results[name].(map[string]any)
			if !ok {
				continue
			}
			if outcome := getString(m, "outcome"); outcome != "ok" {
				degraded = append(degraded, fmt.Sprintf("%s (%s)", name, outcome))
			}
		}
		if len(degraded) > 0 {
			fmt.Fprintf(&sb, "\nSources that contributed nothing: %s\n", strings.Join(degraded, ", "))
			sb.WriteString("Their absence does NOT mean the subject is clear on those checks.\n")
		}
	}

	if actions, ok := assessment["recommendedActions"].([]any); ok && len(actions) > 0 {
		sb.WriteString("\nRecommended actions:\n")
		for _, a := range actions {
			if s, ok := a.(string); ok {
				fmt.Fprintf(&sb, "  - %s\n", s)
			}
		}
	}

	return sb.String(), nil
}

func formatScreeningList(raw json.RawMessage) (string, error) {
	var resp struct {
		Screenings []map[string]any `json:"screenings"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("unexpected screenings response format")
	}
	if len(resp.Screenings) == 0 {
		return "No screenings found.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d screening(s):\n\n", len(resp.Screenings))
	for i, rec := range resp.Screenings {
		subjectRef := ""
		if subject, ok := rec["subject"].(map[string]any); ok {
			subjectRef = getString(subject, "name")
			if subjectRef == "" {
				subjectRef = getString(subject, "walletAddress")
			}
		}
		fmt.Fprintf(&sb, "%d. %s — %s\n", i+1, getString(rec, "id"), subjectRef)
		if assessment, ok := rec["assessment"].(map[string]any); ok {
			score, _ := getFloat(assessment, "compositeScore")
			line := fmt.Sprintf("   Score %.0f (%s), priority %s", score, getString(assessment, "level"), getString(assessment, "priority"))
			if sar, ok := assessment["sarRequired"].(bool); ok && sar {
				line += ", SAR required"
			}
			sb.WriteString(line + "\n")
		}
	}
	return sb.String(), nil
}

func formatSources(raw json.RawMessage) (string, error) {
	var resp struct {
		Sources []map[string]any `json:"sources"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("unexpected sources response format")
	}
	if len(resp.Sources) == 0 {
		return "No sources registered.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d registered source(s):\n", len(resp.Sources))
	for _, s := range resp.Sources {
		state := getString(s, "breakerState")
		line := fmt.Sprintf("  - %s: %s", getString(s, "name"), state)
		if state != "closed" {
			line += " (degraded, may be skipped)"
		}
		sb.WriteString(line + "\n")
	}
	return sb.String(), nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// getString extracts a string value from a map, trying multiple key names.
func getString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
			if f, ok := v.(float64); ok {
				return fmt.Sprintf("%g", f)
			}
		}
	}
	return ""
}

// getFloat extracts a float64 value from a map, trying multiple key names.
func getFloat(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if f, ok := v.(float64); ok {
				return f, true
			}
		}
	}
	return 0, false
}
