package copilot

import (
	"encoding/json"
	"fmt"
	"strings"

	"travelcopilot/internal/models"
)

const historyWindow = 10

func buildIntentPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Extract travel search intent from this travel agent's message.\n")
	b.WriteString("Respond with only a JSON object, no prose, using these fields:\n")
	b.WriteString(`{"hasSearchIntent": bool, "searchType": "flight"|"hotel"|"train"|"bus"|"destination"|"package", "origin": string, "destination": string, "departureDate": string, "checkIn": string, "checkOut": string, "passengers": int, "guests": int, "budgetMin": int, "budgetMax": int, "preferences": [string]}` + "\n")
	b.WriteString("Leave fields you cannot determine empty. Budgets are rupees. If the message is not asking to search for travel options, set hasSearchIntent to false.\n\n")
	b.WriteString("Message: ")
	b.WriteString(text)
	return b.String()
}

// replyInput collects everything the reply prompt embeds.
type replyInput struct {
	Agent    *models.Agent
	Customer *models.Customer
	History  []models.Message
	Query    string
	Results  *models.SearchResults
}

func buildReplyPrompt(in replyInput) string {
	var b strings.Builder
	b.WriteString("You are an AI copilot for professional travel agents. Help the agent serve their customer quickly: be concise, concrete, and action-oriented. Quote prices in rupees.\n\n")

	if in.Agent != nil {
		fmt.Fprintf(&b, "Agent: %s", in.Agent.Name)
		if in.Agent.Territory != "" {
			fmt.Fprintf(&b, " (territory: %s)", in.Agent.Territory)
		}
		fmt.Fprintf(&b, ", commission rate %.0f%%.\n", in.Agent.CommissionRate*100)
	}
	if summary := customerSummary(in.Customer); summary != "" {
		b.WriteString("Customer: ")
		b.WriteString(summary)
		b.WriteString("\n")
	}

	if !in.Results.Empty() {
		b.WriteString("\nLive search results:\n")
		if data, err := json.MarshalIndent(in.Results, "", "  "); err == nil {
			b.Write(data)
			b.WriteString("\n")
		}
	}

	if lines := historyLines(in.History); len(lines) > 0 {
		b.WriteString("\nConversation so far:\n")
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n")
	}

	b.WriteString("\nAgent's request: ")
	b.WriteString(in.Query)
	return b.String()
}

func customerSummary(c *models.Customer) string {
	if c == nil {
		return ""
	}
	parts := []string{c.Name}
	if p := c.Preferences; p != nil {
		if p.Budget != "" {
			parts = append(parts, "budget "+p.Budget)
		}
		if p.SeatPreference != "" {
			parts = append(parts, p.SeatPreference+" seat")
		}
		if p.MealPreference != "" {
			parts = append(parts, p.MealPreference+" meals")
		}
		if len(p.PreferredAirlines) > 0 {
			parts = append(parts, "prefers "+strings.Join(p.PreferredAirlines, "/"))
		}
		if p.HotelCategory != "" {
			parts = append(parts, p.HotelCategory+" hotels")
		}
	}
	if len(c.PastTrips) > 0 {
		dests := make([]string, 0, len(c.PastTrips))
		for _, t := range c.PastTrips {
			dests = append(dests, t.Destination)
		}
		parts = append(parts, "previously visited "+strings.Join(dests, ", "))
	}
	return strings.Join(parts, ", ")
}

// historyLines renders the most recent messages as "role: content" lines,
// oldest first, capped at historyWindow entries.
func historyLines(history []models.Message) []string {
	start := 0
	if len(history) > historyWindow {
		start = len(history) - historyWindow
	}
	lines := make([]string, 0, len(history)-start)
	for _, m := range history[start:] {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}
	return lines
}
