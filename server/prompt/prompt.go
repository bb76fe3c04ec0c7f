package prompt

import (
	"strings"
)

// SystemPrompt is the fixed instruction sent as the system message on every
// request. It is not user-controllable.
const SystemPrompt = "You are an AeroPress recipe generator. Given details about a coffee, " +
	"respond with exactly three HTML tables and nothing else. " +
	"The first table is titled \"Recipe\" with columns Parameter and Value, covering dose, " +
	"grind size, water temperature, water weight, and total brew time. " +
	"The second table is titled \"Brew Steps\" with columns Step, Time, and Action. " +
	"The third table is titled \"Tasting Notes\" with columns Aspect and Notes. " +
	"Keep every value within realistic and valid ranges for an AeroPress. " +
	"Do not output any text outside of the table markup."

// field pairs a recipe attribute with its human-readable label and accessor.
// The slice below fixes the rendering order: lines always appear in this
// order regardless of key order in the request body.
type field struct {
	label string
	value func(*RecipeRequest) Text
}

var fields = []field{
	{"Name", func(r *RecipeRequest) Text { return r.Name }},
	{"Roast profile", func(r *RecipeRequest) Text { return r.Roast }},
	{"Origin", func(r *RecipeRequest) Text { return r.Origin }},
	{"Processing method", func(r *RecipeRequest) Text { return r.Process }},
	{"Varietal", func(r *RecipeRequest) Text { return r.Varietal }},
	{"MASL", func(r *RecipeRequest) Text { return r.Masl }},
	{"Roast date", func(r *RecipeRequest) Text { return r.RoastDate }},
	{"Brew profile", func(r *RecipeRequest) Text { return r.BrewProfile }},
}

// UserMessage renders the recognized fields of req as "<Label>: <value>"
// lines joined with newlines. Fields that are absent or whitespace-only
// after trimming are omitted. An entirely empty request yields an empty
// string; the relay still forwards it.
func UserMessage(req *RecipeRequest) string {
	var lines []string
	for _, f := range fields {
		value := strings.TrimSpace(string(f.value(req)))
		if value == "" {
			continue
		}
		lines = append(lines, f.label+": "+value)
	}
	return strings.Join(lines, "\n")
}

// Messages assembles the ordered system/user pair for req.
func Messages(req *RecipeRequest) []Message {
	return []Message{
		{Role: "system", Content: SystemPrompt},
		{Role: "user", Content: UserMessage(req)},
	}
}
