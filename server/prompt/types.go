// Package prompt builds the system/user message pair the relay forwards to
// the model provider. Prompt construction is pure: no I/O, no side effects,
// same output for the same input.
package prompt

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Text is a string-like request value. Callers send these fields as JSON
// strings, but numeric values (altitude in particular) show up in practice,
// so decoding tolerates numbers and null rather than failing the request.
type Text string

// UnmarshalJSON accepts strings, numbers, booleans, and null.
// Anything else (objects, arrays) is a decode error and fails the request.
func (t *Text) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*t = Text(str)
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*t = Text(strconv.FormatFloat(num, 'f', -1, 64))
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*t = Text(strconv.FormatBool(b))
		return nil
	}

	if string(data) == "null" {
		*t = ""
		return nil
	}

	return fmt.Errorf("value %s is not string-like", data)
}

// RecipeRequest is the inbound payload describing a coffee sample.
// Every field is optional; unrecognized keys in the JSON body are ignored.
type RecipeRequest struct {
	Name        Text `json:"name"`
	Roast       Text `json:"roast"`
	Origin      Text `json:"origin"`
	Process     Text `json:"process"`
	Varietal    Text `json:"varietal"`
	Masl        Text `json:"masl"`
	RoastDate   Text `json:"roastDate"`
	BrewProfile Text `json:"brewProfile"`
}

// Message is a single chat message in the provider's wire format.
type Message struct {
	Role    string `json:"role"`    // Role of the message sender ("system" or "user")
	Content string `json:"content"` // The actual message content
}
