package resident

import "fmt"

// Resident describes the person the care assistant talks to.
type Resident struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	PreferredName string   `json:"preferredName"`
	Room          string   `json:"room,omitempty"`
	Caregivers    []string `json:"caregivers,omitempty"`
	Conditions    []string `json:"conditions,omitempty"`
}

// Greeting returns the assistant's opening line for a new conversation.
func (r Resident) Greeting() string {
	name := r.PreferredName
	if name == "" {
		name = r.Name
	}
	return fmt.Sprintf("Hello %s! I'm your care assistant. How are you feeling today?", name)
}

// Seed provides the demo residents shown on the dashboard.
func Seed() []Resident {
	return []Resident{
		{
			ID:            "martha",
			Name:          "Martha Williams",
			PreferredName: "Martha",
			Room:          "Living room",
			Caregivers:    []string{"Sarah (daughter)", "Dr. Johnson"},
			Conditions:    []string{"arthritis", "high blood pressure"},
		},
	}
}

// Suggestions are the quick replies offered under the chat input.
func Suggestions() []string {
	return []string{
		"I'm feeling a bit lonely today",
		"My arthritis is bothering me",
		"I forgot to take my medication",
		"What activities do I have today?",
		"Could you call my daughter?",
	}
}
