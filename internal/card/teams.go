package card

// Message is the Teams webhook envelope carrying one adaptive card.
type Message struct {
	Type        string       `json:"type"`
	Attachments []Attachment `json:"attachments"`
}

// Attachment wraps the adaptive card content.
type Attachment struct {
	ContentType string       `json:"contentType"`
	ContentURL  *string      `json:"contentUrl"`
	Content     AdaptiveCard `json:"content"`
}

// AdaptiveCard is the card document the Teams client renders.
type AdaptiveCard struct {
	Schema  string    `json:"$schema"`
	Type    string    `json:"type"`
	Version string    `json:"version"`
	Body    []Element `json:"body"`
	Actions []Action  `json:"actions,omitempty"`
}

// Element is a body entry: a TextBlock or a FactSet depending on Type.
type Element struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Weight   string `json:"weight,omitempty"`
	Size     string `json:"size,omitempty"`
	Color    string `json:"color,omitempty"`
	Spacing  string `json:"spacing,omitempty"`
	Wrap     bool   `json:"wrap,omitempty"`
	IsSubtle bool   `json:"isSubtle,omitempty"`
	Facts    []Fact `json:"facts,omitempty"`
}

// Message encodes the card into the Teams webhook envelope.
func (c *Card) Message() *Message {
	body := []Element{
		{
			Type:   "TextBlock",
			Text:   "**" + c.Title + "**",
			Weight: "Bolder",
			Size:   "Large",
			Wrap:   true,
		},
		{
			Type:    "TextBlock",
			Text:    "**State:** " + c.State,
			Weight:  "Bolder",
			Color:   c.Style.Colour,
			Spacing: "Small",
		},
		{
			Type:    "TextBlock",
			Text:    "**Description:** " + c.Description,
			Wrap:    true,
			Spacing: "Small",
		},
		{
			Type:    "TextBlock",
			Text:    "**Reason:** " + c.Body,
			Wrap:    true,
			Spacing: "Small",
		},
		{
			Type:    "FactSet",
			Spacing: "Medium",
			Facts:   c.Facts,
		},
		{
			Type:     "TextBlock",
			Text:     "**Time:** " + c.Time,
			IsSubtle: true,
			Wrap:     true,
			Spacing:  "Small",
		},
	}

	return &Message{
		Type: "message",
		Attachments: []Attachment{
			{
				ContentType: cardContentType,
				ContentURL:  nil,
				Content: AdaptiveCard{
					Schema:  cardSchema,
					Type:    "AdaptiveCard",
					Version: cardVersion,
					Body:    body,
					Actions: c.Links,
				},
			},
		},
	}
}
