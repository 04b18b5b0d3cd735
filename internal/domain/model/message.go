package model

// Message is the block-based chat payload posted to the webhook.
type Message struct {
	Blocks []Block `json:"blocks"`
}

// Block is one unit of a Message: a section, a divider, or a header.
type Block struct {
	Type string `json:"type"`
	Text *Text  `json:"text,omitempty"`
}

// Text is the text object carried by section and header blocks.
type Text struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji *bool  `json:"emoji,omitempty"` // Header blocks only.
}
