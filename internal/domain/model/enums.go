package model

// Role describes how the target user is involved in a pull request.
type Role string

const (
	RoleOpener   Role = "opener"
	RoleReviewer Role = "reviewer"
)

// Block types of the chat-message payload.
const (
	BlockTypeSection = "section"
	BlockTypeDivider = "divider"
	BlockTypeHeader  = "header"
)

// Text object types of the chat-message payload.
const (
	TextTypeMarkdown  = "mrkdwn"
	TextTypePlainText = "plain_text"
)
