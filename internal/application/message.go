package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/prnotifier/internal/domain/model"
)

const (
	// leadTimeLayout formats the run timestamp in the lead section.
	leadTimeLayout = "2006-01-02 15:04:05.000000-07:00"
	// createdAtLayout formats pull request creation times, always in UTC.
	createdAtLayout = "2006-01-02 15:04:05"
)

// mrkdwnEscaper escapes the three control characters of mrkdwn text.
var mrkdwnEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// MessageBuilder renders Targets as a block message.
type MessageBuilder struct {
	loc *time.Location
	now func() time.Time
}

// NewMessageBuilder creates a MessageBuilder that stamps messages with now()
// in loc. A nil loc means UTC; a nil now means time.Now.
func NewMessageBuilder(loc *time.Location, now func() time.Time) *MessageBuilder {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &MessageBuilder{loc: loc, now: now}
}

// Build returns nil when there are no targets. Otherwise the message holds a
// lead mention section, then for each target a divider, a header with the
// repository name and one section per pull request, in input order.
func (b *MessageBuilder) Build(targets []model.Target) *model.Message {
	if len(targets) == 0 {
		return nil
	}

	blocks := make([]model.Block, 0, BlockCount(targets))
	blocks = append(blocks, markdownSection(fmt.Sprintf("<!here> (%s)", b.now().In(b.loc).Format(leadTimeLayout))))

	for _, target := range targets {
		noEmoji := false
		blocks = append(blocks,
			model.Block{Type: model.BlockTypeDivider},
			model.Block{
				Type: model.BlockTypeHeader,
				Text: &model.Text{Type: model.TextTypePlainText, Text: target.RepoFullName, Emoji: &noEmoji},
			},
		)
		for _, pr := range target.PullRequests {
			blocks = append(blocks, markdownSection(FormatPullRequestLine(pr)))
		}
	}

	return &model.Message{Blocks: blocks}
}

// BlockCount is the number of blocks Build produces for targets:
// one lead section, two blocks per target and one per pull request.
func BlockCount(targets []model.Target) int {
	if len(targets) == 0 {
		return 0
	}
	n := 1 + 2*len(targets)
	for _, t := range targets {
		n += len(t.PullRequests)
	}
	return n
}

// FormatPullRequestLine renders one pull request as
// "`role` <url|#number title> (created UTC)".
func FormatPullRequestLine(pr model.MatchedPullRequest) string {
	return fmt.Sprintf("`%s` <%s|#%d %s> (%s UTC)",
		pr.Role,
		pr.URL,
		pr.Number,
		mrkdwnEscaper.Replace(pr.Title),
		pr.CreatedAt.UTC().Format(createdAtLayout),
	)
}

func markdownSection(text string) model.Block {
	return model.Block{
		Type: model.BlockTypeSection,
		Text: &model.Text{Type: model.TextTypeMarkdown, Text: text},
	}
}
