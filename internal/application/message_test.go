package application_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/prnotifier/internal/application"
	"github.com/ericfisherdev/prnotifier/internal/domain/model"
)

var fixedNow = time.Date(2026, 10, 18, 0, 30, 15, 123456000, time.UTC)

func newTestBuilder(t *testing.T) *application.MessageBuilder {
	t.Helper()
	jst := time.FixedZone("JST", 9*60*60)
	return application.NewMessageBuilder(jst, func() time.Time { return fixedNow })
}

func matched(role model.Role, number int, title string) model.MatchedPullRequest {
	return model.MatchedPullRequest{
		Role:      role,
		Number:    number,
		URL:       "https://github.com/acme/a/pull/" + title,
		Title:     title,
		CreatedAt: time.Date(2026, 10, 1, 3, 4, 5, 0, time.UTC),
	}
}

func TestBuild_NoTargets(t *testing.T) {
	b := newTestBuilder(t)

	assert.Nil(t, b.Build(nil))
	assert.Nil(t, b.Build([]model.Target{}))
}

func TestBuild_Layout(t *testing.T) {
	b := newTestBuilder(t)
	targets := []model.Target{
		{RepoFullName: "acme/a", PullRequests: []model.MatchedPullRequest{
			matched(model.RoleOpener, 1, "one"),
			matched(model.RoleReviewer, 2, "two"),
		}},
		{RepoFullName: "acme/b", PullRequests: []model.MatchedPullRequest{
			matched(model.RoleReviewer, 9, "nine"),
		}},
	}

	msg := b.Build(targets)

	require.NotNil(t, msg)
	require.Len(t, msg.Blocks, 1+2*2+3)
	assert.Equal(t, application.BlockCount(targets), len(msg.Blocks))

	lead := msg.Blocks[0]
	assert.Equal(t, model.BlockTypeSection, lead.Type)
	assert.Equal(t, model.TextTypeMarkdown, lead.Text.Type)
	assert.Equal(t, "<!here> (2026-10-18 09:30:15.123456+09:00)", lead.Text.Text)

	kinds := make([]string, 0, len(msg.Blocks))
	for _, block := range msg.Blocks {
		kinds = append(kinds, block.Type)
	}
	assert.Equal(t, []string{
		"section",
		"divider", "header", "section", "section",
		"divider", "header", "section",
	}, kinds)

	header := msg.Blocks[2]
	assert.Equal(t, model.TextTypePlainText, header.Text.Type)
	assert.Equal(t, "acme/a", header.Text.Text)
	require.NotNil(t, header.Text.Emoji)
	assert.False(t, *header.Text.Emoji)

	assert.Equal(t, "`opener` <https://github.com/acme/a/pull/one|#1 one> (2026-10-01 03:04:05 UTC)", msg.Blocks[3].Text.Text)
	assert.Equal(t, "`reviewer` <https://github.com/acme/a/pull/two|#2 two> (2026-10-01 03:04:05 UTC)", msg.Blocks[4].Text.Text)
	assert.Equal(t, "acme/b", msg.Blocks[6].Text.Text)
	assert.Nil(t, msg.Blocks[1].Text, "divider has no text")
}

func TestBuild_BlockCountProperty(t *testing.T) {
	b := newTestBuilder(t)

	for targetCount := 1; targetCount <= 4; targetCount++ {
		var targets []model.Target
		total := 0
		for i := range targetCount {
			var prs []model.MatchedPullRequest
			for n := range i + 1 {
				prs = append(prs, matched(model.RoleReviewer, n, "t"))
			}
			total += len(prs)
			targets = append(targets, model.Target{RepoFullName: "acme/r", PullRequests: prs})
		}

		msg := b.Build(targets)

		require.NotNil(t, msg)
		assert.Len(t, msg.Blocks, 1+2*targetCount+total)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	b := newTestBuilder(t)
	targets := []model.Target{{RepoFullName: "acme/a", PullRequests: []model.MatchedPullRequest{matched(model.RoleOpener, 1, "one")}}}

	first, err := json.Marshal(b.Build(targets))
	require.NoError(t, err)
	second, err := json.Marshal(b.Build(targets))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestFormatPullRequestLine_EscapesTitle(t *testing.T) {
	pr := model.MatchedPullRequest{
		Role:      model.RoleReviewer,
		Number:    12,
		URL:       "https://github.com/acme/a/pull/12",
		Title:     "Use <T> & friends > generics",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600)),
	}

	line := application.FormatPullRequestLine(pr)

	assert.Equal(t, "`reviewer` <https://github.com/acme/a/pull/12|#12 Use &lt;T&gt; &amp; friends &gt; generics> (2026-01-02 02:04:05 UTC)", line)
}

func TestMessageJSON(t *testing.T) {
	b := newTestBuilder(t)
	msg := b.Build([]model.Target{{RepoFullName: "acme/a", PullRequests: []model.MatchedPullRequest{matched(model.RoleOpener, 1, "one")}}})

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	assert.JSONEq(t, `{"blocks":[
		{"type":"section","text":{"type":"mrkdwn","text":"<!here> (2026-10-18 09:30:15.123456+09:00)"}},
		{"type":"divider"},
		{"type":"header","text":{"type":"plain_text","text":"acme/a","emoji":false}},
		{"type":"section","text":{"type":"mrkdwn","text":"`+"`opener` <https://github.com/acme/a/pull/one|#1 one> (2026-10-01 03:04:05 UTC)"+`"}}
	]}`, string(data))
}
