package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderHTMLEscapesUserInput(t *testing.T) {
	r := sampleReport()
	r.PlayerName = `<script>alert("x")</script>`
	r.ReflectionAnswers = map[string]string{"q<1>": "tough & fair"}
	r.OptionalFeedback = "<b>loved it</b>"

	out := renderHTML(r)

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "q&lt;1&gt;")
	assert.Contains(t, out, "tough &amp; fair")
	assert.Contains(t, out, "&lt;b&gt;loved it&lt;/b&gt;")
}

func TestRenderHTMLEmptyAnswerPlaceholder(t *testing.T) {
	r := sampleReport()
	r.ReflectionAnswers = map[string]string{"q1": ""}

	out := renderHTML(r)
	assert.Contains(t, out, "<em>No answer provided.</em>")
}
