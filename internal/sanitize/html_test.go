package sanitize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestText_StripsAllTags(t *testing.T) {
	require.Equal(t, "Board Game Night", Text("<b>Board Game</b> Night"))
	require.Equal(t, "Main Hall", Text(`<a href="https://evil.example">Main Hall</a>`))
}

func TestText_DropsScriptContentEntirely(t *testing.T) {
	require.Equal(t, "", Text("<script>alert(1)</script>"))
}

func TestHTML_KeepsSafeFormatting(t *testing.T) {
	require.Equal(t, "<p>Doors at <strong>7pm</strong></p>", HTML("<p>Doors at <strong>7pm</strong></p>"))
}

func TestHTML_RemovesScriptsAndHandlers(t *testing.T) {
	require.NotContains(t, HTML(`<a onclick="steal()">click</a>`), "onclick")
	require.NotContains(t, HTML(`<img src=x onerror="evil()">`), "onerror")
}
