package mailtpl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type staticSource struct{ body string }

func (s *staticSource) Get() (string, error) { return s.body, nil }

func TestRender(t *testing.T) {
	r := NewRenderer(&staticSource{
		body: "Download here: " + PlaceholderToken + "\nAgain: " + PlaceholderToken,
	})

	got, err := r.Render("https://share.example.com/vrpa-01")
	require.NoError(t, err)
	require.Equal(t,
		"Download here: https://share.example.com/vrpa-01\nAgain: https://share.example.com/vrpa-01",
		got)
}

func TestRenderWithoutPlaceholder(t *testing.T) {
	r := NewRenderer(&staticSource{body: "no marker here"})
	got, err := r.Render("https://share.example.com/x")
	require.NoError(t, err)
	require.Equal(t, "no marker here", got)
}
