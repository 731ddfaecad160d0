package locale_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/arbor/internal/locale"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFill(t *testing.T) {
	tests := []struct {
		name string
		text string
		args []string
		want string
	}{
		{"in order", "{?} and {?}", []string{"a", "b"}, "a and b"},
		{"missing args keep placeholders", "{?}-{?}", []string{"a"}, "a-{?}"},
		{"extra args dropped", "{?}", []string{"a", "b"}, "a"},
		{"args are not rescanned", "{?}!", []string{"{?}"}, "{?}!"},
		{"no placeholders", "plain", []string{"a"}, "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, locale.Fill(tt.text, tt.args...))
		})
	}
}

func TestDefault_Fallbacks(t *testing.T) {
	ru := locale.Default("RU")
	assert.Equal(t, "ru", ru.Lang())
	assert.Equal(t, "⬅️ Назад", ru.Text("back"))
	assert.Equal(t, "Fast", ru.Text("poll_option_fast"), "missing ru key falls back to en")
	assert.Equal(t, "no_such_key", ru.Text("no_such_key"))

	de := locale.Default("de")
	assert.Equal(t, "en", de.Lang())
}

func TestRender(t *testing.T) {
	c := locale.Default("en")
	out := c.Render("profile_header", "Doe John", "ACME", "resident")
	assert.Contains(t, out, "<i>Doe John</i>")
	assert.Contains(t, out, "<i>ACME</i>")
	assert.NotContains(t, out, locale.Placeholder)
}

func TestDefault_CoversBundledDialogs(t *testing.T) {
	c := locale.Default("en")
	for _, key := range []string{"service_category", "profile_first_name", "poll_comment", "feedback_kind"} {
		_, ok := c.Lookup(key)
		assert.True(t, ok, key)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locale.yaml")
	require.NoError(t, os.WriteFile(path, []byte("en:\n  hello: \"Hi {?}\"\n"), 0o644))

	c, err := locale.Load(path, "en")
	require.NoError(t, err)
	assert.Equal(t, "Hi Ann", c.Render("hello", "Ann"))

	_, err = locale.Load(filepath.Join(t.TempDir(), "missing.yaml"), "en")
	assert.Error(t, err)

	_, err = locale.Parse(strings.NewReader("fr:\n  a: b\n"), "ru")
	assert.Error(t, err)
}

func TestPrompt(t *testing.T) {
	cat := locale.Default("en")
	p := domain.Prompt{Template: domain.TemplateTextPrompt, Args: []string{"profile_last_name"}}
	assert.Equal(t, "✏️ profile_last_name", cat.Prompt(p))

	p.ArgKeys = true
	assert.Equal(t, "✏️ Enter your last name:", cat.Prompt(p))
}
