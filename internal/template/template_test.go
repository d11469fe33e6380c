package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolver(t *testing.T, dir string) *Resolver {
	t.Helper()
	logger := zerolog.Nop()
	return NewResolver(dir, &logger)
}

func TestSubstitute(t *testing.T) {
	out := Substitute("Hello {{userName}}, welcome to {{appName}}!", map[string]string{
		"userName": "Ann",
		"appName":  "Acme",
	})
	assert.Equal(t, "Hello Ann, welcome to Acme!", out)
}

func TestSubstituteAbsentKeyYieldsEmptyString(t *testing.T) {
	out := Substitute("Hi {{userName}}, notes: {{notes}}.", map[string]string{
		"userName": "Ann",
	})
	assert.Equal(t, "Hi Ann, notes: .", out)
}

func TestSubstituteIsIdempotentAndLeavesVarsAlone(t *testing.T) {
	vars := map[string]string{"userName": "Ann"}

	first := Substitute("Hi {{userName}}", vars)
	second := Substitute(first, vars)

	assert.Equal(t, first, second)
	assert.Equal(t, map[string]string{"userName": "Ann"}, vars)
}

func TestSubstituteIgnoresMalformedPlaceholders(t *testing.T) {
	text := "{{user name}} {single} {{userName}}"
	out := Substitute(text, map[string]string{"userName": "Ann"})
	assert.Equal(t, "{{user name}} {single} Ann", out)
}

func TestResolveDiskOverridesDefault(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "account-approved.html"), []byte("<p>custom for {{userName}}</p>"), 0o644)
	require.NoError(t, err)

	r := testResolver(t, dir)
	out := r.Resolve("account-approved.html", map[string]string{"userName": "Ann"})

	assert.Equal(t, "<p>custom for Ann</p>", out)
}

func TestResolveFallsBackToEmbeddedDefault(t *testing.T) {
	r := testResolver(t, t.TempDir())

	out := r.Resolve("account-approved.html", map[string]string{
		"userName": "Ann",
		"appName":  "Acme",
	})

	assert.Contains(t, out, "Ann")
	assert.NotContains(t, out, "{{userName}}")
}

func TestResolveUnknownNameYieldsErrorFragment(t *testing.T) {
	r := testResolver(t, t.TempDir())

	out := r.Resolve("no-such-template.html", nil)

	assert.Contains(t, out, "Email Template Error")
	assert.Contains(t, out, "no-such-template.html")
}

func TestResolveStripsPathComponents(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "approval-email.html"), []byte("ok"), 0o644)
	require.NoError(t, err)

	r := testResolver(t, dir)

	// A traversal-looking name must resolve to the bare file name.
	out := r.Resolve("../../approval-email.html", nil)
	assert.Equal(t, "ok", out)
}
