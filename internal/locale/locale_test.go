package locale

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedPacksAreValid(t *testing.T) {
	names := Available()
	require.ElementsMatch(t, []string{"en", "ru"}, names)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			p, err := Load(name)
			require.NoError(t, err)
			assert.Equal(t, name, p.Name)
			assert.Len(t, p.Dates.RelativeDays, 3)
		})
	}
}

func TestLoadDefault(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default, p.Name)
	assert.Equal(t, "buy", p.Shopping.BuyVerb)
	assert.Equal(t, 12, p.Dates.Months["december"])
}

func TestLoadUnknown(t *testing.T) {
	_, err := Load("xx")
	assert.Error(t, err)
}

func TestLoadFileValidation(t *testing.T) {
	dir := t.TempDir()

	incomplete := filepath.Join(dir, "incomplete.yaml")
	require.NoError(t, os.WriteFile(incomplete, []byte("name: broken\nkeywords:\n  exit: [bye]\n"), 0o644))

	_, err := LoadFile(incomplete)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFileNormalizesCase(t *testing.T) {
	base, err := packs.ReadFile("packs/en.yaml")
	require.NoError(t, err)

	custom := strings.Replace(string(base), "exit: [exit, stop, quit]", "exit: [EXIT, ' Stop ']", 1)
	custom = strings.Replace(custom, "december: 12", "December: 12", 1)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(custom), 0o644))

	p, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"exit", "stop"}, p.Keywords.Exit)
	assert.Equal(t, 12, p.Dates.Months["december"])
}

func TestFill(t *testing.T) {
	tests := []struct {
		name     string
		tmpl     string
		kv       []string
		expected string
	}{
		{"two placeholders", "Task '{text}' created for {date}.", []string{"text", "call mom", "date", "01.01.2026"}, "Task 'call mom' created for 01.01.2026."},
		{"no args", "Goodbye!", nil, "Goodbye!"},
		{"unknown placeholder kept", "{n}. {text}", []string{"text", "x"}, "{n}. x"},
		{"odd args ignore the tail", "{a}{b}", []string{"a", "1", "b"}, "1{b}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Fill(tt.tmpl, tt.kv...))
		})
	}
}

func TestContainsAny(t *testing.T) {
	assert.True(t, ContainsAny("please stop now", []string{"exit", "stop"}))
	assert.False(t, ContainsAny("create task", []string{"exit", "stop"}))
	assert.False(t, ContainsAny("anything", nil))
}
