package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		maxLen   int
		expected string
	}{
		{name: "shorter than max", s: "hello", maxLen: 10, expected: "hello"},
		{name: "equal to max", s: "hello", maxLen: 5, expected: "hello"},
		{name: "longer than max", s: "hello world", maxLen: 8, expected: "hello..."},
		{name: "maxLen less than 3", s: "hello", maxLen: 2, expected: "he"},
		{name: "maxLen exactly 3", s: "hello", maxLen: 3, expected: "..."},
		{name: "empty string", s: "", maxLen: 5, expected: ""},
		{name: "maxLen zero", s: "hello", maxLen: 0, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateString(tt.s, tt.maxLen))
		})
	}
}

func TestPadString(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		width    int
		expected string
	}{
		{name: "shorter than width", s: "hi", width: 5, expected: "hi   "},
		{name: "equal to width", s: "hello", width: 5, expected: "hello"},
		{name: "longer than width", s: "hello!", width: 5, expected: "hello!"},
		{name: "empty string", s: "", width: 3, expected: "   "},
		{name: "width zero", s: "hi", width: 0, expected: "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PadString(tt.s, tt.width))
		})
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	columns := []Column{
		{Name: "REF", Key: "ref"},
		{Name: "TITLE", Key: "title", Width: 8},
	}
	rows := []map[string]string{
		{"ref": "alice/eda", "title": "Exploratory analysis"},
		{"ref": "bob/x", "title": "Short"},
	}

	RenderTable(&buf, columns, rows, nil)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "REF"))
	assert.Contains(t, lines[1], "alice/eda")
	assert.Contains(t, lines[1], "Explo...")
	assert.NotContains(t, buf.String(), "analysis")
}

func TestFormatterPrintList(t *testing.T) {
	type record map[string]string
	items := []record{{"ref": "alice/eda", "title": "EDA"}}
	columns := []Column{{Name: "REF", Key: "ref"}, {Name: "TITLE", Key: "title"}}

	t.Run("plain", func(t *testing.T) {
		var out bytes.Buffer
		f := NewWithWriters("plain", &out, &bytes.Buffer{})
		assert.NoError(t, f.PrintList(items, columns))
		assert.Equal(t, "REF\tTITLE\nalice/eda\tEDA\n", out.String())
	})

	t.Run("json envelope", func(t *testing.T) {
		var out bytes.Buffer
		f := NewWithWriters("json", &out, &bytes.Buffer{})
		assert.NoError(t, f.PrintList(items, columns))
		assert.JSONEq(t, `{"count":1,"data":[{"ref":"alice/eda","title":"EDA"}]}`, out.String())
	})

	t.Run("not a slice", func(t *testing.T) {
		f := NewWithWriters("plain", &bytes.Buffer{}, &bytes.Buffer{})
		assert.Error(t, f.PrintList("nope", columns))
	})
}
