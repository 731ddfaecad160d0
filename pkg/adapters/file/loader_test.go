package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pollJSON = `{
  "id": 7,
  "sequences": [{"id": 0, "items_ids": [10], "next_sequence_id": null}],
  "items": [{"id": 10, "text": "question", "type": 0, "options_ids": [1, 2]}],
  "options": [
    {"id": 1, "text": "yes", "sequence_id": null, "row": 0},
    {"id": 2, "text": "no", "sequence_id": null}
  ]
}`

const pollYAML = `
id: 8
trace: true
sequences:
  - id: 0
    items_ids: [1]
    next_sequence_id: 1
  - id: 1
    items_ids: [2]
items:
  - {id: 1, text: ask_name, type: 1}
  - {id: 2, text: ask_photo, type: 2}
options: []
`

func TestDecode_JSON(t *testing.T) {
	d, err := file.Decode([]byte(pollJSON), file.FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, 7, d.ID)
	assert.False(t, d.Trace)
	it, ok := d.ItemAt(domain.Position{SequenceID: 0, ItemIndex: 0})
	require.True(t, ok)
	assert.Equal(t, domain.KindSelect, it.Kind)
	assert.Equal(t, []int{1, 2}, it.OptionIDs)
	assert.Nil(t, d.Options[1].SequenceID)
	assert.Equal(t, 0, d.Options[2].Row, "missing row defaults to 0")
}

func TestDecode_YAML(t *testing.T) {
	d, err := file.Decode([]byte(pollYAML), file.FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, 8, d.ID)
	assert.True(t, d.Trace)
	require.NotNil(t, d.Sequences[0].NextSequenceID)
	assert.Equal(t, 1, *d.Sequences[0].NextSequenceID)
	assert.Nil(t, d.Sequences[1].NextSequenceID)
	assert.Equal(t, domain.KindImageUpload, d.Items[2].Kind)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format file.Format
	}{
		{"malformed json", `{"id":`, file.FormatJSON},
		{"unknown field", `{"id": 1, "colour": "red"}`, file.FormatJSON},
		{"unknown format", `{}`, file.Format("toml")},
		{
			name: "dangling branch target",
			data: `{"id":1,"sequences":[{"id":0,"items_ids":[1]}],
				"items":[{"id":1,"text":"q","type":0,"options_ids":[1]}],
				"options":[{"id":1,"text":"a","sequence_id":9}]}`,
			format: file.FormatJSON,
		},
		{
			name: "duplicate item",
			data: `{"id":1,"sequences":[{"id":0,"items_ids":[1]}],
				"items":[{"id":1,"text":"q","type":1},{"id":1,"text":"r","type":1}],
				"options":[]}`,
			format: file.FormatJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := file.Decode([]byte(tt.data), tt.format)
			assert.Error(t, err)
		})
	}
}

func TestDecode_InvalidDialogIsTyped(t *testing.T) {
	data := `{"id":1,"sequences":[{"id":1,"items_ids":[5]}],"items":[],"options":[]}`
	_, err := file.Decode([]byte(data), file.FormatJSON)
	require.ErrorIs(t, err, domain.ErrInvalidDialog)
	assert.Len(t, domain.ValidationErrors(err), 2)
}

func TestFormatFor(t *testing.T) {
	f, ok := file.FormatFor("poll.YML")
	assert.True(t, ok)
	assert.Equal(t, file.FormatYAML, f)

	_, ok = file.FormatFor("README.md")
	assert.False(t, ok)
}

func TestLoadDir_BundledDialogs(t *testing.T) {
	catalog, err := file.LoadDir(filepath.Join("..", "..", "..", "dialogs"))
	require.NoError(t, err)

	for _, entry := range domain.DialogEntryPoints {
		d, ok := catalog.Dialog(entry)
		require.True(t, ok, "missing dialog for %s", entry)
		assert.NoError(t, d.Validate())
	}
	_, ok := catalog.Dialog(domain.EntryMenu)
	assert.False(t, ok)
}

func TestLoadDir_MissingEntryPoint(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "poll.json"), []byte(pollJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	_, err := file.LoadDir(dir)
	assert.ErrorIs(t, err, domain.ErrUnknownDialog)
}

func TestLoadDir_DuplicateEntryPoint(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "poll.json"), []byte(pollJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "poll.yaml"), []byte(pollYAML), 0o644))

	_, err := file.LoadDir(dir)
	assert.ErrorContains(t, err, "defined twice")
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.json", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0o755))

	files, err := file.Files(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.yaml")}, files)
}
