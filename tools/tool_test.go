package tools

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindBash, KindReadFile, KindWriteFile, KindEditFile, KindTodoWrite} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseKind("delete_everything")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTool))
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestDefinitionJSONSchema(t *testing.T) {
	def := NewReadFileTool(nil).Definition()
	schema := def.JSONSchema()

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"path"}, schema["required"])

	props := schema["properties"].(map[string]interface{})
	require.Contains(t, props, "path")
	require.Contains(t, props, "limit")
	assert.Equal(t, "integer", props["limit"].(map[string]interface{})["type"])
}

func TestDecodeInput(t *testing.T) {
	var in editFileInput

	err := decodeInput(KindEditFile, map[string]any{"path": "a.txt", "old_text": "x"}, &in, "path", "old_text", "new_text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid arguments for edit_file")
	assert.Contains(t, err.Error(), "new_text")

	err = decodeInput(KindEditFile, map[string]any{"path": 42, "old_text": "x", "new_text": "y"}, &in, "path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid arguments for edit_file")

	in = editFileInput{}
	err = decodeInput(KindEditFile, map[string]any{"path": "a.txt", "old_text": "x", "new_text": "", "extra": true}, &in, "path", "old_text", "new_text")
	require.NoError(t, err)
	assert.Equal(t, editFileInput{Path: "a.txt", OldText: "x"}, in)
}

func TestDecodeInputNumberIntoInt(t *testing.T) {
	var in readFileInput
	require.NoError(t, decodeInput(KindReadFile, map[string]any{"path": "f", "limit": float64(3)}, &in, "path"))
	require.NotNil(t, in.Limit)
	assert.Equal(t, 3, *in.Limit)
}
