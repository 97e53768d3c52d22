package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mirror/pkg/core"
)

func TestParseMeta(t *testing.T) {
	meta, err := parseMeta([]string{"author=ana", "note=a=b"})
	require.NoError(t, err)
	assert.Equal(t, core.Metadata{"author": "ana", "note": "a=b"}, meta)

	meta, err = parseMeta(nil)
	require.NoError(t, err)
	assert.Nil(t, meta)

	_, err = parseMeta([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseMeta([]string{"=x"})
	assert.Error(t, err)
}

func TestHasTag(t *testing.T) {
	assert.True(t, hasTag(core.Metadata{"tags": []any{"a", "b"}}, "b"))
	assert.True(t, hasTag(core.Metadata{"tags": []string{"a"}}, "a"))
	assert.True(t, hasTag(core.Metadata{"tags": "a"}, "a"))
	assert.False(t, hasTag(core.Metadata{"tags": []any{1, "c"}}, "a"))
	assert.False(t, hasTag(nil, "a"))
}
