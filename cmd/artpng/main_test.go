package main

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortFlags(t *testing.T) {
	dir, err := ioutil.TempDir("", "artpng")
	require.Nil(t, err)
	defer os.RemoveAll(dir)

	app := newApp(dir)
	b := new(bytes.Buffer)
	app.Writer = b

	require.Nil(t, app.Run([]string{"artpng", "-V"}))
	assert.Contains(t, b.String(), "1.0.0")

	require.Nil(t, app.Run([]string{"artpng", "-v", "duplicates", "--catalog", filepath.Join(dir, "tiles.db")}))
}
