package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodewee/ocr-hub/pkg/interfaces"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

// fakeTool writes one JPEG per requested page next to the output prefix
func fakeTool(t *testing.T, seen *[]string) commandRunner {
	return func(_ context.Context, _ string, args ...string) ([]byte, error) {
		*seen = args
		last := 0
		for i, a := range args {
			if a == "-l" {
				fmt.Sscanf(args[i+1], "%d", &last)
			}
		}
		prefix := args[len(args)-1]
		for p := 1; p <= last; p++ {
			name := fmt.Sprintf("%s-%02d.jpg", prefix, p)
			require.NoError(t, os.WriteFile(name, []byte(fmt.Sprintf("jpeg%d", p)), 0o644))
		}
		return nil, nil
	}
}

func TestPdftoppmBackend_RendersProbedPageRange(t *testing.T) {
	var args []string
	backend := NewPdftoppmBackend("pdftoppm", nil).(*toolBackend)
	backend.run = fakeTool(t, &args)

	pages, err := backend.Rasterize(context.Background(), minimalPDF(3), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, []byte("jpeg1"), pages[0].Data)
	assert.Equal(t, 3, pages[2].PageNumber)

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-l 3")
	assert.Contains(t, joined, "-r 144")
	assert.Contains(t, joined, "quality=95")
}

func TestToolBackend_StagesInScratchAndCleansUp(t *testing.T) {
	root := t.TempDir()
	var args []string
	backend := NewPdftoppmBackend("pdftoppm", nil).(*toolBackend)
	backend.run = fakeTool(t, &args)
	backend.scratch = func() interfaces.TempFileManager {
		return utils.NewSimpleTempManager(root, nil)
	}

	pages, err := backend.Rasterize(context.Background(), minimalPDF(2), DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, pages, 2)

	input := args[len(args)-2]
	assert.True(t, strings.HasPrefix(input, root), "input should be staged under the scratch root")

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPdftoppmBackend_LimitsLongDocuments(t *testing.T) {
	var args []string
	backend := NewPdftoppmBackend("pdftoppm", nil).(*toolBackend)
	backend.run = fakeTool(t, &args)

	pages, err := backend.Rasterize(context.Background(), minimalPDF(9), DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, pages, 5)
	assert.Contains(t, strings.Join(args, " "), "-l 5")
}

func TestToolBackend_FailureClassification(t *testing.T) {
	backend := NewGhostscriptBackend("gs", nil).(*toolBackend)
	backend.run = func(context.Context, string, ...string) ([]byte, error) {
		return []byte("This file requires a password for access."), errors.New("exit status 1")
	}

	_, err := backend.Rasterize(context.Background(), minimalPDF(1), DefaultOptions())
	assert.True(t, utils.IsType(err, utils.ErrorTypePasswordProtected))
}

func TestClassifyToolFailure(t *testing.T) {
	err := classifyToolFailure("pdftoppm", nil, &exec.Error{Name: "pdftoppm", Err: exec.ErrNotFound})
	assert.True(t, utils.IsType(err, utils.ErrorTypeRendererUnavailable))

	err = classifyToolFailure("pdftoppm", []byte("Syntax Error: Couldn't find trailer dictionary"), errors.New("exit status 1"))
	assert.True(t, utils.IsType(err, utils.ErrorTypeCorruptDocument))

	err = classifyToolFailure("gs", nil, errors.New("exit status 2"))
	assert.EqualError(t, err, "gs: exit status 2")
}

func TestCollectPages_OrdersNumerically(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []int{10, 2, 1} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("page-%d.jpg", n)), []byte{byte(n)}, 0o644))
	}

	pages, err := collectPages(dir)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, []byte{1}, pages[0].Data)
	assert.Equal(t, []byte{2}, pages[1].Data)
	assert.Equal(t, []byte{10}, pages[2].Data)
}

func TestToolBackend_Available(t *testing.T) {
	assert.False(t, NewGhostscriptBackend("", nil).Available())
	assert.False(t, NewPdftoppmBackend("/definitely/not/here/pdftoppm", nil).Available())
}
