package lookup

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/sceneflow/internal/fsutil"
)

func entry(cur, prev string) Entry {
	e := Entry{
		Current:  FrameRef{Path: cur},
		Previous: FrameRef{Path: prev},
	}
	e.Current.Pose[0] = 1
	e.Previous.Pose[15] = 1
	return e
}

func TestFragmentName(t *testing.T) {
	assert.Equal(t, "segment-001.fragment", FragmentName("/data/raw/segment-001.record"))
	assert.Equal(t, "plain.fragment", FragmentName("plain"))
}

func TestFragmentRoundTrip(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	entries := []Entry{entry("f1.sff", "f0.sff"), entry("f2.sff", "f1.sff")}

	require.NoError(t, WriteFragment(fs, "out/seg.fragment", entries))

	got, err := ReadFragment(fs, "out/seg.fragment")
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestMerge_PreservesOrder(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	require.NoError(t, WriteFragment(fs, "a.fragment", []Entry{entry("a1", "a0")}))
	require.NoError(t, WriteFragment(fs, "b.fragment", []Entry{entry("b1", "b0")}))

	merged, err := Merge(fs, []string{"a.fragment", "b.fragment"}, "table.bin")
	require.NoError(t, err)

	require.Len(t, merged, 2)
	assert.Equal(t, "a1", merged[0].Current.Path)
	assert.Equal(t, "b1", merged[1].Current.Path)

	fromDisk, err := ReadTable(fs, "table.bin")
	require.NoError(t, err)
	assert.Equal(t, merged, fromDisk)
}

func TestMerge_MissingFragment(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	require.NoError(t, WriteFragment(fs, "a.fragment", []Entry{entry("a1", "a0")}))

	_, err := Merge(fs, []string{"a.fragment", "missing.fragment"}, "table.bin")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFragmentNotFound), "err = %v", err)
	// The failed merge must not leave a partial table behind.
	assert.False(t, fs.Exists("table.bin"))
}

func TestMerge_EmptyFragmentList(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	merged, err := Merge(fs, nil, "table.bin")
	require.NoError(t, err)
	assert.Empty(t, merged)
	assert.True(t, fs.Exists("table.bin"))
}
