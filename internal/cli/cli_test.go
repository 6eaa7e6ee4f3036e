package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LeJamon/goTernaryMerkle/internal/core/tmtree"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default so that runs do not leak
// state into each other through the package-level flag variables.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

type env struct {
	dir  string
	conf string
}

func newEnv(t *testing.T, extra string) *env {
	t.Helper()
	dir := t.TempDir()
	conf := filepath.Join(dir, "tmtree.toml")
	content := "[log]\nlevel = \"error\"\n" + extra
	require.NoError(t, os.WriteFile(conf, []byte(content), 0644))
	return &env{dir: dir, conf: conf}
}

func (e *env) path(name string) string {
	return filepath.Join(e.dir, name)
}

func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--conf", e.conf}, args...))

	err := rootCmd.Execute()
	return out.String(), err
}

func (e *env) writeBlocks(t *testing.T, lines ...string) string {
	t.Helper()
	p := e.path("blocks.txt")
	require.NoError(t, os.WriteFile(p, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return p
}

func expectedRoot(t *testing.T, blocks ...string) string {
	t.Helper()
	data := make([][]byte, len(blocks))
	for i, b := range blocks {
		data[i] = []byte(b)
	}
	tree, err := tmtree.New()
	require.NoError(t, err)
	require.NoError(t, tree.Build(data))
	root, err := tree.RootHash()
	require.NoError(t, err)
	return formatHash(root)
}

func TestBuildAndRoot(t *testing.T) {
	e := newEnv(t, "")
	input := e.writeBlocks(t, "block1", "block2", "block3", "block4")
	snap := e.path("tree.snap")

	out, err := e.run(t, "build", "--input", input, "--out", snap)
	require.NoError(t, err)
	want := expectedRoot(t, "block1", "block2", "block3", "block4")
	assert.Contains(t, out, "root:   "+want)
	assert.Contains(t, out, "leaves: 4 (padded 6)")
	assert.Contains(t, out, "nodes:  9")
	assert.Contains(t, out, "height: 3")

	out, err = e.run(t, "root", "--snapshot", snap)
	require.NoError(t, err)
	assert.Equal(t, want+"\n", out)
}

func TestBuildFromDirectory(t *testing.T) {
	e := newEnv(t, "")
	dir := e.path("blocks")
	require.NoError(t, os.Mkdir(dir, 0755))
	for name, content := range map[string]string{"a": "block1", "b": "block2", "c": "block3"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0755))

	out, err := e.run(t, "build", "-i", dir, "-o", e.path("tree.snap"))
	require.NoError(t, err)
	assert.Contains(t, out, expectedRoot(t, "block1", "block2", "block3"))
	assert.Contains(t, out, "leaves: 3 (padded 3)")
}

func TestBuildErrors(t *testing.T) {
	e := newEnv(t, "")

	_, err := e.run(t, "build", "--input", e.path("missing.txt"), "--out", e.path("x.snap"))
	assert.Error(t, err)

	empty := e.path("empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = e.run(t, "build", "--input", empty, "--out", e.path("x.snap"))
	assert.ErrorIs(t, err, tmtree.ErrEmptyInput)

	_, err = e.run(t, "build", "--input", empty)
	assert.ErrorContains(t, err, "out")
}

func TestVerifyAndUpdate(t *testing.T) {
	e := newEnv(t, "")
	input := e.writeBlocks(t, "block1", "block2", "block3")
	snap := e.path("tree.snap")
	_, err := e.run(t, "build", "--input", input, "--out", snap)
	require.NoError(t, err)

	out, err := e.run(t, "verify", "--snapshot", snap, "--index", "1", "--data", "block2")
	require.NoError(t, err)
	assert.Equal(t, "valid\n", out)

	out, err = e.run(t, "verify", "--snapshot", snap, "--index", "1", "--data", "nope")
	assert.ErrorIs(t, err, errNotVerified)
	assert.Equal(t, "invalid\n", out)

	_, err = e.run(t, "verify", "--snapshot", snap, "--index", "3", "--data", "")
	assert.ErrorIs(t, err, tmtree.ErrInvalidIndex)

	out, err = e.run(t, "update", "--snapshot", snap, "--set", "1=new_block2")
	require.NoError(t, err)
	assert.Contains(t, out, expectedRoot(t, "block1", "new_block2", "block3"))

	_, err = e.run(t, "verify", "--snapshot", snap, "--index", "1", "--data", "new_block2")
	require.NoError(t, err)
	_, err = e.run(t, "verify", "--snapshot", snap, "--index", "1", "--data", "block2")
	assert.ErrorIs(t, err, errNotVerified)
}

func TestBatchUpdateToNewFile(t *testing.T) {
	e := newEnv(t, "")
	input := e.writeBlocks(t, "a", "b", "c", "d", "e")
	snap := e.path("tree.snap")
	_, err := e.run(t, "build", "--input", input, "--out", snap)
	require.NoError(t, err)
	original, err := e.run(t, "root", "--snapshot", snap)
	require.NoError(t, err)

	next := e.path("next.snap")
	out, err := e.run(t, "update", "-s", snap, "--set", "0=x", "--set", "4=y=z", "--out", next)
	require.NoError(t, err)
	assert.Contains(t, out, "updated 2 leaves")
	assert.Contains(t, out, expectedRoot(t, "x", "b", "c", "d", "y=z"))

	unchanged, err := e.run(t, "root", "--snapshot", snap)
	require.NoError(t, err)
	assert.Equal(t, original, unchanged)

	_, err = e.run(t, "update", "-s", snap, "--set", "nine=x")
	assert.Error(t, err)
	_, err = e.run(t, "update", "-s", snap, "--set", "1=x", "--set", "1=y")
	assert.ErrorContains(t, err, "more than once")
	_, err = e.run(t, "update", "-s", snap, "--set", "5=x")
	assert.ErrorIs(t, err, tmtree.ErrInvalidIndex)
}

func TestProveAndVerifyProof(t *testing.T) {
	e := newEnv(t, "[snapshot]\nformat = \"msgpack\"\ncompression = \"lz4\"\n")
	input := e.writeBlocks(t, "block1", "block2", "block3", "block4", "block5")
	snap := e.path("tree.snap")
	_, err := e.run(t, "build", "--input", input, "--out", snap)
	require.NoError(t, err)
	root := expectedRoot(t, "block1", "block2", "block3", "block4", "block5")

	proof := e.path("leaf4.proof")
	out, err := e.run(t, "prove", "--snapshot", snap, "--index", "4", "--out", proof)
	require.NoError(t, err)
	assert.Contains(t, out, "leaf 4: 2 levels, 3 siblings")

	dataFile := e.path("leaf.bin")
	require.NoError(t, os.WriteFile(dataFile, []byte("block5"), 0644))

	out, err = e.run(t, "verify-proof", "--proof", proof, "--root", root, "--data-file", dataFile)
	require.NoError(t, err)
	assert.Equal(t, "valid\n", out)

	_, err = e.run(t, "verify-proof", "--proof", proof, "--root", "0x"+root, "--data", "block5")
	require.NoError(t, err)

	_, err = e.run(t, "verify-proof", "--proof", proof, "--root", root, "--data", "block4")
	assert.ErrorIs(t, err, errNotVerified)

	_, err = e.run(t, "verify-proof", "--proof", proof, "--root", "abcd", "--data", "block5")
	assert.ErrorContains(t, err, "32 bytes")

	_, err = e.run(t, "verify-proof", "--proof", proof, "--root", root, "--data", "x", "--data-file", dataFile)
	assert.ErrorContains(t, err, "mutually exclusive")
}

func TestCheck(t *testing.T) {
	e := newEnv(t, "")
	input := e.writeBlocks(t, "block1", "block2", "block3", "block4")
	snap := e.path("tree.snap")
	_, err := e.run(t, "build", "--input", input, "--out", snap)
	require.NoError(t, err)

	out, err := e.run(t, "check", "--snapshot", snap)
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	// Forge the content of leaf 0 while keeping its stored digest.
	raw, err := os.ReadFile(snap)
	require.NoError(t, err)
	forged := bytes.Replace(raw, []byte("YmxvY2sx"), []byte("Zm9yZ2Vk"), 1)
	require.NotEqual(t, raw, forged, "leaf content is expected base64 encoded in json snapshots")
	require.NoError(t, os.WriteFile(snap, forged, 0644))

	_, err = e.run(t, "check", "--snapshot", snap)
	assert.ErrorIs(t, err, tmtree.ErrInvariant)
}

func TestStats(t *testing.T) {
	e := newEnv(t, "")
	input := e.writeBlocks(t, "block1", "block2", "block3", "block4")
	snap := e.path("tree.snap")
	_, err := e.run(t, "build", "--input", input, "--out", snap)
	require.NoError(t, err)

	out, err := e.run(t, "stats", "--snapshot", snap)
	require.NoError(t, err)
	assert.Contains(t, out, "tmtree_verifications_total 4\n")
	assert.Contains(t, out, "tmtree_leaves 4\n")
	assert.Contains(t, out, "tmtree_nodes 9\n")
}

func TestLoadSnapshotWithWrongFormat(t *testing.T) {
	e := newEnv(t, "")
	input := e.writeBlocks(t, "block1")
	snap := e.path("tree.snap")
	_, err := e.run(t, "build", "--input", input, "--out", snap)
	require.NoError(t, err)

	other := newEnv(t, "[snapshot]\ncompression = \"lz4\"\n")
	_, err = other.run(t, "root", "--snapshot", snap)
	assert.ErrorIs(t, err, tmtree.ErrSerialization)
}

func TestInvalidConfig(t *testing.T) {
	e := newEnv(t, "[tree]\nhash_algorithm = \"md5\"\n")
	_, err := e.run(t, "version")
	assert.ErrorContains(t, err, "hash_algorithm")
}

func TestVersion(t *testing.T) {
	e := newEnv(t, "")
	out, err := e.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tmtree version "+rootCmd.Version)
	assert.Contains(t, out, "Go version")
}

func TestReadBlocksLines(t *testing.T) {
	e := newEnv(t, "")
	p := e.path("lines.txt")
	require.NoError(t, os.WriteFile(p, []byte("a\n\nc"), 0644))

	blocks, err := readBlocks(p)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a"), {}, []byte("c")}, blocks)
}
