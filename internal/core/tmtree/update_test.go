package tmtree

import (
	"math/rand"
	"testing"

	"github.com/LeJamon/goTernaryMerkle/internal/crypto/hashing"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateScenarioC(t *testing.T) {
	tree := buildTree(t, makeBlocks(5))
	before := rootOf(t, tree)

	require.NoError(t, tree.Update(2, []byte("new_block3")))

	after := rootOf(t, tree)
	assert.NotEqual(t, before, after)

	ok, err := tree.Verify(2, []byte("new_block3"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tree.Verify(2, []byte("block3"))
	require.NoError(t, err)
	assert.False(t, ok)

	data, err := tree.LeafData(2)
	require.NoError(t, err)
	assert.Equal(t, []byte("new_block3"), data)
	assert.Equal(t, 5, tree.LeafCount())
}

func TestUpdateMatchesFreshBuild(t *testing.T) {
	blocks := makeBlocks(40)
	tree := buildTree(t, blocks)

	blocks[17] = []byte("replaced")
	require.NoError(t, tree.Update(17, blocks[17]))

	assert.Equal(t, rootOf(t, buildTree(t, blocks)), rootOf(t, tree))
}

func TestUpdateSameContentKeepsRoot(t *testing.T) {
	tree := buildTree(t, makeBlocks(5))
	before := rootOf(t, tree)

	require.NoError(t, tree.Update(2, []byte("block3")))
	assert.Equal(t, before, rootOf(t, tree))
}

func TestUpdateErrors(t *testing.T) {
	tree := buildTree(t, makeBlocks(4))
	before := rootOf(t, tree)

	assert.ErrorIs(t, tree.Update(4, []byte("x")), ErrInvalidIndex)
	assert.ErrorIs(t, tree.Update(-1, []byte("x")), ErrInvalidIndex)
	assert.Equal(t, before, rootOf(t, tree))
}

func TestUpdateMissingParent(t *testing.T) {
	tree := buildTree(t, makeBlocks(4))
	before := rootOf(t, tree)

	// Sever leaf 1 from its parent.
	tree.nodes[1].Parent = NoParent

	err := tree.Update(1, []byte("x"))
	assert.ErrorIs(t, err, ErrMissingParent)
	assert.Equal(t, before, rootOf(t, tree))

	data, err := tree.LeafData(1)
	require.NoError(t, err)
	assert.Equal(t, []byte("block2"), data)

	err = tree.BatchUpdate(map[int][]byte{0: []byte("y"), 1: []byte("x")})
	assert.ErrorIs(t, err, ErrMissingParent)
	data, err = tree.LeafData(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("block1"), data)
}

func TestBatchUpdateMatchesSequential(t *testing.T) {
	updates := map[int][]byte{
		0:  []byte("u0"),
		4:  []byte("u4"),
		5:  []byte("u5"),
		13: []byte("u13"),
		26: []byte("u26"),
	}

	batched := buildTree(t, makeBlocks(27))
	require.NoError(t, batched.BatchUpdate(updates))

	sequential := buildTree(t, makeBlocks(27))
	for idx, data := range updates {
		require.NoError(t, sequential.Update(idx, data))
	}

	blocks := makeBlocks(27)
	for idx, data := range updates {
		blocks[idx] = data
	}
	fresh := buildTree(t, blocks)

	assert.Equal(t, rootOf(t, fresh), rootOf(t, batched))
	assert.Equal(t, rootOf(t, fresh), rootOf(t, sequential))

	for idx, data := range updates {
		ok, err := batched.Verify(idx, data)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestBatchUpdateOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	blocks := makeBlocks(50)

	updates := make(map[int][]byte)
	for len(updates) < 20 {
		idx := rng.Intn(len(blocks))
		updates[idx] = []byte{byte(rng.Intn(256)), byte(idx)}
	}

	var roots [][32]byte
	var tree *Tree
	for i := 0; i < 5; i++ {
		tree = buildTree(t, blocks)
		require.NoError(t, tree.BatchUpdate(updates))
		roots = append(roots, rootOf(t, tree))
	}
	for _, r := range roots[1:] {
		assert.Equal(t, roots[0], r)
	}

	res, err := tree.CheckInvariants()
	require.NoError(t, err)
	assert.False(t, res.HasErrors(), res.String())
}

func TestBatchUpdateErrors(t *testing.T) {
	tree := buildTree(t, makeBlocks(6))
	before := rootOf(t, tree)

	err := tree.BatchUpdate(map[int][]byte{0: []byte("ok"), 6: []byte("bad")})
	assert.ErrorIs(t, err, ErrInvalidIndex)
	assert.Equal(t, before, rootOf(t, tree))

	data, err := tree.LeafData(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("block1"), data)

	require.NoError(t, tree.BatchUpdate(nil))
	require.NoError(t, tree.BatchUpdate(map[int][]byte{}))
	assert.Equal(t, before, rootOf(t, tree))
}

func TestUpdateHashCallCount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sha := hashing.Sha512HalfHasher{}
	mock := NewMockHasher(ctrl)
	mock.EXPECT().Name().Return("mock").AnyTimes()

	// 9 leaves + 3 internal nodes + 1 root.
	build := mock.EXPECT().Hash(gomock.Any()).DoAndReturn(sha.Hash).Times(13)
	// 1 leaf + 2 ancestors.
	mock.EXPECT().Hash(gomock.Any()).DoAndReturn(sha.Hash).Times(3).After(build)

	tree := newTestTree(t, WithHasher(mock), WithCache(false, 0), WithProofCache(0))
	require.NoError(t, tree.Build(makeBlocks(9)))
	require.NoError(t, tree.Update(4, []byte("changed")))
}
