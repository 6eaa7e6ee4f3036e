package cli

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/LeJamon/goTernaryMerkle/internal/core/tmtree"
	"go.uber.org/zap"
)

// readBlocks reads the input of the build command. A directory yields one
// block per regular file in name order; a file yields one block per line.
func readBlocks(path string) ([][]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		content = bytes.TrimSuffix(content, []byte("\n"))
		if len(content) == 0 {
			return nil, nil
		}
		return bytes.Split(content, []byte("\n")), nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var blocks [][]byte
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(path, e.Name()))
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, data)
	}
	return blocks, nil
}

// newTree creates an empty tree from the loaded configuration.
func newTree() (*tmtree.Tree, error) {
	opts, err := cfg.TreeOptions(logger)
	if err != nil {
		return nil, err
	}
	return tmtree.New(opts...)
}

// loadTree restores the tree held in a snapshot file.
func loadTree(path string) (*tmtree.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	codec, err := cfg.Codec()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.TreeOptions(logger)
	if err != nil {
		return nil, err
	}

	tree, err := codec.LoadTree(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", path, err)
	}
	logger.Debug("snapshot loaded", zap.String("path", path), zap.Int("bytes", len(data)))
	return tree, nil
}

// saveTree writes the tree as a snapshot file.
func saveTree(tree *tmtree.Tree, path string) error {
	snap, err := tree.Serialize()
	if err != nil {
		return err
	}
	codec, err := cfg.Codec()
	if err != nil {
		return err
	}
	data, err := codec.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	logger.Debug("snapshot written", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

// leafInput returns the leaf content given either inline or as a file.
func leafInput(data, dataFile string) ([]byte, error) {
	if dataFile != "" {
		if data != "" {
			return nil, fmt.Errorf("--data and --data-file are mutually exclusive")
		}
		return os.ReadFile(dataFile)
	}
	return []byte(data), nil
}

func parseRoot(s string) ([32]byte, error) {
	var root [32]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return root, fmt.Errorf("invalid root hash: %w", err)
	}
	if len(raw) != len(root) {
		return root, fmt.Errorf("root hash must be %d bytes, got %d", len(root), len(raw))
	}
	copy(root[:], raw)
	return root, nil
}

func formatHash(h [32]byte) string {
	return hex.EncodeToString(h[:])
}
