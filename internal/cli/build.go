package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	buildInput  string
	buildOutput string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a tree and write its snapshot",
	Long: `Build a ternary Merkle tree over the blocks read from --input and write
the snapshot to --out.

If --input is a directory, every regular file in it is one block, in name order.
Otherwise every line of the file is one block.

Example:
    tmtree build --input blocks.txt --out tree.snap`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildInput, "input", "i", "", "file (one block per line) or directory (one block per file)")
	buildCmd.Flags().StringVarP(&buildOutput, "out", "o", "", "snapshot file to write")

	buildCmd.MarkFlagRequired("input")
	buildCmd.MarkFlagRequired("out")
}

func runBuild(cmd *cobra.Command, args []string) error {
	blocks, err := readBlocks(buildInput)
	if err != nil {
		return fmt.Errorf("failed to read blocks: %w", err)
	}

	tree, err := newTree()
	if err != nil {
		return err
	}
	if err := tree.Build(blocks); err != nil {
		return err
	}
	if err := saveTree(tree, buildOutput); err != nil {
		return err
	}

	root, err := tree.RootHash()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "root:   %s\n", formatHash(root))
	fmt.Fprintf(out, "leaves: %d (padded %d)\n", tree.LeafCount(), tree.PaddedLeafCount())
	fmt.Fprintf(out, "nodes:  %d\n", tree.NodeCount())
	fmt.Fprintf(out, "height: %d\n", tree.Height())
	return nil
}
