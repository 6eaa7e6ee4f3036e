package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	updateSets   []string
	updateOutput string
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Rewrite leaves of a snapshot",
	Long: `Replace the content of one or more leaves and write the updated snapshot,
in place unless --out is given. Each --set takes INDEX=CONTENT; several --set
flags are applied as one batch.

Example:
    tmtree update --snapshot tree.snap --set 1=new_block2 --set 7=other`,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().StringVarP(&snapshotPath, "snapshot", "s", "", "snapshot file")
	updateCmd.Flags().StringArrayVar(&updateSets, "set", nil, "INDEX=CONTENT leaf replacement (repeatable)")
	updateCmd.Flags().StringVarP(&updateOutput, "out", "o", "", "snapshot file to write (default: overwrite --snapshot)")
	updateCmd.MarkFlagRequired("snapshot")
	updateCmd.MarkFlagRequired("set")
}

func parseSets(sets []string) (map[int][]byte, error) {
	updates := make(map[int][]byte, len(sets))
	for _, s := range sets {
		idx, content, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q: expected INDEX=CONTENT", s)
		}
		i, err := strconv.Atoi(strings.TrimSpace(idx))
		if err != nil {
			return nil, fmt.Errorf("invalid --set %q: %w", s, err)
		}
		if _, dup := updates[i]; dup {
			return nil, fmt.Errorf("leaf %d set more than once", i)
		}
		updates[i] = []byte(content)
	}
	return updates, nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	updates, err := parseSets(updateSets)
	if err != nil {
		return err
	}

	tree, err := loadTree(snapshotPath)
	if err != nil {
		return err
	}

	if len(updates) == 1 {
		for i, data := range updates {
			err = tree.Update(i, data)
		}
	} else {
		err = tree.BatchUpdate(updates)
	}
	if err != nil {
		return err
	}

	out := updateOutput
	if out == "" {
		out = snapshotPath
	}
	if err := saveTree(tree, out); err != nil {
		return err
	}

	root, err := tree.RootHash()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "updated %d leaves, root %s\n", len(updates), formatHash(root))
	return nil
}
