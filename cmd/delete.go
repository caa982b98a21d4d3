package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <identity>",
	Short: "Delete a group's file",
	Long:  "Remove a group's persisted file. Asks for confirmation unless --yes is given.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	identity := args[0]

	_, found, err := e.gateway.Load(identity)
	if err == nil && !found {
		return fmt.Errorf("group not found: %s", identity)
	}
	// A corrupt file is still deletable; that is the recovery path.

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		if !confirm(cmd, fmt.Sprintf("Delete group %s? [y/N] ", identity)) {
			fmt.Fprintln(cmd.OutOrStdout(), "aborted")
			return nil
		}
	}

	if err := e.gateway.Delete(identity); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", identity)
	return nil
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
