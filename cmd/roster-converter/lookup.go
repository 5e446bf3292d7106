package main

import (
	"encoding/json"
	"fmt"

	"fee-desk/internal/roster"
	"fee-desk/pkg/errors"

	"github.com/spf13/cobra"
)

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <roster.json> <admission-no>",
		Short: "Find a student in a roster by admission number",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			students, err := roster.LoadFile(args[0])
			if err != nil {
				return err
			}

			student, ok := students.Find(args[1])
			if !ok {
				return fmt.Errorf("%q: %w", args[1], errors.ErrStudentNotFound)
			}

			out, err := json.MarshalIndent(student, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
