package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fteboard/internal/classify"
	"fteboard/internal/core"
)

type classification struct {
	ProjectName  string        `json:"projectName"`
	ActivityName string        `json:"activityName"`
	Description  string        `json:"description,omitempty"`
	Strict       bool          `json:"strict"`
	Category     core.Category `json:"category"`
}

func newClassifyCmd(opts *options) *cobra.Command {
	var c classification
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify one timesheet row against the active keywords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := opts.open(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			keywords, err := s.Planning.Keywords(ctx, true)
			if err != nil {
				return err
			}
			c.Category = classify.CategorizeActivity(c.ActivityName, c.Description, c.ProjectName, keywords, c.Strict)

			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), c)
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.Category)
			return nil
		},
	}
	cmd.Flags().StringVar(&c.ProjectName, "project", "", "Project name")
	cmd.Flags().StringVar(&c.ActivityName, "activity", "", "Activity name")
	cmd.Flags().StringVar(&c.Description, "description", "", "Row description")
	cmd.Flags().BoolVar(&c.Strict, "strict", false, "Only accept OPS categories on OPS projects")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("activity")
	return cmd
}
