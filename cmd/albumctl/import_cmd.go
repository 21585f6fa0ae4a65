package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yigit/photoalbum/internal/app/models"
	"github.com/yigit/photoalbum/internal/app/services"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import states, schools and students from DBF, CSV or XLSX extracts",
	}

	cmd.AddCommand(newStageCmd(opts, models.StageStates, func(s services.ImportService) stageRunner { return s.ImportStates }))
	cmd.AddCommand(newStageCmd(opts, models.StageSchools, func(s services.ImportService) stageRunner { return s.ImportSchools }))
	cmd.AddCommand(newStageCmd(opts, models.StageStudents, func(s services.ImportService) stageRunner { return s.ImportStudents }))
	cmd.AddCommand(newImportAllCmd(opts))
	return cmd
}

type stageRunner func(ctx context.Context, path string) (*models.StageResult, error)

func newStageCmd(opts *rootOptions, stage string, pick func(services.ImportService) stageRunner) *cobra.Command {
	return &cobra.Command{
		Use:   stage + " FILE",
		Short: fmt.Sprintf("Import %s from one extract", stage),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			res, err := pick(env.deps.Services.Import)(cmd.Context(), args[0])
			if res != nil {
				if werr := writeJSONLine(cmd.OutOrStdout(), res); werr != nil {
					return errors.Join(err, werr)
				}
			}
			return err
		},
	}
}

func newImportAllCmd(opts *rootOptions) *cobra.Command {
	var files services.ImportFiles

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Run the supplied stages in order: states, schools, students",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			outcome, err := env.deps.Services.Import.ImportAll(cmd.Context(), files)
			if outcome != nil {
				if werr := writeJSONLine(cmd.OutOrStdout(), outcome); werr != nil {
					return errors.Join(err, werr)
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&files.States, "states", "", "State extract")
	cmd.Flags().StringVar(&files.Schools, "schools", "", "School extract")
	cmd.Flags().StringVar(&files.Students, "students", "", "Student extract")
	cmd.MarkFlagsOneRequired("states", "schools", "students")
	return cmd
}
