package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yigit/photoalbum/internal/app/models"
	"github.com/yigit/photoalbum/internal/app/services"
)

func newPhotosCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photos",
		Short: "Match photo files to students by registration number",
	}
	cmd.AddCommand(newPhotosUploadCmd(opts))
	cmd.AddCommand(newPhotosScanCmd(opts))
	return cmd
}

func newPhotosUploadCmd(opts *rootOptions) *cobra.Command {
	var archivePath string

	cmd := &cobra.Command{
		Use:   "upload [FILE...]",
		Short: "Copy matching photos from an archive and/or files into the photo store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if archivePath == "" && len(args) == 0 {
				return withCode(exitUsage, errors.New("either --archive or at least one FILE is required"))
			}

			env, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			command := services.UploadPhotosCommand{ArchivePath: archivePath}
			for _, p := range args {
				command.Files = append(command.Files, localFile(p))
			}

			outcome, err := env.deps.Services.Photos.UploadPhotos(cmd.Context(), command)
			if outcome != nil {
				if werr := writeJSONLine(cmd.OutOrStdout(), outcome); werr != nil {
					return errors.Join(err, werr)
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&archivePath, "archive", "", "ZIP or RAR archive of photos")
	return cmd
}

func localFile(path string) services.UploadedFile {
	return services.UploadedFile{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

func newPhotosScanCmd(opts *rootOptions) *cobra.Command {
	var progress bool

	cmd := &cobra.Command{
		Use:   "scan DIR",
		Short: "Record the path of every matching photo under DIR without copying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := filepath.Abs(args[0])
			if err != nil {
				return withCode(exitUsage, fmt.Errorf("resolve %s: %w", args[0], err))
			}

			env, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			var report func(models.ScanOutcome)
			if progress {
				errOut := cmd.ErrOrStderr()
				report = func(o models.ScanOutcome) {
					fmt.Fprintf(errOut, "found=%d matched=%d missing=%d failed_batches=%d\n",
						o.Found, o.Matched, o.MissingCount, o.FailedBatches)
				}
			}

			outcome, err := env.deps.Services.Scans.Scan(cmd.Context(), dir, report)
			if outcome != nil {
				if werr := writeJSONLine(cmd.OutOrStdout(), outcome); werr != nil {
					return errors.Join(err, werr)
				}
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&progress, "progress", false, "Print progress to stderr after every batch")
	return cmd
}
