package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/photoalbum/internal/pkg/apperrors"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"explicit", withCode(exitDB, errors.New("dial")), exitDB},
		{"store write", apperrors.NewStoreWriteError("schools", 2, errors.New("boom")), exitDBWrite},
		{"malformed", apperrors.NewMalformedSourceFileError("a.dbf", errors.New("short header")), exitValidation},
		{"unsupported", fmt.Errorf("stage: %w", apperrors.ErrUnsupportedFormat), exitValidation},
		{"invalid path", apperrors.NewInvalidPathError("x", "not a directory"), exitValidation},
		{"other", errors.New("boom"), exitFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, exitCode(tc.err))
		})
	}
}

func TestWithCodeKeepsCause(t *testing.T) {
	err := withCode(exitUsage, apperrors.ErrBadRequest)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Equal(t, apperrors.ErrBadRequest.Error(), err.Error())
	assert.NoError(t, withCode(exitUsage, nil))
}

func execute(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPhotosUpload_RequiresInput(t *testing.T) {
	_, err := execute("photos", "upload")
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestImportAll_RequiresOneFile(t *testing.T) {
	_, err := execute("import", "all")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "states")
}

func TestStageCommands_ArgCount(t *testing.T) {
	for _, stage := range []string{"states", "schools", "students"} {
		_, err := execute("import", stage)
		assert.Error(t, err, stage)
	}
	_, err := execute("photos", "scan")
	assert.Error(t, err)
}

func TestOutputIsOneJSONLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSONLine(&buf, map[string]string{"path": "a&b"}))
	assert.Equal(t, "{\"path\":\"a&b\"}\n", buf.String())
}
