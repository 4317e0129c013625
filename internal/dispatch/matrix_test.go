package dispatch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildMatrix(t *testing.T) {
	tests := []struct {
		name       string
		count      int
		wantJobs   bool
		wantSlices []Slice
	}{
		{
			name:       "zero pending",
			count:      0,
			wantJobs:   false,
			wantSlices: []Slice{},
		},
		{
			name:     "single row still gets a full batch",
			count:    1,
			wantJobs: true,
			wantSlices: []Slice{
				{WorkerID: 1, Offset: 0, Limit: 250},
			},
		},
		{
			name:     "exact batch boundary",
			count:    500,
			wantJobs: true,
			wantSlices: []Slice{
				{WorkerID: 1, Offset: 0, Limit: 250},
				{WorkerID: 2, Offset: 250, Limit: 250},
			},
		},
		{
			name:     "last slice limit is not trimmed to the remainder",
			count:    999,
			wantJobs: true,
			wantSlices: []Slice{
				{WorkerID: 1, Offset: 0, Limit: 250},
				{WorkerID: 2, Offset: 250, Limit: 250},
				{WorkerID: 3, Offset: 500, Limit: 250},
				{WorkerID: 4, Offset: 750, Limit: 250},
			},
		},
		{
			name:     "backlog beyond capacity is capped at four workers",
			count:    1200,
			wantJobs: true,
			wantSlices: []Slice{
				{WorkerID: 1, Offset: 0, Limit: 250},
				{WorkerID: 2, Offset: 250, Limit: 250},
				{WorkerID: 3, Offset: 500, Limit: 250},
				{WorkerID: 4, Offset: 750, Limit: 250},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasJobs, matrix := BuildMatrix(tt.count)
			assert.Equal(t, tt.wantJobs, hasJobs)
			assert.Equal(t, tt.wantSlices, matrix.Include)
		})
	}
}

func TestBuildMatrixSlicesAreContiguous(t *testing.T) {
	for _, count := range []int{1, 249, 250, 251, 750, 1000} {
		_, matrix := BuildMatrix(count)
		next := 0
		for _, s := range matrix.Include {
			assert.Equal(t, next, s.Offset, "count=%d", count)
			next = s.Offset + s.Limit
		}
	}
}

func TestOutputStdout(t *testing.T) {
	var buf bytes.Buffer
	out := &Output{Stdout: &buf}

	hasJobs, matrix := BuildMatrix(1)
	require.NoError(t, out.Write(hasJobs, matrix))

	assert.Equal(t,
		"has_jobs=true\nmatrix={\"include\":[{\"worker_id\":1,\"offset\":0,\"limit\":250}]}\n",
		buf.String())
}

func TestOutputFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "github_output")
	require.NoError(t, os.WriteFile(path, []byte("existing=1\n"), 0o644))

	out := &Output{Path: path}
	require.NoError(t, out.Write(false, Matrix{Include: []Slice{}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "existing=1\nhas_jobs=false\nmatrix={\"include\":[]}\n", string(data))
}

type stubCounter struct {
	count int
	err   error
}

func (s stubCounter) CountPending(context.Context) (int, error) {
	return s.count, s.err
}

func TestRunEmitsMatrix(t *testing.T) {
	var buf bytes.Buffer
	err := Run(context.Background(), stubCounter{count: 600}, &Output{Stdout: &buf}, zap.NewNop())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "has_jobs=true")
	assert.Contains(t, buf.String(), `"worker_id":3`)
}

func TestRunDegradesOnCountFailure(t *testing.T) {
	var buf bytes.Buffer
	err := Run(context.Background(), stubCounter{err: errors.New("backend down")}, &Output{Stdout: &buf}, zap.NewNop())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "has_jobs=false")
	assert.Contains(t, buf.String(), `"include":[]`)
}
