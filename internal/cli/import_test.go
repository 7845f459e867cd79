package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/mpdirectory/internal/importer"
	"github.com/mrlokans/mpdirectory/internal/scheduler"
)

type scriptedRunner struct {
	results []*importer.Result
	err     error
	offsets []int
}

func (r *scriptedRunner) RunImport(ctx context.Context, offset int) (*importer.Result, error) {
	r.offsets = append(r.offsets, offset)
	if r.err != nil {
		return nil, r.err
	}
	result := r.results[0]
	r.results = r.results[1:]
	return result, nil
}

func TestRunBatches_UntilComplete(t *testing.T) {
	runner := &scriptedRunner{results: []*importer.Result{
		{Imported: 2, Offset: 2, Message: "Imported 2 MPs, updated 0 MPs. More records remain."},
		{Imported: 1, Updated: 1, Offset: 4, Failed: []importer.FailedRecord{{ID: "9", Reason: "boom"}}, Message: "Imported 1 MPs, updated 1 MPs."},
		{Offset: 4, Complete: true, Message: "Import complete."},
	}}
	var out bytes.Buffer

	total, err := runBatches(context.Background(), runner, 0, false, &out)

	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4}, runner.offsets)
	assert.Equal(t, 3, total.Batches)
	assert.Equal(t, 3, total.Imported)
	assert.Equal(t, 1, total.Updated)
	assert.Equal(t, 1, total.Failed)
	assert.True(t, total.Complete)
	assert.Contains(t, out.String(), "[ERROR] 9: boom")
}

func TestRunBatches_Once(t *testing.T) {
	runner := &scriptedRunner{results: []*importer.Result{
		{Imported: 2, Offset: 12, Message: "more"},
		{Complete: true},
	}}

	total, err := runBatches(context.Background(), runner, 10, true, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, []int{10}, runner.offsets)
	assert.Equal(t, 12, total.Offset)
	assert.False(t, total.Complete)
}

func TestRunBatches_Stalled(t *testing.T) {
	runner := &scriptedRunner{results: []*importer.Result{
		{Offset: 5, Message: "no progress"},
	}}

	_, err := runBatches(context.Background(), runner, 5, false, &bytes.Buffer{})

	assert.ErrorIs(t, err, ErrStalled)
}

func TestRunBatches_SafetyLimit(t *testing.T) {
	runner := &scriptedRunner{results: []*importer.Result{
		{Offset: scheduler.SafetyOffsetLimit + 1, Message: "huge"},
	}}

	_, err := runBatches(context.Background(), runner, scheduler.SafetyOffsetLimit-1, false, &bytes.Buffer{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "safety limit")
}

func TestRunBatches_Error(t *testing.T) {
	runner := &scriptedRunner{err: errors.New("upstream down")}

	total, err := runBatches(context.Background(), runner, 0, false, &bytes.Buffer{})

	assert.EqualError(t, err, "upstream down")
	assert.Equal(t, 0, total.Batches)
}

func TestRunBatches_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := &scriptedRunner{}

	_, err := runBatches(ctx, runner, 0, false, &bytes.Buffer{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, runner.offsets)
}

func TestImportCommand_ParseFlags(t *testing.T) {
	cmd := NewImportCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-offset", "40", "-once", "-db", "x.db"}))
	assert.Equal(t, 40, cmd.Offset)
	assert.True(t, cmd.Once)
	assert.Equal(t, "x.db", cmd.DatabasePath)

	assert.Error(t, NewImportCommand().ParseFlags([]string{"-offset", "-1"}))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Anna Nowak", describe(map[string]any{"firstLastName": "Anna Nowak"}))
	assert.Equal(t, "Jan Kowalski", describe(map[string]any{"first_name": "Jan", "last_name": "Kowalski"}))
	assert.Equal(t, "(untitled)", describe(map[string]any{"id": 1}))
}
