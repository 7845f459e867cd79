package mpapi

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	pages []*Page
	err   error
	calls []int
}

func (f *fakeFetcher) GetMPs(ctx context.Context, page, perPage int) (*Page, error) {
	f.calls = append(f.calls, page)
	if f.err != nil {
		return nil, f.err
	}
	if page > len(f.pages) {
		return &Page{Records: []Record{}}, nil
	}
	return f.pages[page-1], nil
}

func records(from, n int) []Record {
	out := make([]Record, n)
	for i := range out {
		out[i] = Record{"id": fmt.Sprint(from + i)}
	}
	return out
}

func boolPtr(b bool) *bool { return &b }

func TestWalk_StopsOnShortPage(t *testing.T) {
	fetcher := &fakeFetcher{pages: []*Page{
		{Records: records(1, 10)},
		{Records: records(11, 10)},
		{Records: records(21, 3)},
	}}

	got, err := Walk(context.Background(), fetcher, WalkOptions{PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, got, 23)
	assert.Equal(t, []int{1, 2, 3}, fetcher.calls)
	assert.Equal(t, "1", got[0]["id"])
	assert.Equal(t, "23", got[22]["id"])
}

func TestWalk_StopsOnEmptyPage(t *testing.T) {
	fetcher := &fakeFetcher{pages: []*Page{{Records: records(1, 10)}}}

	got, err := Walk(context.Background(), fetcher, WalkOptions{PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, got, 10)
	assert.Equal(t, []int{1, 2}, fetcher.calls)
}

func TestWalk_TruncatesAtLimit(t *testing.T) {
	fetcher := &fakeFetcher{pages: []*Page{
		{Records: records(1, 10)},
		{Records: records(11, 10)},
	}}

	got, err := Walk(context.Background(), fetcher, WalkOptions{PageSize: 10, Limit: 15})
	require.NoError(t, err)
	assert.Len(t, got, 15)
	assert.Equal(t, "15", got[14]["id"])
}

func TestWalk_HonoursHasNext(t *testing.T) {
	t.Run("false stops on a full page", func(t *testing.T) {
		fetcher := &fakeFetcher{pages: []*Page{
			{Records: records(1, 10), HasNext: boolPtr(false)},
			{Records: records(11, 10)},
		}}
		got, err := Walk(context.Background(), fetcher, WalkOptions{PageSize: 10})
		require.NoError(t, err)
		assert.Len(t, got, 10)
	})

	t.Run("true continues past a short page", func(t *testing.T) {
		fetcher := &fakeFetcher{pages: []*Page{
			{Records: records(1, 4), HasNext: boolPtr(true)},
			{Records: records(5, 4), HasNext: boolPtr(false)},
		}}
		got, err := Walk(context.Background(), fetcher, WalkOptions{PageSize: 10})
		require.NoError(t, err)
		assert.Len(t, got, 8)
	})
}

func TestWalk_SinglePage(t *testing.T) {
	fetcher := &fakeFetcher{pages: []*Page{
		{Records: records(1, 460)},
		{Records: records(1, 460)},
	}}

	got, err := Walk(context.Background(), fetcher, WalkOptions{PageSize: 100, SinglePage: true})
	require.NoError(t, err)
	assert.Len(t, got, 460)
	assert.Equal(t, []int{1}, fetcher.calls)
}

func TestWalk_ErrorAbortsWithoutPartialResult(t *testing.T) {
	boom := &StatusError{Code: 500}
	fetcher := &fakeFetcher{err: boom}

	got, err := Walk(context.Background(), fetcher, WalkOptions{PageSize: 10})
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, boom))
}
