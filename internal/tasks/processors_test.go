package tasks

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/mpdirectory/internal/scheduler"
)

type stubRunner struct {
	summary *scheduler.Summary
	err     error
	calls   int
}

func (s *stubRunner) RunOnce(context.Context) (*scheduler.Summary, error) {
	s.calls++
	return s.summary, s.err
}

type stubSideloader struct {
	mpID     uint
	photoURL string
	err      error
	done     chan struct{}
}

func (s *stubSideloader) Sideload(_ context.Context, mpID uint, photoURL string) error {
	s.mpID = mpID
	s.photoURL = photoURL
	if s.done != nil {
		close(s.done)
	}
	return s.err
}

func TestImportRunProcessor(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		runner := &stubRunner{summary: &scheduler.Summary{Batches: 2, Imported: 150, Complete: true}}
		err := ImportRunProcessor(runner)(context.Background(), ImportRunTask{RequestedBy: "admin"})
		assert.NoError(t, err)
		assert.Equal(t, 1, runner.calls)
	})

	t.Run("stopped run fails the task", func(t *testing.T) {
		runner := &stubRunner{summary: &scheduler.Summary{Offset: 100, Error: "API request failed with status code 503"}}
		err := ImportRunProcessor(runner)(context.Background(), ImportRunTask{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "offset 100")
	})

	t.Run("run in progress is not an error", func(t *testing.T) {
		runner := &stubRunner{err: scheduler.ErrImportInProgress}
		err := ImportRunProcessor(runner)(context.Background(), ImportRunTask{})
		assert.NoError(t, err)
	})

	t.Run("tracking error", func(t *testing.T) {
		runner := &stubRunner{err: errors.New("database is locked")}
		err := ImportRunProcessor(runner)(context.Background(), ImportRunTask{})
		assert.ErrorContains(t, err, "database is locked")
	})

	t.Run("nil runner", func(t *testing.T) {
		err := ImportRunProcessor(nil)(context.Background(), ImportRunTask{})
		assert.Error(t, err)
	})
}

func TestSideloadPhotoProcessor(t *testing.T) {
	sideloader := &stubSideloader{}
	err := SideloadPhotoProcessor(sideloader)(context.Background(), SideloadPhotoTask{MPID: 7, PhotoURL: "https://example.com/7.jpg"})
	require.NoError(t, err)
	assert.Equal(t, uint(7), sideloader.mpID)
	assert.Equal(t, "https://example.com/7.jpg", sideloader.photoURL)

	sideloader.err = errors.New("unexpected content type")
	err = SideloadPhotoProcessor(sideloader)(context.Background(), SideloadPhotoTask{MPID: 7})
	assert.ErrorContains(t, err, "MP 7")
}

func TestPhotoEnqueuer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), cfg)
	require.NoError(t, err)
	defer client.Close()

	sideloader := &stubSideloader{done: make(chan struct{})}
	client.Register(NewSideloadPhotoQueue(sideloader))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	enqueuer := NewPhotoEnqueuer(client)
	require.NoError(t, enqueuer.Sideload(context.Background(), 12, "https://example.com/12.jpg"))

	select {
	case <-sideloader.done:
		assert.Equal(t, uint(12), sideloader.mpID)
	case <-time.After(5 * time.Second):
		t.Fatal("photo task was not executed within timeout")
	}
}
