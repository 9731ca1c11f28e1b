package export

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/chatmarkmap/chatmarkmap/api/internal/content"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	objects map[string]string
	types   map[string]string
	putErr  error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string]string{}, types: map[string]string{}}
}

func (f *fakeObjects) Put(ctx context.Context, key string, r io.Reader, size int64, ct string) error {
	if f.putErr != nil {
		return f.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if int64(len(b)) != size {
		return errors.New("size mismatch")
	}
	f.objects[key] = string(b)
	f.types[key] = ct
	return nil
}

func (f *fakeObjects) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "https://objects.test/" + key + "?expires=" + expires.String(), nil
}

func TestExportAndLatest(t *testing.T) {
	ctx := context.Background()
	objs := newFakeObjects()
	svc := NewService(objs, NewMemoryLedger(), time.Minute)
	c := &content.Content{ID: "c1", Author: "alice", Content: "# map"}

	none, err := svc.Latest(ctx, "c1")
	require.NoError(t, err)
	require.Nil(t, none)

	rec, err := svc.Export(ctx, c)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(rec.Key, "contents/"))
	require.NotContains(t, rec.Key, "alice")
	require.Contains(t, rec.Key, "/c1/")
	require.Equal(t, "# map", objs.objects[rec.Key])
	require.Equal(t, contentType, objs.types[rec.Key])
	require.Contains(t, rec.URL, rec.Key)
	require.Equal(t, int64(5), rec.Size)

	latest, err := svc.Latest(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, rec.Key, latest.Key)
	require.NotEmpty(t, latest.URL)

	require.NoError(t, svc.Forget(ctx, "c1"))
	gone, err := svc.Latest(ctx, "c1")
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestExport_UploadFailureRecordsNothing(t *testing.T) {
	ctx := context.Background()
	objs := newFakeObjects()
	objs.putErr = errors.New("bucket gone")
	ledger := NewMemoryLedger()
	svc := NewService(objs, ledger, 0)

	_, err := svc.Export(ctx, &content.Content{ID: "c1", Author: "a", Content: "x"})
	require.ErrorIs(t, err, objs.putErr)
	rec, err := ledger.Latest(ctx, "c1")
	require.NoError(t, err)
	require.Nil(t, rec)
}
