package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingObserver struct {
	source string
	ok     bool
	count  int
	calls  int
}

func (o *recordingObserver) ObserveCatalogLoad(source string, ok bool, count int) {
	o.source, o.ok, o.count = source, ok, count
	o.calls++
}

func TestLoaderDegradesToEmpty(t *testing.T) {
	obs := &recordingObserver{}
	loader := NewLoader(&countingSource{err: errors.New("boom")}, "remote", nil, WithObserver(obs))

	got := loader.Load(context.Background())
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 1, obs.calls)
	assert.False(t, obs.ok)
	assert.Equal(t, "remote", obs.source)
}

func TestLoaderDropsDuplicates(t *testing.T) {
	obs := &recordingObserver{}
	src := SliceSource{{ID: 1, Name: "a"}, {ID: 1, Name: "b"}, {ID: 2, Name: "c"}}

	got := NewLoader(src, "static", nil, WithObserver(obs)).Load(context.Background())
	assert.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
	assert.True(t, obs.ok)
	assert.Equal(t, 2, obs.count)
}

type blockingSource struct{}

func (blockingSource) Load(ctx context.Context) ([]Treatment, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestLoaderTimeout(t *testing.T) {
	loader := NewLoader(blockingSource{}, "slow", nil, WithTimeout(20*time.Millisecond))
	start := time.Now()
	got := loader.Load(context.Background())
	assert.Empty(t, got)
	assert.Less(t, time.Since(start), 2*time.Second)
}
