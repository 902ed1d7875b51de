package widgets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGalleryFiltersAndNumbers(t *testing.T) {
	g := BuildGallery([]string{
		"/static/img/logo-negro.png",
		"/static/img/equipo1.jpg",
		"/static/img/Instalaciones2.jpg?v=3",
		"/static/img/banner.jpg",
	})

	require.Len(t, g.Slides, 2)
	assert.True(t, g.Slides[0].Active)
	assert.False(t, g.Slides[1].Active)
	assert.Equal(t, "Galería 2", g.Slides[1].Alt)
	assert.Equal(t, "Slide 2", g.Slides[1].Indicator)
	assert.Equal(t, 3000, g.IntervalMS)
	assert.True(t, g.Wrap)
	assert.True(t, g.PauseOnHover)
}

func TestDefaultGallery(t *testing.T) {
	g := LoadGallery(context.Background(), StaticGallery(DefaultGalleryImages), nil)
	assert.Len(t, g.Slides, 7)
}

type failingGallery struct{}

func (failingGallery) List(ctx context.Context) ([]string, error) {
	return nil, errors.New("bucket unreachable")
}

func TestLoadGalleryDegrades(t *testing.T) {
	g := LoadGallery(context.Background(), failingGallery{}, nil)
	assert.True(t, g.Empty())
	assert.True(t, LoadGallery(context.Background(), nil, nil).Empty())
}

type fakeS3 struct {
	pages [][]string
	calls int
	err   error
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.err != nil {
		return nil, f.err
	}
	page := f.pages[f.calls]
	f.calls++
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(f.calls < len(f.pages))}
	if f.calls < len(f.pages) {
		out.NextContinuationToken = aws.String("next")
	}
	for _, k := range page {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func TestS3GalleryPaginates(t *testing.T) {
	client := &fakeS3{pages: [][]string{
		{"galeria/equipo1.jpg", "galeria/notas.txt"},
		{"galeria/instalaciones1.webp"},
	}}
	src := NewS3Gallery(client, "vitaldent-media", "galeria/", "https://cdn.example.com/")

	urls, err := src.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://cdn.example.com/galeria/equipo1.jpg",
		"https://cdn.example.com/galeria/instalaciones1.webp",
	}, urls)
	assert.Equal(t, 2, client.calls)
}

func TestS3GalleryErrors(t *testing.T) {
	_, err := NewS3Gallery(nil, "", "", "").List(context.Background())
	assert.Error(t, err)

	_, err = NewS3Gallery(&fakeS3{err: errors.New("denied")}, "b", "", "").List(context.Background())
	assert.Error(t, err)
}
