// Package widgets builds the ancillary landing page components: the photo
// gallery, testimonials, scroll-spy navigation, theme assets, the animated
// background and the font size control.
package widgets

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/vitaldent/clinic-site/pkg/logging"
)

const (
	// GalleryInterval is the autoplay interval in milliseconds.
	GalleryInterval = 3000
)

// galleryPrefixes are the file name prefixes shown in the gallery.
var galleryPrefixes = []string{"equipo", "instalaciones"}

// DefaultGalleryImages are the bundled gallery photos.
var DefaultGalleryImages = []string{
	"/static/img/equipo1.jpg",
	"/static/img/equipo2.jpg",
	"/static/img/equipo3.jpg",
	"/static/img/instalaciones1.jpg",
	"/static/img/instalaciones2.jpg",
	"/static/img/instalaciones3.jpg",
	"/static/img/instalaciones4.jpg",
}

// Slide is one gallery image.
type Slide struct {
	Index     int
	Src       string
	Alt       string
	Indicator string
	Active    bool
}

// Gallery is the carousel configuration and its slides.
type Gallery struct {
	Slides       []Slide
	IntervalMS   int
	Wrap         bool
	PauseOnHover bool
}

// Empty reports whether there is nothing to show.
func (g Gallery) Empty() bool { return len(g.Slides) == 0 }

// GallerySource lists candidate image URLs.
type GallerySource interface {
	List(ctx context.Context) ([]string, error)
}

// StaticGallery serves a fixed list of image URLs.
type StaticGallery []string

// List returns the configured URLs.
func (s StaticGallery) List(ctx context.Context) ([]string, error) {
	return append([]string(nil), s...), nil
}

// BuildGallery keeps images whose file name starts with a gallery prefix and
// numbers them in order. The first slide is active.
func BuildGallery(urls []string) Gallery {
	g := Gallery{IntervalMS: GalleryInterval, Wrap: true, PauseOnHover: true}
	for _, u := range urls {
		if !isGalleryImage(u) {
			continue
		}
		n := len(g.Slides) + 1
		g.Slides = append(g.Slides, Slide{
			Index:     n - 1,
			Src:       u,
			Alt:       fmt.Sprintf("Galería %d", n),
			Indicator: fmt.Sprintf("Slide %d", n),
			Active:    n == 1,
		})
	}
	return g
}

func isGalleryImage(u string) bool {
	name := strings.ToLower(path.Base(strings.SplitN(u, "?", 2)[0]))
	for _, p := range galleryPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// LoadGallery lists and builds the gallery. A failing source is logged and
// yields an empty gallery so the rest of the page still renders.
func LoadGallery(ctx context.Context, src GallerySource, logger *logging.Logger) Gallery {
	if src == nil {
		return BuildGallery(nil)
	}
	urls, err := src.List(ctx)
	if err != nil {
		if logger != nil {
			logger.Warn("carousel init failed", "error", err)
		}
		return BuildGallery(nil)
	}
	return BuildGallery(urls)
}

// S3ListAPI is the subset of the S3 client used by S3Gallery.
type S3ListAPI interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Gallery lists gallery images stored in an S3 bucket.
type S3Gallery struct {
	client  S3ListAPI
	bucket  string
	prefix  string
	baseURL string
}

// NewS3Gallery creates an S3-backed gallery source. baseURL is prepended to
// object keys to form public URLs.
func NewS3Gallery(client S3ListAPI, bucket, prefix, baseURL string) *S3Gallery {
	return &S3Gallery{client: client, bucket: bucket, prefix: prefix, baseURL: strings.TrimRight(baseURL, "/")}
}

// List returns public URLs for image objects under the prefix, in key order.
func (g *S3Gallery) List(ctx context.Context) ([]string, error) {
	if g.client == nil || g.bucket == "" {
		return nil, fmt.Errorf("widgets: gallery bucket not configured")
	}
	var urls []string
	paginator := s3.NewListObjectsV2Paginator(g.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(g.bucket),
		Prefix: aws.String(g.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("widgets: list gallery objects: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !isImageKey(key) {
				continue
			}
			urls = append(urls, g.baseURL+"/"+key)
		}
	}
	return urls, nil
}

func isImageKey(key string) bool {
	switch strings.ToLower(path.Ext(key)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	default:
		return false
	}
}
