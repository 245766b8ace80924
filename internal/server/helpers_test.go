package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/seedtrace/internal/blob"
	"github.com/MeKo-Tech/seedtrace/internal/export"
	"github.com/MeKo-Tech/seedtrace/internal/imageio"
	"github.com/MeKo-Tech/seedtrace/internal/raster"
	"github.com/MeKo-Tech/seedtrace/internal/testutil"
)

const (
	row  = ".###."
	ring = `
		.......
		.#####.
		.#...#.
		.#.#.#.
		.#...#.
		.#####.
		.......
	`
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(Config{
		Host:        "localhost",
		Port:        0,
		CORSOrigin:  "*",
		MaxUploadMB: 1,
		TimeoutSec:  5,
		ChunkSize:   2,
		Blob:        blob.DefaultConfig(),
		Binarize:    imageio.DefaultBinarizeOptions(),
		Overlay:     export.DefaultOverlayOptions(),
	})
	require.NoError(t, err)
	return s
}

// pngBytes renders ASCII art as a PNG with black foreground.
func pngBytes(t *testing.T, art string) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, raster.ToImage(testutil.MustGrid(t, art)), imaging.PNG))
	return buf.Bytes()
}

func multipartRequest(t *testing.T, path string, img []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if img != nil {
		part, err := mw.CreateFormFile("image", "test.png")
		require.NoError(t, err)
		_, err = part.Write(img)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
