package support

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/gorilla/websocket"

	"github.com/MeKo-Tech/seedtrace/internal/blob"
	"github.com/MeKo-Tech/seedtrace/internal/export"
	"github.com/MeKo-Tech/seedtrace/internal/imageio"
	"github.com/MeKo-Tech/seedtrace/internal/server"
)

// RegisterServerSteps registers HTTP and WebSocket steps.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the trace server is running$`, testCtx.theTraceServerIsRunning)
	sc.Step(`^I request "([^"]*)"$`, testCtx.iRequest)
	sc.Step(`^I upload "([^"]*)" to "([^"]*)"$`, testCtx.iUploadTo)
	sc.Step(`^I upload "([^"]*)" to "([^"]*)" with:$`, testCtx.iUploadToWith)
	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response content type should be "([^"]*)"$`, testCtx.theResponseContentTypeShouldBe)
	sc.Step(`^I stream a trace of "([^"]*)" from (\d+),(\d+) in chunks of (\d+)$`, testCtx.iStreamATrace)
	sc.Step(`^I should receive (\d+) chunk messages? and a closed done message$`, testCtx.iShouldReceiveChunks)
	sc.Step(`^the streamed points should be "([^"]*)"$`, testCtx.theStreamedPointsShouldBe)
}

func (testCtx *TestContext) theTraceServerIsRunning() error {
	srv, err := server.NewServer(server.Config{
		Host:        "localhost",
		CORSOrigin:  "*",
		MaxUploadMB: 1,
		TimeoutSec:  10,
		ChunkSize:   64,
		Blob:        blob.DefaultConfig(),
		Binarize:    imageio.DefaultBinarizeOptions(),
		Overlay:     export.DefaultOverlayOptions(),
	})
	if err != nil {
		return err
	}
	testCtx.HTTPTestServer = httptest.NewServer(srv.Handler())
	return nil
}

func (testCtx *TestContext) serverURL(path string) (string, error) {
	if testCtx.HTTPTestServer == nil {
		return "", errors.New("trace server is not running")
	}
	return testCtx.HTTPTestServer.URL + path, nil
}

func (testCtx *TestContext) do(req *http.Request) error {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastContentType = resp.Header.Get("Content-Type")
	testCtx.LastOutput = string(body)
	return nil
}

func (testCtx *TestContext) iRequest(path string) error {
	url, err := testCtx.serverURL(path)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return testCtx.do(req)
}

func (testCtx *TestContext) iUploadTo(image, path string) error {
	return testCtx.upload(image, path, nil)
}

func (testCtx *TestContext) iUploadToWith(image, path string, table *godog.Table) error {
	fields := make(map[string]string)
	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return errors.New("form table needs two columns: field and value")
		}
		fields[row.Cells[0].Value] = row.Cells[1].Value
	}
	return testCtx.upload(image, path, fields)
}

func (testCtx *TestContext) upload(image, path string, fields map[string]string) error {
	url, err := testCtx.serverURL(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(testCtx.Path(image))
	if err != nil {
		return err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filepath.Base(image))
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return testCtx.do(req)
}

func (testCtx *TestContext) theResponseStatusShouldBe(code int) error {
	if testCtx.LastHTTPStatusCode != code {
		return fmt.Errorf("status %d, want %d\nBody: %s", testCtx.LastHTTPStatusCode, code, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theResponseContentTypeShouldBe(contentType string) error {
	if !strings.HasPrefix(testCtx.LastContentType, contentType) {
		return fmt.Errorf("content type %q, want %q", testCtx.LastContentType, contentType)
	}
	return nil
}

func (testCtx *TestContext) iStreamATrace(image string, x, y, chunk int) error {
	url, err := testCtx.serverURL("/ws/trace")
	if err != nil {
		return err
	}
	data, err := os.ReadFile(testCtx.Path(image))
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	if err := conn.WriteJSON(server.TraceStreamRequest{Image: data, X: x, Y: y, Chunk: chunk}); err != nil {
		return err
	}

	testCtx.StreamChunks = 0
	testCtx.StreamMessages = nil
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg server.StreamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}
		testCtx.StreamMessages = append(testCtx.StreamMessages, msg)
		switch msg.Type {
		case server.MessageChunk:
			testCtx.StreamChunks++
		case server.MessageDone, server.MessageError:
			return nil
		}
	}
}

func (testCtx *TestContext) iShouldReceiveChunks(n int) error {
	if testCtx.StreamChunks != n {
		return fmt.Errorf("received %d chunk messages, want %d", testCtx.StreamChunks, n)
	}
	if len(testCtx.StreamMessages) == 0 {
		return errors.New("no messages received")
	}
	last := testCtx.StreamMessages[len(testCtx.StreamMessages)-1]
	if last.Type != server.MessageDone {
		return fmt.Errorf("last message is %q: %s", last.Type, last.Error)
	}
	if !last.Closed {
		return errors.New("done message reports an open contour")
	}
	return nil
}

func (testCtx *TestContext) theStreamedPointsShouldBe(expected string) error {
	var parts []string
	for _, msg := range testCtx.StreamMessages {
		for _, p := range msg.Points {
			parts = append(parts, fmt.Sprintf("(%d,%d)", p.X, p.Y))
		}
	}
	if got := strings.Join(parts, " "); got != expected {
		return fmt.Errorf("streamed points %q, want %q", got, expected)
	}
	return nil
}
