package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SurajMnnit/VideoStreamer/internal/api/auth"
	"github.com/SurajMnnit/VideoStreamer/internal/config"
	"github.com/SurajMnnit/VideoStreamer/internal/pipeline"
	"github.com/SurajMnnit/VideoStreamer/internal/video"
)

// fakeStore backs handler tests without a database
type fakeStore struct {
	video      *video.Video
	resetVideo *video.Video
	resetErr   error
}

func (f *fakeStore) Create(context.Context, *video.Video) error { return nil }

func (f *fakeStore) GetByID(_ context.Context, id string) (*video.Video, error) {
	if f.video == nil || f.video.ID != id {
		return nil, video.ErrVideoNotFound
	}
	v := *f.video
	return &v, nil
}

func (f *fakeStore) List(context.Context, video.Filter) ([]video.Video, int, error) {
	return nil, 0, nil
}

func (f *fakeStore) UpdateMeta(context.Context, string, *string, *string, []string) error {
	return nil
}

func (f *fakeStore) Delete(context.Context, string) error { return nil }

func (f *fakeStore) ResetForReprocess(context.Context, string) (*video.Video, error) {
	if f.resetErr != nil {
		return nil, f.resetErr
	}
	v := *f.resetVideo
	return &v, nil
}

func (f *fakeStore) IncrementViews(context.Context, string) error { return nil }

func (f *fakeStore) GetStats(context.Context, string) (*video.Stats, error) {
	return &video.Stats{}, nil
}

// captureRunner records submissions the queue hands to the pipeline
type captureRunner struct {
	ids chan string
}

func (r *captureRunner) Run(_ context.Context, v *video.Video) error {
	r.ids <- v.ID
	return nil
}

func uploadRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewVideoHandler(&Dependencies{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Uploads: config.UploadsConfig{
			Dir:          t.TempDir(),
			MaxSizeBytes: 1024,
			AllowedTypes: []string{"video/mp4"},
		},
	})

	r := gin.New()
	r.Use(auth.Identity())
	r.POST("/api/v1/videos", h.Upload)
	return r
}

func multipartBody(t *testing.T, fields map[string]string, fileField, filename, contentType string, size int) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		hdr := make(map[string][]string)
		hdr["Content-Disposition"] = []string{`form-data; name="` + fileField + `"; filename="` + filename + `"`}
		hdr["Content-Type"] = []string{contentType}
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(bytes.Repeat([]byte("x"), size))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestUpload_RequiresTitle(t *testing.T) {
	r := uploadRouter(t)

	body, contentType := multipartBody(t, nil, "video", "clip.mp4", "video/mp4", 16)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(auth.HeaderUserID, "user-a")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "title is required")
}

func TestUpload_RequiresFile(t *testing.T) {
	r := uploadRouter(t)

	body, contentType := multipartBody(t, map[string]string{"title": "My clip"}, "", "", "", 0)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(auth.HeaderUserID, "user-a")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "video file is required")
}

func TestUpload_RejectsUnsupportedType(t *testing.T) {
	r := uploadRouter(t)

	body, contentType := multipartBody(t, map[string]string{"title": "My clip"}, "video", "notes.txt", "text/plain", 16)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(auth.HeaderUserID, "user-a")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported video type")
}

func reprocessRouter(t *testing.T, store *fakeStore, runner pipeline.Runner) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	queue := pipeline.NewQueue(runner, slog.New(slog.NewTextHandler(io.Discard, nil)))
	queue.Start(context.Background())
	t.Cleanup(queue.Stop)

	h := NewVideoHandler(&Dependencies{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:  store,
		Queue:  queue,
	})

	r := gin.New()
	r.Use(auth.Identity())
	r.POST("/api/v1/videos/:video_id/reprocess", h.Reprocess)
	return r
}

func TestReprocess_ResetsAndRequeues(t *testing.T) {
	score := 85
	store := &fakeStore{
		video: &video.Video{
			ID:               "vid-1",
			OwnerID:          "user-a",
			Status:           video.StatusFlagged,
			SensitivityScore: &score,
		},
		resetVideo: &video.Video{
			ID:      "vid-1",
			OwnerID: "user-a",
			Status:  video.StatusUploaded,
		},
	}
	runner := &captureRunner{ids: make(chan string, 1)}
	r := reprocessRouter(t, store, runner)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/vid-1/reprocess", nil)
	req.Header.Set(auth.HeaderUserID, "user-a")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"uploaded"`)
	assert.Contains(t, w.Body.String(), `"sensitivityScore":null`)

	select {
	case id := <-runner.ids:
		assert.Equal(t, "vid-1", id)
	case <-time.After(time.Second):
		t.Fatal("reset video was never submitted to the queue")
	}
}

func TestReprocess_RejectedWhileProcessing(t *testing.T) {
	store := &fakeStore{
		video: &video.Video{
			ID:      "vid-1",
			OwnerID: "user-a",
			Status:  video.StatusProcessing,
		},
		resetErr: video.ErrReprocessInFlight,
	}
	runner := &captureRunner{ids: make(chan string, 1)}
	r := reprocessRouter(t, store, runner)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/vid-1/reprocess", nil)
	req.Header.Set(auth.HeaderUserID, "user-a")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, runner.ids, "a rejected reprocess must not reach the queue")
}

func TestReprocess_UnknownVideo(t *testing.T) {
	r := reprocessRouter(t, &fakeStore{}, &captureRunner{ids: make(chan string, 1)})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/missing/reprocess", nil)
	req.Header.Set(auth.HeaderUserID, "user-a")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReprocess_OtherOwnerForbidden(t *testing.T) {
	store := &fakeStore{
		video: &video.Video{ID: "vid-1", OwnerID: "user-a", Status: video.StatusSafe},
	}
	r := reprocessRouter(t, store, &captureRunner{ids: make(chan string, 1)})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/vid-1/reprocess", nil)
	req.Header.Set(auth.HeaderUserID, "user-b")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpload_RejectsOversizedFile(t *testing.T) {
	r := uploadRouter(t)

	body, contentType := multipartBody(t, map[string]string{"title": "My clip"}, "video", "clip.mp4", "video/mp4", 2048)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(auth.HeaderUserID, "user-a")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
