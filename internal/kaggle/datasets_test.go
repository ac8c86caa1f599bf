package kaggle

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var titanic = Ref{Owner: "heptapod", Slug: "titanic"}

func TestDownloadDataset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/datasets/download/heptapod/titanic", r.URL.Path)
		w.Write([]byte("archive bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := NewFetcher(&staticResolver{creds: testCreds}, nil, testClientConfig(srv), nil)
	dest, err := f.DownloadDataset(context.Background(), titanic, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "titanic.zip"), dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "archive bytes", string(data))
}

func TestDownloadDatasetOutlastsTimeout(t *testing.T) {
	chunk := strings.Repeat("z", 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for i := 0; i < 12; i++ {
			w.Write([]byte(chunk))
			flusher.Flush()
			time.Sleep(50 * time.Millisecond)
		}
	}))
	defer srv.Close()

	cfg := testClientConfig(srv)
	cfg.Timeout = 200 * time.Millisecond

	dir := t.TempDir()
	f := NewFetcher(&staticResolver{creds: testCreds}, nil, cfg, nil)
	dest, err := f.DownloadDataset(context.Background(), titanic, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat(chunk, 12), string(data))
}

func TestDownloadDatasetStalledHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := testClientConfig(srv)
	cfg.Timeout = 100 * time.Millisecond

	dir := t.TempDir()
	f := NewFetcher(&staticResolver{creds: testCreds}, nil, cfg, nil)
	_, err := f.DownloadDataset(context.Background(), titanic, dir)

	var transErr *TransportError
	require.ErrorAs(t, err, &transErr)
	assert.NoFileExists(t, filepath.Join(dir, "titanic.zip"))
}

func TestListDatasetFilesStalledBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"train.csv",`))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := testClientConfig(srv)
	cfg.Timeout = 100 * time.Millisecond

	f := NewFetcher(&staticResolver{creds: testCreds}, nil, cfg, nil)
	start := time.Now()
	_, err := f.ListDatasetFiles(context.Background(), titanic)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestListDatasetFiles(t *testing.T) {
	for name, body := range map[string]string{
		"bare array": `[{"name":"train.csv","totalBytes":61194},{"name":"test.csv","totalBytes":28629}]`,
		"wrapped":    `{"datasetFiles":[{"name":"train.csv","totalBytes":61194},{"name":"test.csv","totalBytes":28629}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/datasets/list/heptapod/titanic/files", r.URL.Path)
				w.Write([]byte(body))
			}))
			defer srv.Close()

			f := NewFetcher(&staticResolver{creds: testCreds}, nil, testClientConfig(srv), nil)
			files, err := f.ListDatasetFiles(context.Background(), titanic)
			require.NoError(t, err)
			assert.Equal(t, []DatasetFile{
				{Name: "train.csv", TotalBytes: 61194},
				{Name: "test.csv", TotalBytes: 28629},
			}, files)
		})
	}
}

// datasetServer lists names and serves each file's name as its content.
// A request for failOn answers 500.
type datasetServer struct {
	names    []string
	failOn   string
	inFlight int32
	maxSeen  int32
	requests []string
}

func (d *datasetServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := atomic.AddInt32(&d.inFlight, 1)
	defer atomic.AddInt32(&d.inFlight, -1)
	if n > atomic.LoadInt32(&d.maxSeen) {
		atomic.StoreInt32(&d.maxSeen, n)
	}

	if strings.HasSuffix(r.URL.Path, "/files") {
		w.Write([]byte(`{"datasetFiles":[`))
		for i, name := range d.names {
			if i > 0 {
				w.Write([]byte(","))
			}
			w.Write([]byte(`{"name":"` + name + `"}`))
		}
		w.Write([]byte(`]}`))
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/datasets/download/heptapod/titanic/")
	d.requests = append(d.requests, name)
	if name == d.failOn {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	io.WriteString(w, name)
}

func TestDownloadDatasetFilesSequential(t *testing.T) {
	ds := &datasetServer{names: []string{"a.csv", "b.csv", "c.csv"}}
	srv := httptest.NewServer(ds)
	defer srv.Close()

	dir := t.TempDir()
	f := NewFetcher(&staticResolver{creds: testCreds}, nil, testClientConfig(srv), nil)
	written, err := f.DownloadDatasetFiles(context.Background(), titanic, dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.csv", "b.csv", "c.csv"}, ds.requests)
	assert.Equal(t, int32(1), atomic.LoadInt32(&ds.maxSeen))
	assert.Len(t, written, 3)
	for _, name := range ds.names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, name, string(data))
	}
}

func TestDownloadDatasetFilesStopsAtFailure(t *testing.T) {
	ds := &datasetServer{names: []string{"a.csv", "b.csv", "c.csv", "d.csv"}, failOn: "c.csv"}
	srv := httptest.NewServer(ds)
	defer srv.Close()

	dir := t.TempDir()
	f := NewFetcher(&staticResolver{creds: testCreds}, nil, testClientConfig(srv), nil)
	written, err := f.DownloadDatasetFiles(context.Background(), titanic, dir)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "c.csv", transportErr.File)
	assert.Contains(t, err.Error(), "c.csv")

	assert.Equal(t, []string{"a.csv", "b.csv", "c.csv"}, ds.requests)
	assert.Equal(t, []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")}, written)
	assert.FileExists(t, filepath.Join(dir, "a.csv"))
	assert.FileExists(t, filepath.Join(dir, "b.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "c.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "d.csv"))
}

func TestDownloadDatasetFileStaysInsideDir(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := NewClient(testClientConfig(srv), testCreds)
	dest, err := c.DownloadDatasetFile(context.Background(), titanic, "../../escape.csv", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.csv"), dest)
}

func TestSubmit(t *testing.T) {
	var description, blobName string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/competitions/submissions/submit/titanic", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		description = r.FormValue("submissionDescription")
		_, header, err := r.FormFile("blobs")
		require.NoError(t, err)
		blobName = header.Filename
		w.Write([]byte(`{"message":"Successfully submitted to Titanic","ref":12345}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "submission.csv")
	writeFile(t, path, "PassengerId,Survived\n892,0\n")

	f := NewFetcher(&staticResolver{creds: testCreds}, nil, testClientConfig(srv), nil)
	result, err := f.Submit(context.Background(), "titanic", path, "first try")
	require.NoError(t, err)
	assert.Equal(t, "Successfully submitted to Titanic", result.Message)
	assert.Equal(t, int64(12345), result.Ref)
	assert.Equal(t, "first try", description)
	assert.Equal(t, "submission.csv", blobName)
}

func TestSubmitMissingFile(t *testing.T) {
	srv, hits := apiServer(t, http.StatusOK, `{}`)
	f := NewFetcher(&staticResolver{creds: testCreds}, nil, testClientConfig(srv), nil)

	_, err := f.Submit(context.Background(), "titanic", filepath.Join(t.TempDir(), "nope.csv"), "m")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Zero(t, atomic.LoadInt32(hits))
}
