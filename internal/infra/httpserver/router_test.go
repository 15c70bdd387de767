package httpserver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archgram/archgram/internal/application"
	apppipeline "github.com/archgram/archgram/internal/application/pipeline"
	appviews "github.com/archgram/archgram/internal/application/views"
	"github.com/archgram/archgram/internal/domain/genai"
	domain "github.com/archgram/archgram/internal/domain/pipeline"
	domrender "github.com/archgram/archgram/internal/domain/render"
	"github.com/archgram/archgram/internal/extract"
	memledger "github.com/archgram/archgram/internal/infra/ledger/memory"
)

type fakeGen struct{ response string }

func (f *fakeGen) Generate(context.Context, string, string, genai.SamplingConfig) (string, error) {
	return f.response, nil
}

type fakeRenderer struct{ err error }

func (f *fakeRenderer) Render(context.Context, string, string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png-bytes"), nil
}

type fakeDocs struct{}

func (fakeDocs) Text(string, []byte) (string, error) { return "extracted text", nil }

type fakeArtifacts struct {
	objs map[string][]byte
}

func (f *fakeArtifacts) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	if f.objs == nil {
		f.objs = map[string][]byte{}
	}
	f.objs[key] = data
	return "http://minio/" + key, nil
}

func (f *fakeArtifacts) Fetch(_ context.Context, key string) ([]byte, error) {
	return f.objs[key], nil
}

func (f *fakeArtifacts) List(context.Context, string) ([]domain.ArtifactInfo, error) {
	out := make([]domain.ArtifactInfo, 0, len(f.objs))
	for k := range f.objs {
		out = append(out, domain.ArtifactInfo{Key: k, Size: 9, URL: "http://minio/" + k})
	}
	return out, nil
}

func testRouter(t *testing.T, renderErr error) (http.Handler, *fakeArtifacts) {
	t.Helper()
	extractor := extract.NewExtractor(&fakeGen{
		response: `{"summary":"An ALB fronts app servers backed by RDS.","categories":[{"name":"web","components":[{"name":"alb","type":"network"}]}],"syntax":"flowchart LR\n a --> b"}`,
	})
	ledger := memledger.NewLedger()
	artifacts := &fakeArtifacts{}

	pipeSvc := &apppipeline.Service{
		Extractor: extractor,
		Docs:      fakeDocs{},
		Renderer:  &fakeRenderer{err: renderErr},
		Ledger:    ledger,
		Artifacts: artifacts,
		Clock:     application.SystemClock{},
		Log:       zerolog.Nop(),
	}
	viewSvc := &appviews.Service{Ledger: ledger, Extractor: extractor}

	return NewRouter(pipeSvc, viewSvc, artifacts, Options{
		DefaultRegion: "us-east-1",
		Log:           zerolog.Nop(),
	}), artifacts
}

func generateOnce(t *testing.T, h http.Handler) []domain.ProgressEvent {
	t.Helper()
	body := `{"source_name":"arch.txt","text":"ALB fronts app servers","model_id":"gpt-4o-mini"}`
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))

	var events []domain.ProgressEvent
	sc := bufio.NewScanner(rec.Body)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var ev domain.ProgressEvent
		require.NoError(t, json.Unmarshal([]byte(line), &ev), "line %q is not an event", line)
		events = append(events, ev)
	}
	return events
}

func TestGenerate_StreamsEventsAndCompletes(t *testing.T) {
	h, _ := testRouter(t, nil)

	events := generateOnce(t, h)
	require.NotEmpty(t, events)

	last := events[len(events)-1]
	assert.Equal(t, domain.StatusComplete, last.Status)
	require.NotNil(t, last.Payload)
	assert.NotEmpty(t, last.Payload.RequestID)
	assert.NotEmpty(t, last.Payload.ImageBase64)

	terminals := 0
	for _, ev := range events {
		if ev.Status.Terminal() {
			terminals++
		}
	}
	assert.Equal(t, 1, terminals)
}

func TestGenerate_RendererDownStreamsError(t *testing.T) {
	h, _ := testRouter(t, domrender.ErrUnavailable)

	events := generateOnce(t, h)
	require.NotEmpty(t, events)
	assert.Equal(t, domain.StatusError, events[len(events)-1].Status)
}

func TestGenerate_RejectsBadModelID(t *testing.T) {
	h, _ := testRouter(t, nil)

	body := `{"text":"x","model_id":"bad model id with spaces"}`
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestViews_AfterGenerate(t *testing.T) {
	h, _ := testRouter(t, nil)
	events := generateOnce(t, h)
	id := string(events[len(events)-1].Payload.RequestID)

	req := httptest.NewRequest(http.MethodGet, "/api/requests/"+id, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var record domain.RequestRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, "arch.txt", record.SourceName)

	req = httptest.NewRequest(http.MethodGet, "/api/requests/"+id+"/components", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "categories")

	req = httptest.NewRequest(http.MethodGet, "/api/requests/"+id+"/diagram-syntax", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "-->")
}

func TestRequestViews_UnknownID(t *testing.T) {
	h, _ := testRouter(t, nil)

	for _, path := range []string{
		"/api/requests/nope",
		"/api/requests/nope/components",
		"/api/requests/nope/diagram-syntax",
		"/api/requests/nope/image",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestImage_ServedWithNoCacheHeaders(t *testing.T) {
	h, _ := testRouter(t, nil)
	events := generateOnce(t, h)
	id := string(events[len(events)-1].Payload.RequestID)

	req := httptest.NewRequest(http.MethodGet, "/api/requests/"+id+"/image", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-cache")
	assert.Equal(t, id, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, []byte("png-bytes"), rec.Body.Bytes())
}

func TestListDiagrams(t *testing.T) {
	h, _ := testRouter(t, nil)
	generateOnce(t, h)

	req := httptest.NewRequest(http.MethodGet, "/api/diagrams", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Diagrams []domain.ArtifactInfo `json:"diagrams"`
		Count    int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Contains(t, body.Diagrams[0].Key, "generated-diagrams/")
}

func TestSummarize_JSONBody(t *testing.T) {
	h, _ := testRouter(t, nil)

	body := `{"source_name":"design.md","text":"SQS feeds workers writing to S3","model_id":"gpt-4o-mini"}`
	req := httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var handoff apppipeline.ApprovalHandoff
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &handoff))
	assert.NotEmpty(t, handoff.Summary)
	assert.NotEmpty(t, handoff.Instructions)
	assert.Equal(t, "us-east-1", handoff.Params.Region)
}

func TestSummarize_MultipartUpload(t *testing.T) {
	h, _ := testRouter(t, nil)

	var buf bytes.Buffer
	mw := newMultipart(t, &buf, "arch.txt", []byte("ALB fronts app servers"))

	req := httptest.NewRequest(http.MethodPost, "/api/summarize", &buf)
	req.Header.Set("Content-Type", mw)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "summary")
}

func TestSummarize_RejectsUnknownExtension(t *testing.T) {
	h, _ := testRouter(t, nil)

	var buf bytes.Buffer
	mw := newMultipart(t, &buf, "malware.exe", []byte("x"))

	req := httptest.NewRequest(http.MethodPost, "/api/summarize", &buf)
	req.Header.Set("Content-Type", mw)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// newMultipart writes a file upload body and returns its content type.
func newMultipart(t *testing.T, buf *bytes.Buffer, filename string, data []byte) string {
	t.Helper()
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("model_id", "gpt-4o-mini"))
	require.NoError(t, mw.Close())
	return mw.FormDataContentType()
}
