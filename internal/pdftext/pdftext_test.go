// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-miner/internal/container"
	"github.com/pdiddy/paper-miner/pkg/types"
)

func loadFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "deposit.pdf"))
	require.NoError(t, err)
	return data
}

func newPDFServer(t *testing.T, pdf []byte) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/paper.pdf":
			w.Header().Set("Content-Type", "application/pdf")
			w.Write(pdf)
		case "/paywall.pdf":
			w.Header().Set("Content-Type", "text/html")
			io.WriteString(w, "<html><body>Sign in to continue</body></html>")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestParseText(t *testing.T) {
	text, err := ParseText(loadFixture(t))
	require.NoError(t, err)
	assert.Contains(t, text, "PRJNA123456")
}

func TestParseText_Garbage(t *testing.T) {
	_, err := ParseText([]byte("not a pdf at all"))
	assert.Error(t, err)
}

func TestReader_Text(t *testing.T) {
	ts := newPDFServer(t, loadFixture(t))
	r := &Reader{Client: ts.Client(), UserAgent: "paper-miner-test"}

	text, err := r.Text(context.Background(), ts.URL+"/paper.pdf")
	require.NoError(t, err)
	assert.Contains(t, text, "Reads were deposited")
}

func TestReader_RejectsNonPDF(t *testing.T) {
	ts := newPDFServer(t, loadFixture(t))
	r := &Reader{Client: ts.Client()}

	_, err := r.Text(context.Background(), ts.URL+"/paywall.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not return a PDF")

	_, err = r.Text(context.Background(), ts.URL+"/missing.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

// fakeRuntime echoes a canned Markdown document, or fails.
type fakeRuntime struct {
	imageErr error
	runErr   error
	output   string
	stdin    []byte
}

func (f *fakeRuntime) Name() string                             { return "fake" }
func (f *fakeRuntime) Available(context.Context) bool           { return true }
func (f *fakeRuntime) ImageExists(context.Context, string) error { return f.imageErr }

func (f *fakeRuntime) Run(_ context.Context, spec container.RunSpec) error {
	if spec.Stdin != nil {
		f.stdin, _ = io.ReadAll(spec.Stdin)
	}
	if f.runErr != nil {
		return f.runErr
	}
	_, err := io.WriteString(spec.Stdout, f.output)
	return err
}

func TestMarkitdown_Text(t *testing.T) {
	pdf := loadFixture(t)
	ts := newPDFServer(t, pdf)
	rt := &fakeRuntime{output: "# Deposit\n\nReads were deposited under PRJNA123456.\n"}

	m, err := NewMarkitdown(context.Background(), rt, ts.Client(), "")
	require.NoError(t, err)

	text, err := m.Text(context.Background(), ts.URL+"/paper.pdf")
	require.NoError(t, err)
	assert.Equal(t, "# Deposit\n\nReads were deposited under PRJNA123456.", text)
	assert.Equal(t, pdf, rt.stdin)
}

func TestMarkitdown_Errors(t *testing.T) {
	_, err := NewMarkitdown(context.Background(), &fakeRuntime{imageErr: errors.New("no such image")}, nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "markitdown image not available")

	ts := newPDFServer(t, loadFixture(t))

	m, err := NewMarkitdown(context.Background(), &fakeRuntime{}, ts.Client(), "")
	require.NoError(t, err)
	_, err = m.Text(context.Background(), ts.URL+"/paper.pdf")
	assert.ErrorIs(t, err, ErrNoText)

	m, err = NewMarkitdown(context.Background(), &fakeRuntime{runErr: errors.New("exit status 1")}, ts.Client(), "")
	require.NoError(t, err)
	_, err = m.Text(context.Background(), ts.URL+"/paper.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit status 1")
}

func TestNew(t *testing.T) {
	e, err := New(context.Background(), types.PDFNative, nil, "ua")
	require.NoError(t, err)
	assert.IsType(t, &Reader{}, e)

	_, err = New(context.Background(), "ocr", nil, "ua")
	assert.Error(t, err)
}
