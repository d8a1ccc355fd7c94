package docs

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer() *Server {
	return New(map[string]string{
		"en/index.md":    "# Welcome\n\nStart here.",
		"en/files.md":    "# Files\n",
		"pt_br/index.md": "# Bem-vindo\n\nComece aqui.",
	}, "en", "vailá")
}

func TestLanguagesAndPageNames(t *testing.T) {
	server := testServer()
	assert.Equal(t, []string{"en", "pt_br"}, server.Languages())
	assert.Equal(t, []string{"index", "files"}, server.PageNames("en"))
	assert.Equal(t, []string{"index"}, server.PageNames("pt_br"))
}

func TestRender(t *testing.T) {
	server := testServer()
	page, err := server.Render("en", "index")
	require.NoError(t, err)
	assert.Contains(t, page, "<h1>Welcome</h1>")
	assert.Contains(t, page, "<title>vailá</title>")
	assert.Contains(t, page, `href="/files?lang=en"`)
	assert.Contains(t, page, `href="/index?lang=pt_br"`)
}

func TestRenderLanguageSwitchAndFallback(t *testing.T) {
	server := testServer()
	page, err := server.Render("pt_br", "index")
	require.NoError(t, err)
	assert.Contains(t, page, "Bem-vindo")

	// a page missing in the requested language falls back to the default
	page, err = server.Render("pt_br", "files")
	require.NoError(t, err)
	assert.Contains(t, page, "<h1>Files</h1>")

	_, err = server.Render("en", "nope")
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestServeHTTP(t *testing.T) {
	server := testServer()

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, 200, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "<h1>Welcome</h1>")
	assert.Equal(t, "text/html; charset=utf-8", recorder.Header().Get("Content-Type"))

	recorder = httptest.NewRecorder()
	server.ServeHTTP(recorder, httptest.NewRequest("GET", "/index?lang=pt_br", nil))
	assert.Contains(t, recorder.Body.String(), "Bem-vindo")

	recorder = httptest.NewRecorder()
	server.ServeHTTP(recorder, httptest.NewRequest("GET", "/missing", nil))
	assert.Equal(t, 404, recorder.Code)
}

func TestListenAndServeEphemeralPort(t *testing.T) {
	port := testServer().ListenAndServe(0)
	assert.NotZero(t, port)
}
