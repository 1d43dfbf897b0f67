package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"github.com/idelchi/foldersize/internal/metrics"
	"github.com/idelchi/foldersize/internal/scan"
	"github.com/idelchi/foldersize/internal/trash"
)

// ServerTestSuite tests the HTTP API against a real temporary tree.
type ServerTestSuite struct {
	suite.Suite
	root    string
	scanner *scan.Scanner
	server  *Server
}

func (s *ServerTestSuite) SetupTest() {
	s.root = s.T().TempDir()

	for path, size := range map[string]int{
		"a/x":   10,
		"b/y":   30,
		"b/c/z": 5,
		"file":  7,
	} {
		full := filepath.Join(s.root, filepath.FromSlash(path))
		s.Require().NoError(os.MkdirAll(filepath.Dir(full), 0o755))
		s.Require().NoError(os.WriteFile(full, make([]byte, size), 0o600))
	}

	reg := prometheus.NewRegistry()
	s.scanner = scan.New(scan.Options{Trash: trash.Unsupported{}, Metrics: metrics.New(reg)})
	s.server = New(s.scanner, reg, false)
}

func (s *ServerTestSuite) TearDownTest() {
	s.scanner.Close()
}

func (s *ServerTestSuite) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(rec, req)

	return rec
}

func (s *ServerTestSuite) items(rec *httptest.ResponseRecorder) []scan.Item {
	var items []scan.Item
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &items))

	return items
}

func (s *ServerTestSuite) TestContents() {
	rec := s.do(http.MethodGet, "/api/contents?path="+url.QueryEscape(s.root))
	s.Equal(http.StatusOK, rec.Code)

	items := s.items(rec)
	s.Require().Len(items, 3)
	s.Equal("b", items[0].Name)
	s.Equal(int64(35), items[0].Size)
	s.Equal("a", items[1].Name)
	s.Equal("file", items[2].Name)
}

func (s *ServerTestSuite) TestFolders() {
	rec := s.do(http.MethodGet, "/api/folders?path="+url.QueryEscape(s.root))
	s.Equal(http.StatusOK, rec.Code)
	s.Len(s.items(rec), 2)
}

func (s *ServerTestSuite) TestListingErrors() {
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/contents").Code)
	s.Equal(http.StatusNotFound,
		s.do(http.MethodGet, "/api/folders?path="+url.QueryEscape(filepath.Join(s.root, "missing"))).Code)
}

func (s *ServerTestSuite) TestTop() {
	rec := s.do(http.MethodGet, "/api/top?k=1&path="+url.QueryEscape(s.root))
	s.Equal(http.StatusOK, rec.Code)

	items := s.items(rec)
	s.Require().Len(items, 1)
	s.Equal(filepath.Join(s.root, "b"), items[0].Path)

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/top?k=zero&path="+url.QueryEscape(s.root)).Code)
}

func (s *ServerTestSuite) TestDelete() {
	target := url.QueryEscape(filepath.Join(s.root, "a"))

	rec := s.do(http.MethodDelete, "/api/entries?path="+target)
	s.Equal(http.StatusConflict, rec.Code)
	s.DirExists(filepath.Join(s.root, "a"))
	s.Equal(string(scan.Refused), s.deleteResult(rec))

	rec = s.do(http.MethodDelete, "/api/entries?permanent=true&path="+target)
	s.Equal(http.StatusOK, rec.Code)
	s.NoDirExists(filepath.Join(s.root, "a"))
	s.Equal(string(scan.Removed), s.deleteResult(rec))
}

func (s *ServerTestSuite) deleteResult(rec *httptest.ResponseRecorder) string {
	var body struct {
		Result string `json:"result"`
	}

	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))

	return body.Result
}

func (s *ServerTestSuite) TestCacheEndpoints() {
	s.do(http.MethodGet, "/api/folders?path="+url.QueryEscape(s.root))
	s.Positive(s.scanner.Cache().Len())

	rec := s.do(http.MethodDelete, "/api/cache/entry?path="+url.QueryEscape(filepath.Join(s.root, "a")))
	s.Equal(http.StatusNoContent, rec.Code)
	s.Nil(s.scanner.Cache().Get(filepath.Join(s.root, "a")))

	rec = s.do(http.MethodDelete, "/api/cache")
	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal(0, s.scanner.Cache().Len())
}

func (s *ServerTestSuite) TestMetrics() {
	s.do(http.MethodGet, "/api/folders?path="+url.QueryEscape(s.root))

	rec := s.do(http.MethodGet, "/metrics")
	s.Equal(http.StatusOK, rec.Code)
	s.True(strings.Contains(rec.Body.String(), "foldersize_cache_misses_total 2"), rec.Body.String())
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}
