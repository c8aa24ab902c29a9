package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
)

func okHandler(called *bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte("ok"))
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{"wildcard", []string{"*"}, "https://admin.example.com", "*"},
		{"empty list allows all", nil, "https://admin.example.com", "*"},
		{"listed origin echoed", []string{"https://admin.example.com/"}, "https://admin.example.com", "https://admin.example.com"},
		{"unlisted origin", []string{"https://admin.example.com"}, "https://evil.example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set("Origin", tt.origin)

			CORS(tt.allowed)(okHandler(&called))(rec, req)

			assert.True(t, called)
			assert.Equal(t, tt.want, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	var called bool
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/mapping", nil)

	CORS([]string{"*"})(okHandler(&called))(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogging_CapturesStatus(t *testing.T) {
	var called bool
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sync/inbound?dry=1", nil)

	Logging(arbor.NewLogger())(okHandler(&called))(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestLoggingResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	lrw := newLoggingResponseWriter(rec)
	assert.Equal(t, http.StatusOK, lrw.statusCode, "status defaults to 200")

	lrw.WriteHeader(http.StatusNotFound)
	n, err := lrw.Write([]byte("missing"))

	assert.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, http.StatusNotFound, lrw.statusCode)
	assert.Equal(t, 7, lrw.written)
}
