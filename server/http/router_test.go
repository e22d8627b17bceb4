package serverhttp

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sinaliza-recon/internal/config"
	necHnd "sinaliza-recon/internal/necessidade/handler"
	"sinaliza-recon/internal/necessidade/service"
	"sinaliza-recon/internal/store/sqlite"
)

func TestRouter(t *testing.T) {
	st, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer st.Close()

	logger := zerolog.New(io.Discard)
	nec := necHnd.New(
		service.NewImporter(st, nil, logger),
		service.NewWorkflow(st, nil, nil, logger),
		1, logger,
	)
	cfg := config.Config{AllowOrigins: []string{"*"}, MaxUploadMB: 1}
	srv := httptest.NewServer(NewRouter(cfg, logger, nec, st))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = http.Get(srv.URL + "/necessidades/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/reconcile")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
