package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"wallet_balance/internal/config"
	"wallet_balance/internal/domain"
	"wallet_balance/internal/logging"
	"wallet_balance/internal/metrics"
	"wallet_balance/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	logging.Discard()
}

func newServer(t *testing.T, mode string, repo repository.WalletRepository) http.Handler {
	t.Helper()
	resp, err := NewResponder(mode)
	require.NoError(t, err)

	r, err := NewRouter(RouterConfig{
		Repository:     repo,
		Responder:      resp,
		Metrics:        metrics.New(),
		TrustedProxies: []string{"127.0.0.1"},
	})
	require.NoError(t, err)
	return r
}

func newLegacyServer(t *testing.T) http.Handler {
	return newServer(t, config.ResponseModeLegacy, repository.NewMemoryRepository())
}

func do(h http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

// brokenRepository fails every call the way a lost database connection would
type brokenRepository struct{ err error }

func (b brokenRepository) Create(context.Context, domain.WalletBalance) error { return b.err }
func (b brokenRepository) Get(context.Context, int) (domain.WalletBalance, error) {
	return domain.WalletBalance{}, b.err
}
func (b brokenRepository) UpdateBalance(context.Context, int, int) (domain.WalletBalance, error) {
	return domain.WalletBalance{}, b.err
}
func (b brokenRepository) Delete(context.Context, int) error { return b.err }
func (b brokenRepository) Ping(context.Context) error        { return b.err }

// integrityRepository rejects every update as the database would on a constraint violation
type integrityRepository struct{ repository.WalletRepository }

func (integrityRepository) UpdateBalance(context.Context, int, int) (domain.WalletBalance, error) {
	return domain.WalletBalance{}, repository.ErrIntegrity
}

// panicRepository panics on reads
type panicRepository struct{ repository.WalletRepository }

func (panicRepository) Get(context.Context, int) (domain.WalletBalance, error) {
	panic("unexpected nil row")
}

var errDatabaseDown = errors.New("database down")
