// AngelaMos | 2026
// metrics_test.go

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesAuthCounters(t *testing.T) {
	LoginAttempts.WithLabelValues(OutcomeSuccess).Inc()
	PasswordResets.WithLabelValues(OutcomeLinkExpired).Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `user_api_auth_login_attempts_total{outcome="success"}`)
	assert.Contains(t, string(body), `user_api_auth_password_resets_total{outcome="link_expired"}`)
}
