package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/windoze95/chefremy-api/internal/config"
	"github.com/windoze95/chefremy-api/internal/util"
)

const testSecret = "test-secret-key-for-jwt-signing"

func init() {
	gin.SetMode(gin.TestMode)
}

func makeTestToken(sessionID string, tokenType string, expiry time.Time, secret string) string {
	claims := jwt.MapClaims{
		"session_id": sessionID,
		"exp":        expiry.Unix(),
		"iat":        time.Now().Unix(),
		"type":       tokenType,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, _ := token.SignedString([]byte(secret))
	return s
}

func setupTokenRouter() *gin.Engine {
	cfg := &config.Config{
		EnvVars: config.EnvVars{
			SessionSecret: testSecret,
		},
	}

	r := gin.New()
	r.GET("/sessions/:session_id", VerifySessionTokenMiddleware(cfg), func(c *gin.Context) {
		sessionID, _ := util.GetSessionIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"session_id": sessionID})
	})
	return r
}

func doGet(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVerifySessionToken_Valid(t *testing.T) {
	r := setupTokenRouter()

	token, err := GenerateSessionToken(testSecret, "abc", time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}

	w := doGet(r, "/sessions/abc", token)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d. body: %s", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestVerifySessionToken_MissingAuthorizationHeader(t *testing.T) {
	w := doGet(setupTokenRouter(), "/sessions/abc", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestVerifySessionToken_Expired(t *testing.T) {
	token := makeTestToken("abc", "session", time.Now().Add(-1*time.Hour), testSecret)
	w := doGet(setupTokenRouter(), "/sessions/abc", token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestVerifySessionToken_Invalid(t *testing.T) {
	w := doGet(setupTokenRouter(), "/sessions/abc", "invalid.token.here")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestVerifySessionToken_WrongSecret(t *testing.T) {
	token := makeTestToken("abc", "session", time.Now().Add(time.Hour), "wrong-secret")
	w := doGet(setupTokenRouter(), "/sessions/abc", token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestVerifySessionToken_WrongType(t *testing.T) {
	token := makeTestToken("abc", "access", time.Now().Add(time.Hour), testSecret)
	w := doGet(setupTokenRouter(), "/sessions/abc", token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestVerifySessionToken_OtherSession(t *testing.T) {
	token := makeTestToken("abc", "session", time.Now().Add(time.Hour), testSecret)
	w := doGet(setupTokenRouter(), "/sessions/xyz", token)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestParseSessionToken_RoundTrip(t *testing.T) {
	token, err := GenerateSessionToken(testSecret, "session-42", SessionTokenTTL)
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}

	sessionID, err := ParseSessionToken(testSecret, token)
	if err != nil {
		t.Fatalf("ParseSessionToken: %v", err)
	}
	if sessionID != "session-42" {
		t.Errorf("session id = %q, want %q", sessionID, "session-42")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		t.Fatalf("ParseUnverified: %v", err)
	}
	exp, _ := claims["exp"].(float64)
	want := time.Now().Add(SessionTokenTTL).Unix()
	if diff := int64(exp) - want; diff > 5 || diff < -5 {
		t.Errorf("exp = %d, want about %d", int64(exp), want)
	}
}
