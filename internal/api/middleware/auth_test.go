package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, key []byte, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func TestOperatorAuth(t *testing.T) {
	signingKey := []byte("operator-signing-key-for-tests!!")
	wrongKey := []byte("a-completely-different-hmac-key!")

	operatorClaims := jwt.MapClaims{
		"sub":   "alice",
		"roles": []string{"admin"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	}

	tt := []struct {
		name       string
		authHeader string
		wantStatus int
		wantRoles  []string
	}{
		{
			name:       "missing token",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			authHeader: "Bearer not-a-jwt",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong signing key",
			authHeader: "Bearer " + signToken(t, wrongKey, operatorClaims),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "expired token",
			authHeader: "Bearer " + signToken(t, signingKey, jwt.MapClaims{
				"sub":   "alice",
				"roles": []string{"admin"},
				"exp":   time.Now().Add(-time.Hour).Unix(),
			}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "no roles claim",
			authHeader: "Bearer " + signToken(t, signingKey, jwt.MapClaims{
				"sub": "alice",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "empty roles claim",
			authHeader: "Bearer " + signToken(t, signingKey, jwt.MapClaims{
				"sub":   "alice",
				"roles": []string{},
				"exp":   time.Now().Add(time.Hour).Unix(),
			}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid operator token",
			authHeader: "Bearer " + signToken(t, signingKey, operatorClaims),
			wantStatus: http.StatusOK,
			wantRoles:  []string{"admin"},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			var gotRoles []string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotRoles = RolesCtx(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest("GET", "/v1/admin/approvals", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rec := httptest.NewRecorder()

			OperatorAuth(signingKey)(next).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if tc.wantStatus != http.StatusOK {
				if gotRoles != nil {
					t.Errorf("handler ran with roles %v on a rejected request", gotRoles)
				}
				return
			}
			if len(gotRoles) != len(tc.wantRoles) {
				t.Fatalf("roles = %v, want %v", gotRoles, tc.wantRoles)
			}
			for i, role := range tc.wantRoles {
				if gotRoles[i] != role {
					t.Errorf("roles[%d] = %s, want %s", i, gotRoles[i], role)
				}
			}
		})
	}
}
