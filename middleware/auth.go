package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mkrawczyk/volleypanel/services"
)

type contextKey string

const credentialKey contextKey = "operatorCredential"

// PinHeader carries the shared tournament PIN on mutating requests, the way
// the operator console submits it. Devices that exchanged the PIN for a
// session token use a bearer Authorization header instead.
const PinHeader = "X-Operator-Pin"

// OperatorCredential extracts the caller's credential (PIN header or bearer
// token) into the request context. Validation happens later, inside the
// mutation, where the tournament slug is known.
func OperatorCredential(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cred := services.Credential{Pin: r.Header.Get(PinHeader)}
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			cred.Token = strings.TrimPrefix(auth, "Bearer ")
		}
		ctx := context.WithValue(r.Context(), credentialKey, cred)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CredentialFromContext returns the credential attached by OperatorCredential.
func CredentialFromContext(ctx context.Context) services.Credential {
	cred, _ := ctx.Value(credentialKey).(services.Credential)
	return cred
}
