package middleware

import (
	"net/http"
	"strings"
)

// MethodOverrideField is the form field HTML forms use to spoof PUT and DELETE
const MethodOverrideField = "_method"

// MethodOverride rewrites a form POST to the method named in its _method field or the
// X-HTTP-Method-Override header. Only PUT, PATCH and DELETE are honoured.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			method := r.Header.Get("X-HTTP-Method-Override")
			if method == "" && !IsJSON(r) {
				// The body is consumed here, so a parse failure cannot be retried downstream
				if err := r.ParseForm(); err != nil {
					RespondWithError(w, http.StatusBadRequest, "invalid form body")
					return
				}
				method = r.PostForm.Get(MethodOverrideField)
			}

			switch method = strings.ToUpper(strings.TrimSpace(method)); method {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				r.Method = method
			}
		}

		next.ServeHTTP(w, r)
	})
}
