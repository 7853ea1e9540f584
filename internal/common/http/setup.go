package http

import (
	"net/http"

	"pinboard/internal/common/constants"
	"pinboard/internal/common/httpmetrics"
	"pinboard/internal/common/logger"
)

// BuildBaseHandler wraps the application mux with the shared middleware
// chain: security headers, CSP, panic recovery, trace IDs, body size limit
// and request metrics.
func BuildBaseHandler(log *logger.Logger, handler http.Handler) http.Handler {
	metrics := httpmetrics.New()
	recovery := RecoveryMiddleware(log)
	traceID := TraceIDMiddleware
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)
	securityHeaders := SecurityHeadersMiddleware
	csp := ContentSecurityPolicyMiddleware("")

	return securityHeaders(csp(recovery(traceID(maxRequestSize(metrics.Wrap(handler))))))
}
