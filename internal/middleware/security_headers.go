package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// Listing pages carry no scripts, images or forms; only the inline
// stylesheet of the page template is allowed.
const contentSecurityPolicy = "default-src 'none'; " +
	"style-src 'unsafe-inline'; " +
	"frame-ancestors 'none'; " +
	"base-uri 'none'; " +
	"form-action 'none'"

const strictTransportSecurity = "max-age=31536000; includeSubDomains"

// listingHeaders are set on every response, including errors.
var listingHeaders = map[string]string{
	echo.HeaderXFrameOptions:         "DENY",
	echo.HeaderXContentTypeOptions:   "nosniff",
	echo.HeaderReferrerPolicy:        "no-referrer",
	"Permissions-Policy":             "interest-cohort=(), geolocation=(), microphone=(), camera=()",
	"Cross-Origin-Opener-Policy":     "same-origin",
	echo.HeaderContentSecurityPolicy: contentSecurityPolicy,
}

// SecurityHeaders hardens listing pages against framing, sniffing and
// referrer leaks. HSTS is only sent when the request arrived over TLS,
// directly or through a proxy that reports it.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			headers := c.Response().Header()
			for name, value := range listingHeaders {
				headers.Set(name, value)
			}
			if c.IsTLS() || strings.EqualFold(c.Request().Header.Get(echo.HeaderXForwardedProto), "https") {
				headers.Set(echo.HeaderStrictTransportSecurity, strictTransportSecurity)
			}
			return next(c)
		}
	}
}
