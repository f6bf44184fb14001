// Package http exposes the storefront over a chi router.
package http

import (
	"net/http"

	"github.com/utafrali/FurnitureStore/internal/service"
	"github.com/utafrali/FurnitureStore/pkg/httputil"
	"github.com/utafrali/FurnitureStore/pkg/validator"
)

const maxBodyBytes = 1 << 20

// decode reads a size-limited JSON body into dst and validates it.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return validator.DecodeAndValidate(r, dst)
}

func toNotice(n *service.Notice) *httputil.Notice {
	if n == nil {
		return nil
	}
	return &httputil.Notice{Code: n.Code, Message: n.Message}
}
