package sonarr

import (
	"io"
	"net/http"
	"strings"

	"github.com/Digital-Shane/libby/internal/provider/arr"
)

func withHTTP(hc *http.Client) arr.Option {
	return arr.WithHTTPClient(hc)
}

func jsonBody(path string) io.Reader {
	if strings.HasSuffix(path, "qualityprofile") {
		return strings.NewReader(`[{"id": 1, "name": "Any"}]`)
	}
	return strings.NewReader(`[]`)
}
