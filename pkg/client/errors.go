package client

import (
	"net/http"

	"github.com/Sternrassler/pokedex-client/pkg/pokedex"
)

// classifyError maps a transport error or an HTTP response to an error class.
// Any status outside 2xx is reported as not_found; the status code is kept on
// the error but not distinguished further.
func (c *Client) classifyError(resp *http.Response, err error) pokedex.ErrorClass {
	if err != nil {
		return pokedex.ErrorClassNetwork
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pokedex.ErrorClassNotFound
	}
	return ""
}
