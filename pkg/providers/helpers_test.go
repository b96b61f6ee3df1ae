package providers

import (
	"context"
	"fmt"

	"github.com/abhijeet6401/newslet/pkg/httpclient"
)

type stubResponse struct {
	status int
	body   string
}

func (r stubResponse) StatusCode() int { return r.status }
func (r stubResponse) Body() []byte    { return []byte(r.body) }

// stubClient serves canned bodies by URL and records requests.
type stubClient struct {
	pages    map[string]stubResponse
	requests []string
}

func newStubClient(pages map[string]stubResponse) *stubClient {
	return &stubClient{pages: pages}
}

func (c *stubClient) Get(_ context.Context, url string, _ map[string]string) (httpclient.Response, error) {
	c.requests = append(c.requests, url)
	resp, ok := c.pages[url]
	if !ok {
		return nil, fmt.Errorf("dial %s: connection refused", url)
	}
	return resp, nil
}

func (c *stubClient) PostJSON(_ context.Context, url string, _ map[string]string, _ any) (httpclient.Response, error) {
	return nil, fmt.Errorf("unexpected post to %s", url)
}
