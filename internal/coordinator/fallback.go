package coordinator

import (
	"context"

	"github.com/productbazar/bazar/internal/apierr"
)

// FallbackChain tries requests in order and returns the first response that
// accept approves. A nil accept approves any success. Errors other than
// NotFound and Server stop the chain immediately; a cancelled caller never
// falls through to the next endpoint. When everything is exhausted the last
// failure (or rejection) is returned.
func (c *Coordinator) FallbackChain(ctx context.Context, accept func(*Response) bool, reqs ...Request) (*Response, error) {
	var lastErr error
	for _, req := range reqs {
		resp, err := c.Do(ctx, req)
		if err != nil {
			if apierr.Cancelled(err) {
				return nil, err
			}
			if apierr.IsKind(err, apierr.KindNotFound) || apierr.IsKind(err, apierr.KindServer) || apierr.IsKind(err, apierr.KindNetwork) {
				lastErr = err
				continue
			}
			return nil, err
		}
		if accept == nil || accept(resp) {
			return resp, nil
		}
		lastErr = apierr.New(apierr.KindNotFound, "endpoint returned no usable data")
	}
	if lastErr == nil {
		lastErr = apierr.New(apierr.KindNotFound, "fallback chain exhausted")
	}
	return nil, lastErr
}
