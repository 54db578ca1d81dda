// Package handler orchestrates error processing: every escaped error is
// classified, logged at a severity-derived level, counted in metrics, and
// optionally routed to a named recovery strategy. The handler itself never
// fails; reporting problems are swallowed so the original error path is
// unaffected.
//
//	h := handler.New(handler.WithSink(monitor))
//
//	publish := handler.Wrap(h, "reddit", "publish_post", "", func(ctx context.Context) (string, error) {
//	    return client.Submit(ctx, post)
//	})
package handler
