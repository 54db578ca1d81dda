package errors

import "github.com/google/uuid"

// Context carries the provenance of an error: which service and operation
// raised it and, when known, the user and request involved. It is a value
// type and every With* helper returns an updated copy, so a Context can be
// shared across goroutines freely.
type Context struct {
	Service   string
	Operation string
	UserID    string
	RequestID string
	Metadata  map[string]any
}

// NewContext builds a Context for a service operation with a fresh request ID.
func NewContext(service, operation string) Context {
	return Context{
		Service:   service,
		Operation: operation,
		RequestID: uuid.NewString(),
	}
}

// WithUser returns a copy of the context with the user ID set.
func (c Context) WithUser(userID string) Context {
	c.UserID = userID
	return c
}

// WithRequestID returns a copy of the context with the request ID replaced.
func (c Context) WithRequestID(requestID string) Context {
	c.RequestID = requestID
	return c
}

// WithMetadata returns a copy of the context with an extra metadata entry.
// The metadata map is copied, never mutated in place.
func (c Context) WithMetadata(key string, value any) Context {
	meta := make(map[string]any, len(c.Metadata)+1)
	for k, v := range c.Metadata {
		meta[k] = v
	}
	meta[key] = value
	c.Metadata = meta
	return c
}

// Fields flattens the context into structured log fields.
func (c Context) Fields() map[string]any {
	fields := map[string]any{
		"service":   c.Service,
		"operation": c.Operation,
	}
	if c.UserID != "" {
		fields["user_id"] = c.UserID
	}
	if c.RequestID != "" {
		fields["request_id"] = c.RequestID
	}
	for k, v := range c.Metadata {
		fields[k] = v
	}
	return fields
}
