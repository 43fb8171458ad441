package logging

import (
	"context"
	"maps"
)

type contextKey string

const contextFieldsKey contextKey = "livesite.logging.fields"

// ContextWithFields returns a context carrying structured logging fields.
// Fields already present on the context are kept unless overwritten.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}
	merged := ContextFields(ctx)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return context.WithValue(ctx, contextFieldsKey, merged)
}

// ContextFields extracts a copy of the fields annotated on ctx.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, ok := ctx.Value(contextFieldsKey).(map[string]any)
	if !ok || len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}

// WithTenant annotates ctx with the tenant key so every entry logged with
// that context can be filtered per tenant.
func WithTenant(ctx context.Context, tenantKey string) context.Context {
	if tenantKey == "" {
		return ctx
	}
	return ContextWithFields(ctx, map[string]any{fieldTenant: tenantKey})
}
