package logging

import (
	"maps"

	"github.com/goliatone/go-livesite/pkg/interfaces"
)

// WithFields attaches structured fields to a logger when the implementation
// supports the optional FieldsLogger extension.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(maps.Clone(fields))
	}
	return logger
}

// WithTenantFields scopes logger to a tenant, and to a page when page is not nil.
func WithTenantFields(logger interfaces.Logger, tenantKey string, page *string) interfaces.Logger {
	fields := map[string]any{}
	if tenantKey != "" {
		fields[fieldTenant] = tenantKey
	}
	if page != nil {
		fields[fieldPage] = *page
	}
	return WithFields(logger, fields)
}
