package resolution

import "github.com/goliatone/go-livesite/internal/sites"

// mergeContent overlays src onto dst field by field, descending into nested
// maps so sibling fields supplied by an earlier layer survive.
func mergeContent(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = map[string]any{}
	}
	for key, value := range src {
		if incoming, ok := value.(map[string]any); ok {
			if existing, ok := dst[key].(map[string]any); ok {
				dst[key] = mergeContent(existing, incoming)
				continue
			}
			dst[key] = sites.CloneMap(incoming)
			continue
		}
		dst[key] = sites.CloneValue(value)
	}
	return dst
}

// overlayFields replaces every top-level key of dst found in src except content.
func overlayFields(dst, src map[string]any) {
	for key, value := range src {
		if key == sites.ContentKey {
			continue
		}
		dst[key] = sites.CloneValue(value)
	}
}

// splitPayload separates the content sub-object from a payload. ok is false
// when the payload carries a content value that is not an object.
func splitPayload(payload map[string]any) (content map[string]any, ok bool) {
	raw, present := payload[sites.ContentKey]
	if !present || raw == nil {
		return nil, true
	}
	content, ok = raw.(map[string]any)
	return content, ok
}
