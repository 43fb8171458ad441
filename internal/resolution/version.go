package resolution

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidSchemaTag reports a malformed "<family>.<variant>@vX.Y.Z" tag.
var ErrInvalidSchemaTag = errors.New("resolution: invalid schema tag")

// SchemaTag identifies the payload schema revision of a component record.
type SchemaTag struct {
	Family  string
	Variant string
	SemVer  string
}

// ParseSchemaTag parses a "<family>.<variant>@vMAJOR.MINOR.PATCH" string.
func ParseSchemaTag(value string) (SchemaTag, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return SchemaTag{}, fmt.Errorf("%w: empty", ErrInvalidSchemaTag)
	}
	parts := strings.Split(trimmed, "@")
	if len(parts) != 2 {
		return SchemaTag{}, fmt.Errorf("%w: %s", ErrInvalidSchemaTag, value)
	}
	name := strings.TrimSpace(parts[0])
	version := normalizeSemVer(parts[1])
	family, variant, ok := strings.Cut(name, ".")
	family = strings.TrimSpace(family)
	variant = strings.TrimSpace(variant)
	if !ok || family == "" || variant == "" || !isSemVer(version) {
		return SchemaTag{}, fmt.Errorf("%w: %s", ErrInvalidSchemaTag, value)
	}
	return SchemaTag{Family: family, Variant: variant, SemVer: version}, nil
}

// NewSchemaTag builds a tag, defaulting the version to v1.0.0.
func NewSchemaTag(family, variant, semver string) SchemaTag {
	version := normalizeSemVer(semver)
	if version == "" {
		version = "v1.0.0"
	}
	return SchemaTag{
		Family:  strings.TrimSpace(family),
		Variant: strings.TrimSpace(variant),
		SemVer:  version,
	}
}

// String returns the canonical tag format.
func (t SchemaTag) String() string {
	if t.Family == "" || t.Variant == "" {
		return ""
	}
	return t.Family + "." + t.Variant + "@" + t.SemVer
}

// Matches reports whether t names the same variant and, when semver is set,
// the same version.
func (t SchemaTag) Matches(family, variant, semver string) bool {
	if t.Family != family || t.Variant != variant {
		return false
	}
	semver = normalizeSemVer(semver)
	return semver == "" || t.SemVer == semver
}

func normalizeSemVer(value string) string {
	version := strings.TrimSpace(value)
	if version == "" {
		return ""
	}
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return version
}

func isSemVer(value string) bool {
	if !strings.HasPrefix(value, "v") {
		return false
	}
	parts := strings.Split(value[1:], ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
		if _, err := strconv.Atoi(part); err != nil {
			return false
		}
	}
	return true
}
