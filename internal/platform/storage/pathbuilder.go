package storage

import (
	"fmt"
	"path"
	"strings"
)

// ObjectKind selects the layout of a published object.
type ObjectKind string

const (
	KindSitePage  ObjectKind = "site-page"
	KindSiteAsset ObjectKind = "site-asset"
)

// PathParams identify the object being written.
type PathParams struct {
	Prefix   string
	DemoID   string
	FileName string
}

// PathBuilder composes the object path for one kind.
type PathBuilder func(PathParams) (string, error)

var pathBuilders = map[ObjectKind]PathBuilder{
	KindSitePage:  buildSitePagePath,
	KindSiteAsset: buildSiteAssetPath,
}

// BuildObjectPath resolves the object key, e.g. demos/{id}/index.html.
func BuildObjectPath(kind ObjectKind, params PathParams) (string, error) {
	builder, ok := pathBuilders[kind]
	if !ok {
		return "", fmt.Errorf("storage: unsupported object kind %q", kind)
	}
	key, err := builder(params)
	if err != nil {
		return "", err
	}
	prefix := strings.Trim(strings.TrimSpace(params.Prefix), "/")
	if prefix == "" {
		return key, nil
	}
	if strings.Contains(prefix, "..") {
		return "", fmt.Errorf("storage: prefix contains invalid traversal sequence")
	}
	return path.Join(prefix, key), nil
}

func buildSitePagePath(params PathParams) (string, error) {
	demoID, err := validateSegment("demoID", params.DemoID)
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(params.FileName)
	if name == "" {
		name = "index.html"
	}
	fileName, err := validateSegment("fileName", name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("demos/%s/%s", demoID, fileName), nil
}

func buildSiteAssetPath(params PathParams) (string, error) {
	demoID, err := validateSegment("demoID", params.DemoID)
	if err != nil {
		return "", err
	}
	fileName, err := validateSegment("fileName", params.FileName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("demos/%s/assets/%s", demoID, fileName), nil
}

func validateSegment(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("storage: %s is required", name)
	}
	if strings.ContainsAny(value, "/\\") {
		return "", fmt.Errorf("storage: %s contains invalid path characters", name)
	}
	if strings.Contains(value, "..") {
		return "", fmt.Errorf("storage: %s contains invalid traversal sequence", name)
	}
	return value, nil
}
