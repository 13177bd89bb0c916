package remote

import (
	"time"
)

const (
	resourcesEndpoint = "/resources"
	uploadEndpoint    = "/resources/upload"

	listPageLimit = 1000
	// Offset paging needs a stable order.
	listSortOrder = "name"
	typeDir       = "dir"
)

type resource struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Type     string `json:"type"`
	Modified string `json:"modified"`
	Size     int64  `json:"size"`
}

type resourceList struct {
	Items  []resource `json:"items"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
	Total  int        `json:"total"`
}

type resourceInfo struct {
	resource
	Embedded *resourceList `json:"_embedded"`
}

type link struct {
	Href      string `json:"href"`
	Method    string `json:"method"`
	Templated bool   `json:"templated"`
}

// parseModified reads the ISO-8601 timestamps the API emits,
// e.g. 2024-03-01T09:15:27+00:00.
func parseModified(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
