// ABOUTME: Route group detection for request logging.
// ABOUTME: Determines which API area a request belongs to based on URL path.

package logging

import "strings"

// Route groups recorded with each request
const (
	GroupDecode   = "decode"
	GroupScans    = "scans"
	GroupPackages = "packages"
	GroupCatalog  = "catalog"
	GroupPages    = "pages"
	GroupLogs     = "logs"
	GroupUnknown  = "unknown"
)

// Groups lists the route groups reported in statistics, in display order.
var Groups = []string{GroupDecode, GroupScans, GroupPackages, GroupCatalog, GroupPages, GroupLogs}

// GetGroupFromPath determines which route group handles a given path
func GetGroupFromPath(path string) string {
	switch {
	case path == "/api/decode" || strings.HasPrefix(path, "/ws/scan"):
		return GroupDecode
	case strings.HasPrefix(path, "/api/scans"):
		return GroupScans
	case strings.HasPrefix(path, "/api/packages"):
		return GroupPackages
	case path == "/api/decoders" || path == "/api/views":
		return GroupCatalog
	case strings.HasPrefix(path, "/api/logs") || strings.HasPrefix(path, "/api/stats"):
		return GroupLogs
	case path == "/" || strings.HasPrefix(path, "/scans/") || path == "/logs":
		return GroupPages
	}

	return GroupUnknown
}
