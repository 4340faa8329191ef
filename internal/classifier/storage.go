// Package classifier infers storage technology from inconsistent catalog
// metadata.
package classifier

import (
	"regexp"
	"strings"

	"github.com/trandaiky/techshop-discounts/internal/model"
)

var (
	ssdNamePattern       = regexp.MustCompile(`(?i)ssd|solid[\s-]?state|nvme|m\.2|pcie`)
	nvmeInterfacePattern = regexp.MustCompile(`(?i)nvme|pcie`)
)

// IsSolidState reports whether a storage component is solid-state. Rules
// are evaluated short-circuit in order of reliability:
//
//  1. an explicit type or storage-type field (including nested details)
//     equals "SSD"
//  2. the name matches a known SSD keyword (ssd, solid state, nvme, m.2, pcie)
//  3. the form factor is exactly "2.5"
//  4. the form factor is exactly "M.2" or the interface is NVMe/PCIe
//
// Anything else is classified as a spinning disk.
func IsSolidState(c model.Component) bool {
	if isSSD(c.Type) || isSSD(c.StorageType) {
		return true
	}
	if c.Details != nil && (isSSD(c.Details.Type) || isSSD(c.Details.StorageType)) {
		return true
	}
	if ssdNamePattern.MatchString(c.Name) {
		return true
	}
	if c.FormFactor == "2.5" {
		return true
	}
	if c.FormFactor == "M.2" || nvmeInterfacePattern.MatchString(c.Interface) {
		return true
	}
	return false
}

// StorageKind returns the classification as the API-facing string.
func StorageKind(c model.Component) string {
	if IsSolidState(c) {
		return "ssd"
	}
	return "hdd"
}

func isSSD(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "SSD")
}
