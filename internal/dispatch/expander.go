// Package dispatch expands registry accounts into work items and fans
// them out to the messaging fabric.
package dispatch

import (
	"sort"
	"strings"
	"time"

	"github.com/perimetra/netinv/internal/inventory"
)

// ActiveStatus is the only registry status that yields work items.
// Comparison is case-insensitive.
const ActiveStatus = "active"

// IsActive reports whether an account participates in collection.
func IsActive(acct inventory.AccountRecord) bool {
	return strings.EqualFold(acct.Status, ActiveStatus)
}

// Expand turns one account record into zero or more work items, one per
// distinct region. Inactive accounts and accounts with no regions yield
// nothing. Duplicate regions in the source collapse to one item.
func Expand(acct inventory.AccountRecord, now time.Time) []inventory.WorkItem {
	if !IsActive(acct) {
		return nil
	}

	seen := make(map[string]struct{}, len(acct.Regions))
	regions := make([]string, 0, len(acct.Regions))
	for _, region := range acct.Regions {
		if region == "" {
			continue
		}
		if _, ok := seen[region]; ok {
			continue
		}
		seen[region] = struct{}{}
		regions = append(regions, region)
	}
	sort.Strings(regions)

	items := make([]inventory.WorkItem, 0, len(regions))
	for _, region := range regions {
		items = append(items, inventory.WorkItem{
			AccountID:    acct.AccountID,
			AccountName:  acct.AccountName,
			BusinessUnit: acct.BusinessUnit,
			Region:       region,
			Timestamp:    now.UTC(),
		})
	}
	return items
}
