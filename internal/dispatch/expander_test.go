package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perimetra/netinv/internal/inventory"
)

func TestExpand_InactiveYieldsNothing(t *testing.T) {
	now := time.Now()

	for _, status := range []string{"suspended", "closed", "pending", ""} {
		acct := inventory.AccountRecord{
			AccountID: "111111111111",
			Status:    status,
			Regions:   []string{"us-east-1"},
		}
		assert.Empty(t, Expand(acct, now), "status %q should yield no items", status)
	}
}

func TestExpand_ActiveIsCaseInsensitive(t *testing.T) {
	now := time.Now()

	for _, status := range []string{"active", "Active", "ACTIVE"} {
		acct := inventory.AccountRecord{
			AccountID: "111111111111",
			Status:    status,
			Regions:   []string{"us-east-1"},
		}
		assert.Len(t, Expand(acct, now), 1, "status %q should be active", status)
	}
}

func TestExpand_DeduplicatesRegions(t *testing.T) {
	acct := inventory.AccountRecord{
		AccountID:   "111111111111",
		AccountName: "payments-prod",
		Status:      "active",
		Regions:     []string{"us-east-1", "us-east-1", "eu-west-1"},
	}

	items := Expand(acct, time.Now())

	require.Len(t, items, 2)
	regions := []string{items[0].Region, items[1].Region}
	assert.ElementsMatch(t, []string{"us-east-1", "eu-west-1"}, regions)
}

func TestExpand_ZeroRegionsIsNotAnError(t *testing.T) {
	acct := inventory.AccountRecord{
		AccountID: "111111111111",
		Status:    "active",
	}
	assert.Empty(t, Expand(acct, time.Now()))
}

func TestExpand_CarriesAccountIdentity(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	acct := inventory.AccountRecord{
		AccountID:    "111111111111",
		AccountName:  "payments-prod",
		BusinessUnit: "payments",
		Status:       "active",
		Regions:      []string{"us-west-2"},
	}

	items := Expand(acct, now)

	require.Len(t, items, 1)
	assert.Equal(t, "111111111111", items[0].AccountID)
	assert.Equal(t, "payments-prod", items[0].AccountName)
	assert.Equal(t, "payments", items[0].BusinessUnit)
	assert.Equal(t, "us-west-2", items[0].Region)
	assert.Equal(t, now, items[0].Timestamp)
}
