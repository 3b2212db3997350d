package domain

import "time"

// Donation rule constants, the single source of truth for the
// eligibility gate and the statistics summary.
const (
	// CooldownDays is the minimum interval between completed donations
	CooldownDays = 90

	// BasePoints is awarded for every donation
	BasePoints = 50
	// RequestLinkBonus is awarded when a donation answers a blood request
	RequestLinkBonus = 25
	// ExtraUnitBonus is awarded per unit beyond the first
	ExtraUnitBonus = 25

	// MinUnitsContributed / MaxUnitsContributed bound a single donation
	MinUnitsContributed = 1
	MaxUnitsContributed = 2

	// MinUnitsNeeded / MaxUnitsNeeded bound a blood request
	MinUnitsNeeded = 1
	MaxUnitsNeeded = 10
)

// Request TTLs by urgency tier
const (
	TTLCritical = 24 * time.Hour
	TTLUrgent   = 72 * time.Hour
	TTLNormal   = 7 * 24 * time.Hour
)

// RequestTTL returns the time-to-live for a request of the given urgency
func RequestTTL(urgency Urgency) time.Duration {
	switch urgency {
	case UrgencyCritical:
		return TTLCritical
	case UrgencyUrgent:
		return TTLUrgent
	default:
		return TTLNormal
	}
}

// UrgencyPriority returns the sort priority of an urgency tier.
// Higher priority is served first.
func UrgencyPriority(urgency Urgency) int {
	switch urgency {
	case UrgencyCritical:
		return 3
	case UrgencyUrgent:
		return 2
	default:
		return 1
	}
}

// DaysSinceDonation returns the whole days elapsed since the last donation.
// Returns -1 when the donor has never donated.
func DaysSinceDonation(now time.Time, lastDonation *time.Time) int {
	if lastDonation == nil {
		return -1
	}
	return int(now.Sub(*lastDonation).Hours() / 24)
}

// CanDonate decides whether a donor may record a new donation now.
// A first-time donor is always eligible; otherwise the cooldown must
// have fully elapsed.
func CanDonate(now time.Time, user *User) bool {
	if user == nil || user.Role != RoleDonor || !user.IsAvailable {
		return false
	}
	if user.LastDonation == nil {
		return true
	}
	return DaysSinceDonation(now, user.LastDonation) >= CooldownDays
}

// DonationPoints computes the point value of a donation from its unit
// count and whether it answers a blood request.
func DonationPoints(units int, linkedToRequest bool) int {
	points := BasePoints
	if linkedToRequest {
		points += RequestLinkBonus
	}
	if units > 1 {
		points += ExtraUnitBonus * (units - 1)
	}
	return points
}
