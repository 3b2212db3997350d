package domain

// CompatibleDonors returns the donor blood groups accepted for a
// requested group: the group itself, the universal donor O-, and O+
// for Rh-positive recipients.
//
// This is a simplified universal-donor lookup, not full ABO/Rh
// cross-matching (an A+ recipient is not matched to A- donors here).
// Callers must not assume medical completeness.
func CompatibleDonors(requested BloodGroup) []BloodGroup {
	groups := []BloodGroup{requested}
	if requested != ONegative {
		groups = append(groups, ONegative)
	}
	if requested.IsPositive() && requested != OPositive {
		groups = append(groups, OPositive)
	}
	return groups
}
