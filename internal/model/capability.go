package model

// Capability is a bitset of department-scoped permissions granted by a rank.
type Capability uint64

const (
	CapabilityViewMembers Capability = 1 << iota
	CapabilityManageMembers
	CapabilityPromoteMembers
	CapabilityDemoteMembers
	CapabilityManageRanks
	CapabilityManageTeams
	CapabilityViewReports
)

var capabilityNames = map[Capability]string{
	CapabilityViewMembers:    "view_members",
	CapabilityManageMembers:  "manage_members",
	CapabilityPromoteMembers: "promote_members",
	CapabilityDemoteMembers:  "demote_members",
	CapabilityManageRanks:    "manage_ranks",
	CapabilityManageTeams:    "manage_teams",
	CapabilityViewReports:    "view_reports",
}

func (c Capability) Has(required Capability) bool {
	return required != 0 && c&required == required
}

func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return "unknown"
}
