package roles

// Role is the closed set of platform roles. The hierarchy and the
// creation matrix are total functions over this set so a new role
// cannot be introduced without updating both tables.
type Role string

const (
	SuperAdmin  Role = "superadmin"
	Admin       Role = "admin"
	TeamLeader  Role = "team-leader"
	Tester      Role = "tester"
	ClientAdmin Role = "client-admin"
	ClientUser  Role = "client-user"
)

// All lists every valid role, highest hierarchy level first.
func All() []Role {
	return []Role{SuperAdmin, Admin, TeamLeader, Tester, ClientAdmin, ClientUser}
}

// Parse returns the role for a raw string, reporting whether it is
// one of the six known roles.
func Parse(raw string) (Role, bool) {
	role := Role(raw)
	switch role {
	case SuperAdmin, Admin, TeamLeader, Tester, ClientAdmin, ClientUser:
		return role, true
	}
	return "", false
}

// HierarchyLevel orders roles from client-user (1) to superadmin (6).
// Unknown roles map to 0 so they fail every minimum-level gate.
func HierarchyLevel(role Role) int {
	switch role {
	case SuperAdmin:
		return 6
	case Admin:
		return 5
	case TeamLeader:
		return 4
	case Tester:
		return 3
	case ClientAdmin:
		return 2
	case ClientUser:
		return 1
	default:
		return 0
	}
}

// CreationTargets returns the roles a creator may hand out when
// provisioning accounts. Roles absent from the matrix create nothing.
func CreationTargets(creator Role) []Role {
	switch creator {
	case SuperAdmin:
		return []Role{Admin}
	case Admin:
		return []Role{TeamLeader, Tester, ClientAdmin}
	case TeamLeader:
		return []Role{Tester}
	case ClientAdmin:
		return []Role{ClientUser}
	default:
		return nil
	}
}

// CanCreate reports whether creator is allowed to provision an
// account with the target role.
func CanCreate(creator Role, target Role) bool {
	for _, allowed := range CreationTargets(creator) {
		if allowed == target {
			return true
		}
	}
	return false
}
