package models

type UserRole string

const (
	AdminRole   UserRole = "ADMIN"
	ManagerRole UserRole = "MANAGER"
	MemberRole  UserRole = "MEMBER"

	// LegacyApproverRole существовала до переименования в MEMBER,
	// может встречаться в старых определениях воркфлоу
	LegacyApproverRole UserRole = "APPROVER"
)

var roleHumanName = map[UserRole]string{
	AdminRole:   "Administrator",
	ManagerRole: "Manager",
	MemberRole:  "Member",
}

func (r UserRole) ToHuman() string {
	if human, exist := roleHumanName[r]; exist {
		return human
	}
	return string(r)
}

func (r UserRole) IsAdmin() bool {
	return r == AdminRole
}

func (r UserRole) IsKnown() bool {
	_, exist := roleHumanName[r]
	return exist
}

// NormalizeRole - единственное место переименования ролей,
// применяется на границе чтения определений воркфлоу
func NormalizeRole(r UserRole) UserRole {
	if r == LegacyApproverRole {
		return MemberRole
	}
	return r
}

const SystemUser = "system"

type UserStatus string

const (
	UserWorkingStatus   UserStatus = "WORKING"
	UserDismissedStatus UserStatus = "DISMISSED"
)
