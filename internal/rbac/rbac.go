package rbac

// Role constants
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Permission constants
const (
	PermCreateCampaign   = "create_campaign"
	PermPledge           = "pledge"
	PermSubmitOffer      = "submit_offer"
	PermSignDeed         = "sign_deed"
	PermCreateAssignment = "create_assignment"
	PermOpenDispute      = "open_dispute"
	PermReviewDispute    = "review_dispute"
	PermResolveDispute   = "resolve_dispute"
	PermModerateCampaign = "moderate_campaign"
	PermViewAuditTrail   = "view_audit_trail"
)

// RolePermissions defines what each role can do.
var RolePermissions = map[string][]string{
	RoleUser: {
		PermCreateCampaign, PermPledge, PermSubmitOffer, PermSignDeed,
		PermCreateAssignment, PermOpenDispute,
	},
	RoleModerator: {
		PermCreateCampaign, PermPledge, PermSubmitOffer, PermSignDeed,
		PermCreateAssignment, PermOpenDispute,
		PermReviewDispute, PermResolveDispute, PermModerateCampaign, PermViewAuditTrail,
	},
	RoleAdmin: {
		PermCreateCampaign, PermPledge, PermSubmitOffer, PermSignDeed,
		PermCreateAssignment, PermOpenDispute,
		PermReviewDispute, PermResolveDispute, PermModerateCampaign, PermViewAuditTrail,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}

// IsStaffOperation checks if a permission is reserved to staff roles.
func IsStaffOperation(permission string) bool {
	switch permission {
	case PermReviewDispute, PermResolveDispute, PermModerateCampaign, PermViewAuditTrail:
		return true
	}
	return false
}
