package constants

// PermissionRoles maps each permission to the roles allowed to perform it.
var PermissionRoles = map[string][]string{
	ReviewTransactions:  {Admin},
	ManageInvestors:     {Admin},
	ManageAssets:        {Admin},
	DistributeInterest:  {Admin},
	ManageBonds:         {Admin},
	ManageRates:         {Admin},
	ViewReports:         {Admin},
	PostAnnouncements:   {Admin},
	ViewAnnouncements:   {Admin, Investor},
	ReconcileAggregates: {Admin},
	SubmitContributions: {Investor},
	ViewOwnPortfolio:    {Investor},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
