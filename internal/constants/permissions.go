package constants

const (
	ReviewTransactions  = "review_transactions"
	ManageInvestors     = "manage_investors"
	ManageAssets        = "manage_assets"
	DistributeInterest  = "distribute_interest"
	ManageBonds         = "manage_bonds"
	ManageRates         = "manage_rates"
	ViewReports         = "view_reports"
	PostAnnouncements   = "post_announcements"
	ViewAnnouncements   = "view_announcements"
	ReconcileAggregates = "reconcile_aggregates"
	SubmitContributions = "submit_contributions"
	ViewOwnPortfolio    = "view_own_portfolio"
)
