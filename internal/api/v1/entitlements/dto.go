package entitlements

// FeatureStatus describes one metered feature as the account sees it now.
type FeatureStatus struct {
	Feature      string `json:"feature"`
	Mode         string `json:"mode"`
	CoinCost     int64  `json:"coin_cost,omitempty"`
	MonthlyLimit *int   `json:"monthly_limit,omitempty"`
	CurrentUsage *int   `json:"current_usage,omitempty"`
}

type CatalogResponse struct {
	EffectivePlan string          `json:"effective_plan"`
	TrialEndsAt   string          `json:"trial_ends_at"`
	Features      []FeatureStatus `json:"features"`
}
