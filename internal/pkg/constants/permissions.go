package constants

import "slices"

const (
	ViewMarket     = "view_market"
	TradeAssets    = "trade_assets"
	ManageWallet   = "manage_wallet"
	SuspendAssets  = "suspend_assets"
	ManageAccounts = "manage_accounts"
	CreditWallets  = "credit_wallets"
)

// PermissionRoles maps each permission to the roles allowed to perform it.
var PermissionRoles = map[string][]string{
	ViewMarket:     {Viewer, Trader, Admin, Superadmin},
	TradeAssets:    {Trader, Admin, Superadmin},
	ManageWallet:   {Trader, Admin, Superadmin},
	SuspendAssets:  {Admin, Superadmin},
	ManageAccounts: {Admin, Superadmin},
	CreditWallets:  {Superadmin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	return slices.Contains(roles, role)
}
