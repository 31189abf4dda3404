package models

// Principal is the authenticated staff member forwarded by the gateway.
type Principal struct {
	UserID     string `json:"user_id"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Office     string `json:"office"`
}

// Staff roles forwarded in X-User-Role.
const (
	RoleSuperAdmin    = "SUPER_ADMIN"
	RoleZonalManager  = "ZONAL_MANAGER"
	RoleRegionManager = "REGION_MANAGER"
	RoleOfficeManager = "OFFICE_MANAGER"
	RoleSupervisor    = "SUPERVISOR"
	RoleEmployee      = "EMPLOYEE"
	RoleVerifier      = "VERIFIER"
)

// BiddingRoles may launch, stop and repost auctions and accept bids.
var BiddingRoles = []string{RoleSuperAdmin, RoleZonalManager, RoleRegionManager, RoleOfficeManager, RoleSupervisor}

// OrderRoles may create and edit orders.
var OrderRoles = append(append([]string{}, BiddingRoles...), RoleEmployee)

// VerificationRoles may approve truck owners and trucks.
var VerificationRoles = []string{RoleSuperAdmin, RoleVerifier}
