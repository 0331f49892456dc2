package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/lithovolt/warranty-service/internal/domain"
)

type grantSpec struct {
	resource domain.Resource
	action   domain.Action
}

var seedRoleDescriptions = map[domain.RoleName]string{
	domain.RoleManager: "Management staff role with full access to most resources",
	domain.RoleSupport: "Support staff role focused on customer service and warranty claims",
	domain.RoleSales:   "Sales staff role for orders and customer management",
	domain.RoleTech:    "Technical staff role for inventory and product management",
}

var seedRoleGrants = map[domain.RoleName][]grantSpec{
	domain.RoleManager: {
		{domain.ResourceInventory, domain.ActionView},
		{domain.ResourceInventory, domain.ActionCreate},
		{domain.ResourceInventory, domain.ActionUpdate},
		{domain.ResourceInventory, domain.ActionDelete},
		{domain.ResourceOrders, domain.ActionView},
		{domain.ResourceOrders, domain.ActionCreate},
		{domain.ResourceOrders, domain.ActionUpdate},
		{domain.ResourceOrders, domain.ActionApprove},
		{domain.ResourceOrders, domain.ActionAssign},
		{domain.ResourceWarrantyClaims, domain.ActionView},
		{domain.ResourceWarrantyClaims, domain.ActionApprove},
		{domain.ResourceWarrantyClaims, domain.ActionAssign},
	},
	domain.RoleSupport: {
		{domain.ResourceWarrantyClaims, domain.ActionView},
		{domain.ResourceWarrantyClaims, domain.ActionUpdate},
		{domain.ResourceWarrantyClaims, domain.ActionApprove},
		{domain.ResourceWarrantyClaims, domain.ActionAssign},
		{domain.ResourceOrders, domain.ActionView},
		{domain.ResourceUsers, domain.ActionView},
		{domain.ResourceReports, domain.ActionView},
	},
	domain.RoleSales: {
		{domain.ResourceOrders, domain.ActionView},
		{domain.ResourceOrders, domain.ActionCreate},
		{domain.ResourceOrders, domain.ActionUpdate},
		{domain.ResourceOrders, domain.ActionApprove},
		{domain.ResourceUsers, domain.ActionView},
		{domain.ResourceUsers, domain.ActionCreate},
		{domain.ResourceUsers, domain.ActionUpdate},
		{domain.ResourceInventory, domain.ActionView},
	},
	domain.RoleTech: {
		{domain.ResourceInventory, domain.ActionView},
		{domain.ResourceInventory, domain.ActionCreate},
		{domain.ResourceInventory, domain.ActionUpdate},
		{domain.ResourceInventory, domain.ActionDelete},
		{domain.ResourceSettings, domain.ActionView},
		{domain.ResourceSettings, domain.ActionUpdate},
		{domain.ResourceReports, domain.ActionView},
		{domain.ResourceWarrantyClaims, domain.ActionView},
		{domain.ResourceOrders, domain.ActionView},
	},
}

// SeedRolesAndGrants inserts the built-in staff roles and their grant
// matrix. Existing rows are left untouched, so reruns are safe.
func SeedRolesAndGrants(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping role seeding")
		return nil
	}

	const upsertRole = `
        INSERT INTO roles (name, description, is_active)
        VALUES ($1, $2, TRUE)
        ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
        RETURNING id`
	const upsertGrant = `
        INSERT INTO grants (role_id, resource, action, description)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (role_id, resource, action) DO NOTHING`

	total := 0
	for name, grants := range seedRoleGrants {
		var roleID string
		if err := pool.QueryRow(ctx, upsertRole, name, seedRoleDescriptions[name]).Scan(&roleID); err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
		for _, g := range grants {
			desc := fmt.Sprintf("%s %s", g.action, g.resource)
			if _, err := pool.Exec(ctx, upsertGrant, roleID, g.resource, g.action, desc); err != nil {
				return fmt.Errorf("seed grant %s %s:%s: %w", name, g.resource, g.action, err)
			}
			total++
		}
	}

	logger.Info("seeded roles and grants",
		zap.Int("roles", len(seedRoleGrants)),
		zap.Int("grants", total))
	return nil
}
