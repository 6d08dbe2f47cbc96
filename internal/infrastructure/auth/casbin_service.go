package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/you/nirogsvc/domain"
)

const allMethods = "(GET|POST|PUT|DELETE)"

// DefaultPolicies are installed when the policy table is empty.
var DefaultPolicies = [][]string{
	{"role_" + domain.RoleAdmin, "/api/admin/*", allMethods},
	{"role_" + domain.RoleDoctor, "/api/doctors/verify", "POST"},
}

func init() {
	for _, role := range []string{domain.RolePatient, domain.RoleDoctor, domain.RoleStudent, domain.RoleAdmin} {
		DefaultPolicies = append(DefaultPolicies,
			[]string{"role_" + role, "/api/doctors/verify", "GET"},
			[]string{"role_" + role, "/api/auth/logout", "POST"},
			[]string{"role_" + role, "/api/auth/me", "GET"},
		)
	}
}

type CasbinService struct{ E *casbin.Enforcer }

func NewCasbinService(db *gorm.DB, modelPath string) (*CasbinService, error) {
	adp, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("casbin adapter: %w", err)
	}
	E, err := casbin.NewEnforcer(modelPath, adp)
	if err != nil {
		return nil, fmt.Errorf("casbin enforcer: %w", err)
	}
	if err := E.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("casbin load policy: %w", err)
	}
	return &CasbinService{E}, nil
}

// SeedDefaultPolicies installs DefaultPolicies if no policy exists yet.
func (s *CasbinService) SeedDefaultPolicies(logger zerolog.Logger) error {
	policies, err := s.E.GetPolicy()
	if err != nil {
		return fmt.Errorf("casbin get policy: %w", err)
	}
	if len(policies) > 0 {
		return nil
	}
	// AddPolicies writes through the adapter in one batch.
	if _, err := s.E.AddPolicies(DefaultPolicies); err != nil {
		return fmt.Errorf("casbin add policies: %w", err)
	}
	logger.Info().Int("count", len(DefaultPolicies)).Msg("casbin: seeded default policies")
	return nil
}
