package validation

import (
	"fmt"

	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
)

// ValidateActionPolicies checks configured action policies for
// structural problems before they reach the policy store: duplicate
// action names, missing classifications, and references to roles no
// role policy declares.
func ValidateActionPolicies(policies []core.ActionPolicy, knownRoles map[core.Role]struct{}) error {
	seenActions := make(map[string]struct{})

	for i, p := range policies {
		if p.Action == "" {
			return fmt.Errorf("action #%d missing name", i)
		}
		if _, exists := seenActions[p.Action]; exists {
			return fmt.Errorf("action '%s' is not unique", p.Action)
		}
		seenActions[p.Action] = struct{}{}

		if !p.Classification.Valid() {
			return fmt.Errorf("action '%s' has unknown classification '%s'", p.Action, p.Classification)
		}

		if len(p.AllowedRoles) == 0 {
			return fmt.Errorf("action '%s' allows no roles", p.Action)
		}
		for _, role := range p.AllowedRoles {
			if _, known := knownRoles[role]; !known {
				return fmt.Errorf("action '%s' references unknown role '%s'", p.Action, role)
			}
		}

		if p.MaxConcurrent < 0 || p.MaxPerWindow < 0 {
			return fmt.Errorf("action '%s' has negative limits", p.Action)
		}
		if p.Window < 0 {
			return fmt.Errorf("action '%s' has negative window", p.Action)
		}
	}

	return nil
}
