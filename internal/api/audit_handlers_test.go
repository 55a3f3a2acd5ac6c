package api

import (
	"testing"

	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
)

func TestSelectRole(t *testing.T) {
	tt := []struct {
		name      string
		roles     []string
		requested string
		want      core.Role
	}{
		{
			name:  "defaults to first token role",
			roles: []string{"manager", "auditor"},
			want:  "manager",
		},
		{
			name:      "picks a requested role the token carries",
			roles:     []string{"manager", "auditor"},
			requested: "auditor",
			want:      "auditor",
		},
		{
			name:      "rejects a role the token does not carry",
			roles:     []string{"manager"},
			requested: "admin",
			want:      "",
		},
		{
			name:      "rejects any claim without token roles",
			requested: "admin",
			want:      "",
		},
		{
			name: "empty without token roles",
			want: "",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := selectRole(tc.roles, tc.requested); got != tc.want {
				t.Errorf("selectRole(%v, %q) = %q, want %q", tc.roles, tc.requested, got, tc.want)
			}
		})
	}
}
