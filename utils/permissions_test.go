package utils

import (
	"testing"

	"github.com/sunilgupta-arch/taskflow/models"
)

func TestHasPermission(t *testing.T) {
	cases := []struct {
		role string
		perm string
		want bool
	}{
		{models.RoleCFCAdmin, "task:create", true},
		{models.RoleCFCAdmin, "task:delete", true},
		{models.RoleCFCManager, "task:delete", false},
		{models.RoleOURAdmin, "reward:mark_paid", true},
		{models.RoleOURManager, "reward:mark_paid", false},
		{models.RoleOURUser, "task:pick", true},
		{models.RoleOURUser, "task:create", false},
		{"UNKNOWN_ROLE", "task:create", false},
	}
	for _, c := range cases {
		if got := HasPermission(c.role, c.perm); got != c.want {
			t.Errorf("HasPermission(%s, %s) = %v, want %v", c.role, c.perm, got, c.want)
		}
	}
}
