package roles

import "testing"

func TestHierarchyLevels(t *testing.T) {
	cases := []struct {
		role  Role
		level int
	}{
		{SuperAdmin, 6},
		{Admin, 5},
		{TeamLeader, 4},
		{Tester, 3},
		{ClientAdmin, 2},
		{ClientUser, 1},
		{Role("ghost"), 0},
	}
	for _, tc := range cases {
		if got := HierarchyLevel(tc.role); got != tc.level {
			t.Errorf("HierarchyLevel(%s) = %d, want %d", tc.role, got, tc.level)
		}
	}
}

func TestCreationMatrix(t *testing.T) {
	allowed := map[Role][]Role{
		SuperAdmin:  {Admin},
		Admin:       {TeamLeader, Tester, ClientAdmin},
		TeamLeader:  {Tester},
		ClientAdmin: {ClientUser},
	}
	for creator, targets := range allowed {
		permitted := make(map[Role]bool, len(targets))
		for _, target := range targets {
			permitted[target] = true
			if !CanCreate(creator, target) {
				t.Errorf("CanCreate(%s, %s) = false, want true", creator, target)
			}
		}
		for _, target := range All() {
			if !permitted[target] && CanCreate(creator, target) {
				t.Errorf("CanCreate(%s, %s) = true, want false", creator, target)
			}
		}
	}
	for _, target := range All() {
		if CanCreate(Tester, target) {
			t.Errorf("tester should not create %s", target)
		}
		if CanCreate(ClientUser, target) {
			t.Errorf("client-user should not create %s", target)
		}
	}
}

func TestParse(t *testing.T) {
	if role, ok := Parse("team-leader"); !ok || role != TeamLeader {
		t.Fatalf("Parse(team-leader) = %v, %v", role, ok)
	}
	if _, ok := Parse("manager"); ok {
		t.Fatal("expected unknown role to fail parsing")
	}
}
