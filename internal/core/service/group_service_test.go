package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/invoiceapp/user-management-system/internal/core/domain"
	"github.com/invoiceapp/user-management-system/internal/core/ports"
)

func newGroupFixture() (*GroupService, *memUserRepo, *memGroupRepo) {
	users := newMemUserRepo()
	groups := newMemGroupRepo()
	return NewGroupService(groups, users, zerolog.Nop()), users, groups
}

func TestGroupCreate_TierGate(t *testing.T) {
	svc, users, _ := newGroupFixture()
	sa := seedUser(users, "SA1", domain.RoleSuperAdmin)
	alice := seedUser(users, "A1", domain.RoleAdmin)
	bob := seedUser(users, "UM1", domain.RoleUnitManager)

	if _, err := svc.Create(context.Background(), sa.ID, ports.CreateGroupInput{Name: "admins", Type: "ADMIN"}); err != nil {
		t.Errorf("SUPER_ADMIN creating ADMIN group: %v", err)
	}
	if _, err := svc.Create(context.Background(), alice.ID, ports.CreateGroupInput{Name: "east", Type: "UNIT_MANAGER"}); err != nil {
		t.Errorf("ADMIN creating UNIT_MANAGER group: %v", err)
	}

	_, err := svc.Create(context.Background(), alice.ID, ports.CreateGroupInput{Name: "x", Type: "ADMIN"})
	var denied *domain.PermissionDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("ADMIN creating ADMIN group should be denied, got %v", err)
	}
	if denied.ActorRole != domain.RoleAdmin || denied.GroupType != domain.GroupTypeAdmin {
		t.Errorf("denial context = %s/%s", denied.ActorRole, denied.GroupType)
	}

	if _, err := svc.Create(context.Background(), bob.ID, ports.CreateGroupInput{Name: "x", Type: "UNIT_MANAGER"}); !errors.As(err, &denied) {
		t.Errorf("UNIT_MANAGER creating any group should be denied, got %v", err)
	}
}

func TestGroupCreate_InitialMembersSynced(t *testing.T) {
	svc, users, groups := newGroupFixture()
	alice := seedUser(users, "A1", domain.RoleAdmin)
	bob := seedUser(users, "UM1", domain.RoleUnitManager)

	created, err := svc.Create(context.Background(), alice.ID, ports.CreateGroupInput{
		Name: "east", Type: "UNIT_MANAGER", Members: []string{bob.ID},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	stored, _ := groups.FindByID(context.Background(), created.ID)
	if !stored.HasMember(bob.ID) {
		t.Errorf("initial member not recorded on group")
	}
	storedBob, _ := users.FindByID(context.Background(), bob.ID)
	if !storedBob.InGroup(created.ID) {
		t.Errorf("initial member missing user-side back-reference")
	}
}

func TestGroupCreate_WrongTierMemberRejected(t *testing.T) {
	svc, users, _ := newGroupFixture()
	alice := seedUser(users, "A1", domain.RoleAdmin)
	carol := seedUser(users, "U1", domain.RoleUser)

	_, err := svc.Create(context.Background(), alice.ID, ports.CreateGroupInput{
		Name: "east", Type: "UNIT_MANAGER", Members: []string{carol.ID},
	})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for wrong-tier member, got %v", err)
	}
}

func TestGroupList_ScopedByRole(t *testing.T) {
	svc, users, groups := newGroupFixture()
	sa := seedUser(users, "SA1", domain.RoleSuperAdmin)
	alice := seedUser(users, "A1", domain.RoleAdmin)
	carol := seedUser(users, "U1", domain.RoleUser)
	groups.put(&domain.Group{Type: domain.GroupTypeAdmin, Name: "admins", IsActive: true})
	groups.put(&domain.Group{Type: domain.GroupTypeUnitManager, Name: "east", IsActive: true})
	groups.put(&domain.Group{Type: domain.GroupTypeUnitManager, Name: "gone", IsActive: false})

	got, err := svc.List(context.Background(), sa.ID)
	if err != nil || len(got) != 1 || got[0].Type != domain.GroupTypeAdmin {
		t.Errorf("SUPER_ADMIN list = %v, %v; want the single ADMIN group", got, err)
	}

	got, err = svc.List(context.Background(), alice.ID)
	if err != nil || len(got) != 1 || got[0].Type != domain.GroupTypeUnitManager {
		t.Errorf("ADMIN list = %v, %v; want the single active UNIT_MANAGER group", got, err)
	}

	_, err = svc.List(context.Background(), carol.ID)
	var denied *domain.PermissionDeniedError
	if !errors.As(err, &denied) {
		t.Errorf("USER listing groups should be denied, got %v", err)
	}
}

func TestGroupUpdate_RequiresMatchingTier(t *testing.T) {
	svc, users, groups := newGroupFixture()
	alice := seedUser(users, "A1", domain.RoleAdmin)
	g := &domain.Group{Type: domain.GroupTypeAdmin, Name: "admins", IsActive: true}
	groups.put(g)

	name := "renamed"
	_, err := svc.Update(context.Background(), alice.ID, g.ID, ports.UpdateGroupInput{Name: &name})
	var denied *domain.PermissionDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("ADMIN updating ADMIN group should be denied, got %v", err)
	}
}

func TestGroupDelete_SoftAndScoped(t *testing.T) {
	svc, users, groups := newGroupFixture()
	alice := seedUser(users, "A1", domain.RoleAdmin)
	bob := seedUser(users, "UM1", domain.RoleUnitManager)
	g := &domain.Group{Type: domain.GroupTypeUnitManager, Name: "east", Members: []string{bob.ID}, IsActive: true}
	groups.put(g)
	bob.Groups = []string{g.ID}
	users.put(bob)

	if err := svc.Delete(context.Background(), alice.ID, g.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := groups.FindByID(context.Background(), g.ID); !isNotFound(err) {
		t.Errorf("deleted group should be inactive")
	}
	storedBob, err := users.FindByID(context.Background(), bob.ID)
	if err != nil || !storedBob.IsActive {
		t.Fatalf("member must survive group deletion")
	}
	if storedBob.InGroup(g.ID) {
		t.Errorf("member back-reference not cleared")
	}
}

// Scenario: a unit manager creates a user; the admin group that exposes the
// unit manager resolves that user through its visibility chain.
func TestGroupVisibleUsers_AdminChain(t *testing.T) {
	users := newMemUserRepo()
	groups := newMemGroupRepo()
	userSvc := NewUserService(users, groups, newMemAllocator(), zerolog.Nop())
	groupSvc := NewGroupService(groups, users, zerolog.Nop())

	alice := seedUser(users, "A1", domain.RoleAdmin)
	adminGroup := &domain.Group{Type: domain.GroupTypeAdmin, Name: "north", Members: []string{alice.ID}, IsActive: true}
	groups.put(adminGroup)
	alice.Groups = []string{adminGroup.ID}
	users.put(alice)

	// alice creates bob: the admin group now exposes bob.
	bob, err := userSvc.Create(context.Background(), alice.ID, createInput("bob", "UNIT_MANAGER"))
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}
	// bob creates carol.
	carol, err := userSvc.Create(context.Background(), bob.ID, createInput("carol", "USER"))
	if err != nil {
		t.Fatalf("create carol: %v", err)
	}

	visible, err := groupSvc.VisibleUsers(context.Background(), alice.ID, adminGroup.ID)
	if err != nil {
		t.Fatalf("VisibleUsers: %v", err)
	}
	found := false
	for _, u := range visible {
		if u.ID == carol.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("carol should appear in the admin group's visible-user chain")
	}
}

func TestGroupVisibleUsers_UnitManagerChain(t *testing.T) {
	users := newMemUserRepo()
	groups := newMemGroupRepo()
	userSvc := NewUserService(users, groups, newMemAllocator(), zerolog.Nop())
	groupSvc := NewGroupService(groups, users, zerolog.Nop())

	alice := seedUser(users, "A1", domain.RoleAdmin)
	bob := seedUser(users, "UM1", domain.RoleUnitManager)
	umGroup := &domain.Group{Type: domain.GroupTypeUnitManager, Name: "east", Members: []string{bob.ID}, IsActive: true}
	groups.put(umGroup)
	bob.Groups = []string{umGroup.ID}
	users.put(bob)

	carol, err := userSvc.Create(context.Background(), bob.ID, createInput("carol", "USER"))
	if err != nil {
		t.Fatalf("create carol: %v", err)
	}

	// The managing admin resolves the chain through the members' creations.
	visible, err := groupSvc.VisibleUsers(context.Background(), alice.ID, umGroup.ID)
	if err != nil {
		t.Fatalf("VisibleUsers: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != carol.ID {
		t.Errorf("visible = %v, want exactly carol", visible)
	}
}

func TestGroupAddRemoveMember_PolicyGate(t *testing.T) {
	svc, users, groups := newGroupFixture()
	bob := seedUser(users, "UM1", domain.RoleUnitManager)
	dan := seedUser(users, "UM2", domain.RoleUnitManager)
	g := &domain.Group{Type: domain.GroupTypeUnitManager, Name: "east", IsActive: true}
	groups.put(g)

	err := svc.AddMember(context.Background(), bob.ID, g.ID, dan.ID)
	var denied *domain.PermissionDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("UNIT_MANAGER adding members should be denied, got %v", err)
	}

	alice := seedUser(users, "A1", domain.RoleAdmin)
	if err := svc.AddMember(context.Background(), alice.ID, g.ID, dan.ID); err != nil {
		t.Fatalf("ADMIN adding member: %v", err)
	}
	if err := svc.RemoveMember(context.Background(), alice.ID, g.ID, dan.ID); err != nil {
		t.Fatalf("ADMIN removing member: %v", err)
	}
}
