package model

import "testing"

func TestUserCanAccess(t *testing.T) {
	staff := User{ID: 1, IsStaff: true}
	alice := User{ID: 2}

	if !staff.CanAccess(99) {
		t.Fatal("staff must access any owner's resource")
	}
	if !alice.CanAccess(2) {
		t.Fatal("owner must access own resource")
	}
	if alice.CanAccess(3) {
		t.Fatal("non-staff must not access another owner's resource")
	}
}
