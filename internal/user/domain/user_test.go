package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestUser_Public(t *testing.T) {
	fp := "fingerprint"
	now := time.Now()
	u := &User{
		ID:                     "u1",
		Username:               "alice",
		Email:                  "a@x.com",
		PasswordHash:           "$2a$10$secret-hash",
		Roles:                  []string{"admin", "user"},
		IsActive:               true,
		SessionFingerprintHash: &fp,
		LastAccess:             &now,
	}
	p := u.Public()
	want := PublicUser{ID: "u1", Username: "alice", Email: "a@x.com", Roles: []string{"admin", "user"}}
	if !reflect.DeepEqual(p, want) {
		t.Errorf("Public() = %+v, want %+v", p, want)
	}

	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(b)
	for _, leak := range []string{"secret-hash", "fingerprint", "password"} {
		if strings.Contains(s, leak) {
			t.Errorf("public JSON %s contains %q", s, leak)
		}
	}

	p.Roles[0] = "changed"
	if u.Roles[0] != "admin" {
		t.Error("mutating the projection must not change the user")
	}
}

func TestUser_Validate(t *testing.T) {
	valid := func() *User {
		return &User{ID: "u1", Username: "a", Email: "a@x.com", PasswordHash: "h", Roles: []string{"b", "a", "b"}}
	}
	u := valid()
	if err := u.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !reflect.DeepEqual(u.Roles, []string{"b", "a"}) {
		t.Errorf("Validate should normalize roles, got %v", u.Roles)
	}

	testCases := []struct {
		name   string
		mutate func(*User)
	}{
		{"missing id", func(u *User) { u.ID = "" }},
		{"missing username", func(u *User) { u.Username = "" }},
		{"missing email", func(u *User) { u.Email = "" }},
		{"missing hash", func(u *User) { u.PasswordHash = "" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u := valid()
			tc.mutate(u)
			if err := u.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestNormalizeRoles(t *testing.T) {
	testCases := []struct {
		in   []string
		want []string
	}{
		{nil, []string{}},
		{[]string{"user"}, []string{"user"}},
		{[]string{"admin", "user", "admin"}, []string{"admin", "user"}},
		{[]string{" user ", "", "user"}, []string{"user"}},
	}
	for _, tc := range testCases {
		got := NormalizeRoles(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("NormalizeRoles(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  A@X.Com "); got != "a@x.com" {
		t.Errorf("NormalizeEmail = %q, want a@x.com", got)
	}
}
