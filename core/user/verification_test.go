package user

import (
	"testing"
	"time"
)

func TestMakeVerifyCode(t *testing.T) {
	secret := []byte("secret")
	timeout := 15 * time.Minute

	now := time.Now()
	usr := User{
		ID:        1,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Mail:      "ada@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
	_ = usr.SetPassword("Secret-pass1")

	validCode := makeCode(usr, secret, timeout, now)
	prevCode := makeCode(usr, secret, timeout, now.Add(-timeout))
	expiredCode := makeCode(usr, secret, timeout, now.Add(-3*timeout))

	// a well formed code matching no recent window
	wrongCode := "000000"
	for _, c := range []string{"000000", "000001", "000002", "000003", "000004", "000005"} {
		wrongCode = c
		matched := false
		for back := int64(0); back <= 4; back++ {
			if codeForWindow(usr, secret, window(now, timeout)-back) == c {
				matched = true
			}
		}
		if !matched {
			break
		}
	}

	otherUsr := usr
	otherUsr.Mail = "other@example.com"

	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }() // reset

	tests := []struct {
		name    string
		usr     User
		code    string
		wantErr error
	}{
		{name: "no code", usr: usr, wantErr: errInvalidCode},
		{name: "invalid len", usr: usr, code: "12345", wantErr: errInvalidCode},
		{name: "non numeric", usr: usr, code: "12a456", wantErr: errInvalidCode},
		{name: "wrong code", usr: usr, code: wrongCode, wantErr: errInvalidCode},
		{name: "mail changed", usr: otherUsr, code: validCode, wantErr: errInvalidCode},
		{name: "expired code", usr: usr, code: expiredCode, wantErr: errCodeExpired},
		{name: "previous window", usr: usr, code: prevCode},
		{name: "valid code", usr: usr, code: validCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := verifyCode(tt.usr, tt.code, secret, timeout); err != tt.wantErr {
				t.Errorf("verifyCode() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMakeCode_format(t *testing.T) {
	usr := User{ID: 7, Mail: "x@example.com", PasswordHash: []byte("h")}
	for i := 0; i < 50; i++ {
		code := makeCode(usr, []byte("k"), time.Minute, time.Unix(int64(i*60), 0))
		if len(code) != 6 {
			t.Fatalf("makeCode() = %q, want 6 digits", code)
		}
	}
}
