package user

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	salt    = []byte("astravon.core.user.verification")
	nowFunc = time.Now // mockable

	// errors
	errInvalidCode = errors.New("invalid verification code")
	errCodeExpired = errors.New("verification code expired")
)

// window returns the index of the timeout-sized time slot t falls in.
func window(t time.Time, timeout time.Duration) int64 {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return t.Unix() / int64(timeout/time.Second)
}

// makeCode derives a 6 digits code from the user state and the time slot of now.
// Changing the password or the mail invalidates previously sent codes.
func makeCode(usr User, secret []byte, timeout time.Duration, now time.Time) string {
	return codeForWindow(usr, secret, window(now, timeout))
}

func codeForWindow(usr User, secret []byte, w int64) string {
	key := sha256.Sum256(append(append([]byte{}, salt...), secret...))
	h := hmac.New(sha256.New, key[:])
	_, _ = h.Write(hashValue(usr, w))
	sum := h.Sum(nil)

	// dynamic truncation (RFC 4226)
	offset := sum[len(sum)-1] & 0x0f
	n := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff
	return fmt.Sprintf("%06d", n%1000000)
}

// verifyCode accepts codes issued in the current or the previous time slot.
func verifyCode(usr User, code string, secret []byte, timeout time.Duration) error {
	if len(code) != 6 {
		return errInvalidCode
	}
	if _, err := strconv.Atoi(code); err != nil {
		return errInvalidCode
	}

	current := window(nowFunc(), timeout)
	if subtle.ConstantTimeCompare([]byte(codeForWindow(usr, secret, current)), []byte(code)) == 1 {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(codeForWindow(usr, secret, current-1)), []byte(code)) == 1 {
		return nil
	}
	for back := int64(2); back <= 4; back++ {
		if subtle.ConstantTimeCompare([]byte(codeForWindow(usr, secret, current-back)), []byte(code)) == 1 {
			return errCodeExpired
		}
	}
	return errInvalidCode
}

func hashValue(usr User, w int64) []byte {
	var val bytes.Buffer
	val.WriteString(strconv.Itoa(usr.ID))
	val.WriteString(usr.Mail)
	val.Write(usr.PasswordHash)
	val.WriteString(strconv.FormatInt(w, 10))
	return val.Bytes()
}
