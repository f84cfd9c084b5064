package user

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	tokenSalt = []byte("getskill.core.user.password_reset")
	nowFunc   = time.Now // mockable

	// errors
	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")
)

// tokenGenerator signs one-time password reset tokens. A token stops verifying as soon as the
// password or the last login changes, or once timeout has elapsed.
type tokenGenerator struct {
	secretKey []byte
	timeout   time.Duration
}

func encodeUID(usr User) string {
	return base64.RawURLEncoding.EncodeToString([]byte(usr.ID))
}

func decodeUID(uid string) (string, error) {
	idBytes, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", err
	}
	return string(idBytes), nil
}

func (gen tokenGenerator) makeToken(usr User) string {
	return gen.makeTokenWithDay(usr, daysSinceEpoch(nowFunc()))
}

func (gen tokenGenerator) verifyToken(usr User, token string) error {
	parts := strings.SplitN(token, "-", 2)
	if token == "" || len(parts) < 2 {
		return errInvalidToken
	}

	data, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(parts[0])
	if err != nil {
		return errInvalidToken
	}
	day, err := strconv.Atoi(string(data))
	if err != nil {
		return errInvalidToken
	}

	if subtle.ConstantTimeCompare([]byte(gen.makeTokenWithDay(usr, day)), []byte(token)) == 0 {
		return errInvalidToken
	}
	if daysSinceEpoch(nowFunc())-day > int(gen.timeout/(24*time.Hour)) {
		return errTokenExpired
	}
	return nil
}

func (gen tokenGenerator) makeTokenWithDay(usr User, day int) string {
	dayB32 := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString([]byte(strconv.Itoa(day)))

	var val bytes.Buffer
	val.WriteString(usr.ID)
	val.Write(usr.PasswordHash)
	if !usr.LastLogin.IsZero() {
		val.WriteString(usr.LastLogin.UTC().Format(time.RFC3339Nano))
	}
	val.WriteString(strconv.Itoa(day))

	key := sha256.Sum256(append(append([]byte{}, tokenSalt...), gen.secretKey...))
	h := hmac.New(sha256.New, key[:])
	_, _ = h.Write(val.Bytes())
	return fmt.Sprintf("%s-%s", dayB32, base64.RawURLEncoding.EncodeToString(h.Sum(nil)))
}

func daysSinceEpoch(t time.Time) int {
	ref := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(math.Ceil(t.Sub(ref).Hours() / 24))
}
