package database

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/getskill/core"
)

func TestDSN(t *testing.T) {
	conf := core.DatabaseConfig{
		Engine:        "postgres",
		Host:          "db.local",
		Port:          5433,
		Name:          "getskill",
		User:          "app",
		Password:      "p@ss word",
		AdminUser:     "root",
		AdminPassword: "secret",
	}

	tests := []struct {
		name       string
		dbName     string
		asAdmin    bool
		disableTLS bool
		noAdmin    bool
		wantUser   string
		wantPwd    string
		wantSSL    string
	}{
		{name: "app", dbName: "getskill", wantUser: "app", wantPwd: "p@ss word", wantSSL: "require"},
		{name: "admin", dbName: "postgres", asAdmin: true, wantUser: "root", wantPwd: "secret", wantSSL: "require"},
		{name: "admin not configured", dbName: "postgres", asAdmin: true, noAdmin: true, wantUser: "app", wantPwd: "p@ss word", wantSSL: "require"},
		{name: "tls disabled", dbName: "getskill", disableTLS: true, wantUser: "app", wantPwd: "p@ss word", wantSSL: "disable"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c := conf
			c.DisableTLS = tt.disableTLS
			if tt.noAdmin {
				c.AdminUser = ""
			}
			u, err := url.Parse(dsn(c, tt.dbName, tt.asAdmin))
			require.NoError(t, err)

			assert.Equal(t, "postgres", u.Scheme)
			assert.Equal(t, "db.local:5433", u.Host)
			assert.Equal(t, "/"+tt.dbName, u.Path)
			assert.Equal(t, tt.wantUser, u.User.Username())
			pwd, _ := u.User.Password()
			assert.Equal(t, tt.wantPwd, pwd)
			assert.Equal(t, tt.wantSSL, u.Query().Get("sslmode"))
			assert.Equal(t, "utc", u.Query().Get("timezone"))
		})
	}
}
