package jwt

import (
	"testing"
	"time"
)

// FuzzParseSession feeds arbitrary strings to the parser.
// Invalid inputs must be rejected with errors, never panics.
func FuzzParseSession(f *testing.F) {
	mgr, err := NewManager(Config{
		PrivateKey: testSecret,
		Issuer:     "fuzz-test",
		Leeway:     30 * time.Second,
	})
	if err != nil {
		f.Fatal(err)
	}

	valid, err := mgr.CreateSession("sid1", "uid1", time.Now().Add(time.Hour))
	if err != nil {
		f.Fatal(err)
	}

	f.Add(valid)
	f.Add("")
	f.Add("a.b.c")
	f.Add("eyJhbGciOiJub25lIn0.eyJzaWQiOiJ4In0.")

	f.Fuzz(func(t *testing.T, token string) {
		claims, err := mgr.ParseSession(token)
		if err == nil && (claims == nil || claims.SID == "") {
			t.Fatal("accepted token without session id")
		}
	})
}
