package dburl

import (
	"errors"
	"testing"
)

func TestInferDialect(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr error
	}{
		{
			name: "postgres URL",
			url:  "postgres://postgres@localhost:5432/mydb",
			want: DialectPostgres,
		},
		{
			name: "postgresql URL",
			url:  "postgresql://user@localhost:5432/mydb",
			want: DialectPostgres,
		},
		{
			name: "mysql URL",
			url:  "mysql://root@localhost:3306/mydb",
			want: DialectMySQL,
		},
		{
			name: "sqlite URL",
			url:  "sqlite:///path/to/db.sqlite",
			want: DialectSQLite,
		},
		{
			name: "sqlite memory URL",
			url:  "sqlite::memory:",
			want: DialectSQLite,
		},
		{
			name:    "unknown scheme",
			url:     "mongodb://localhost/db",
			wantErr: ErrUnknownDialect,
		},
		{
			name:    "empty URL",
			url:     "",
			wantErr: ErrUnknownDialect,
		},
		{
			name: "uppercase scheme",
			url:  "POSTGRES://localhost/db",
			want: DialectPostgres,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InferDialect(tt.url)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDriverDSN(t *testing.T) {
	tests := []struct {
		url         string
		wantDialect string
		wantDriver  string
		wantDSN     string
	}{
		{"postgres://u@localhost:5432/seeds", DialectPostgres, DriverPostgres, "postgres://u@localhost:5432/seeds"},
		{"mysql://root@localhost:3306/seeds", DialectMySQL, DriverMySQL, "root@tcp(localhost:3306)/seeds"},
		{"mysql://u:pw@db:3306/seeds?tls=true", DialectMySQL, DriverMySQL, "u:pw@tcp(db:3306)/seeds?tls=true"},
		{"sqlite:///tmp/seeds.db", DialectSQLite, DriverSQLite, "/tmp/seeds.db"},
		{"sqlite:seeds.db", DialectSQLite, DriverSQLite, "seeds.db"},
		{"sqlite::memory:", DialectSQLite, DriverSQLite, ":memory:"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			dialect, driver, dsn, err := DriverDSN(tt.url)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if dialect != tt.wantDialect || driver != tt.wantDriver || dsn != tt.wantDSN {
				t.Errorf("got (%q, %q, %q), want (%q, %q, %q)",
					dialect, driver, dsn, tt.wantDialect, tt.wantDriver, tt.wantDSN)
			}
		})
	}
}

func TestMySQLDSN_Invalid(t *testing.T) {
	for _, url := range []string{"mysql://localhost:3306/db", "mysql://root@/db"} {
		if _, err := MySQLDSN(url); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("MySQLDSN(%q) error = %v, want ErrInvalidURL", url, err)
		}
	}
}

func TestBuildSQLiteURL(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/var/data/seeds.db", "sqlite:///var/data/seeds.db"},
		{"seeds.db", "sqlite:seeds.db"},
	}
	for _, tt := range tests {
		if got := BuildSQLiteURL(tt.path); got != tt.want {
			t.Errorf("BuildSQLiteURL(%q) = %q, want %q", tt.path, got, tt.want)
		}
		if got := SQLitePath(BuildSQLiteURL(tt.path)); got != tt.path {
			t.Errorf("SQLitePath(BuildSQLiteURL(%q)) = %q", tt.path, got)
		}
	}
}
