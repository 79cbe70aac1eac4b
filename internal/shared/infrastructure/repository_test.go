package infrastructure

import "testing"

func TestRebind(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		query  string
		want   string
	}{
		{
			name:   "sqlite conserve les ?",
			driver: "sqlite",
			query:  "SELECT * FROM order_lines WHERE date >= ? AND date <= ?",
			want:   "SELECT * FROM order_lines WHERE date >= ? AND date <= ?",
		},
		{
			name:   "postgres numérote les placeholders",
			driver: "postgres",
			query:  "SELECT * FROM order_lines WHERE date >= ? AND date <= ?",
			want:   "SELECT * FROM order_lines WHERE date >= $1 AND date <= $2",
		},
		{
			name:   "postgres sans placeholder",
			driver: "postgres",
			query:  "SELECT COUNT(*) FROM order_lines",
			want:   "SELECT COUNT(*) FROM order_lines",
		},
		{
			name:   "postgres upsert multi-placeholders",
			driver: "postgres",
			query:  "INSERT INTO store_meta (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value",
			want:   "INSERT INTO store_meta (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = excluded.value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rebind(tt.driver, tt.query); got != tt.want {
				t.Errorf("Rebind() = %q, attendu %q", got, tt.want)
			}
		})
	}
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "?"},
		{3, "?, ?, ?"},
	}
	for _, tt := range tests {
		if got := Placeholders(tt.n); got != tt.want {
			t.Errorf("Placeholders(%d) = %q, attendu %q", tt.n, got, tt.want)
		}
	}
}
