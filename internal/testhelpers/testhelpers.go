// Package testhelpers fournit des utilitaires partagés pour les tests
package testhelpers

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	ingestdomain "dplus/internal/ingest/domain"
	ingestinfra "dplus/internal/ingest/infrastructure"
	shareddomain "dplus/internal/shared/domain"
)

// SetupTestDB crée une base SQLite en mémoire pour les tests
func SetupTestDB(tb testing.TB) *sql.DB {
	tb.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		tb.Fatalf("ouverture sqlite en mémoire: %v", err)
	}
	db.SetMaxOpenConns(1)

	tb.Cleanup(func() {
		db.Close()
	})
	return db
}

// SetupTestStore crée un store avec son schéma initialisé
func SetupTestStore(tb testing.TB) (*ingestinfra.Store, *sql.DB) {
	tb.Helper()

	db := SetupTestDB(tb)
	store := ingestinfra.NewStore(db, "sqlite")
	if err := store.InitSchema(); err != nil {
		tb.Fatalf("initialisation du schéma: %v", err)
	}
	return store, db
}

// MakeLine construit une ligne de commande valide pour les tests.
// Les champs les plus souvent variés sont en paramètres, le reste a
// des valeurs par défaut raisonnables.
func MakeLine(orderID string, platform ingestdomain.Platform, product string, revenue float64, createdAt time.Time) ingestdomain.OrderLine {
	return ingestdomain.OrderLine{
		OrderID:          orderID,
		Platform:         platform,
		ProductName:      product,
		Quantity:         1,
		SubtotalNet:      revenue,
		OrderTotalAmount: revenue,
		CreatedAt:        createdAt,
		Date:             shareddomain.Midnight(createdAt),
		OrderStatus:      "Completed",
	}
}

// SeedLines insère des lignes via un faux fichier source
func SeedLines(tb testing.TB, store *ingestinfra.Store, lines []ingestdomain.OrderLine) {
	tb.Helper()

	fd := ingestinfra.FileDescriptor{
		Path:     "/tmp/test-seed.csv",
		Platform: ingestdomain.PlatformTikTok,
		ModTime:  time.Now().Unix(),
		Size:     int64(len(lines)),
	}
	if _, err := store.IngestBatch(fd, lines); err != nil {
		tb.Fatalf("insertion des lignes de test: %v", err)
	}
}

// Day retourne minuit UTC pour une date donnée, pratique dans les tables de tests
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// At retourne un horodatage complet UTC
func At(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}
