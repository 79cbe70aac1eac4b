package infrastructure

import (
	"database/sql"
	"fmt"
	"time"

	"dplus/internal/ingest/domain"
	sharedinfra "dplus/internal/shared/infrastructure"
)

// Formats de stockage des dates: TEXT ISO, comparable lexicographiquement
const (
	timestampLayout = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
)

const metaFileSetHash = "fileset_hash"

// LoadedFile trace un fichier source déjà chargé
type LoadedFile struct {
	Filename   string    `json:"filename"`
	ModTime    int64     `json:"file_mtime"`
	Size       int64     `json:"file_size"`
	RowsLoaded int       `json:"rows_loaded"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// OperationLogEntry trace une opération d'ingestion pour l'audit
type OperationLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Operation string    `json:"operation"`
	Detail    string    `json:"detail"`
	Rows      int       `json:"rows"`
}

// IntegrityReport compte les violations détectées dans le store.
// Injoignable si le contrat de nettoyage est respecté; vérifié quand même.
type IntegrityReport struct {
	DuplicateKeys   int `json:"duplicate_keys"`
	EmptyOrderIDs   int `json:"empty_order_ids"`
	NullDates       int `json:"null_dates"`
	NegativeRevenue int `json:"negative_revenue"`
}

// OK indique l'absence de toute violation
func (r IntegrityReport) OK() bool {
	return r.DuplicateKeys == 0 && r.EmptyOrderIDs == 0 &&
		r.NullDates == 0 && r.NegativeRevenue == 0
}

// Store persistance durable des OrderLines avec rechargement idempotent
type Store struct {
	repo sharedinfra.BaseRepository
	uow  sharedinfra.UnitOfWork
}

// NewStore crée un Store sur une base ouverte
func NewStore(db *sql.DB, driver string) *Store {
	return &Store{
		repo: sharedinfra.NewBaseRepository(db, driver),
		uow:  sharedinfra.NewUnitOfWork(db),
	}
}

// InitSchema crée les tables et index si nécessaire
func (s *Store) InitSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS order_lines (
			order_id           TEXT NOT NULL,
			platform           TEXT NOT NULL,
			product_name       TEXT NOT NULL,
			quantity           INTEGER NOT NULL DEFAULT 0,
			subtotal_net       DOUBLE PRECISION NOT NULL DEFAULT 0,
			order_total_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at         TEXT NOT NULL,
			date               TEXT NOT NULL,
			seller_sku         TEXT NOT NULL DEFAULT '',
			product_category   TEXT NOT NULL DEFAULT '',
			order_status       TEXT NOT NULL DEFAULT 'Unknown',
			PRIMARY KEY (order_id, platform)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_order_lines_date ON order_lines(date)`,
		`CREATE INDEX IF NOT EXISTS idx_order_lines_platform ON order_lines(platform)`,
		`CREATE INDEX IF NOT EXISTS idx_order_lines_product ON order_lines(product_name)`,
		`CREATE TABLE IF NOT EXISTS loaded_files (
			filename    TEXT PRIMARY KEY,
			file_mtime  BIGINT NOT NULL,
			file_size   BIGINT NOT NULL,
			rows_loaded INTEGER NOT NULL,
			loaded_at   TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS store_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS operations_log (
			ts        TEXT NOT NULL,
			operation TEXT NOT NULL,
			detail    TEXT NOT NULL DEFAULT '',
			row_count INTEGER NOT NULL DEFAULT 0
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.repo.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// IngestBatch insère un lot nettoyé et enregistre le fichier source,
// le tout dans une transaction: un crash laisse les fichiers déjà
// committés intacts
func (s *Store) IngestBatch(fd FileDescriptor, lines []domain.OrderLine) (int, error) {
	inserted := 0

	err := s.uow.Execute(func(tx *sql.Tx) error {
		txRepo := s.repo.WithTx(tx)

		for _, line := range lines {
			if err := upsertLine(&txRepo, line); err != nil {
				return fmt.Errorf("upsert order %s/%s: %w", line.OrderID, line.Platform, err)
			}
			inserted++
		}

		return recordLoadedFile(&txRepo, fd, len(lines))
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// upsertLine insert-or-replace par clé (order_id, platform)
func upsertLine(repo *sharedinfra.BaseRepository, line domain.OrderLine) error {
	query := `
		INSERT INTO order_lines (order_id, platform, product_name, quantity,
			subtotal_net, order_total_amount, created_at, date,
			seller_sku, product_category, order_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (order_id, platform) DO UPDATE SET
			product_name = excluded.product_name,
			quantity = excluded.quantity,
			subtotal_net = excluded.subtotal_net,
			order_total_amount = excluded.order_total_amount,
			created_at = excluded.created_at,
			date = excluded.date,
			seller_sku = excluded.seller_sku,
			product_category = excluded.product_category,
			order_status = excluded.order_status
	`
	_, err := repo.Exec(query,
		line.OrderID, string(line.Platform), line.ProductName, line.Quantity,
		line.SubtotalNet, line.OrderTotalAmount,
		line.CreatedAt.Format(timestampLayout), line.Date.Format(dateLayout),
		line.SellerSKU, line.ProductCategory, line.OrderStatus,
	)
	return err
}

// recordLoadedFile mémorise (nom, mtime, taille, lignes) du fichier chargé
func recordLoadedFile(repo *sharedinfra.BaseRepository, fd FileDescriptor, rows int) error {
	query := `
		INSERT INTO loaded_files (filename, file_mtime, file_size, rows_loaded, loaded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (filename) DO UPDATE SET
			file_mtime = excluded.file_mtime,
			file_size = excluded.file_size,
			rows_loaded = excluded.rows_loaded,
			loaded_at = excluded.loaded_at
	`
	_, err := repo.Exec(query, fd.Name(), fd.ModTime, fd.Size, rows,
		time.Now().UTC().Format(timestampLayout))
	return err
}

// Clear vide les OrderLines et toute la comptabilité de chargement
func (s *Store) Clear() error {
	return s.uow.Execute(func(tx *sql.Tx) error {
		txRepo := s.repo.WithTx(tx)
		for _, table := range []string{"order_lines", "loaded_files", "store_meta"} {
			if _, err := txRepo.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// IsFileCurrent vérifie si un fichier est déjà chargé avec le même mtime/taille
func (s *Store) IsFileCurrent(fd FileDescriptor) (bool, error) {
	var mtime, size int64
	err := s.repo.QueryRow(
		`SELECT file_mtime, file_size FROM loaded_files WHERE filename = ?`,
		fd.Name(),
	).Scan(&mtime, &size)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return mtime == fd.ModTime && size == fd.Size, nil
}

// LoadedFiles liste les fichiers chargés, du plus récent au plus ancien
func (s *Store) LoadedFiles() ([]LoadedFile, error) {
	rows, err := s.repo.Query(
		`SELECT filename, file_mtime, file_size, rows_loaded, loaded_at
		 FROM loaded_files ORDER BY loaded_at DESC, filename`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []LoadedFile
	for rows.Next() {
		var lf LoadedFile
		var loadedAt string
		if err := rows.Scan(&lf.Filename, &lf.ModTime, &lf.Size, &lf.RowsLoaded, &loadedAt); err != nil {
			return nil, err
		}
		lf.LoadedAt, _ = time.Parse(timestampLayout, loadedAt)
		files = append(files, lf)
	}
	return files, rows.Err()
}

// RowCount retourne le nombre total d'OrderLines stockées
func (s *Store) RowCount() (int, error) {
	var n int
	err := s.repo.QueryRow(`SELECT COUNT(*) FROM order_lines`).Scan(&n)
	return n, err
}

// PlatformCounts retourne le nombre de lignes par plateforme
func (s *Store) PlatformCounts() (map[domain.Platform]int, error) {
	rows, err := s.repo.Query(
		`SELECT platform, COUNT(*) FROM order_lines GROUP BY platform`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Platform]int)
	for rows.Next() {
		var platform string
		var n int
		if err := rows.Scan(&platform, &n); err != nil {
			return nil, err
		}
		counts[domain.Platform(platform)] = n
	}
	return counts, rows.Err()
}

// RecordedHash lit l'empreinte du jeu de fichiers mémorisée au dernier build
func (s *Store) RecordedHash() (string, error) {
	var value string
	err := s.repo.QueryRow(
		`SELECT value FROM store_meta WHERE key = ?`, metaFileSetHash).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetRecordedHash mémorise l'empreinte du jeu de fichiers
func (s *Store) SetRecordedHash(hash string) error {
	_, err := s.repo.Exec(`
		INSERT INTO store_meta (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		metaFileSetHash, hash)
	return err
}

// CheckIntegrity compte les violations d'invariants dans le store
func (s *Store) CheckIntegrity() (IntegrityReport, error) {
	var report IntegrityReport

	// Doublons de clé: impossibles avec la PK, comptés quand même pour l'audit
	err := s.repo.QueryRow(`
		SELECT COALESCE(SUM(n - 1), 0) FROM (
			SELECT COUNT(*) AS n FROM order_lines
			GROUP BY order_id, platform HAVING COUNT(*) > 1
		) dups`).Scan(&report.DuplicateKeys)
	if err != nil {
		return report, fmt.Errorf("integrity duplicates: %w", err)
	}

	err = s.repo.QueryRow(
		`SELECT COUNT(*) FROM order_lines WHERE order_id = ''`).Scan(&report.EmptyOrderIDs)
	if err != nil {
		return report, fmt.Errorf("integrity empty ids: %w", err)
	}

	err = s.repo.QueryRow(
		`SELECT COUNT(*) FROM order_lines WHERE created_at = '' OR date = ''`).Scan(&report.NullDates)
	if err != nil {
		return report, fmt.Errorf("integrity null dates: %w", err)
	}

	err = s.repo.QueryRow(
		`SELECT COUNT(*) FROM order_lines WHERE subtotal_net < 0 OR order_total_amount < 0`).Scan(&report.NegativeRevenue)
	if err != nil {
		return report, fmt.Errorf("integrity negative revenue: %w", err)
	}

	return report, nil
}

// LogOperation trace une opération d'ingestion dans le journal
func (s *Store) LogOperation(operation, detail string, rows int) error {
	_, err := s.repo.Exec(
		`INSERT INTO operations_log (ts, operation, detail, row_count) VALUES (?, ?, ?, ?)`,
		time.Now().UTC().Format(timestampLayout), operation, detail, rows)
	return err
}

// RecentOperations retourne les dernières opérations journalisées
func (s *Store) RecentOperations(limit int) ([]OperationLogEntry, error) {
	rows, err := s.repo.Query(
		`SELECT ts, operation, detail, row_count FROM operations_log
		 ORDER BY ts DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []OperationLogEntry
	for rows.Next() {
		var e OperationLogEntry
		var ts string
		if err := rows.Scan(&ts, &e.Operation, &e.Detail, &e.Rows); err != nil {
			return nil, err
		}
		e.Timestamp, _ = time.Parse(timestampLayout, ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
