package application

import (
	"fmt"
	"sync"
	"time"

	"dplus/internal/ingest/domain"
	"dplus/internal/ingest/infrastructure"
	"dplus/internal/metrics"
	sharedinfra "dplus/internal/shared/infrastructure"
)

// FileResult résultat d'ingestion d'un seul fichier source
type FileResult struct {
	File     string          `json:"file"`
	Platform domain.Platform `json:"platform"`
	Rows     int             `json:"rows"`
	Report   CleaningReport  `json:"report"`
	Skipped  bool            `json:"skipped"`
	Error    string          `json:"error,omitempty"`
}

// RebuildResult résultat d'une reconstruction complète du store
type RebuildResult struct {
	FilesProcessed int                     `json:"files_processed"`
	RowsLoaded     int                     `json:"rows_loaded"`
	PerPlatform    map[domain.Platform]int `json:"per_platform"`
	Files          []FileResult            `json:"files"`
	Warnings       []string                `json:"warnings,omitempty"`
	Duration       time.Duration           `json:"duration_ns"`
}

// IngestService orchestre découverte, mapping, nettoyage et persistance.
// Modèle single-writer: les reconstructions sont sérialisées par un verrou.
type IngestService struct {
	store     *infrastructure.Store
	discovery *infrastructure.Discovery
	mapper    *domain.SchemaMapper
	cleaner   *Cleaner
	logger    *sharedinfra.Logger
	metrics   *metrics.Registry

	lossThreshold float64
	gainThreshold float64

	mu sync.Mutex
}

// NewIngestService crée un service d'ingestion
func NewIngestService(
	store *infrastructure.Store,
	discovery *infrastructure.Discovery,
	mapper *domain.SchemaMapper,
	cleaner *Cleaner,
	logger *sharedinfra.Logger,
	reg *metrics.Registry,
	lossThreshold, gainThreshold float64,
) *IngestService {
	return &IngestService{
		store:         store,
		discovery:     discovery,
		mapper:        mapper,
		cleaner:       cleaner,
		logger:        logger,
		metrics:       reg,
		lossThreshold: lossThreshold,
		gainThreshold: gainThreshold,
	}
}

// NeedsRebuild indique si le store est vide ou si le jeu de fichiers a changé.
// Comparaison d'empreinte (chemin, mtime, taille): staleness, pas diff de contenu.
func (s *IngestService) NeedsRebuild() (bool, error) {
	count, err := s.store.RowCount()
	if err != nil {
		return false, fmt.Errorf("row count: %w", err)
	}
	if count == 0 {
		return true, nil
	}

	files, err := s.discovery.Discover()
	if err != nil {
		return false, err
	}
	recorded, err := s.store.RecordedHash()
	if err != nil {
		return false, fmt.Errorf("recorded hash: %w", err)
	}
	return infrastructure.FileSetHash(files) != recorded, nil
}

// RebuildAll vide le store puis recharge tous les fichiers découvrables.
// Les écarts de volume au-delà des seuils produisent des avertissements,
// jamais un abandon: signaux d'intégrité consultatifs.
func (s *IngestService) RebuildAll() (*RebuildResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	result := &RebuildResult{PerPlatform: make(map[domain.Platform]int)}

	files, err := s.discovery.Discover()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		s.logger.Warn("rebuild: no source files discovered")
	}

	previousCount, err := s.store.RowCount()
	if err != nil {
		return nil, fmt.Errorf("row count before rebuild: %w", err)
	}

	// Lecture et nettoyage d'abord: le volume futur est connu avant de vider,
	// ce qui permet la validation pré-remplacement. Les lectures sont
	// parallélisées; seules les écritures restent séquentielles.
	type prepared struct {
		fd     infrastructure.FileDescriptor
		lines  []domain.OrderLine
		report CleaningReport
		err    error
	}
	batches := make([]prepared, len(files))
	pool := sharedinfra.NewWorkerPool(4)
	pool.Start()
	for i, fd := range files {
		if err := pool.Submit(func() error {
			lines, report, err := s.prepareFile(fd)
			batches[i] = prepared{fd: fd, lines: lines, report: report, err: err}
			return nil
		}); err != nil {
			pool.Stop()
			return nil, err
		}
	}
	pool.Wait()

	newTotal := 0
	for _, batch := range batches {
		newTotal += len(batch.lines)
	}

	result.Warnings = append(result.Warnings,
		volumeWarnings(previousCount, newTotal, s.lossThreshold, s.gainThreshold)...)
	for _, w := range result.Warnings {
		s.logger.Warn("rebuild: %s", w)
	}

	if err := s.store.Clear(); err != nil {
		return nil, fmt.Errorf("clear store: %w", err)
	}

	for _, batch := range batches {
		fr := FileResult{File: batch.fd.Name(), Platform: batch.fd.Platform, Report: batch.report}
		if batch.err != nil {
			// Fichier malformé: zéro ligne, le lot continue
			fr.Skipped = true
			fr.Error = batch.err.Error()
			s.logger.Warn("rebuild: skipping %s: %v", batch.fd.Name(), batch.err)
			s.metrics.FilesSkipped.Inc()
			result.Files = append(result.Files, fr)
			continue
		}

		rows, err := s.store.IngestBatch(batch.fd, batch.lines)
		if err != nil {
			return nil, fmt.Errorf("ingest %s: %w", batch.fd.Name(), err)
		}
		fr.Rows = rows
		result.Files = append(result.Files, fr)
		result.FilesProcessed++
		result.RowsLoaded += rows
		result.PerPlatform[batch.fd.Platform] += rows
		s.observeBatch(batch.report, rows)
	}

	if err := s.store.SetRecordedHash(infrastructure.FileSetHash(files)); err != nil {
		return nil, fmt.Errorf("record hash: %w", err)
	}

	result.Duration = time.Since(start)
	s.metrics.Rebuilds.Inc()
	s.metrics.LastBuildUnix.Set(float64(time.Now().Unix()))

	detail := fmt.Sprintf("%d files, %d rows in %s",
		result.FilesProcessed, result.RowsLoaded, result.Duration.Round(time.Millisecond))
	if err := s.store.LogOperation("rebuild_all", detail, result.RowsLoaded); err != nil {
		s.logger.Warn("rebuild: log operation: %v", err)
	}
	s.logger.Info("rebuild complete: %s", detail)

	return result, nil
}

// IngestNewFiles charge uniquement les fichiers nouveaux ou modifiés
func (s *IngestService) IngestNewFiles() (*RebuildResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	result := &RebuildResult{PerPlatform: make(map[domain.Platform]int)}

	files, err := s.discovery.Discover()
	if err != nil {
		return nil, err
	}

	for _, fd := range files {
		current, err := s.store.IsFileCurrent(fd)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", fd.Name(), err)
		}
		if current {
			continue
		}

		fr := s.ingestOne(fd)
		result.Files = append(result.Files, fr)
		if fr.Skipped {
			continue
		}
		result.FilesProcessed++
		result.RowsLoaded += fr.Rows
		result.PerPlatform[fr.Platform] += fr.Rows
	}

	if err := s.store.SetRecordedHash(infrastructure.FileSetHash(files)); err != nil {
		return nil, fmt.Errorf("record hash: %w", err)
	}

	result.Duration = time.Since(start)
	if result.FilesProcessed > 0 {
		detail := fmt.Sprintf("%d files, %d rows", result.FilesProcessed, result.RowsLoaded)
		if err := s.store.LogOperation("ingest", detail, result.RowsLoaded); err != nil {
			s.logger.Warn("ingest: log operation: %v", err)
		}
		s.logger.Info("ingest complete: %s", detail)
	}
	return result, nil
}

// IngestFile charge un fichier précis, qu'il soit connu ou non
func (s *IngestService) IngestFile(fd infrastructure.FileDescriptor) (FileResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fr := s.ingestOne(fd)
	if fr.Skipped {
		return fr, nil
	}
	if err := s.store.LogOperation("ingest_file", fd.Name(), fr.Rows); err != nil {
		s.logger.Warn("ingest: log operation: %v", err)
	}
	return fr, nil
}

// CheckIntegrity exécute les contrôles d'intégrité et journalise toute violation
func (s *IngestService) CheckIntegrity() (infrastructure.IntegrityReport, error) {
	report, err := s.store.CheckIntegrity()
	if err != nil {
		return report, err
	}
	if !report.OK() {
		s.logger.Error("integrity violations: %+v", report)
		if logErr := s.store.LogOperation("integrity_violation", fmt.Sprintf("%+v", report), 0); logErr != nil {
			s.logger.Warn("integrity: log operation: %v", logErr)
		}
	}
	return report, nil
}

// ingestOne lit, nettoie et persiste un fichier; erreur de lecture = zéro ligne
func (s *IngestService) ingestOne(fd infrastructure.FileDescriptor) FileResult {
	fr := FileResult{File: fd.Name(), Platform: fd.Platform}

	lines, report, err := s.prepareFile(fd)
	fr.Report = report
	if err != nil {
		fr.Skipped = true
		fr.Error = err.Error()
		s.logger.Warn("ingest: skipping %s: %v", fd.Name(), err)
		s.metrics.FilesSkipped.Inc()
		return fr
	}

	rows, err := s.store.IngestBatch(fd, lines)
	if err != nil {
		fr.Skipped = true
		fr.Error = err.Error()
		s.logger.Error("ingest: store %s: %v", fd.Name(), err)
		return fr
	}

	fr.Rows = rows
	s.observeBatch(report, rows)
	return fr
}

// prepareFile lit et nettoie un fichier sans toucher au store
func (s *IngestService) prepareFile(fd infrastructure.FileDescriptor) ([]domain.OrderLine, CleaningReport, error) {
	reader, err := infrastructure.ReaderFor(fd.Path)
	if err != nil {
		return nil, CleaningReport{}, err
	}

	header, rows, err := reader.ReadRows(fd.Path)
	if err != nil {
		return nil, CleaningReport{}, err
	}

	records := s.mapper.MapRows(fd.Platform, header, rows)
	lines, report := s.cleaner.Clean(records)
	return lines, report, nil
}

// observeBatch pousse les compteurs de nettoyage vers les métriques
func (s *IngestService) observeBatch(report CleaningReport, rows int) {
	s.metrics.FilesLoaded.Inc()
	s.metrics.RowsLoaded.Add(float64(rows))
	s.metrics.RowsBlacklisted.Add(float64(report.Blacklisted))
	s.metrics.RowsDeduplicated.Add(float64(report.Duplicates))
	s.metrics.RowsInvalidDate.Add(float64(report.InvalidDates))
}

// volumeWarnings compare l'ancien et le nouveau volume aux seuils configurés
func volumeWarnings(previous, next int, lossThreshold, gainThreshold float64) []string {
	if previous == 0 {
		return nil
	}

	change := float64(next-previous) / float64(previous)
	var warnings []string
	if change < -lossThreshold {
		warnings = append(warnings, fmt.Sprintf(
			"potential data loss: row count dropping from %d to %d (%.1f%%)",
			previous, next, change*100))
	}
	if change > gainThreshold {
		warnings = append(warnings, fmt.Sprintf(
			"unusually large increase: row count growing from %d to %d (+%.1f%%)",
			previous, next, change*100))
	}
	return warnings
}
