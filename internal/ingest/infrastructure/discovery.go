package infrastructure

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"dplus/internal/ingest/domain"
)

// FileDescriptor décrit un fichier source découvert
type FileDescriptor struct {
	Path     string          `json:"path"`
	Platform domain.Platform `json:"platform"`
	ModTime  int64           `json:"mtime"`
	Size     int64           `json:"size"`
}

// Name retourne le nom de fichier sans répertoire
func (fd FileDescriptor) Name() string {
	return filepath.Base(fd.Path)
}

// Discovery localise les fichiers sources par convention de nommage
type Discovery struct {
	dirs     []string
	patterns map[domain.Platform][]string
}

// NewDiscovery crée une Discovery sur des répertoires et des motifs glob par plateforme
func NewDiscovery(dirs []string, tiktokPatterns, shopeePatterns []string) *Discovery {
	return &Discovery{
		dirs: dirs,
		patterns: map[domain.Platform][]string{
			domain.PlatformTikTok: tiktokPatterns,
			domain.PlatformShopee: shopeePatterns,
		},
	}
}

// Discover liste les fichiers sources, triés par chemin pour le déterminisme.
// Un répertoire illisible est ignoré: absence de données, pas une erreur.
func (d *Discovery) Discover() ([]FileDescriptor, error) {
	var files []FileDescriptor

	for _, dir := range d.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			platform, ok := d.matchPlatform(entry.Name())
			if !ok {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			files = append(files, FileDescriptor{
				Path:     filepath.Join(dir, entry.Name()),
				Platform: platform,
				ModTime:  info.ModTime().Unix(),
				Size:     info.Size(),
			})
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// matchPlatform teste le nom de fichier contre les motifs de chaque plateforme.
// Ordre fixe: un nom qui correspond aux deux plateformes est attribué à TikTok.
func (d *Discovery) matchPlatform(name string) (domain.Platform, bool) {
	for _, platform := range []domain.Platform{domain.PlatformTikTok, domain.PlatformShopee} {
		for _, pattern := range d.patterns[platform] {
			if ok, err := filepath.Match(pattern, name); err == nil && ok {
				return platform, true
			}
		}
	}
	return "", false
}

// FileSetHash calcule une empreinte du jeu de fichiers (chemin, mtime, taille).
// Détection de staleness bon marché, pas un diff de contenu.
func FileSetHash(files []FileDescriptor) string {
	h := sha256.New()
	for _, fd := range files {
		fmt.Fprintf(h, "%s|%d|%d\n", fd.Path, fd.ModTime, fd.Size)
	}
	return hex.EncodeToString(h.Sum(nil))
}
