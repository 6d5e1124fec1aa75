// Package file provides file-based persistence for tenants, drafts and publish records.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/manasvi0103/ai-blog-platform/pkg/persistence"
)

const (
	tenantsDir        = "tenants"
	draftsDir         = "drafts"
	publishRecordsDir = "publish_records"
)

// Persistence implements the persistence.Persistence interface using the file system.
// All repositories share one lock so Commit can update records and drafts together.
type Persistence struct {
	root string
	mu   sync.RWMutex

	tenantRepo *TenantConfigRepository
	draftRepo  *DraftRepository
	recordRepo *PublishRecordRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	p := &Persistence{root: cleanRoot}
	p.tenantRepo = &TenantConfigRepository{store: p}
	p.draftRepo = &DraftRepository{store: p}
	p.recordRepo = &PublishRecordRepository{store: p}

	return p
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (p *Persistence) TenantConfigs() persistence.TenantConfigRepository {
	return p.tenantRepo
}

func (p *Persistence) Drafts() persistence.DraftRepository {
	return p.draftRepo
}

func (p *Persistence) PublishRecords() persistence.PublishRecordRepository {
	return p.recordRepo
}

func (p *Persistence) path(dir, id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("%w: %q", persistence.ErrInvalidID, id)
	}

	return filepath.Join(p.root, dir, id+".json"), nil
}

// read decodes the file for id into dest. It returns os.ErrNotExist when absent.
func (p *Persistence) read(dir, id string, dest any) error {
	filePath, err := p.path(dir, id)
	if err != nil {
		return err
	}

	body, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	err = json.Unmarshal(body, dest)
	if err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filePath, err)
	}

	return nil
}

// write stores value atomically by renaming a temporary file into place.
func (p *Persistence) write(dir, id string, value any) error {
	filePath, err := p.path(dir, id)
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(filePath), 0o750)
	if err != nil {
		return fmt.Errorf("failed to create %s directory: %w", dir, err)
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", id, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(filePath), id+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to write %s: %w", filePath, err)
	}

	err = os.Rename(tmp.Name(), filePath)
	if err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to replace %s: %w", filePath, err)
	}

	return nil
}

func (p *Persistence) remove(dir, id string) error {
	filePath, err := p.path(dir, id)
	if err != nil {
		return err
	}

	err = os.Remove(filePath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", filePath, err)
	}

	return nil
}

func (p *Persistence) list(dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(p.root, dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	ids := make([]string, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}

	return ids, nil
}
