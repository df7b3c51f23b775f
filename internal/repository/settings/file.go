package settings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"go.uber.org/multierr"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/button-presser/internal/config"
	domain "github.com/oshokin/button-presser/internal/domain/actuator"
	"github.com/oshokin/button-presser/internal/logger"
)

// Repository defines persistence operations for the actuator settings.
type Repository interface {
	// Get returns the stored value and whether the key has ever been written.
	Get(ctx context.Context, key domain.Key) (uint8, bool, error)
	// Set stores the value, replacing any previous one.
	Set(ctx context.Context, key domain.Key, value uint8) error
	// Snapshot reads both settings atomically.
	Snapshot(ctx context.Context) (domain.Snapshot, error)
}

// FileRepository persists the settings to a JSON file on disk.
// JSON is produced and consumed via protobuf JSON (protojson) of a Struct so
// unknown keys written by other tools survive a rewrite.
type FileRepository struct {
	// path is the filesystem location of the JSON settings file.
	path string
	// mu guards every access to the settings file.
	mu sync.Mutex
}

var (
	// ErrNotFound is returned by Snapshot when a setting has never been written.
	ErrNotFound = errors.New("setting not found")
	// errUnknownKey is returned for keys outside the fixed setting namespace.
	errUnknownKey = errors.New("unknown setting key")
	// errCorrupted marks a settings file that exists but cannot be decoded.
	errCorrupted = fmt.Errorf("corrupted settings document: %w", domain.ErrStorage)
)

var _ Repository = (*FileRepository)(nil)

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Get reads a single setting from disk.
func (r *FileRepository) Get(_ context.Context, key domain.Key) (uint8, bool, error) {
	if !key.Valid() {
		return 0, false, fmt.Errorf("%w: %q", errUnknownKey, key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return 0, false, err
	}

	return lookup(doc, key)
}

// Set writes a single setting to disk, leaving the other one untouched.
// An undecodable file is moved aside and replaced by a fresh document, so the
// settings stay writable after a damaged write.
func (r *FileRepository) Set(ctx context.Context, key domain.Key, value uint8) error {
	if !key.Valid() {
		return fmt.Errorf("%w: %q", errUnknownKey, key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()

	switch {
	case errors.Is(err, errCorrupted):
		backup := r.path + ".corrupt"
		logger.WarnKV(ctx, "Settings file is corrupted, starting from an empty document",
			"path", r.path,
			"backup", backup,
			"error", err,
		)

		if renameErr := os.Rename(r.path, backup); renameErr != nil {
			logger.WarnKV(ctx, "Failed to keep corrupted settings file", "error", renameErr)
		}

		doc = &structpb.Struct{Fields: make(map[string]*structpb.Value)}
	case err != nil:
		return err
	}

	doc.Fields[string(key)] = structpb.NewNumberValue(float64(value))

	return r.write(doc)
}

// Snapshot reads both settings under one lock acquisition.
func (r *FileRepository) Snapshot(_ context.Context) (domain.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return domain.Snapshot{}, err
	}

	duration, ok, err := lookup(doc, domain.KeyPressDuration)
	if err != nil {
		return domain.Snapshot{}, err
	}

	if !ok {
		return domain.Snapshot{}, fmt.Errorf("%s: %w", domain.KeyPressDuration, ErrNotFound)
	}

	duty, ok, err := lookup(doc, domain.KeyDutyCycle)
	if err != nil {
		return domain.Snapshot{}, err
	}

	if !ok {
		return domain.Snapshot{}, fmt.Errorf("%s: %w", domain.KeyDutyCycle, ErrNotFound)
	}

	return domain.Snapshot{
		PressDurationMs: duration,
		DutyCycle:       duty,
	}, nil
}

// read loads the settings document. A missing file is an empty document.
// Callers must hold r.mu.
func (r *FileRepository) read() (*structpb.Struct, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &structpb.Struct{Fields: make(map[string]*structpb.Value)}, nil
		}

		return nil, fmt.Errorf("read settings file: %w: %w", domain.ErrStorage, err)
	}

	var doc structpb.Struct
	if err = protojson.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("decode settings file: %w: %w", errCorrupted, err)
	}

	if doc.Fields == nil {
		doc.Fields = make(map[string]*structpb.Value)
	}

	return &doc, nil
}

// write replaces the settings file through a synced temporary file and a
// rename, then syncs the directory so the rename itself is durable.
// Callers must hold r.mu.
func (r *FileRepository) write(doc *structpb.Struct) error {
	data, err := protojson.MarshalOptions{Multiline: true}.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode settings: %w: %w", domain.ErrStorage, err)
	}

	tmp := r.path + ".tmp"
	if err = writeSynced(tmp, data); err != nil {
		_ = os.Remove(tmp)

		return fmt.Errorf("write settings file: %w: %w", domain.ErrStorage, err)
	}

	if err = os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)

		return fmt.Errorf("replace settings file: %w: %w", domain.ErrStorage, err)
	}

	if err = syncDir(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("sync settings directory: %w: %w", domain.ErrStorage, err)
	}

	return nil
}

// writeSynced writes data to name and flushes it to stable storage before closing.
func writeSynced(name string, data []byte) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, config.DefaultFilePermissions)
	if err != nil {
		return err
	}

	if _, err = f.Write(data); err != nil {
		return multierr.Append(err, f.Close())
	}

	if err = f.Sync(); err != nil {
		return multierr.Append(err, f.Close())
	}

	return f.Close()
}

// syncDir flushes directory entries, making a completed rename durable.
// Windows cannot sync a directory handle, so it is a no-op there.
func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}

	d, err := os.Open(dir)
	if err != nil {
		return err
	}

	return multierr.Append(d.Sync(), d.Close())
}

// lookup extracts a byte-sized setting, treating anything else as corruption.
func lookup(doc *structpb.Struct, key domain.Key) (uint8, bool, error) {
	v, ok := doc.GetFields()[string(key)]
	if !ok {
		return 0, false, nil
	}

	n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber {
		return 0, false, fmt.Errorf("setting %s is not a number: %w", key, domain.ErrStorage)
	}

	f := n.NumberValue
	if f < 0 || f > math.MaxUint8 || f != math.Trunc(f) {
		return 0, false, fmt.Errorf("setting %s out of range (%v): %w", key, f, domain.ErrStorage)
	}

	return uint8(f), true, nil
}
