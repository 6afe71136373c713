package internal

import (
	"crypto/md5"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	cacheFileName   = "migrate_cache.gob"
	defaultCacheAge = 7 * 24 * time.Hour
)

type fileMetadata struct {
	Hash         string
	LastModified time.Time
}

// CacheEntry records that a file was left unchanged by a set of recipes.
type CacheEntry struct {
	Metadata     fileMetadata
	Recipes      string
	CreatedAt    time.Time
	LastAccessed time.Time
}

type cacheFile struct {
	Entries      map[string]CacheEntry
	Dependencies map[string]string
}

// Cache remembers files that need no migration so repeated runs over a
// large tree can skip parsing them. Entries are invalidated when the file
// or any dependency file (the configuration) changes.
type Cache struct {
	CacheDir         string
	entries          map[string]CacheEntry
	mutex            sync.Mutex
	maxAge           time.Duration
	dirty            bool
	dependencyFiles  []string
	dependencyHashes map[string]string
}

func NewCache(cacheDir string, dependencyFiles ...string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &Cache{
		CacheDir:         cacheDir,
		entries:          make(map[string]CacheEntry),
		maxAge:           defaultCacheAge,
		dependencyFiles:  dependencyFiles,
		dependencyHashes: make(map[string]string),
	}

	if err := cache.updateDependencyHashes(); err != nil {
		return nil, err
	}
	if err := cache.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}

	return cache, nil
}

func (c *Cache) load() error {
	file, err := os.Open(filepath.Join(c.CacheDir, cacheFileName))
	if os.IsNotExist(err) {
		return nil // first run
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	var stored cacheFile
	if err := gob.NewDecoder(file).Decode(&stored); err != nil {
		return fmt.Errorf("failed to decode cache file: %w", err)
	}

	// entries computed under another configuration are worthless
	for name, hash := range c.dependencyHashes {
		if stored.Dependencies[name] != hash {
			return nil
		}
	}
	if stored.Entries != nil {
		c.entries = stored.Entries
	}
	return nil
}

func (c *Cache) save() error {
	file, err := os.Create(filepath.Join(c.CacheDir, cacheFileName))
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	stored := cacheFile{Entries: c.entries, Dependencies: c.dependencyHashes}
	if err := gob.NewEncoder(file).Encode(stored); err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	return nil
}

// MarkUnchanged records that recipes left filename as it is.
func (c *Cache) MarkUnchanged(filename string, recipes []string) error {
	metadata, err := getFileMetadata(filename)
	if err != nil {
		return fmt.Errorf("failed to get file metadata: %w", err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	c.entries[filename] = CacheEntry{
		Metadata:     metadata,
		Recipes:      recipeKey(recipes),
		CreatedAt:    now,
		LastAccessed: now,
	}
	c.dirty = true
	return nil
}

// IsUnchanged reports whether filename is known to need no migration by
// exactly this set of recipes.
func (c *Cache) IsUnchanged(filename string, recipes []string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[filename]
	if !exists {
		return false
	}

	if entry.Recipes != recipeKey(recipes) || c.isEntryInvalid(filename, entry) {
		delete(c.entries, filename)
		c.dirty = true
		return false
	}

	entry.LastAccessed = time.Now()
	c.entries[filename] = entry
	return true
}

// Flush writes pending changes to disk.
func (c *Cache) Flush() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.dirty {
		return nil
	}
	if err := c.save(); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

func (c *Cache) isEntryInvalid(filename string, entry CacheEntry) bool {
	if time.Since(entry.CreatedAt) > c.maxAge {
		return true
	}

	current, err := getFileMetadata(filename)
	if err != nil {
		return true
	}
	// times decoded from disk carry their own location
	if current.Hash != entry.Metadata.Hash || !current.LastModified.Equal(entry.Metadata.LastModified) {
		return true
	}

	return false
}

func (c *Cache) updateDependencyHashes() error {
	for _, file := range c.dependencyFiles {
		hash, err := getFileHash(file)
		if os.IsNotExist(err) {
			// running on built-in defaults
			c.dependencyHashes[file] = ""
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to get hash for %s: %w", file, err)
		}
		c.dependencyHashes[file] = hash
	}
	return nil
}

func (c *Cache) SetMaxAge(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxAge = duration
}

func (c *Cache) InvalidateAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]CacheEntry)
	_ = c.save() // manual operation, nothing to report to
}

func recipeKey(recipes []string) string {
	sorted := append([]string(nil), recipes...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

func getFileMetadata(filename string) (fileMetadata, error) {
	file, err := os.Open(filename)
	if err != nil {
		return fileMetadata{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return fileMetadata{}, fmt.Errorf("failed to calculate hash: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		return fileMetadata{}, fmt.Errorf("failed to get file info: %w", err)
	}

	return fileMetadata{
		Hash:         fmt.Sprintf("%x", hash.Sum(nil)),
		LastModified: info.ModTime(),
	}, nil
}

func getFileHash(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
