package cmd

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sheetdiff/sheetdiff/cmd/engine"
	"github.com/spf13/cobra"
)

// resultCacheTTL is how long a cached comparison stays valid. Entries
// key on a fingerprint of both files' contents, so the TTL only guards
// against unbounded cache growth, not staleness.
const resultCacheTTL = 2 * time.Hour

type cachedResult struct {
	Fingerprint string         `json:"fingerprint"`
	CreatedAt   time.Time      `json:"created_at"`
	Result      *engine.Result `json:"result"`
}

func resultCacheDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".sheetdiff", "cache")
}

func resultCachePath(fingerprint string) string {
	return filepath.Join(resultCacheDir(), fingerprint+".json")
}

// fingerprintSources hashes both files' full contents plus the key
// list. Only local regular files are fingerprintable; remote and
// database sources always recompute.
func fingerprintSources(pathA, pathB string, keys []string) (string, error) {
	hash := md5.New()
	for _, path := range []string{pathA, pathB} {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		_, err = io.Copy(hash, f)
		f.Close()
		if err != nil {
			return "", err
		}
		hash.Write([]byte{0})
	}
	hash.Write([]byte(strings.Join(keys, "\x00")))
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// cacheableSource reports whether a source reference is a local
// regular file (the only source type the result cache covers).
func cacheableSource(source string) bool {
	if strings.Contains(source, "://") {
		return false
	}
	info, err := os.Stat(source)
	return err == nil && info.Mode().IsRegular()
}

// loadCachedResult returns the cached result for fingerprint, or nil
// on a miss. Expired and corrupted entries are removed.
func loadCachedResult(fingerprint string) *engine.Result {
	path := resultCachePath(fingerprint)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var cached cachedResult
	if err := json.Unmarshal(data, &cached); err != nil {
		os.Remove(path)
		return nil
	}
	if cached.Fingerprint != fingerprint || time.Since(cached.CreatedAt) > resultCacheTTL {
		os.Remove(path)
		return nil
	}
	return cached.Result
}

func saveCachedResult(fingerprint string, result *engine.Result) error {
	if err := os.MkdirAll(resultCacheDir(), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cachedResult{
		Fingerprint: fingerprint,
		CreatedAt:   time.Now(),
		Result:      result,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(resultCachePath(fingerprint), data, 0o644)
}

// clearResultCache removes every cache entry and returns how many were
// deleted.
func clearResultCache() (int, error) {
	entries, err := os.ReadDir(resultCacheDir())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(resultCacheDir(), entry.Name())); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

var cleanCacheCmd = &cobra.Command{
	Use:   "clean-cache",
	Short: "Remove all cached comparison results",
	Run: func(_ *cobra.Command, _ []string) {
		initLogger(debug, logFormat)

		removed, err := clearResultCache()
		if err != nil {
			logger.Error(fmt.Sprintf("❌ Failed to clean cache: %s", err.Error()))
			os.Exit(3)
		}
		logger.Info(fmt.Sprintf("🧹 Removed %d cached result(s)", removed))
	},
}

func init() {
	rootCmd.AddCommand(cleanCacheCmd)
}
