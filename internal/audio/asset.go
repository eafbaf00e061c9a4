package audio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// AssetInspector checks sound files and measures their length.
// Results are cached until the file's size or modification time changes.
type AssetInspector struct {
	mu    sync.Mutex
	cache map[string]assetInfo
}

type assetInfo struct {
	modTime time.Time
	size    int64
	length  time.Duration
	err     error
}

// NewAssetInspector creates a new AssetInspector.
func NewAssetInspector() *AssetInspector {
	return &AssetInspector{
		cache: make(map[string]assetInfo),
	}
}

// Exists reports whether path is a regular file.
func (a *AssetInspector) Exists(path string) error {
	info, err := os.Stat(expandPath(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, ErrNoAsset)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory: %w", path, ErrNoAsset)
	}
	return nil
}

// Length returns the playing time of the asset at path.
// Formats beep cannot decode return ErrUnsupportedFormat.
func (a *AssetInspector) Length(path string) (time.Duration, error) {
	path = expandPath(path)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%s: %w", path, ErrNoAsset)
		}
		return 0, err
	}

	a.mu.Lock()
	cached, ok := a.cache[path]
	a.mu.Unlock()
	if ok && cached.modTime.Equal(info.ModTime()) && cached.size == info.Size() {
		return cached.length, cached.err
	}

	length, err := decodeLength(path)

	a.mu.Lock()
	a.cache[path] = assetInfo{
		modTime: info.ModTime(),
		size:    info.Size(),
		length:  length,
		err:     err,
	}
	a.mu.Unlock()

	return length, err
}

// decodeLength decodes just enough of the file to learn its sample count.
func decodeLength(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open sound file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".ogg", ".oga":
		streamer, format, err = vorbis.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		return 0, fmt.Errorf("%s: %w", ext, ErrUnsupportedFormat)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to decode sound: %w", err)
	}
	defer func() { _ = streamer.Close() }()

	return format.SampleRate.D(streamer.Len()), nil
}

// expandPath expands ~ to the home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
