package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru"

	"github.com/deepfamily/identity-zk/models"
)

// ArtifactKind names a proving artifact
type ArtifactKind string

const (
	ArtifactWasm ArtifactKind = "wasm" // witness generation program
	ArtifactZkey ArtifactKind = "zkey" // proving key
	ArtifactVkey ArtifactKind = "vkey" // snarkjs verification_key.json
)

// ResolveArtifact returns explicitPath when it exists, else the first existing
// candidate. Every checked path is listed in the error otherwise.
func ResolveArtifact(kind ArtifactKind, explicitPath string, candidates []string) (string, error) {
	searched := make([]string, 0, len(candidates)+1)
	if explicitPath != "" {
		if fileExists(explicitPath) {
			return explicitPath, nil
		}
		searched = append(searched, explicitPath)
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if fileExists(c) {
			return c, nil
		}
		searched = append(searched, c)
	}
	return "", &models.ArtifactNotFoundError{Kind: string(kind), Searched: searched}
}

// Resolver memoizes ResolveArtifact per process. The cache key is the full
// argument list, so a different explicit path never hits a stale entry.
type Resolver struct {
	cache *lru.Cache
}

// NewResolver creates a resolver remembering up to size resolutions
func NewResolver(size int) (*Resolver, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver cache: %w", err)
	}
	return &Resolver{cache: cache}, nil
}

// Resolve is ResolveArtifact with memoization. A remembered path is dropped
// and resolved again when it has disappeared or when a path of higher
// priority has appeared since.
func (r *Resolver) Resolve(kind ArtifactKind, explicitPath string, candidates []string) (string, error) {
	key := resolveKey(kind, explicitPath, candidates)
	if v, ok := r.cache.Get(key); ok {
		path := v.(string)
		if fileExists(path) && !shadowed(path, explicitPath, candidates) {
			return path, nil
		}
		r.cache.Remove(key)
	}

	path, err := ResolveArtifact(kind, explicitPath, candidates)
	if err != nil {
		return "", err
	}
	r.cache.Add(key, path)
	return path, nil
}

// shadowed reports whether a path ahead of path in priority order now exists
func shadowed(path, explicitPath string, candidates []string) bool {
	if explicitPath != "" && explicitPath != path && fileExists(explicitPath) {
		return true
	}
	if explicitPath == path {
		return false
	}
	for _, c := range candidates {
		if c == path {
			return false
		}
		if c != "" && fileExists(c) {
			return true
		}
	}
	return false
}

func resolveKey(kind ArtifactKind, explicitPath string, candidates []string) string {
	return string(kind) + "\x00" + explicitPath + "\x00" + strings.Join(candidates, "\x00")
}

// DefaultCandidates lists the conventional locations of a circuit artifact
// below each search directory, in priority order.
func DefaultCandidates(dirs []string, circuit string, kind ArtifactKind) []string {
	var out []string
	for _, dir := range dirs {
		switch kind {
		case ArtifactWasm:
			out = append(out,
				filepath.Join(dir, circuit+".wasm"),
				filepath.Join(dir, circuit+"_js", circuit+".wasm"),
				filepath.Join(dir, circuit, circuit+".wasm"),
				filepath.Join(dir, circuit, circuit+"_js", circuit+".wasm"),
			)
		case ArtifactZkey:
			out = append(out,
				filepath.Join(dir, circuit+"_final.zkey"),
				filepath.Join(dir, circuit+".zkey"),
				filepath.Join(dir, circuit, circuit+"_final.zkey"),
				filepath.Join(dir, circuit, circuit+".zkey"),
			)
		case ArtifactVkey:
			out = append(out,
				filepath.Join(dir, circuit+"_verification_key.json"),
				filepath.Join(dir, circuit+".vkey.json"),
				filepath.Join(dir, circuit, "verification_key.json"),
			)
		}
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
