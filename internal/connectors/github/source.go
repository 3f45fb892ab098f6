package github

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-voice/internal/logger"
	"github.com/custodia-labs/sercha-voice/internal/normalisers/plaintext"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// Extension is the only file type loaded.
const Extension = ".txt"

// maxFileSize skips blobs over 1MB.
const maxFileSize = 1024 * 1024

// Config locates a knowledge base in a repository.
type Config struct {
	Owner string
	Repo  string

	// Ref is a branch, tag or SHA. Empty means the default branch.
	Ref string

	// Prefix limits loading to files under this directory.
	Prefix string
}

// Source loads .txt files from a GitHub repository.
type Source struct {
	client *Client
	cfg    Config
}

// NewSource creates a source reading cfg through client.
func NewSource(client *Client, cfg Config) (*Source, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("%w: github source needs owner and repo", domain.ErrConfiguration)
	}
	cfg.Prefix = strings.Trim(cfg.Prefix, "/")
	return &Source{client: client, cfg: cfg}, nil
}

// Name returns owner/repo, with the ref and prefix when set.
func (s *Source) Name() string {
	name := s.cfg.Owner + "/" + s.cfg.Repo
	if s.cfg.Ref != "" {
		name += "@" + s.cfg.Ref
	}
	if s.cfg.Prefix != "" {
		name += ":" + s.cfg.Prefix
	}
	return name
}

// Documents fetches every .txt file under the prefix, sorted by path.
// Document.Source is the path relative to the prefix.
func (s *Source) Documents(ctx context.Context) ([]domain.Document, error) {
	ref := s.cfg.Ref
	if ref == "" {
		branch, err := s.client.DefaultBranch(ctx, s.cfg.Owner, s.cfg.Repo)
		if err != nil {
			return nil, err
		}
		ref = branch
	}

	tree, err := s.client.GetTree(ctx, s.cfg.Owner, s.cfg.Repo, ref)
	if err != nil {
		return nil, err
	}
	if tree.GetTruncated() {
		logger.Warn("GitHub tree for %s was truncated; some files may be missing", s.Name())
	}

	type file struct{ rel, sha string }
	var files []file
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" || entry.GetSize() > maxFileSize {
			continue
		}
		rel, ok := s.relative(entry.GetPath())
		if !ok || !strings.HasSuffix(rel, Extension) || strings.HasPrefix(path.Base(rel), ".") {
			continue
		}
		files = append(files, file{rel: rel, sha: entry.GetSHA()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].rel < files[j].rel })

	docs := make([]domain.Document, 0, len(files))
	for _, f := range files {
		content, err := s.client.GetBlobContent(ctx, s.cfg.Owner, s.cfg.Repo, f.sha)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", f.rel, err)
		}
		docs = append(docs, domain.Document{Source: f.rel, Content: plaintext.Normalise(content)})
	}

	logger.Debug("Loaded %d documents from %s", len(docs), s.Name())
	return docs, nil
}

// relative strips the prefix from p, reporting whether p is under it.
func (s *Source) relative(p string) (string, bool) {
	if s.cfg.Prefix == "" {
		return p, true
	}
	rest, ok := strings.CutPrefix(p, s.cfg.Prefix+"/")
	return rest, ok
}
