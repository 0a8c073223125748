// internal/store/reader.go
package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github-activity-connector/internal/model"
)

const (
	reposKeyPrefix   = "repos:"
	commitsKeyPrefix = "commits:"

	// Number of repositories whose commits are attached in parallel when
	// assembling a repository page.
	attachConcurrency = 5

	// How many of a repository's most recent commits are attached to it in
	// the repository listing. Full history is served by CommitsPage.
	recentCommitLimit = 20
)

// Reader retrieves pre-ingested repository and commit collections from
// Redis and slices them into pages. Every read is best-effort: store faults
// degrade to empty results and are logged, never propagated, so a transient
// store hiccup cannot fail a whole request.
type Reader struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewReader creates a Reader backed by the given Redis client.
func NewReader(rdb *redis.Client, logger *slog.Logger) *Reader {
	return &Reader{
		rdb:    rdb,
		logger: logger,
	}
}

// ListRepositories enumerates every repository record under a user's
// namespace, without commits attached. Malformed individual records are
// skipped and logged; a store-access failure yields an empty slice.
func (r *Reader) ListRepositories(ctx context.Context, username string) []model.Repository {
	entries, err := r.rdb.HGetAll(ctx, reposKeyPrefix+username).Result()
	if err != nil {
		r.logger.Warn("Failed to read repositories, degrading to empty", "username", username, "error", err)
		return []model.Repository{}
	}

	repositories := make([]model.Repository, 0, len(entries))
	for name, raw := range entries {
		var repo model.Repository
		if err := json.Unmarshal([]byte(raw), &repo); err != nil {
			r.logger.Warn("Skipping malformed repository record", "username", username, "repo", name, "error", err)
			continue
		}
		repositories = append(repositories, repo)
	}

	// The hash carries no ordering, so impose one: without it two page
	// requests could cover overlapping or disjoint sets of repositories.
	sort.Slice(repositories, func(i, j int) bool {
		return repositories[i].Name < repositories[j].Name
	})

	r.logger.Debug("Listed repositories", "username", username, "count", len(repositories))
	return repositories
}

// RepositoriesPage returns one page of a user's repositories, each with its
// recent commits attached. The commit fetches are one per repository; they
// run concurrently but the pattern stays N+1 by design, batching is a
// future optimization.
func (r *Reader) RepositoriesPage(ctx context.Context, username string, page, size int) model.Page[model.Repository] {
	repositories := r.ListRepositories(ctx, username)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(attachConcurrency)
	for i := range repositories {
		i := i
		g.Go(func() error {
			repositories[i].RecentCommits = r.recentCommits(gctx, username, repositories[i].Name)
			return nil
		})
	}
	// Workers only write their own index and never return errors.
	_ = g.Wait()

	return model.NewPage(repositories, page, size)
}

// CommitsPage returns one page of the commit list for (username, repo). The
// range is read directly from the stored list, not by scanning the whole
// collection. Any store error degrades to an empty page with total 0.
func (r *Reader) CommitsPage(ctx context.Context, username, repo string, page, size int) model.Page[model.Commit] {
	if page < 0 || size <= 0 {
		// LRANGE treats negative indices as offsets from the tail; never
		// let a caller-supplied page reach it unvalidated.
		total := r.commitCount(ctx, username, repo)
		return model.Page[model.Commit]{Items: []model.Commit{}, Page: page, Size: size, TotalElements: total}
	}

	key := commitsKeyPrefix + username + ":" + repo

	total, err := r.rdb.LLen(ctx, key).Result()
	if err != nil {
		r.logger.Warn("Failed to read commit count, degrading to empty", "username", username, "repo", repo, "error", err)
		return model.EmptyPage[model.Commit](page, size)
	}

	start := int64(page) * int64(size)
	end := start + int64(size) - 1
	raw, err := r.rdb.LRange(ctx, key, start, end).Result()
	if err != nil {
		r.logger.Warn("Failed to read commit range, degrading to empty", "username", username, "repo", repo, "error", err)
		return model.EmptyPage[model.Commit](page, size)
	}

	commits := r.decodeCommits(raw, username, repo)
	r.logger.Debug("Read commit page", "username", username, "repo", repo, "page", page, "count", len(commits))
	return model.Page[model.Commit]{
		Items:         commits,
		Page:          page,
		Size:          size,
		TotalElements: total,
	}
}

// recentCommits reads the newest recentCommitLimit commits for a repository.
func (r *Reader) recentCommits(ctx context.Context, username, repo string) []model.Commit {
	key := commitsKeyPrefix + username + ":" + repo
	raw, err := r.rdb.LRange(ctx, key, 0, recentCommitLimit-1).Result()
	if err != nil {
		r.logger.Warn("Failed to read recent commits, degrading to empty", "username", username, "repo", repo, "error", err)
		return []model.Commit{}
	}
	return r.decodeCommits(raw, username, repo)
}

// commitCount reports the stored commit list length, zero on any fault.
func (r *Reader) commitCount(ctx context.Context, username, repo string) int64 {
	total, err := r.rdb.LLen(ctx, commitsKeyPrefix+username+":"+repo).Result()
	if err != nil {
		r.logger.Warn("Failed to read commit count, degrading to zero", "username", username, "repo", repo, "error", err)
		return 0
	}
	return total
}

func (r *Reader) decodeCommits(raw []string, username, repo string) []model.Commit {
	commits := make([]model.Commit, 0, len(raw))
	for _, entry := range raw {
		var c model.Commit
		if err := json.Unmarshal([]byte(entry), &c); err != nil {
			r.logger.Warn("Skipping malformed commit record", "username", username, "repo", repo, "error", err)
			continue
		}
		commits = append(commits, c)
	}
	return commits
}
