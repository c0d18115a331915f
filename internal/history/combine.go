package history

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/lastupdated/internal/git"
	"git.home.luguber.info/inful/lastupdated/internal/logfields"
)

// Combiner merges the resolution of a primary file with the resolutions of
// its declared dependencies, selecting the most recent timestamp and its
// associated author data.
type Combiner struct {
	repo     *git.Repository
	resolver *Resolver
	authors  *Aggregator
}

// NewCombiner creates a combiner over one repository.
func NewCombiner(repo *git.Repository) *Combiner {
	return &Combiner{
		repo:     repo,
		resolver: NewResolver(repo),
		authors:  NewAggregator(repo),
	}
}

// CombineRequest carries one file's resolution inputs.
type CombineRequest struct {
	// Primary is the repository-relative path of the content file.
	Primary string
	// Dependencies are the file's declared dependency paths,
	// repository-relative or absolute.
	Dependencies []string
	Policy       Policy
	Exclusions   *ExclusionSet
	Aliases      AliasMap
	// WantAuthors requests author aggregation for the winning path.
	WantAuthors bool
	// CheckUntrackedDependencies keeps dependency resolution enabled even
	// when the primary file itself has no history. Dependencies of a
	// tracked primary are always considered.
	CheckUntrackedDependencies bool
}

// Combine resolves the primary path and, where enabled, every dependency,
// and returns the latest result. Ties keep the primary file's data, since it
// is authoritative for authorship display. Warnings are the union across all
// resolved paths. Authors, when requested, come from the winning path only.
func (c *Combiner) Combine(ctx context.Context, req CombineRequest) (CombinedMetadata, error) {
	primary, err := c.resolver.Resolve(ctx, req.Primary, req.Policy, req.Exclusions)
	if err != nil {
		return CombinedMetadata{}, err
	}

	combined := CombinedMetadata{
		Timestamp:     primary.Timestamp,
		PrimaryAuthor: primary.PrimaryAuthor,
		WinningPath:   req.Primary,
	}
	combined.Warnings.Union(primary.Warnings)

	if primary.Timestamp != nil || req.CheckUntrackedDependencies {
		for _, dep := range req.Dependencies {
			repoPath, diskPath := c.depPaths(dep)
			if _, statErr := os.Stat(diskPath); statErr != nil {
				combined.Warnings.Add(WarningDependencyNotFound)
				slog.Debug("Dependency file does not exist, skipping",
					logfields.Path(dep),
					slog.String("page", req.Primary))
				continue
			}
			if repoPath == "" {
				// Outside this repository; nothing to resolve.
				continue
			}
			md, depErr := c.resolver.Resolve(ctx, repoPath, req.Policy, req.Exclusions)
			if depErr != nil {
				return CombinedMetadata{}, depErr
			}
			combined.Warnings.Union(md.Warnings)
			if md.Timestamp == nil {
				continue
			}
			if combined.Timestamp == nil || md.Timestamp.After(*combined.Timestamp) {
				combined.Timestamp = md.Timestamp
				combined.PrimaryAuthor = md.PrimaryAuthor
				combined.WinningPath = repoPath
			}
		}
	}

	if req.WantAuthors && combined.Timestamp != nil {
		authors, aggErr := c.authors.Collect(ctx, combined.WinningPath, req.Policy, req.Exclusions, req.Aliases)
		if aggErr != nil {
			return CombinedMetadata{}, aggErr
		}
		combined.Authors = authors
	}

	return combined, nil
}

// depPaths maps a declared dependency to its repository-relative path (empty
// when the dependency lies outside the checkout) and its on-disk path.
func (c *Combiner) depPaths(dep string) (repoPath, diskPath string) {
	if !filepath.IsAbs(dep) {
		return filepath.ToSlash(dep), filepath.Join(c.repo.Dir(), dep)
	}
	rel, err := filepath.Rel(c.repo.Dir(), dep)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", dep
	}
	return filepath.ToSlash(rel), dep
}
