package config

import (
	"fmt"
	"os"
)

const exampleConfig = `# lastupdated configuration
repository:
  dir: .

docs:
  dir: docs

resolver:
  # check_untracked_dependencies: true
  # untracked_show_sourcelink: false
  # first_parent: false
  # show_merge_commits: false
  # show_author: false
  # show_all_authors: false
  # follow_renames: false
  # exclude_patterns:
  #   - "**/generated/*"
  # exclude_commits:
  #   - 0123456789abcdef0123456789abcdef01234567
  # author_aliases:
  #   alice: Alice Smith
  # suppress_warnings:
  #   - shallow-truncated

output:
  manifest: lastupdated.json
  language: en
  metatags: true

cache:
  enabled: false

daemon:
  refresh_interval: 1h
  debounce: 2s
  listen: ":9180"

notify:
  enabled: false
  # url: nats://localhost:4222
  # subject: lastupdated.pages

workers: 4
`

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
